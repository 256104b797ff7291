package soroban

import "fmt"

// compileAddSub places the left operand and then applies the right operand
// column by column, most significant first.
func (c *Compiler) compileAddSub(text string, p Problem, answer int) Sequence {
	result := p.Result()
	switch {
	case result != answer:
		return unsupportedFallback(text, answer)
	case result < 0:
		return unsupportedFallback(text, answer)
	case !c.fits(p.Left, p.Right, result):
		return unsupportedFallback(text, answer)
	}

	b := newBuilder(c.columns, c.names)
	b.placeDigits(p.Left)
	if last := b.last(); last != nil {
		last.in.Title = fmt.Sprintf("Set the number %d", p.Left)
	}

	right := digitsOf(p.Right)
	for place := len(right) - 1; place >= 0; place-- {
		digit := right[place]
		if digit == 0 {
			continue
		}
		value := digit * pow10(place)
		if p.Op == OpAdd {
			b.add(place, digit, &draft{in: Instruction{Title: fmt.Sprintf("Add %d", value), Kind: KindApply}})
		} else {
			b.sub(place, digit, &draft{in: Instruction{Title: fmt.Sprintf("Subtract %d", value), Kind: KindApply}})
		}
	}

	return b.finish(DonePhrase(p, result))
}

package soroban

import (
	"fmt"
	"strings"
)

// Strategy is the decomposition chosen for a multiplication. The concrete
// variants are OneByOne, TwoByOne, MultiDigit and Fallback.
type Strategy interface {
	Name() string
	compile(b *builder, p Problem)
}

// OneByOne handles a one-digit by one-digit product straight from the table.
type OneByOne struct{}

// TwoByOne splits a two-digit multiplicand into tens and ones.
type TwoByOne struct{}

// MultiDigit splits the multiplier by place value and accumulates every
// cross product. Covers 2×2, 2×3, 3×1, 3×2 and 3×3.
type MultiDigit struct{}

// Fallback is the unverified advanced case.
type Fallback struct {
	Reason string
}

func (OneByOne) Name() string   { return "one-by-one" }
func (TwoByOne) Name() string   { return "two-by-one" }
func (MultiDigit) Name() string { return "multi-digit" }
func (Fallback) Name() string   { return "fallback" }

// ClassifyMultiplication picks the strategy for p by the digit counts of its
// operands.
func ClassifyMultiplication(p Problem) Strategy {
	lm, lr := digitCount(p.Left), digitCount(p.Right)
	switch {
	case lm >= 4 || lr >= 4:
		return Fallback{Reason: "an operand has four or more digits"}
	case lm == 1 && lr == 1:
		return OneByOne{}
	case lm == 2 && lr == 1:
		return TwoByOne{}
	case lm >= 2:
		return MultiDigit{}
	default:
		return Fallback{Reason: fmt.Sprintf("a %d-digit multiplier on a 1-digit multiplicand", lr)}
	}
}

func (c *Compiler) compileMultiply(text string, p Problem, answer int) Sequence {
	s := ClassifyMultiplication(p)
	if _, ok := s.(Fallback); ok {
		return advancedFallback(text, fmt.Sprintf("%d × %d", p.Left, p.Right), answer)
	}
	result := p.Result()
	if result != answer || !c.fits(result) {
		return unsupportedFallback(text, answer)
	}

	b := newBuilder(c.columns, c.names)
	s.compile(b, p)
	return b.finish(DonePhrase(p, result))
}

func (OneByOne) compile(b *builder, p Problem) {
	product := p.Left * p.Right
	b.explain(fmt.Sprintf("%d × %d", p.Left, p.Right),
		"Use the times table:",
		fmt.Sprintf("%d × %d = %d", p.Left, p.Right, product),
		"",
		fmt.Sprintf("Now set %d on the abacus", product),
	)
	b.placeDigits(product)
}

func (TwoByOne) compile(b *builder, p Problem) {
	tens, ones, d := p.Left/10, p.Left%10, p.Right
	b.explain("How to multiply",
		fmt.Sprintf("%d × %d = ?", p.Left, d),
		"",
		fmt.Sprintf("Split: (%d + %d) × %d", tens*10, ones, d),
		fmt.Sprintf("= %d × %d + %d × %d", tens*10, d, ones, d),
		fmt.Sprintf("= %d + %d", tens*d*10, ones*d),
		"",
		"Work step by step:",
	)

	tp := tens * d
	b.accumulate(1, tp, &draft{
		in: Instruction{Title: fmt.Sprintf("%d × %d = %d", tens*10, d, tp*10), Kind: KindApply},
		lead: []string{
			fmt.Sprintf("Work out: %d × %d = %d", tens, d, tp),
			fmt.Sprintf("Put %d on the %s (= %d)", tp, b.names.Name(1), tp*10),
		},
	})

	op := ones * d
	b.accumulate(0, op, &draft{
		in:   Instruction{Title: fmt.Sprintf("%d × %d = %d", ones, d, op), Kind: KindApply},
		lead: []string{fmt.Sprintf("Add %d to the total", op)},
	})
}

type multiplierPart struct {
	digit int
	place int
}

func (MultiDigit) compile(b *builder, p Problem) {
	cand := digitsOf(p.Left)
	mult := digitsOf(p.Right)

	var parts []multiplierPart
	for place := len(mult) - 1; place >= 0; place-- {
		if mult[place] != 0 {
			parts = append(parts, multiplierPart{digit: mult[place], place: place})
		}
	}

	overview := []string{fmt.Sprintf("Split the multiplier %d:", p.Right)}
	for _, part := range parts {
		value := part.digit * pow10(part.place)
		overview = append(overview, fmt.Sprintf("%d × %d = %d", p.Left, value, p.Left*value))
	}
	overview = append(overview, "", fmt.Sprintf("Total = %d", p.Result()))
	b.explain(fmt.Sprintf("%d × %d = ?", p.Left, p.Right), overview...)

	for i, part := range parts {
		value := part.digit * pow10(part.place)
		first := true
		for q := len(cand) - 1; q >= 0; q-- {
			m := cand[q]
			if m == 0 {
				continue
			}
			product := m * part.digit
			title := fmt.Sprintf("%d × %d = %d", m, part.digit, product)
			if first {
				title = fmt.Sprintf("Part %d: %d × %d", i+1, p.Left, value)
			}
			b.accumulate(part.place+q, product, &draft{
				in:   Instruction{Title: title, Kind: KindApply},
				lead: []string{fmt.Sprintf("%d × %d = %d", m, part.digit, product)},
			})
			first = false
		}
		if i < len(parts)-1 {
			last := b.last()
			last.tail = append(last.tail, fmt.Sprintf("✓ %d × %d = %d", p.Left, value, p.Left*value))
		}
	}
}

func (Fallback) compile(*builder, Problem) {}

// =============================================================================
// FALLBACKS
// =============================================================================

func fallbackSequence(kind FallbackKind, in Instruction) Sequence {
	in.Order = 1
	in.Kind = KindFallback
	in.Fallback = kind
	return Sequence{steps: []Instruction{in}}
}

// unparsedFallback is returned for text the parser rejects.
func unparsedFallback(text string, answer int) Sequence {
	return solveFallback(FallbackUnparsed, text, answer)
}

// unsupportedFallback is returned for problems this compiler cannot lay out
// on the abacus.
func unsupportedFallback(text string, answer int) Sequence {
	return solveFallback(FallbackUnsupported, text, answer)
}

func solveFallback(kind FallbackKind, text string, answer int) Sequence {
	return fallbackSequence(kind, Instruction{
		Label:      "🎯",
		Title:      fmt.Sprintf("Solve %s", strings.TrimSpace(text)),
		ActionText: fmt.Sprintf("Move the beads to show the result %d", answer),
		DemoValue:  answer,
	})
}

// advancedFallback explains product, written as "a × b", without verified
// steps.
func advancedFallback(text, product string, answer int) Sequence {
	return fallbackSequence(FallbackAdvanced, Instruction{
		Label: "✖️",
		Title: fmt.Sprintf("Solve %s", strings.TrimSpace(text)),
		ActionText: strings.Join([]string{
			"This is an advanced multiplication. These steps are not verified.",
			"Work out: " + product,
			"Use the times table and accumulate the partial products by hand.",
			fmt.Sprintf("Correct result: %d", answer),
		}, "\n\n"),
		DemoValue: answer,
	})
}

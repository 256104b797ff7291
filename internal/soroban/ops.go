package soroban

import (
	"fmt"
	"slices"
)

// local changes the column at place to digit to without touching any other
// column, and emits d with the resulting bead moves.
func (b *builder) local(place, to int, d *draft) *draft {
	m := Transition(place, b.abacus.Digit(place), to)
	d.in.Actions = m.Actions
	if m.Note != nil {
		d.in.Notes = append(d.in.Notes, *m.Note)
	}
	d.in.TargetColumn = columnAt(place, b.abacus.Width())
	return b.emit(d)
}

// add adds amount (1-9) to the column at place and returns the first draft
// emitted. When the column overflows, 1 is carried into the next column
// before the big friend of amount is taken off this one. A carry into a 9
// chains the same way.
func (b *builder) add(place, amount int, d *draft) *draft {
	cur := b.abacus.Digit(place)
	if cur+amount <= 9 {
		return b.local(place, cur+amount, d)
	}

	c := Complement10(amount)
	carry := &draft{
		in: Instruction{
			Title: fmt.Sprintf("Carry 1 to the %s", b.names.Name(place+1)),
			Kind:  KindCarry,
			Notes: append(slices.Clone(d.in.Notes), Note{Rule: RuleBigFriend, Amount: amount, Complement: c}),
		},
		lead: d.lead,
	}
	first := b.add(place+1, 1, carry)
	b.local(place, cur-c, &draft{in: Instruction{
		Title:      fmt.Sprintf("Subtract %d from the %s", c, b.names.Name(place)),
		Kind:       KindCompensate,
		PairedWith: first.in.Order,
	}})
	return first
}

// sub subtracts amount (1-9) from the column at place and returns the first
// draft emitted. When the column underflows, 1 is borrowed from the next
// column before the big friend of amount is added here. A borrow from a 0
// chains the same way.
func (b *builder) sub(place, amount int, d *draft) *draft {
	cur := b.abacus.Digit(place)
	if cur >= amount {
		return b.local(place, cur-amount, d)
	}

	c := Complement10(amount)
	borrow := &draft{
		in: Instruction{
			Title: fmt.Sprintf("Borrow 1 from the %s", b.names.Name(place+1)),
			Kind:  KindBorrow,
			Notes: append(slices.Clone(d.in.Notes), Note{Rule: RuleBigFriend, Amount: -amount, Complement: c}),
		},
		lead: d.lead,
	}
	first := b.sub(place+1, 1, borrow)
	b.local(place, cur+c, &draft{in: Instruction{
		Title:      fmt.Sprintf("Add %d to the %s", c, b.names.Name(place)),
		Kind:       KindCompensate,
		PairedWith: first.in.Order,
	}})
	return first
}

// placeDigits sets n on empty columns, most significant nonzero digit first,
// one instruction per digit.
func (b *builder) placeDigits(n int) {
	ds := digitsOf(n)
	for place := len(ds) - 1; place >= 0; place-- {
		if ds[place] == 0 {
			continue
		}
		b.local(place, ds[place], &draft{in: Instruction{
			Title: fmt.Sprintf("Set the %s to %d", b.names.Name(place), ds[place]),
			Kind:  KindPlace,
		}})
	}
}

// accumulate adds a partial product (0-81) whose units land on place. A
// two-digit product goes in as two additions, the higher column first.
func (b *builder) accumulate(place, product int, d *draft) {
	if product == 0 {
		return
	}
	if product < 10 {
		b.add(place, product, d)
		return
	}

	hi, lo := product/10, product%10
	d.lead = append(d.lead, fmt.Sprintf("%d = %d on the %s + %d on the %s",
		product, hi, b.names.Name(place+1), lo, b.names.Name(place)))
	b.add(place+1, hi, d)
	if lo > 0 {
		b.add(place, lo, &draft{in: Instruction{
			Title: fmt.Sprintf("Add %d to the %s", lo, b.names.Name(place)),
			Kind:  KindApply,
		}})
	}
}

package soroban

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned for a sequence with no instructions.
	ErrEmpty = errors.New("empty sequence")
	// ErrDemoMismatch is returned when replaying the bead moves does not
	// reproduce an instruction's DemoValue.
	ErrDemoMismatch = errors.New("demo value does not match replay")
	// ErrOrdering is returned when orders are not consecutive or a
	// compensate step does not follow its carry or borrow.
	ErrOrdering = errors.New("instruction ordering violated")
	// ErrTerminal is returned when the final instruction does not show the
	// expected answer.
	ErrTerminal = errors.New("final demo value is not the answer")
)

// Verify replays seq on a fresh abacus as wide as the compiler's and checks
// every DemoValue, the carry/borrow ordering and the terminal answer.
func (c *Compiler) Verify(seq Sequence, answer int) error {
	return verify(seq, answer, c.columns)
}

// Verify checks seq against the default abacus width.
func Verify(seq Sequence, answer int) error {
	return verify(seq, answer, DefaultColumns)
}

func verify(seq Sequence, answer, columns int) error {
	steps := seq.steps
	if len(steps) == 0 {
		return ErrEmpty
	}
	if seq.IsFallback() {
		if steps[0].DemoValue != answer {
			return fmt.Errorf("%w: fallback shows %d, want %d", ErrTerminal, steps[0].DemoValue, answer)
		}
		return nil
	}

	abacus := NewAbacus(columns)
	for i, in := range steps {
		if in.Order != i+1 {
			return fmt.Errorf("%w: step %d has order %d", ErrOrdering, i+1, in.Order)
		}

		if in.SkipCheck {
			if len(in.Actions) > 0 {
				return fmt.Errorf("%w: explanatory step %d moves beads", ErrDemoMismatch, in.Order)
			}
			if in.DemoValue != Unchecked {
				return fmt.Errorf("%w: explanatory step %d carries demo value %d", ErrDemoMismatch, in.Order, in.DemoValue)
			}
			continue
		}

		for _, act := range in.Actions {
			if err := abacus.Apply(act); err != nil {
				return fmt.Errorf("step %d: %w", in.Order, err)
			}
		}
		if got := abacus.Value(); got != in.DemoValue {
			return fmt.Errorf("%w: step %d shows %d after replay, claims %d", ErrDemoMismatch, in.Order, got, in.DemoValue)
		}

		if in.Kind == KindCompensate {
			if err := checkPair(steps, in); err != nil {
				return err
			}
		}
	}

	last := steps[len(steps)-1]
	if !last.Checked() || last.DemoValue != answer {
		return fmt.Errorf("%w: final step shows %d, want %d", ErrTerminal, last.DemoValue, answer)
	}
	return nil
}

// checkPair enforces that a compensate step comes after the higher-column
// carry or borrow it completes.
func checkPair(steps []Instruction, in Instruction) error {
	if in.PairedWith < 1 || in.PairedWith >= in.Order {
		return fmt.Errorf("%w: step %d pairs with %d", ErrOrdering, in.Order, in.PairedWith)
	}
	head := steps[in.PairedWith-1]
	if head.Kind != KindCarry && head.Kind != KindBorrow {
		return fmt.Errorf("%w: step %d pairs with a %s step", ErrOrdering, in.Order, head.Kind)
	}
	if head.TargetColumn == nil || in.TargetColumn == nil || head.TargetColumn.Place <= in.TargetColumn.Place {
		return fmt.Errorf("%w: step %d is not preceded by a higher-column step", ErrOrdering, in.Order)
	}
	return nil
}

package soroban

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidBeads is returned when a bead move would leave a column outside
// the digit <-> bead bijection.
var ErrInvalidBeads = errors.New("invalid bead state")

// MaxEarth is the number of earth beads on one rod.
const MaxEarth = 4

// Beads is the physical state of one column.
type Beads struct {
	Heaven bool // heaven bead lowered to the beam (+5)
	Earth  int  // earth beads raised to the beam, 0-4
}

// BeadsOf converts a digit 0-9 into its bead state.
func BeadsOf(digit int) Beads {
	if digit >= 5 {
		return Beads{Heaven: true, Earth: digit - 5}
	}
	return Beads{Earth: digit}
}

// Digit returns the digit the beads show.
func (b Beads) Digit() int {
	if b.Heaven {
		return b.Earth + 5
	}
	return b.Earth
}

// Valid reports whether the earth count is in range.
func (b Beads) Valid() bool {
	return b.Earth >= 0 && b.Earth <= MaxEarth
}

// ColumnRef points at one rod. Place counts powers of ten from the units;
// Index counts rods from the left of the frame, so on nine rods the units
// are index 8 and the tens index 7.
type ColumnRef struct {
	Place int `json:"place"`
	Index int `json:"index"`
}

// columnAt returns the reference for place on an abacus of the given width.
func columnAt(place, width int) *ColumnRef {
	return &ColumnRef{Place: place, Index: width - 1 - place}
}

// DefaultColumns is the abacus width used when none is configured.
const DefaultColumns = 9

// Abacus is a fixed-width row of columns. The zero value is not usable; call
// NewAbacus.
type Abacus struct {
	rods []Beads // indexed by place
}

// NewAbacus returns an all-zero abacus with the given number of columns.
func NewAbacus(columns int) *Abacus {
	if columns <= 0 {
		columns = DefaultColumns
	}
	return &Abacus{rods: make([]Beads, columns)}
}

// Width returns the number of columns.
func (a *Abacus) Width() int {
	return len(a.rods)
}

// Digit returns the digit shown at place, or 0 for places beyond the frame.
func (a *Abacus) Digit(place int) int {
	if place < 0 || place >= len(a.rods) {
		return 0
	}
	return a.rods[place].Digit()
}

// Beads returns the bead state at place.
func (a *Abacus) Beads(place int) Beads {
	if place < 0 || place >= len(a.rods) {
		return Beads{}
	}
	return a.rods[place]
}

// Value returns the total the abacus shows.
func (a *Abacus) Value() int {
	total := 0
	for place := len(a.rods) - 1; place >= 0; place-- {
		total = total*10 + a.rods[place].Digit()
	}
	return total
}

// Apply performs one primitive bead move. The abacus is left unchanged when
// the move is not physically possible.
func (a *Abacus) Apply(act Action) error {
	if act.Place < 0 || act.Place >= len(a.rods) {
		return fmt.Errorf("%w: place %d outside a %d-column frame", ErrInvalidBeads, act.Place, len(a.rods))
	}
	if act.Count <= 0 {
		return fmt.Errorf("%w: non-positive count %d", ErrInvalidBeads, act.Count)
	}

	rod := a.rods[act.Place]
	switch act.Bead {
	case Heaven:
		if act.Count != 1 {
			return fmt.Errorf("%w: heaven bead moved %d times", ErrInvalidBeads, act.Count)
		}
		lowered := act.Dir == Down
		if rod.Heaven == lowered {
			return fmt.Errorf("%w: heaven bead at place %d already %s", ErrInvalidBeads, act.Place, act.Dir)
		}
		rod.Heaven = lowered
	case Earth:
		if act.Dir == Up {
			rod.Earth += act.Count
		} else {
			rod.Earth -= act.Count
		}
		if !rod.Valid() {
			return fmt.Errorf("%w: place %d would hold %d earth beads", ErrInvalidBeads, act.Place, rod.Earth)
		}
	default:
		return fmt.Errorf("%w: unknown bead %d", ErrInvalidBeads, act.Bead)
	}

	a.rods[act.Place] = rod
	return nil
}

// String renders the digits most significant first, e.g. "000000012".
func (a *Abacus) String() string {
	var sb strings.Builder
	for place := len(a.rods) - 1; place >= 0; place-- {
		sb.WriteByte(byte('0' + a.rods[place].Digit()))
	}
	return sb.String()
}

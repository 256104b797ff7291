package soroban

import "fmt"

// Bead identifies which kind of bead a move touches.
type Bead int

const (
	Earth  Bead = iota // value 1, four per rod
	Heaven             // value 5, one per rod
)

func (b Bead) String() string {
	if b == Heaven {
		return "heaven"
	}
	return "earth"
}

// Dir is the direction a bead travels.
type Dir int

const (
	Up   Dir = iota // earth bead toward the beam, heaven bead away from it
	Down            // earth bead away from the beam, heaven bead toward it
)

func (d Dir) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

// Action is one primitive bead move on one rod.
type Action struct {
	Place int  `json:"place"`
	Bead  Bead `json:"bead"`
	Dir   Dir  `json:"dir"`
	Count int  `json:"count"`
}

// Delta returns the change in column digit caused by the move.
func (a Action) Delta() int {
	switch {
	case a.Bead == Heaven && a.Dir == Down:
		return 5
	case a.Bead == Heaven:
		return -5
	case a.Dir == Up:
		return a.Count
	default:
		return -a.Count
	}
}

// Rule names the complement identity a move relies on.
type Rule int

const (
	RuleNone        Rule = iota
	RuleSmallFriend      // n + (5-n) = 5
	RuleBigFriend        // n + (10-n) = 10
)

func (r Rule) String() string {
	switch r {
	case RuleSmallFriend:
		return "small-friend"
	case RuleBigFriend:
		return "big-friend"
	default:
		return "none"
	}
}

// Note records a complement rule applied to a signed amount, e.g. +4 = +5 -1.
type Note struct {
	Rule       Rule `json:"rule"`
	Amount     int  `json:"amount"` // negative when subtracting
	Complement int  `json:"complement"`
}

// Case is the bead transition class of a single-column change.
type Case int

const (
	CaseSame      Case = iota // digit unchanged
	CaseEarth                 // both digits below 5
	CaseCrossUp               // below 5 to 5 or above
	CaseHeaven                // both digits 5 or above
	CaseCrossDown             // 5 or above to below 5
)

// Move is the formatter output for one column transition.
type Move struct {
	Case    Case
	Actions []Action
	Note    *Note // set when a small-friend substitution was used
}

// Transition classifies a local (non-carrying) change of the column at place
// from one digit to another and returns the primitive actions to perform,
// heaven bead first.
func Transition(place, from, to int) Move {
	fb, tb := BeadsOf(from), BeadsOf(to)

	switch {
	case from == to:
		return Move{Case: CaseSame}

	case !fb.Heaven && !tb.Heaven:
		return Move{Case: CaseEarth, Actions: earthMove(place, tb.Earth-fb.Earth)}

	case !fb.Heaven && tb.Heaven:
		m := Move{Case: CaseCrossUp, Actions: []Action{{Place: place, Bead: Heaven, Dir: Down, Count: 1}}}
		amount := to - from
		if c := Complement5(amount); amount <= MaxEarth && c > 0 && fb.Earth >= c {
			m.Actions = append(m.Actions, Action{Place: place, Bead: Earth, Dir: Down, Count: c})
			m.Note = &Note{Rule: RuleSmallFriend, Amount: amount, Complement: c}
			return m
		}
		m.Actions = append(m.Actions, earthMove(place, tb.Earth-fb.Earth)...)
		return m

	case fb.Heaven && tb.Heaven:
		return Move{Case: CaseHeaven, Actions: earthMove(place, tb.Earth-fb.Earth)}

	default:
		m := Move{Case: CaseCrossDown, Actions: []Action{{Place: place, Bead: Heaven, Dir: Up, Count: 1}}}
		m.Actions = append(m.Actions, earthMove(place, tb.Earth-fb.Earth)...)
		amount := from - to
		if c := Complement5(amount); amount <= MaxEarth && c > 0 {
			m.Note = &Note{Rule: RuleSmallFriend, Amount: -amount, Complement: c}
		}
		return m
	}
}

func earthMove(place, delta int) []Action {
	switch {
	case delta > 0:
		return []Action{{Place: place, Bead: Earth, Dir: Up, Count: delta}}
	case delta < 0:
		return []Action{{Place: place, Bead: Earth, Dir: Down, Count: -delta}}
	default:
		return nil
	}
}

func (b Bead) MarshalText() ([]byte, error) { return []byte(b.String()), nil }
func (d Dir) MarshalText() ([]byte, error)  { return []byte(d.String()), nil }
func (r Rule) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (b *Bead) UnmarshalText(text []byte) error {
	switch string(text) {
	case "earth":
		*b = Earth
	case "heaven":
		*b = Heaven
	default:
		return fmt.Errorf("unknown bead %q", text)
	}
	return nil
}

func (d *Dir) UnmarshalText(text []byte) error {
	switch string(text) {
	case "up":
		*d = Up
	case "down":
		*d = Down
	default:
		return fmt.Errorf("unknown direction %q", text)
	}
	return nil
}

func (r *Rule) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none":
		*r = RuleNone
	case "small-friend":
		*r = RuleSmallFriend
	case "big-friend":
		*r = RuleBigFriend
	default:
		return fmt.Errorf("unknown rule %q", text)
	}
	return nil
}

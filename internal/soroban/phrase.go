package soroban

import (
	"fmt"
	"strings"
)

// The phrases below are matched by the lesson UI's translator table. Keep
// their shape stable; change the table in the same commit if you must touch
// them.

// Phrase renders one primitive action.
func Phrase(names PlaceNames, a Action) string {
	col := names.Name(a.Place)
	switch {
	case a.Bead == Heaven && a.Dir == Down:
		return fmt.Sprintf("⬇️ Column %s: lower the heaven bead (+5)", col)
	case a.Bead == Heaven:
		return fmt.Sprintf("⬆️ Column %s: raise the heaven bead (-5)", col)
	case a.Dir == Up:
		return fmt.Sprintf("⬆️ Column %s: raise %d earth %s (+%d)", col, a.Count, beadWord(a.Count), a.Count)
	default:
		return fmt.Sprintf("⬇️ Column %s: lower %d earth %s (-%d)", col, a.Count, beadWord(a.Count), a.Count)
	}
}

// UnchangedPhrase is used when an instruction moves no beads.
func UnchangedPhrase(names PlaceNames, place int) string {
	return fmt.Sprintf("Column %s stays unchanged", names.Name(place))
}

// NotePhrase renders the rationale for a complement substitution.
func NotePhrase(n Note) string {
	base, friend := 5, "small"
	if n.Rule == RuleBigFriend {
		base, friend = 10, "big"
	}
	if n.Amount < 0 {
		return fmt.Sprintf("💡 %s friend: -%d = -%d +%d (the %s friend of %d is %d)",
			capitalize(friend), -n.Amount, base, n.Complement, friend, -n.Amount, n.Complement)
	}
	return fmt.Sprintf("💡 %s friend: +%d = +%d -%d (the %s friend of %d is %d)",
		capitalize(friend), n.Amount, base, n.Complement, friend, n.Amount, n.Complement)
}

// DonePhrase is the completion marker appended to the final instruction.
func DonePhrase(p Problem, result int) string {
	return fmt.Sprintf("✅ %d %s %d = %d", p.Left, p.Op, p.Right, result)
}

// renderText joins the lead lines, the action phrases and the rule notes into
// the instruction body. Paragraphs are separated by a blank line.
func renderText(names PlaceNames, d *draft) string {
	var paras []string
	if len(d.lead) > 0 {
		paras = append(paras, strings.Join(d.lead, "\n"))
	}

	var moves []string
	for _, a := range d.in.Actions {
		moves = append(moves, Phrase(names, a))
	}
	if len(moves) == 0 && d.in.TargetColumn != nil {
		moves = append(moves, UnchangedPhrase(names, d.in.TargetColumn.Place))
	}
	if len(moves) > 0 {
		paras = append(paras, strings.Join(moves, "\n"))
	}

	if len(d.in.Notes) > 0 {
		notes := make([]string, 0, len(d.in.Notes))
		for _, n := range d.in.Notes {
			notes = append(notes, NotePhrase(n))
		}
		paras = append(paras, strings.Join(notes, "\n"))
	}

	paras = append(paras, d.tail...)
	return strings.Join(paras, "\n\n")
}

func beadWord(n int) string {
	if n == 1 {
		return "bead"
	}
	return "beads"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

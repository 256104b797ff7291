package soroban

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Unchecked is the DemoValue of explanatory steps the UI must not verify.
// SkipCheck alone marks such steps; a fallback may carry -1 as its answer.
const Unchecked = -1

// Kind tells consumers and the verifier what role an instruction plays.
type Kind string

const (
	KindExplain    Kind = "explain"    // table fact or decomposition, no bead moves
	KindPlace      Kind = "place"      // set a digit on an empty column
	KindApply      Kind = "apply"      // local add or subtract on one column
	KindCarry      Kind = "carry"      // +1 on the next higher column
	KindBorrow     Kind = "borrow"     // -1 on the next higher column
	KindCompensate Kind = "compensate" // big-friend correction after a carry or borrow
	KindFallback   Kind = "fallback"   // unverified single step
)

// Instruction is one step the learner performs.
type Instruction struct {
	Order        int        `json:"order"`
	Label        string     `json:"label"`
	Title        string     `json:"title"`
	ActionText   string     `json:"actionText"`
	DemoValue    int        `json:"demoValue"`
	TargetColumn *ColumnRef `json:"targetColumn"`
	SkipCheck    bool       `json:"skipCheck"`

	Kind    Kind     `json:"kind"`
	Actions []Action `json:"actions,omitempty"`
	Notes   []Note   `json:"notes,omitempty"`
	// PairedWith is the Order of the carry or borrow a compensate step completes.
	PairedWith int `json:"pairedWith,omitempty"`
	// Fallback says why a KindFallback step replaced the worked steps.
	Fallback FallbackKind `json:"fallback,omitempty"`
}

// FallbackKind names the reason a single unverified step was emitted.
type FallbackKind string

const (
	FallbackUnparsed    FallbackKind = "unparsed"    // text is not a two-operand problem
	FallbackAdvanced    FallbackKind = "advanced"    // multiplication outside the covered sizes
	FallbackUnsupported FallbackKind = "unsupported" // negative result, answer mismatch or overflow
)

// Checked reports whether the UI must verify the learner against DemoValue.
// A checked step may legitimately show -1 when the caller's answer is -1.
func (in Instruction) Checked() bool {
	return !in.SkipCheck
}

// Rule returns the strongest complement rule the instruction relies on.
func (in Instruction) Rule() Rule {
	r := RuleNone
	for _, n := range in.Notes {
		if n.Rule > r {
			r = n.Rule
		}
	}
	return r
}

// Sequence is the immutable, ordered result of one compile.
type Sequence struct {
	steps []Instruction
}

// Len returns the number of instructions.
func (s Sequence) Len() int { return len(s.steps) }

// At returns a copy of the i-th instruction.
func (s Sequence) At(i int) Instruction { return cloneInstruction(s.steps[i]) }

// Last returns a copy of the final instruction. The sequence is never empty
// when produced by a Compiler.
func (s Sequence) Last() Instruction { return s.At(len(s.steps) - 1) }

// Steps returns a copy of all instructions.
func (s Sequence) Steps() []Instruction {
	out := make([]Instruction, len(s.steps))
	for i, in := range s.steps {
		out[i] = cloneInstruction(in)
	}
	return out
}

// IsFallback reports whether the sequence is a single unverified step.
func (s Sequence) IsFallback() bool {
	return len(s.steps) == 1 && s.steps[0].Kind == KindFallback
}

// FallbackKind returns why the sequence fell back, or "" for worked steps.
func (s Sequence) FallbackKind() FallbackKind {
	if !s.IsFallback() {
		return ""
	}
	return s.steps[0].Fallback
}

// MarshalJSON encodes the sequence as a JSON array of instructions.
func (s Sequence) MarshalJSON() ([]byte, error) {
	if s.steps == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.steps)
}

func cloneInstruction(in Instruction) Instruction {
	in.Actions = slices.Clone(in.Actions)
	in.Notes = slices.Clone(in.Notes)
	if in.TargetColumn != nil {
		ref := *in.TargetColumn
		in.TargetColumn = &ref
	}
	return in
}

// =============================================================================
// BUILDER
// =============================================================================

// draft is an instruction under construction; its text is rendered at finish.
type draft struct {
	in   Instruction
	lead []string // explanation above the bead moves
	tail []string // trailing paragraphs such as part totals
}

// builder accumulates instructions against a private abacus so every
// DemoValue is the literal running total.
type builder struct {
	names  PlaceNames
	abacus *Abacus
	drafts []*draft
	checks int
}

func newBuilder(columns int, names PlaceNames) *builder {
	return &builder{names: names, abacus: NewAbacus(columns)}
}

// emit applies the draft's actions, stamps order, label and demo value, and
// appends it. A move the abacus rejects is a compiler defect.
func (b *builder) emit(d *draft) *draft {
	for _, act := range d.in.Actions {
		if err := b.abacus.Apply(act); err != nil {
			panic(fmt.Sprintf("soroban: compiled an impossible move %+v: %v", act, err))
		}
	}
	d.in.Order = len(b.drafts) + 1
	if d.in.SkipCheck {
		d.in.DemoValue = Unchecked
		d.in.Label = "📚"
	} else {
		b.checks++
		d.in.DemoValue = b.abacus.Value()
		d.in.Label = stepLabel(b.checks)
	}
	b.drafts = append(b.drafts, d)
	return d
}

// explain emits a skipCheck step with the given title and body lines.
func (b *builder) explain(title string, lines ...string) {
	b.emit(&draft{
		in:   Instruction{Title: title, SkipCheck: true, Kind: KindExplain},
		lead: lines,
	})
}

// last returns the most recent draft, or nil.
func (b *builder) last() *draft {
	if len(b.drafts) == 0 {
		return nil
	}
	return b.drafts[len(b.drafts)-1]
}

// finish marks the final instruction complete and renders all text.
func (b *builder) finish(done string) Sequence {
	if b.last() == nil || b.last().in.SkipCheck {
		b.emit(&draft{in: Instruction{
			Title:        fmt.Sprintf("Keep the abacus at %d", b.abacus.Value()),
			TargetColumn: columnAt(0, b.abacus.Width()),
			Kind:         KindPlace,
		}})
	}
	if done != "" {
		b.last().tail = append(b.last().tail, done)
	}

	steps := make([]Instruction, len(b.drafts))
	for i, d := range b.drafts {
		d.in.ActionText = renderText(b.names, d)
		steps[i] = d.in
	}
	return Sequence{steps: steps}
}

func stepLabel(n int) string {
	labels := []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣", "🔟"}
	if n >= 1 && n <= len(labels) {
		return labels[n-1]
	}
	return "▶️"
}

// Package soroban compiles arithmetic problems into bead-by-bead abacus
// instructions that teach the small-friend (complement of 5) and big-friend
// (complement of 10) conventions.
//
// Every call is pure: it builds its own abacus model, emits a fresh Sequence
// and shares nothing with other calls, so a Compiler is safe for concurrent
// use. Malformed or unsupported input never fails; it yields a single
// fallback instruction carrying the expected answer.
package soroban

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Op is a supported arithmetic operator.
type Op int

const (
	OpAdd Op = iota
	OpSubtract
	OpMultiply
)

func (o Op) String() string {
	switch o {
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "×"
	default:
		return "+"
	}
}

// Problem is a parsed two-operand expression.
type Problem struct {
	Left  int
	Op    Op
	Right int
}

// Result evaluates the problem.
func (p Problem) Result() int {
	switch p.Op {
	case OpSubtract:
		return p.Left - p.Right
	case OpMultiply:
		return p.Left * p.Right
	default:
		return p.Left + p.Right
	}
}

func (p Problem) String() string {
	return strconv.Itoa(p.Left) + " " + p.Op.String() + " " + strconv.Itoa(p.Right)
}

var problemPattern = regexp.MustCompile(`^(\d+)([+\-−×*xX])(\d+)$`)

// maxOperandDigits bounds what Parse accepts; wider operands cannot fit any
// supported abacus and would risk int overflow.
const maxOperandDigits = 15

// Parse reads a problem such as "12 - 5" or "23×4". All whitespace is ignored.
// Operands wider than maxOperandDigits do not parse.
func Parse(text string) (Problem, bool) {
	left, op, right, ok := split(text)
	if !ok || len(left) > maxOperandDigits || len(right) > maxOperandDigits {
		return Problem{}, false
	}
	l, err := strconv.Atoi(left)
	if err != nil {
		return Problem{}, false
	}
	r, err := strconv.Atoi(right)
	if err != nil {
		return Problem{}, false
	}
	return Problem{Left: l, Op: op, Right: r}, true
}

// split matches the problem shape and returns the operand digits as written.
// It places no bound on operand width.
func split(text string) (left string, op Op, right string, ok bool) {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)

	m := problemPattern.FindStringSubmatch(clean)
	if m == nil {
		return "", 0, "", false
	}
	switch m[2] {
	case "+":
		op = OpAdd
	case "-", "−":
		op = OpSubtract
	default:
		op = OpMultiply
	}
	return m[1], op, m[3], true
}

// Compiler turns problems into instruction sequences for one abacus layout.
type Compiler struct {
	columns int
	names   PlaceNames
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithColumns sets the abacus width. Non-positive values keep the default.
func WithColumns(n int) Option {
	return func(c *Compiler) {
		if n > 0 {
			c.columns = n
		}
	}
}

// WithPlaceNames sets the column name table used in instruction text.
func WithPlaceNames(names PlaceNames) Option {
	return func(c *Compiler) {
		if len(names) > 0 {
			c.names = names
		}
	}
}

// NewCompiler returns a Compiler for a DefaultColumns-wide abacus with
// English column names unless overridden.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{columns: DefaultColumns, names: DefaultPlaceNames}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Columns returns the configured abacus width.
func (c *Compiler) Columns() int { return c.columns }

// Generate compiles problemText for the expected answer. It never fails; see
// the package documentation for the fallback cases.
func (c *Compiler) Generate(problemText string, answer int) Sequence {
	p, ok := Parse(problemText)
	if !ok {
		return c.fallbackFor(problemText, answer)
	}
	if p.Op == OpMultiply {
		return c.compileMultiply(problemText, p, answer)
	}
	return c.compileAddSub(problemText, p, answer)
}

// fallbackFor handles text that is not a parseable problem. A well-formed
// problem whose operands are too wide for int still gets the fallback its
// operator calls for.
func (c *Compiler) fallbackFor(text string, answer int) Sequence {
	left, op, right, ok := split(text)
	switch {
	case !ok:
		return unparsedFallback(text, answer)
	case op == OpMultiply:
		return advancedFallback(text, left+" × "+right, answer)
	default:
		return unsupportedFallback(text, answer)
	}
}

// fits reports whether every value fits on the abacus.
func (c *Compiler) fits(values ...int) bool {
	for _, v := range values {
		if v < 0 || digitCount(v) > c.columns {
			return false
		}
	}
	return true
}

var defaultCompiler = NewCompiler()

// GenerateSteps compiles with the default nine-column English compiler.
func GenerateSteps(problemText string, answer int) Sequence {
	return defaultCompiler.Generate(problemText, answer)
}

// Package drill generates practice problems for a skill and classifies which
// complement technique a problem exercises.
package drill

import (
	"fmt"
	"math/rand/v2"

	"sorokid/internal/soroban"
)

// Technique is the strongest complement rule a problem needs.
type Technique string

const (
	Basic       Technique = "basic"
	SmallFriend Technique = "friend5"
	BigFriend   Technique = "friend10"
	CreateNum   Technique = "create-number"
)

// Classify compiles an addition or subtraction and reports the technique the
// resulting steps rely on. ok is false for anything the compiler falls back on.
func Classify(problem string) (Technique, bool) {
	p, ok := soroban.Parse(problem)
	if !ok || p.Op == soroban.OpMultiply {
		return Basic, false
	}
	seq := soroban.GenerateSteps(problem, p.Result())
	if seq.IsFallback() {
		return Basic, false
	}

	rule := soroban.RuleNone
	for _, in := range seq.Steps() {
		if r := in.Rule(); r > rule {
			rule = r
		}
	}
	switch rule {
	case soroban.RuleBigFriend:
		return BigFriend, true
	case soroban.RuleSmallFriend:
		return SmallFriend, true
	default:
		return Basic, true
	}
}

// Skill is a practice target.
type Skill string

const (
	BasicAdd    Skill = "basic-add"
	Friend5Add  Skill = "friend5-add"
	Friend10Add Skill = "friend10-add"
	AllAdd      Skill = "all-add"
	BasicSub    Skill = "basic-sub"
	Friend5Sub  Skill = "friend5-sub"
	Friend10Sub Skill = "friend10-sub"
	AllSub      Skill = "all-sub"
)

// Skills lists every known skill.
var Skills = []Skill{BasicAdd, Friend5Add, Friend10Add, AllAdd, BasicSub, Friend5Sub, Friend10Sub, AllSub}

// IsAddition reports whether the skill produces additions.
func (s Skill) IsAddition() bool {
	switch s {
	case BasicAdd, Friend5Add, Friend10Add, AllAdd:
		return true
	}
	return false
}

func (s Skill) valid() bool {
	for _, k := range Skills {
		if k == s {
			return true
		}
	}
	return false
}

// maxAttempts bounds the search for a problem matching a skill.
const maxAttempts = 100

// Exercise is one generated problem.
type Exercise struct {
	A         int        `json:"a" yaml:"a"`
	B         int        `json:"b" yaml:"b"`
	Op        soroban.Op `json:"-" yaml:"-"`
	Answer    int        `json:"answer" yaml:"answer"`
	Display   string     `json:"display" yaml:"display"`
	Technique Technique  `json:"technique" yaml:"technique"`
	Skill     Skill      `json:"skill,omitempty" yaml:"skill,omitempty"`
	Fallback  bool       `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// Generator draws exercises from a seeded source; equal seeds give equal
// exercises. A Generator is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a Generator seeded with seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate returns an exercise for skill with operands of the given digit
// count. When no matching problem turns up within maxAttempts the documented
// fallback problem is returned with Fallback set.
func (g *Generator) Generate(skill Skill, digits int) (Exercise, error) {
	if !skill.valid() {
		return Exercise{}, fmt.Errorf("unknown skill %q", skill)
	}
	if digits < 1 || digits > 4 {
		return Exercise{}, fmt.Errorf("digits must be in [1,4], got %d", digits)
	}

	maxNum := pow10(digits) - 1
	minNum := 1
	if digits > 1 {
		minNum = pow10(digits - 1)
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		a, b, ok := g.candidate(skill, digits, minNum, maxNum)
		if !ok {
			continue
		}
		ex := newExercise(skill, a, b)
		tech, ok := Classify(ex.Display)
		if !ok {
			continue
		}
		ex.Technique = tech
		if wants, anyTech := skillTechnique(skill); anyTech || tech == wants {
			return ex, nil
		}
	}

	if skill.IsAddition() {
		ex := newExercise(skill, 1, 1)
		ex.Technique, ex.Fallback = Basic, true
		return ex, nil
	}
	ex := newExercise(skill, 5, 2)
	ex.Technique, ex.Fallback = Basic, true
	return ex, nil
}

// Mixed picks one of skills uniformly and generates an exercise for it.
func (g *Generator) Mixed(skills []Skill, digits int) (Exercise, error) {
	if len(skills) == 0 {
		return Exercise{}, fmt.Errorf("no skills to choose from")
	}
	return g.Generate(skills[g.rng.IntN(len(skills))], digits)
}

// CreateNumber returns a "make this number" exercise.
func (g *Generator) CreateNumber(digits int) Exercise {
	if digits < 1 {
		digits = 1
	}
	minNum := 1
	if digits > 1 {
		minNum = pow10(digits - 1)
	}
	n := g.between(minNum, pow10(digits)-1)
	return Exercise{A: n, Answer: n, Display: fmt.Sprintf("Make the number %d", n), Technique: CreateNum}
}

// candidate draws operands following the shape each skill needs.
func (g *Generator) candidate(skill Skill, digits, minNum, maxNum int) (a, b int, ok bool) {
	switch skill {
	case BasicAdd:
		a = g.between(minNum, maxNum)
		b = g.between(1, min(4, maxNum))
	case Friend5Add:
		if digits == 1 {
			a = g.between(1, 4)
			b = g.between(5-a+1, 9-a)
		} else {
			a = g.between(minNum, maxNum)
			b = g.between(1, maxNum)
		}
	case Friend10Add:
		if digits == 1 {
			a = g.between(5, 9)
			b = g.between(10-a+1, 9)
		} else {
			a = g.between(minNum, maxNum)
			b = g.between(max(1, 10-a%10), maxNum)
		}
	case AllAdd:
		a = g.between(minNum, maxNum)
		b = g.between(1, maxNum)
	case BasicSub:
		a = g.between(minNum+1, maxNum)
		b = g.between(1, min(a-1, 4))
	case Friend5Sub:
		if digits == 1 {
			a = g.between(5, 9)
			b = g.between(a%5+1, a-1)
		} else {
			a = g.between(minNum, maxNum)
			b = g.between(1, a-1)
		}
	case Friend10Sub:
		if digits == 1 {
			return 0, 0, false
		}
		a = g.between(minNum+10, maxNum)
		b = g.between(a%10+1, min(a-minNum, maxNum))
	case AllSub:
		a = g.between(minNum+1, maxNum)
		b = g.between(1, a-1)
	}
	return a, b, true
}

// between returns a uniform integer in [lo, hi]; lo when the range is empty.
func (g *Generator) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rng.IntN(hi-lo+1)
}

func newExercise(skill Skill, a, b int) Exercise {
	ex := Exercise{A: a, B: b, Skill: skill}
	if skill.IsAddition() {
		ex.Op, ex.Answer = soroban.OpAdd, a+b
		ex.Display = fmt.Sprintf("%d + %d", a, b)
	} else {
		ex.Op, ex.Answer = soroban.OpSubtract, a-b
		ex.Display = fmt.Sprintf("%d - %d", a, b)
	}
	return ex
}

// skillTechnique returns the technique a skill targets; anyTech is true for the
// all-* skills, which accept whatever comes up.
func skillTechnique(s Skill) (t Technique, anyTech bool) {
	switch s {
	case BasicAdd, BasicSub:
		return Basic, false
	case Friend5Add, Friend5Sub:
		return SmallFriend, false
	case Friend10Add, Friend10Sub:
		return BigFriend, false
	default:
		return "", true
	}
}

func pow10(n int) int {
	v := 1
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}

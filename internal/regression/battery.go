// Package regression provides a YAML-defined battery of abacus problems.
// Every problem is compiled into steps and replayed by the verifier, so a
// battery run catches any change that breaks a step sequence.
package regression

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"sorokid/internal/soroban"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Expectations a problem can declare.
const (
	ExpectSteps    = "steps"
	ExpectFallback = "fallback"
)

// Battery is a collection of regression problems.
type Battery struct {
	Version  int       `yaml:"version"`
	Problems []Problem `yaml:"problems"`
}

// Problem is a single regression problem.
type Problem struct {
	ID      string `yaml:"id"`
	Problem string `yaml:"problem"`
	// Answer defaults to the parsed problem's true result.
	Answer *int   `yaml:"answer,omitempty"`
	Expect string `yaml:"expect,omitempty"` // "steps" (default) or "fallback"
	// Fallback optionally pins the fallback reason when Expect is "fallback".
	Fallback soroban.FallbackKind `yaml:"fallback,omitempty"`
}

// Result captures the outcome for one problem.
type Result struct {
	ProblemID  string               `json:"id"`
	Problem    string               `json:"problem"`
	Answer     int                  `json:"answer"`
	Success    bool                 `json:"success"`
	Steps      int                  `json:"steps"`
	Fallback   soroban.FallbackKind `json:"fallback,omitempty"`
	Error      string               `json:"error,omitempty"`
	DurationMs int64                `json:"durationMs"`
}

// Summary totals a run.
type Summary struct {
	Total      int   `json:"total"`
	Passed     int   `json:"passed"`
	Failed     int   `json:"failed"`
	Fallbacks  int   `json:"fallbacks"`
	DurationMs int64 `json:"durationMs"`
}

// Report is the outcome of one RunBattery call.
type Report struct {
	RunID   string   `json:"runId"`
	Results []Result `json:"results"`
	Summary Summary  `json:"summary"`
}

// OK reports whether every problem passed.
func (r *Report) OK() bool {
	return r != nil && r.Summary.Failed == 0 && r.Summary.Total == len(r.Results)
}

// Options configure RunBattery.
type Options struct {
	// Workers bounds concurrent problems; <= 0 means runtime.NumCPU().
	Workers  int
	Compiler *soroban.Compiler
	Logger   *zap.Logger
}

// LoadBattery reads and validates a YAML battery file from disk.
func LoadBattery(path string) (*Battery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b Battery
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse battery YAML: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid battery %s: %w", path, err)
	}
	return &b, nil
}

// Validate checks IDs are unique and expectations are known.
func (b *Battery) Validate() error {
	seen := make(map[string]bool, len(b.Problems))
	for i, p := range b.Problems {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("problem %d: missing id", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("problem %s: duplicate id", p.ID)
		}
		seen[p.ID] = true
		if strings.TrimSpace(p.Problem) == "" {
			return fmt.Errorf("problem %s: empty problem text", p.ID)
		}
		switch p.expect() {
		case ExpectSteps:
			if p.Fallback != "" {
				return fmt.Errorf("problem %s: fallback reason set on a steps expectation", p.ID)
			}
		case ExpectFallback:
		default:
			return fmt.Errorf("problem %s: unknown expect %q", p.ID, p.Expect)
		}
	}
	return nil
}

func (p Problem) expect() string {
	e := strings.ToLower(strings.TrimSpace(p.Expect))
	if e == "" {
		return ExpectSteps
	}
	return e
}

// answer returns the declared answer, or the parsed result when none is set.
func (p Problem) answer() (int, bool) {
	if p.Answer != nil {
		return *p.Answer, true
	}
	parsed, ok := soroban.Parse(p.Problem)
	if !ok {
		return 0, false
	}
	return parsed.Result(), true
}

// RunBattery compiles and verifies every problem concurrently. Results come
// back in battery order. A cancelled context stops outstanding problems and
// is returned alongside the partial report.
func RunBattery(ctx context.Context, b *Battery, opts Options) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	if b == nil || len(b.Problems) == 0 {
		return report, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	compiler := opts.Compiler
	if compiler == nil {
		compiler = soroban.NewCompiler()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("run_id", report.RunID))

	start := time.Now()
	logger.Info("Battery run started", zap.Int("problems", len(b.Problems)), zap.Int("workers", workers))

	results := make([]Result, len(b.Problems))
	done := make([]bool, len(b.Problems))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, p := range b.Problems {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			results[i] = runProblem(compiler, p)
			done[i] = true
			if !results[i].Success {
				logger.Warn("Battery problem failed",
					zap.String("id", p.ID),
					zap.String("problem", p.Problem),
					zap.String("error", results[i].Error))
			}
			return nil
		})
	}
	err := eg.Wait()
	if err == nil {
		err = ctx.Err()
	}

	for i, ok := range done {
		if ok {
			report.Results = append(report.Results, results[i])
		}
	}
	report.Summary = summarize(report.Results, len(b.Problems))
	report.Summary.DurationMs = time.Since(start).Milliseconds()

	logger.Info("Battery run finished",
		zap.Int("passed", report.Summary.Passed),
		zap.Int("failed", report.Summary.Failed),
		zap.Int("fallbacks", report.Summary.Fallbacks),
		zap.Int64("duration_ms", report.Summary.DurationMs))
	return report, err
}

func runProblem(c *soroban.Compiler, p Problem) Result {
	start := time.Now()
	res := Result{ProblemID: p.ID, Problem: p.Problem}

	answer, ok := p.answer()
	if !ok {
		res.Error = "no answer given and the problem does not parse"
		return finish(res, start)
	}
	res.Answer = answer

	seq := c.Generate(p.Problem, answer)
	res.Steps = seq.Len()
	res.Fallback = seq.FallbackKind()

	if err := c.Verify(seq, answer); err != nil {
		res.Error = err.Error()
		return finish(res, start)
	}

	switch p.expect() {
	case ExpectSteps:
		if seq.IsFallback() {
			res.Error = fmt.Sprintf("expected worked steps, got %s fallback", res.Fallback)
			return finish(res, start)
		}
	case ExpectFallback:
		if !seq.IsFallback() {
			res.Error = fmt.Sprintf("expected a fallback, got %d steps", res.Steps)
			return finish(res, start)
		}
		if p.Fallback != "" && p.Fallback != res.Fallback {
			res.Error = fmt.Sprintf("expected %s fallback, got %s", p.Fallback, res.Fallback)
			return finish(res, start)
		}
	}
	res.Success = true
	return finish(res, start)
}

func finish(res Result, start time.Time) Result {
	res.DurationMs = time.Since(start).Milliseconds()
	return res
}

func summarize(results []Result, total int) Summary {
	s := Summary{Total: total}
	for _, r := range results {
		if r.Success {
			s.Passed++
		} else {
			s.Failed++
		}
		if r.Fallback != "" {
			s.Fallbacks++
		}
	}
	return s
}

// DefaultBatteryPath returns the canonical battery path for a workspace.
func DefaultBatteryPath(workspace string) string {
	return filepath.Join(workspace, ".sorokid", "battery.yaml")
}

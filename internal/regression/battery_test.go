package regression

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"sorokid/internal/soroban"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func intp(n int) *int { return &n }

func TestLoadBattery(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "battery.yaml")
	content := `version: 1
problems:
  - id: small-friend
    problem: "4 + 1"
    answer: 5
  - id: chain
    problem: "95 + 7"
  - id: big-product
    problem: "1234 × 5"
    answer: 6170
    expect: fallback
    fallback: advanced
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	b, err := LoadBattery(path)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Version)
	require.Len(t, b.Problems, 3)
	assert.Equal(t, "small-friend", b.Problems[0].ID)
	assert.Equal(t, 5, *b.Problems[0].Answer)
	assert.Nil(t, b.Problems[1].Answer)
	assert.Equal(t, soroban.FallbackAdvanced, b.Problems[2].Fallback)
}

func TestLoadBatteryRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"duplicate id", "problems:\n  - {id: a, problem: 1+1}\n  - {id: a, problem: 2+2}\n", "duplicate id"},
		{"missing id", "problems:\n  - {problem: 1+1}\n", "missing id"},
		{"empty problem", "problems:\n  - {id: a, problem: \" \"}\n", "empty problem"},
		{"unknown expect", "problems:\n  - {id: a, problem: 1+1, expect: maybe}\n", "unknown expect"},
		{"reason without fallback", "problems:\n  - {id: a, problem: 1+1, fallback: advanced}\n", "steps expectation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "battery.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := LoadBattery(path)
			assert.ErrorContains(t, err, tt.want)
		})
	}

	_, err := LoadBattery(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunBatterySuccess(t *testing.T) {
	b := &Battery{
		Version: 1,
		Problems: []Problem{
			{ID: "basic", Problem: "1 + 2", Answer: intp(3)},
			{ID: "friend10", Problem: "7 + 5"},
			{ID: "borrow-chain", Problem: "100 - 1"},
			{ID: "two-by-one", Problem: "23 × 4", Answer: intp(92)},
			{ID: "multi", Problem: "23 × 13"},
			{ID: "junk", Problem: "abc", Answer: intp(0), Expect: ExpectFallback, Fallback: soroban.FallbackUnparsed},
			{ID: "negative", Problem: "3 - 8", Expect: ExpectFallback},
		},
	}

	report, err := RunBattery(context.Background(), b, Options{Workers: 3})
	require.NoError(t, err)
	require.True(t, report.OK(), "%+v", report.Results)

	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err)

	require.Len(t, report.Results, len(b.Problems))
	for i, r := range report.Results {
		assert.Equal(t, b.Problems[i].ID, r.ProblemID, "results keep battery order")
	}
	assert.Equal(t, 99, report.Results[2].Answer, "answer defaults to the parsed result")
	assert.Equal(t, Summary{Total: 7, Passed: 7, Fallbacks: 2, DurationMs: report.Summary.DurationMs}, report.Summary)
}

func TestRunBatteryFailures(t *testing.T) {
	b := &Battery{Problems: []Problem{
		{ID: "wrong-answer", Problem: "7 + 5", Answer: intp(13)},
		{ID: "not-a-fallback", Problem: "1 + 1", Expect: ExpectFallback},
		{ID: "wrong-reason", Problem: "3 - 8", Expect: ExpectFallback, Fallback: soroban.FallbackAdvanced},
		{ID: "unparseable", Problem: "two plus two"},
		{ID: "fine", Problem: "2 + 2"},
	}}

	core, logs := observer.New(zap.WarnLevel)
	report, err := RunBattery(context.Background(), b, Options{Workers: 2, Logger: zap.New(core)})
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Equal(t, 4, report.Summary.Failed)
	assert.Equal(t, 1, report.Summary.Passed)

	assert.Contains(t, report.Results[0].Error, "expected worked steps")
	assert.Contains(t, report.Results[1].Error, "expected a fallback")
	assert.Contains(t, report.Results[2].Error, "expected advanced fallback, got unsupported")
	assert.Contains(t, report.Results[3].Error, "does not parse")
	assert.True(t, report.Results[4].Success)

	assert.Equal(t, 4, logs.FilterMessage("Battery problem failed").Len())
	for _, entry := range logs.All() {
		assert.Equal(t, report.RunID, entry.ContextMap()["run_id"])
	}
}

func TestRunBatteryCustomCompiler(t *testing.T) {
	b := &Battery{Problems: []Problem{
		{ID: "overflow", Problem: "999 + 1", Expect: ExpectFallback, Fallback: soroban.FallbackUnsupported},
	}}
	report, err := RunBattery(context.Background(), b, Options{Compiler: soroban.NewCompiler(soroban.WithColumns(3))})
	require.NoError(t, err)
	assert.True(t, report.OK())
}

func TestRunBatteryCancelled(t *testing.T) {
	b := &Battery{}
	for i := 0; i < 50; i++ {
		b.Problems = append(b.Problems, Problem{ID: uuid.NewString(), Problem: "12 + 9"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := RunBattery(ctx, b, Options{Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, report.OK())
	assert.Less(t, len(report.Results), len(b.Problems))
}

func TestRunBatteryEmpty(t *testing.T) {
	report, err := RunBattery(context.Background(), nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, report.Results)
	assert.NotEmpty(t, report.RunID)
}

func TestDefaultBatteryPath(t *testing.T) {
	assert.Equal(t, filepath.Join("ws", ".sorokid", "battery.yaml"), DefaultBatteryPath("ws"))
}

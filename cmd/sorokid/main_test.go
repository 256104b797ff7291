package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sorokid/internal/config"
	"sorokid/internal/logging"
	"sorokid/internal/regression"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// setup installs default globals the way PersistentPreRunE would.
func setup(t *testing.T) {
	t.Helper()
	cfg = config.DefaultConfig()
	logs = logging.Nop()
	logger = zap.NewNop()
	jsonOutput = false
	t.Cleanup(func() { jsonOutput = false })
}

func answerCmd(t *testing.T, target *int, value string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.Flags().IntVarP(target, "answer", "a", 0, "")
	if value != "" {
		if err := cmd.Flags().Set("answer", value); err != nil {
			t.Fatalf("set answer: %v", err)
		}
	}
	return cmd
}

func TestJoinArgs(t *testing.T) {
	if got := joinArgs([]string{"7", "+", "5"}); got != "7 + 5" {
		t.Fatalf("expected '7 + 5', got '%s'", got)
	}
}

func TestRunSteps(t *testing.T) {
	setup(t)

	output := captureOutput(t, func() {
		if err := runSteps(&cobra.Command{}, []string{"7", "+", "5"}); err != nil {
			t.Fatalf("runSteps returned error: %v", err)
		}
	})

	for _, want := range []string{"Set the number 7", "Carry 1 to the Tens", "Big friend", "✅ 7 + 5 = 12"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestRunStepsJSON(t *testing.T) {
	setup(t)
	jsonOutput = true

	output := captureOutput(t, func() {
		if err := runSteps(&cobra.Command{}, []string{"23x4"}); err != nil {
			t.Fatalf("runSteps returned error: %v", err)
		}
	})

	var steps []map[string]any
	if err := json.Unmarshal([]byte(output), &steps); err != nil {
		t.Fatalf("output is not a JSON array: %v\n%s", err, output)
	}
	if len(steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(steps))
	}
	if steps[0]["demoValue"] != float64(-1) {
		t.Fatalf("explanatory step should carry demoValue -1, got %v", steps[0]["demoValue"])
	}
	if steps[3]["demoValue"] != float64(92) {
		t.Fatalf("last demoValue should be 92, got %v", steps[3]["demoValue"])
	}
}

func TestRunStepsAnswerFlag(t *testing.T) {
	setup(t)

	output := captureOutput(t, func() {
		if err := runSteps(answerCmd(t, &stepsAnswer, "13"), []string{"7 + 5"}); err != nil {
			t.Fatalf("runSteps returned error: %v", err)
		}
	})
	if !strings.Contains(output, "unsupported") {
		t.Fatalf("a wrong answer should produce the unsupported fallback, got: %s", output)
	}

	if err := runSteps(&cobra.Command{}, []string{"seven plus five"}); err == nil {
		t.Fatal("expected an error when the answer cannot be inferred")
	}
}

func TestRunVerify(t *testing.T) {
	setup(t)

	output := captureOutput(t, func() {
		if err := runVerify(&cobra.Command{}, []string{"100 - 1"}); err != nil {
			t.Fatalf("runVerify returned error: %v", err)
		}
		if err := runVerify(answerCmd(t, &verifyAnswer, "6170"), []string{"1234 × 5"}); err != nil {
			t.Fatalf("runVerify returned error on fallback: %v", err)
		}
	})

	if !strings.Contains(output, "4 steps verified, abacus shows 99") {
		t.Fatalf("expected verification message, got: %s", output)
	}
	if !strings.Contains(output, "advanced fallback") {
		t.Fatalf("expected fallback notice, got: %s", output)
	}
}

func TestRunClassify(t *testing.T) {
	setup(t)

	output := captureOutput(t, func() {
		for _, p := range []string{"4 + 1", "12 - 5", "23 × 13", "3 - 8"} {
			if err := runClassify(&cobra.Command{}, []string{p}); err != nil {
				t.Fatalf("runClassify(%s) returned error: %v", p, err)
			}
		}
	})

	for _, want := range []string{"4 + 1: friend5", "12 - 5: friend10", "23 × 13: multi-digit multiplication", "3 - 8: unsupported"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in output, got: %s", want, output)
		}
	}

	if err := runClassify(&cobra.Command{}, []string{"8 ÷ 2"}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRunDrill(t *testing.T) {
	setup(t)
	drillSkill, drillZone, drillCount, drillSeed, drillDigits = "friend10-add", "", 3, 42, 1
	t.Cleanup(func() { drillSkill, drillCount, drillSeed = "", 5, 0 })
	jsonOutput = true

	run := func() string {
		return captureOutput(t, func() {
			if err := runDrill(&cobra.Command{}, nil); err != nil {
				t.Fatalf("runDrill returned error: %v", err)
			}
		})
	}
	first, second := run(), run()
	if first != second {
		t.Fatalf("same seed should give the same drill:\n%s\n%s", first, second)
	}

	var out struct {
		Seed      uint64 `json:"seed"`
		Exercises []struct {
			Technique string `json:"technique"`
		} `json:"exercises"`
	}
	if err := json.Unmarshal([]byte(first), &out); err != nil {
		t.Fatalf("bad JSON: %v\n%s", err, first)
	}
	if out.Seed != 42 || len(out.Exercises) != 3 {
		t.Fatalf("unexpected drill: %+v", out)
	}
	for _, ex := range out.Exercises {
		if ex.Technique != "friend10" {
			t.Fatalf("expected friend10 problems, got %s", ex.Technique)
		}
	}
}

func TestRunDrillZone(t *testing.T) {
	setup(t)
	drillSkill, drillZone, drillCount, drillSeed, drillDigits = "", "village", 2, 7, 0
	t.Cleanup(func() { drillZone, drillCount, drillSeed = "", 5, 0 })

	output := captureOutput(t, func() {
		if err := runDrill(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runDrill returned error: %v", err)
		}
	})
	if !strings.Contains(output, "Make the number") {
		t.Fatalf("village zone should practice number creation, got: %s", output)
	}

	drillSkill, drillZone = "juggling", ""
	if err := runDrill(&cobra.Command{}, nil); err == nil {
		t.Fatal("expected unknown skill error")
	}
	drillSkill = ""
}

func writeBattery(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "battery.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write battery: %v", err)
	}
	return path
}

func TestRunBattery(t *testing.T) {
	setup(t)
	batteryWatch, batteryWorkers = false, 2

	path := writeBattery(t, `version: 1
problems:
  - id: carry
    problem: "7 + 5"
  - id: chain
    problem: "95 + 7"
  - id: advanced
    problem: "1234 x 5"
    expect: fallback
    fallback: advanced
`)
	output := captureOutput(t, func() {
		if err := runBattery(&cobra.Command{}, []string{path}); err != nil {
			t.Fatalf("runBattery returned error: %v", err)
		}
	})
	if !strings.Contains(output, "3/3 passed") {
		t.Fatalf("expected all problems to pass, got: %s", output)
	}

	bad := writeBattery(t, "problems:\n  - {id: wrong, problem: \"7 + 5\", answer: 13}\n")
	var err error
	captureOutput(t, func() { err = runBattery(&cobra.Command{}, []string{bad}) })
	if err == nil || !strings.Contains(err.Error(), "1 of 1 problems failed") {
		t.Fatalf("expected failure error, got %v", err)
	}
}

func TestWatchBatteryRunsUntilCancelled(t *testing.T) {
	setup(t)
	cfg.Battery.Debounce = "20ms"

	path := writeBattery(t, "problems:\n  - {id: a, problem: \"4 + 1\"}\n")
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)

	if err := watchBattery(ctx, cmd, path, regression.Options{Compiler: cfg.Compiler()}); err != nil {
		t.Fatalf("watchBattery returned error: %v", err)
	}
	if !strings.Contains(out.String(), "1/1 passed") {
		t.Fatalf("expected an initial run, got: %s", out.String())
	}
}

func TestRootCommandVersion(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version", "--config", filepath.Join(t.TempDir(), "none.yaml")})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		configPath = ""
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out.String(), "sorokid dev") {
		t.Fatalf("unexpected version output: %s", out.String())
	}
	if cfg == nil || cfg.Abacus.Columns != 9 {
		t.Fatalf("config was not loaded by the root command")
	}
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	origErr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, rOut)
		_, _ = io.Copy(&buf, rErr)
		done <- buf.String()
	}()

	fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = origOut
	os.Stderr = origErr
	return <-done
}

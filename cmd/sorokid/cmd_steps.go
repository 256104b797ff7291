package main

import (
	"fmt"

	"sorokid/internal/drill"
	"sorokid/internal/soroban"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	stepsAnswer  int
	verifyAnswer int
)

// stepsCmd prints the bead-by-bead instructions for a problem
var stepsCmd = &cobra.Command{
	Use:   "steps [problem]",
	Short: "Show the soroban steps for a problem",
	Long: `Compiles an addition, subtraction or multiplication into soroban steps.

Examples:
  sorokid steps "7 + 5"
  sorokid steps 23x4
  sorokid steps "95 + 7" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSteps,
}

// verifyCmd compiles and replays a problem
var verifyCmd = &cobra.Command{
	Use:   "verify [problem]",
	Short: "Compile a problem and replay its steps on a fresh abacus",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runVerify,
}

// classifyCmd names the technique a problem exercises
var classifyCmd = &cobra.Command{
	Use:   "classify [problem]",
	Short: "Name the complement technique or multiplication strategy a problem needs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClassify,
}

// resolveAnswer returns the --answer flag when set, else the problem's true
// result.
func resolveAnswer(cmd *cobra.Command, value int, problem string) (int, error) {
	if f := cmd.Flags().Lookup("answer"); f != nil && f.Changed {
		return value, nil
	}
	p, ok := soroban.Parse(problem)
	if !ok {
		return 0, fmt.Errorf("cannot work out the answer to %q; pass --answer", problem)
	}
	return p.Result(), nil
}

func runSteps(cmd *cobra.Command, args []string) error {
	problem := joinArgs(args)
	answer, err := resolveAnswer(cmd, stepsAnswer, problem)
	if err != nil {
		return err
	}

	seq := cfg.Compiler().Generate(problem, answer)
	logger.Debug("Compiled problem",
		zap.String("problem", problem),
		zap.Int("answer", answer),
		zap.Int("steps", seq.Len()),
		zap.String("fallback", string(seq.FallbackKind())))

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), seq)
	}
	fmt.Fprint(cmd.OutOrStdout(), renderSequence(problem, seq))
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	problem := joinArgs(args)
	answer, err := resolveAnswer(cmd, verifyAnswer, problem)
	if err != nil {
		return err
	}

	c := cfg.Compiler()
	seq := c.Generate(problem, answer)
	if err := c.Verify(seq, answer); err != nil {
		logger.Warn("Verification failed", zap.String("problem", problem), zap.Error(err))
		return fmt.Errorf("%s: %w", problem, err)
	}

	out := cmd.OutOrStdout()
	if seq.IsFallback() {
		fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("%s: %s fallback, result %d (not replayed)", problem, seq.FallbackKind(), answer)))
		return nil
	}
	fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("%s: %d steps verified, abacus shows %d", problem, seq.Len(), answer)))
	return nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	problem := joinArgs(args)
	p, ok := soroban.Parse(problem)
	if !ok {
		return fmt.Errorf("cannot parse %q", problem)
	}

	result := map[string]string{"problem": problem}
	if p.Op == soroban.OpMultiply {
		result["strategy"] = soroban.ClassifyMultiplication(p).Name()
	} else if tech, ok := drill.Classify(problem); ok {
		result["technique"] = string(tech)
	} else {
		result["technique"] = "unsupported"
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	if s, ok := result["strategy"]; ok {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s multiplication\n", problem, s)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", problem, result["technique"])
	return nil
}

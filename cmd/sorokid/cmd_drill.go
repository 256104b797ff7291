package main

import (
	"fmt"
	"time"

	"sorokid/internal/drill"
	"sorokid/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	drillSkill  string
	drillZone   string
	drillCount  int
	drillSeed   uint64
	drillDigits int
)

// drillCmd prints practice problems
var drillCmd = &cobra.Command{
	Use:   "drill",
	Short: "Generate practice problems for a skill or zone",
	Long: `Generates practice problems that exercise a chosen technique.

Skills: basic-add, friend5-add, friend10-add, all-add,
        basic-sub, friend5-sub, friend10-sub, all-sub
Zones:  village, forest, valley, mountain, cave, castle (configurable)

Examples:
  sorokid drill --skill friend10-add --count 10
  sorokid drill --zone castle --seed 42`,
	Args: cobra.NoArgs,
	RunE: runDrill,
}

func runDrill(cmd *cobra.Command, args []string) error {
	if drillCount < 1 {
		return fmt.Errorf("--count must be at least 1")
	}
	dlog := logs.Get(logging.CategoryDrill)

	seed := drillSeed
	if seed == 0 {
		seed = cfg.Drill.Seed
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	gen := drill.NewGenerator(seed)

	next, err := drillSource(gen)
	if err != nil {
		return err
	}

	exercises := make([]drill.Exercise, 0, drillCount)
	for i := 0; i < drillCount; i++ {
		ex, err := next()
		if err != nil {
			return err
		}
		if ex.Fallback {
			dlog.Debug("No matching problem found, using fallback", zap.String("skill", string(ex.Skill)))
		}
		exercises = append(exercises, ex)
	}
	dlog.Debug("Generated drill", zap.Uint64("seed", seed), zap.Int("count", len(exercises)))

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), map[string]any{"seed": seed, "exercises": exercises})
	}
	out := cmd.OutOrStdout()
	for i, ex := range exercises {
		fmt.Fprintln(out, renderExercise(i, ex))
	}
	fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("seed %d", seed)))
	return nil
}

// drillSource picks the generator call for the --skill or --zone flags.
func drillSource(gen *drill.Generator) (func() (drill.Exercise, error), error) {
	digits := drillDigits
	if digits == 0 {
		digits = cfg.Drill.Digits
	}

	if drillSkill != "" {
		skill := drill.Skill(drillSkill)
		return func() (drill.Exercise, error) { return gen.Generate(skill, digits) }, nil
	}

	cur, err := cfg.Curriculum()
	if err != nil {
		return nil, err
	}
	id := drillZone
	if id == "" {
		id = drill.DefaultZoneID
	}
	zone := cur.ZoneFor(id)
	if drillDigits != 0 {
		zone.Digits = drillDigits
	}
	return func() (drill.Exercise, error) { return gen.ForZone(zone) }, nil
}

package main

import (
	"fmt"
	"os"
	"strings"

	"sorokid/internal/config"
	"sorokid/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	// Global flags
	verbose    bool
	configPath string
	jsonOutput bool

	cfg    *config.Config
	logs   *logging.Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sorokid",
	Short: "Soroban step-by-step guide",
	Long: `sorokid turns arithmetic problems into bead-by-bead soroban instructions.

Each step says which beads to move, which small-friend (complement of 5) or
big-friend (complement of 10) rule it uses, and the value the abacus must
show afterwards. Every sequence can be replayed and verified.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultConfigPath()
		}
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", path, err)
		}
		cfg = loaded

		logs, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = logs.Get(logging.CategoryCLI)
		logger.Debug("Config loaded", zap.String("path", path), zap.Int("columns", cfg.Abacus.Columns))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logs.Close()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sorokid version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sorokid %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: .sorokid/config.yaml in the workspace)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of styled text")

	stepsCmd.Flags().IntVarP(&stepsAnswer, "answer", "a", 0, "Expected answer (default: the computed result)")
	verifyCmd.Flags().IntVarP(&verifyAnswer, "answer", "a", 0, "Expected answer (default: the computed result)")

	drillCmd.Flags().StringVar(&drillSkill, "skill", "", "Skill to practice (see --help)")
	drillCmd.Flags().StringVar(&drillZone, "zone", "", "Zone whose skills to practice")
	drillCmd.Flags().IntVarP(&drillCount, "count", "n", 5, "Number of problems")
	drillCmd.Flags().Uint64Var(&drillSeed, "seed", 0, "PRNG seed (default: config, then clock)")
	drillCmd.Flags().IntVar(&drillDigits, "digits", 0, "Operand digits (default: zone or config)")
	drillCmd.MarkFlagsMutuallyExclusive("skill", "zone")

	batteryCmd.Flags().IntVar(&batteryWorkers, "workers", 0, "Concurrent problems (default: config, then one per CPU)")
	batteryCmd.Flags().BoolVarP(&batteryWatch, "watch", "w", false, "Re-run whenever the battery file changes")

	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(drillCmd)
	rootCmd.AddCommand(batteryCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// joinArgs lets problems be passed quoted or as separate words.
func joinArgs(args []string) string {
	return strings.Join(args, " ")
}

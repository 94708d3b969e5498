package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"supplier-matching/internal/common/config"
	"supplier-matching/internal/matching"
)

var (
	// Version info set from main
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"

	// Global flags
	configPath string
	outputFmt  string
)

// SetVersionInfo sets version information from build flags
func SetVersionInfo(v, c, b string) {
	version = v
	commit = c
	buildTime = b
}

// NewRootCmd builds the command tree. Tests get a fresh tree per run.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "matchctl",
		Short: "Offline supplier matching for Bell24h RFQs",
		Long: `matchctl runs the supplier matching engine against JSON fixtures.

It provides:
  - score: rank a supplier pool for one RFQ
  - explain: break one supplier's score into weighted factors
  - validate-feedback: check a feedback payload before it is submitted`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file supplying matching weights and thresholds (default: built-in defaults)")
	root.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table",
		"output format (table, json)")

	root.AddCommand(newScoreCmd())
	root.AddCommand(newExplainCmd())
	root.AddCommand(newValidateFeedbackCmd())
	root.AddCommand(versionCmd)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "matchctl %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", buildTime)
	},
}

// newEngine builds the engine from --config, or from defaults when unset.
func newEngine() (*matching.Engine, error) {
	if configPath == "" {
		return matching.NewEngine(matching.DefaultOptions()), nil
	}

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return nil, err
	}
	return matching.NewEngine(matching.Options{
		Threshold:       cfg.Matching.Threshold,
		ExplanationTopN: cfg.Matching.ExplanationTopN,
		RankingLimit:    cfg.Matching.RankingLimit,
		Weights:         cfg.Matching.Weights,
	}), nil
}

func readJSON(path string, dest interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

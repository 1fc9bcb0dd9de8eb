package commands

import (
	"painburden/internal/config"
	"painburden/internal/logging"
	"painburden/internal/mcp"
	"painburden/internal/simulation"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose      bool
	scenarioPath string
	cfg          *config.AppConfig

	engine *simulation.Engine
)

var rootCmd = &cobra.Command{
	Use:   "painburden",
	Short: "Painburden estimates the global burden of cluster headache pain",
	Long: `A Monte-Carlo model of one year of cluster headache attacks across the world's
affected adults. It aggregates minutes in pain per intensity, re-weights them with a
configurable intensity transformation and compares the result with another painful
condition. Without a subcommand it serves the model as an MCP server over stdio.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load(scenarioPath)
		if err != nil {
			return err
		}

		engine, err = simulation.NewEngine(cfg.Simulation, cfg.Workers)
		if err != nil {
			return err
		}

		log.Debug().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("scenario", cfg.ScenarioFile).
			Msg("Painburden starting")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcp.NewServer(cfg, engine, Version).Run(cmd.Context())
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&scenarioPath, "config", "c", "", "YAML scenario file (overrides SCENARIO_FILE)")
}

package commands

import (
	"fmt"

	"tollcalc/internal/config"
	"tollcalc/internal/logging"
	"tollcalc/internal/toll"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	format  string

	cfg      *config.AppConfig
	schedule toll.Schedule
)

var rootCmd = &cobra.Command{
	Use:   "tollcalc",
	Short: "tollcalc derives matrices, counts and toll rates from traffic datasets",
	Long: `Computes derived tables from tabular traffic and toll datasets: id-by-id matrices,
category counts, threshold filters, symmetric distance matrices and flat or time-based
toll rates. Every analysis is also available as an MCP tool via 'tollcalc serve'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Init(verbose); err != nil {
			log.Warn().Err(err).Msg("File logging disabled")
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		schedule, err = config.LoadSchedule(cfg.ScheduleFile)
		if err != nil {
			return fmt.Errorf("failed to load rate schedule: %w", err)
		}

		log.Debug().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("dataPath", cfg.DataPath).
			Msg("tollcalc starting")
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "json", "output format for tables: json or csv")

	rootCmd.AddCommand(analysisCommands()...)
	rootCmd.AddCommand(reportCmd, serveCmd, versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tollcalc %s (commit %s, built %s)\n", Version, Commit, BuildDate)
	},
}

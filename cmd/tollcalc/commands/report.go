package commands

import (
	"fmt"

	"tollcalc/internal/report"
	"tollcalc/internal/table"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	countsPath    string
	intervalsPath string
	edgesPath     string
	tripsPath     string
	reportRef     int64
	openReport    bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run every analysis over the given datasets and write a JSON, Markdown and HTML report",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := report.Inputs{ReferenceID: reportRef}
		if !cmd.Flags().Changed("reference") {
			in.ReferenceID = cfg.ReferenceID
		}

		for _, src := range []struct {
			path string
			dst  **table.Relation
		}{
			{countsPath, &in.Counts},
			{intervalsPath, &in.Intervals},
			{edgesPath, &in.Edges},
			{tripsPath, &in.Trips},
		} {
			if src.path == "" {
				continue
			}
			rel, err := table.Load(cfg.ResolvePath(src.path), cfg.XLSXSheet)
			if err != nil {
				return err
			}
			*src.dst = rel
		}
		if in.Counts == nil && in.Intervals == nil && in.Edges == nil && in.Trips == nil {
			return fmt.Errorf("at least one of --counts, --intervals, --edges or --trips is required")
		}

		r, err := report.Build(cmd.Context(), in, schedule)
		if err != nil {
			return err
		}
		paths, err := report.Write(cfg.ReportDir, r)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Report %s\n", r.ID)
		fmt.Fprintf(out, "  %s\n  %s\n  %s\n", paths.JSON, paths.Markdown, paths.HTML)

		if openReport {
			if err := report.Open(paths); err != nil {
				log.Warn().Err(err).Str("file", paths.HTML).Msg("Could not open report in browser")
			}
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&countsPath, "counts", "", "vehicle counts dataset (id_1, id_2, route, vehicle columns)")
	reportCmd.Flags().StringVar(&intervalsPath, "intervals", "", "observation intervals dataset (id, id_2, startDay, startTime, endDay, endTime)")
	reportCmd.Flags().StringVar(&edgesPath, "edges", "", "toll edges dataset (id_start, id_end, distance)")
	reportCmd.Flags().StringVar(&tripsPath, "trips", "", "trip dataset for time-based rates (id_start, id_end, distance, start_day, start_time, end_day, end_time)")
	reportCmd.Flags().Int64Var(&reportRef, "reference", 0, "reference id for the threshold search (defaults to REFERENCE_ID)")
	reportCmd.Flags().BoolVar(&openReport, "open", false, "open the HTML report in the default browser")
}

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"tollcalc/internal/matrix"
	"tollcalc/internal/table"
	"tollcalc/internal/toll"
	"tollcalc/internal/traffic"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var referenceID int64

// analysis is a single-file subcommand: load the dataset, compute, print.
type analysis struct {
	use   string
	short string
	run   func(rel *table.Relation) (any, error)
}

func analysisCommands() []*cobra.Command {
	defs := []analysis{
		{"car-matrix <counts>", "Pivot car counts into an id_1 x id_2 matrix", func(rel *table.Relation) (any, error) {
			return traffic.GenerateCarMatrix(rel)
		}},
		{"type-count <counts>", "Count rows per car traffic category", func(rel *table.Relation) (any, error) {
			counts, err := traffic.GetTypeCount(rel)
			if err != nil {
				return nil, err
			}
			return traffic.CountsByCategory(counts), nil
		}},
		{"bus-indexes <counts>", "List rows whose bus count exceeds twice the mean", func(rel *table.Relation) (any, error) {
			return traffic.GetBusIndexes(rel)
		}},
		{"routes <counts>", "List routes whose mean truck count exceeds 7", func(rel *table.Relation) (any, error) {
			return traffic.FilterRoutes(rel)
		}},
		{"multiply-matrix <counts>", "Scale the car matrix by the count-dependent factor", func(rel *table.Relation) (any, error) {
			m, err := traffic.GenerateCarMatrix(rel)
			if err != nil {
				return nil, err
			}
			return traffic.MultiplyMatrix(m), nil
		}},
		{"time-check <intervals>", "Report whether each id pair covers a full week", func(rel *table.Relation) (any, error) {
			return traffic.TimeCheck(rel)
		}},
		{"distance-matrix <edges>", "Build the symmetric distance matrix from toll edges", func(rel *table.Relation) (any, error) {
			return toll.CalculateDistanceMatrix(rel)
		}},
		{"unroll <edges>", "Flatten the distance matrix into start/end/distance rows", func(rel *table.Relation) (any, error) {
			return unroll(rel)
		}},
		{"within-threshold <edges>", "List ids whose average distance is within 10% of the reference", func(rel *table.Relation) (any, error) {
			unrolled, err := unroll(rel)
			if err != nil {
				return nil, err
			}
			return toll.FindIDsWithinTenPercentageThreshold(unrolled, referenceID)
		}},
		{"toll-rate <edges>", "Add per-vehicle toll columns to the unrolled distances", func(rel *table.Relation) (any, error) {
			unrolled, err := unroll(rel)
			if err != nil {
				return nil, err
			}
			return toll.CalculateTollRate(unrolled, schedule)
		}},
		{"time-based-toll-rate <trips>", "Apply weekday bands and weekend discount to trip toll rates", func(rel *table.Relation) (any, error) {
			flat, err := toll.CalculateTollRate(rel, schedule)
			if err != nil {
				return nil, err
			}
			return toll.CalculateTimeBasedTollRates(flat, schedule)
		}},
	}

	cmds := make([]*cobra.Command, 0, len(defs))
	for _, d := range defs {
		cmd := &cobra.Command{
			Use:   d.use,
			Short: d.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if cmd.Flags().Lookup("reference") != nil && !cmd.Flags().Changed("reference") {
					referenceID = cfg.ReferenceID
				}

				rel, err := table.Load(cfg.ResolvePath(args[0]), cfg.XLSXSheet)
				if err != nil {
					return err
				}
				log.Debug().Str("command", cmd.Name()).Int("rows", rel.Len()).Msg("Dataset loaded")

				out, err := d.run(rel)
				if err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), out)
			},
		}
		if cmd.Name() == "within-threshold" {
			cmd.Flags().Int64Var(&referenceID, "reference", 0, "reference id (defaults to REFERENCE_ID)")
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

func unroll(rel *table.Relation) (*table.Relation, error) {
	m, err := toll.CalculateDistanceMatrix(rel)
	if err != nil {
		return nil, err
	}
	return toll.UnrollDistanceMatrix(m), nil
}

// emit prints v in the selected format. CSV is only available for tables and matrices.
func emit(w io.Writer, v any) error {
	switch format {
	case "json":
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "csv":
		switch t := v.(type) {
		case *table.Relation:
			return t.WriteCSV(w)
		case *matrix.Matrix:
			return matrixRelation(t).WriteCSV(w)
		default:
			return fmt.Errorf("csv output is not supported for %T", v)
		}
	default:
		return fmt.Errorf("unknown format %q (want json or csv)", format)
	}
}

// matrixRelation lays a matrix out as a table with one row per row key.
func matrixRelation(m *matrix.Matrix) *table.Relation {
	colKeys := m.ColKeys()
	cols := make([]string, 0, len(colKeys)+1)
	cols = append(cols, "id")
	for _, k := range colKeys {
		cols = append(cols, strconv.FormatInt(k, 10))
	}

	rel := table.New(cols...)
	for i, row := range m.Dense() {
		cells := make([]any, 0, len(cols))
		cells = append(cells, m.RowKeys()[i])
		for _, v := range row {
			if math.IsNaN(v) {
				cells = append(cells, nil)
				continue
			}
			cells = append(cells, v)
		}
		rel.Append(cells...)
	}
	return rel
}

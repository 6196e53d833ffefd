package mcp

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// PathArgs names a single dataset file.
type PathArgs struct {
	Path string `json:"path" jsonschema:"Path to a .csv or .xlsx dataset (relative paths resolve against DATA_PATH)"`
}

// ThresholdArgs selects ids whose distances lie near a reference id.
type ThresholdArgs struct {
	Path        string `json:"path" jsonschema:"Path to the toll edge dataset (id_start, id_end, distance)"`
	ReferenceID *int64 `json:"reference_id,omitempty" jsonschema:"Reference id_start; defaults to REFERENCE_ID"`
}

// ReportArgs lists the datasets a report is built from. Every path is optional.
type ReportArgs struct {
	CountsPath    string `json:"counts_path,omitempty" jsonschema:"Vehicle count dataset (id_1, id_2, route, car, bus, truck)"`
	IntervalsPath string `json:"intervals_path,omitempty" jsonschema:"Interval dataset (id, id_2, startDay, startTime, endDay, endTime)"`
	EdgesPath     string `json:"edges_path,omitempty" jsonschema:"Toll edge dataset (id_start, id_end, distance)"`
	TripsPath     string `json:"trips_path,omitempty" jsonschema:"Trip dataset (distance, start_day, start_time, end_day, end_time)"`
	ReferenceID   *int64 `json:"reference_id,omitempty" jsonschema:"Reference id for the proximity filter; defaults to REFERENCE_ID"`
}

// addTool registers a tool whose input schema is derived from In and whose result is
// returned to the client as indented JSON text.
func addTool[In any](s *Server, name, description string, run func(context.Context, In) (any, error)) error {
	schema, err := jsonschema.For[In](nil)
	if err != nil {
		return fmt.Errorf("input schema for %s: %w", name, err)
	}

	tool := &sdk.Tool{Name: name, Description: description, InputSchema: schema}
	sdk.AddTool(s.mcp, tool, func(ctx context.Context, _ *sdk.CallToolRequest, in In) (*sdk.CallToolResult, any, error) {
		log.Debug().Str("tool", name).Interface("args", in).Msg("Tool call")

		data, err := run(ctx, in)
		if err != nil {
			log.Error().Err(err).Str("tool", name).Msg("Tool failed")
			return &sdk.CallToolResult{
				IsError: true,
				Content: []sdk.Content{&sdk.TextContent{Text: err.Error()}},
			}, nil, nil
		}
		return &sdk.CallToolResult{
			Content: []sdk.Content{&sdk.TextContent{Text: formatResult(data)}},
		}, nil, nil
	})
	return nil
}

func (s *Server) registerTools() error {
	regs := []func() error{
		func() error {
			return addTool(s, "generate_car_matrix",
				"Pivot the vehicle count dataset into an id_1 × id_2 matrix of car values. The diagonal is zeroed by position.",
				s.handleCarMatrix)
		},
		func() error {
			return addTool(s, "get_type_count",
				"Count rows per car volume category: low (≤15), medium (≤25), high (>25), unknown for missing values. Sorted by category name.",
				s.handleTypeCount)
		},
		func() error {
			return addTool(s, "get_bus_indexes",
				"Row positions whose bus value is greater than twice the bus mean, ascending.",
				s.handleBusIndexes)
		},
		func() error {
			return addTool(s, "filter_routes",
				"Routes whose average truck value is greater than 7, sorted.",
				s.handleFilterRoutes)
		},
		func() error {
			return addTool(s, "multiply_matrix",
				"Build the car matrix and scale every cell: values above 20 by 0.75, others by 1.25, rounded to one decimal.",
				s.handleMultiplyMatrix)
		},
		func() error {
			return addTool(s, "time_check",
				"For each (id, id_2) pair, report whether its intervals cover seven distinct days with every interval lasting at least a week.",
				s.handleTimeCheck)
		},
		func() error {
			return addTool(s, "calculate_distance_matrix",
				"Build the symmetric cumulative distance matrix from one-way toll edges.",
				s.handleDistanceMatrix)
		},
		func() error {
			return addTool(s, "unroll_distance_matrix",
				"Build the distance matrix from toll edges and flatten it into id_start, id_end, distance rows.",
				s.handleUnroll)
		},
		func() error {
			return addTool(s, "find_ids_within_ten_percentage_threshold",
				"Ids with at least one distance within 10% of the reference id's average distance.",
				s.handleThreshold)
		},
		func() error {
			return addTool(s, "calculate_toll_rate",
				"Unrolled distances with flat toll rates per vehicle class (moto, car, rv, bus, truck).",
				s.handleTollRate)
		},
		func() error {
			return addTool(s, "calculate_time_based_toll_rates",
				"Flat toll rates for a trip dataset, discounted by start day and start time.",
				s.handleTimeBasedTollRates)
		},
		func() error {
			return addTool(s, "build_report",
				"Run every analysis over the given datasets and write JSON, Markdown and HTML reports to REPORT_DIR.",
				s.handleBuildReport)
		},
	}

	for _, reg := range regs {
		if err := reg(); err != nil {
			return err
		}
	}
	return nil
}

package report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"tollcalc/internal/matrix"
	"tollcalc/internal/table"
	"tollcalc/internal/toll"
	"tollcalc/internal/traffic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Inputs are the relations a report is built from. Nil relations skip their sections.
type Inputs struct {
	Counts      *table.Relation // dataset-1
	Intervals   *table.Relation // dataset-2
	Edges       *table.Relation // dataset-3
	Trips       *table.Relation // distance plus start/end day and time columns
	ReferenceID int64
}

// VehicleSummary is the mean rate charged to one vehicle class.
type VehicleSummary struct {
	Vehicle  string  `json:"vehicle"`
	MeanRate float64 `json:"mean_rate"`
}

// Report collects the output of every analysis.
type Report struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	ReferenceID int64     `json:"reference_id"`

	CarMatrix         *matrix.Matrix          `json:"car_matrix,omitempty"`
	AdjustedCarMatrix *matrix.Matrix          `json:"adjusted_car_matrix,omitempty"`
	TypeCounts        []traffic.CategoryCount `json:"type_counts,omitempty"`
	BusIndexes        []int                   `json:"bus_indexes,omitempty"`
	Routes            []any                   `json:"routes,omitempty"`
	Coverage          []traffic.Coverage      `json:"coverage,omitempty"`

	DistanceMatrix *matrix.Matrix   `json:"distance_matrix,omitempty"`
	NearbyIDs      []int64          `json:"nearby_ids,omitempty"`
	FlatRates      *table.Relation  `json:"flat_rates,omitempty"`
	FlatSummary    []VehicleSummary `json:"flat_summary,omitempty"`
	TimedRates     *table.Relation  `json:"timed_rates,omitempty"`
	TimedSummary   []VehicleSummary `json:"timed_summary,omitempty"`

	// Warnings name sections that could not be computed while the rest of the report was.
	Warnings []string `json:"warnings,omitempty"`
}

// Build runs every analysis whose input is present. Independent sections run concurrently;
// the first failure cancels the rest and is returned. A reference id without usable
// distances only skips the threshold section and is listed in Warnings.
func Build(ctx context.Context, in Inputs, schedule toll.Schedule) (*Report, error) {
	r := &Report{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		ReferenceID: in.ReferenceID,
	}

	g, ctx := errgroup.WithContext(ctx)

	if in.Counts != nil {
		g.Go(func() error {
			m, err := traffic.GenerateCarMatrix(in.Counts)
			if err != nil {
				return fmt.Errorf("car matrix: %w", err)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			r.CarMatrix = m
			r.AdjustedCarMatrix = traffic.MultiplyMatrix(m)
			return nil
		})
		g.Go(func() error {
			counts, err := traffic.GetTypeCount(in.Counts)
			if err != nil {
				return fmt.Errorf("type count: %w", err)
			}
			r.TypeCounts = counts
			return nil
		})
		g.Go(func() error {
			idx, err := traffic.GetBusIndexes(in.Counts)
			if err != nil {
				return fmt.Errorf("bus indexes: %w", err)
			}
			r.BusIndexes = idx
			return nil
		})
		g.Go(func() error {
			routes, err := traffic.FilterRoutes(in.Counts)
			if err != nil {
				return fmt.Errorf("routes: %w", err)
			}
			r.Routes = routes
			return nil
		})
	}

	if in.Intervals != nil {
		g.Go(func() error {
			cov, err := traffic.TimeCheck(in.Intervals)
			if err != nil {
				return fmt.Errorf("time check: %w", err)
			}
			r.Coverage = cov
			return nil
		})
	}

	if in.Edges != nil {
		g.Go(func() error {
			m, err := toll.CalculateDistanceMatrix(in.Edges)
			if err != nil {
				return fmt.Errorf("distance matrix: %w", err)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			unrolled := toll.UnrollDistanceMatrix(m)

			nearby, err := toll.FindIDsWithinTenPercentageThreshold(unrolled, in.ReferenceID)
			switch {
			case errors.Is(err, toll.ErrReferenceNotFound), errors.Is(err, toll.ErrUndefinedAverage):
				log.Warn().Err(err).Int64("reference", in.ReferenceID).Msg("Skipping threshold ids")
				r.Warnings = append(r.Warnings, fmt.Sprintf("threshold ids: %v", err))
			case err != nil:
				return fmt.Errorf("threshold ids: %w", err)
			}
			rates, err := toll.CalculateTollRate(unrolled, schedule)
			if err != nil {
				return fmt.Errorf("toll rates: %w", err)
			}
			summary, err := summarize(rates, schedule)
			if err != nil {
				return err
			}

			r.DistanceMatrix = m
			r.NearbyIDs = nearby
			r.FlatRates = rates
			r.FlatSummary = summary
			return nil
		})
	}

	if in.Trips != nil {
		g.Go(func() error {
			flat, err := toll.CalculateTollRate(in.Trips, schedule)
			if err != nil {
				return fmt.Errorf("trip rates: %w", err)
			}
			timed, err := toll.CalculateTimeBasedTollRates(flat, schedule)
			if err != nil {
				return fmt.Errorf("time-based rates: %w", err)
			}
			summary, err := summarize(timed, schedule)
			if err != nil {
				return err
			}
			r.TimedRates = timed
			r.TimedSummary = summary
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info().Str("report", r.ID).Int64("reference", r.ReferenceID).Msg("Report built")
	return r, nil
}

// summarize averages each vehicle rate column, ignoring missing values.
func summarize(rates *table.Relation, schedule toll.Schedule) ([]VehicleSummary, error) {
	out := make([]VehicleSummary, 0, len(schedule.Vehicles))
	for _, v := range schedule.Vehicles {
		values, err := rates.Floats(v.Vehicle)
		if err != nil {
			return nil, fmt.Errorf("summary: %w", err)
		}
		present := make([]float64, 0, len(values))
		for _, x := range values {
			if !math.IsNaN(x) {
				present = append(present, x)
			}
		}
		mean := 0.0
		if len(present) > 0 {
			mean = stat.Mean(present, nil)
		}
		out = append(out, VehicleSummary{Vehicle: v.Vehicle, MeanRate: mean})
	}
	return out, nil
}

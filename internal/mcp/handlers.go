package mcp

import (
	"context"
	"fmt"

	"tollcalc/internal/report"
	"tollcalc/internal/table"
	"tollcalc/internal/toll"
	"tollcalc/internal/traffic"
)

func (s *Server) handleCarMatrix(_ context.Context, args PathArgs) (any, error) {
	rel, err := s.load(args.Path)
	if err != nil {
		return nil, err
	}
	return traffic.GenerateCarMatrix(rel)
}

func (s *Server) handleTypeCount(_ context.Context, args PathArgs) (any, error) {
	rel, err := s.load(args.Path)
	if err != nil {
		return nil, err
	}
	counts, err := traffic.GetTypeCount(rel)
	if err != nil {
		return nil, err
	}
	return traffic.CountsByCategory(counts), nil
}

func (s *Server) handleBusIndexes(_ context.Context, args PathArgs) (any, error) {
	rel, err := s.load(args.Path)
	if err != nil {
		return nil, err
	}
	return traffic.GetBusIndexes(rel)
}

func (s *Server) handleFilterRoutes(_ context.Context, args PathArgs) (any, error) {
	rel, err := s.load(args.Path)
	if err != nil {
		return nil, err
	}
	return traffic.FilterRoutes(rel)
}

func (s *Server) handleMultiplyMatrix(_ context.Context, args PathArgs) (any, error) {
	rel, err := s.load(args.Path)
	if err != nil {
		return nil, err
	}
	m, err := traffic.GenerateCarMatrix(rel)
	if err != nil {
		return nil, err
	}
	return traffic.MultiplyMatrix(m), nil
}

func (s *Server) handleTimeCheck(_ context.Context, args PathArgs) (any, error) {
	rel, err := s.load(args.Path)
	if err != nil {
		return nil, err
	}
	return traffic.TimeCheck(rel)
}

func (s *Server) handleDistanceMatrix(_ context.Context, args PathArgs) (any, error) {
	rel, err := s.load(args.Path)
	if err != nil {
		return nil, err
	}
	return toll.CalculateDistanceMatrix(rel)
}

func (s *Server) handleUnroll(_ context.Context, args PathArgs) (any, error) {
	return s.unrolled(args.Path)
}

func (s *Server) handleThreshold(_ context.Context, args ThresholdArgs) (any, error) {
	unrolled, err := s.unrolled(args.Path)
	if err != nil {
		return nil, err
	}
	return toll.FindIDsWithinTenPercentageThreshold(unrolled, s.reference(args.ReferenceID))
}

func (s *Server) handleTollRate(_ context.Context, args PathArgs) (any, error) {
	unrolled, err := s.unrolled(args.Path)
	if err != nil {
		return nil, err
	}
	return toll.CalculateTollRate(unrolled, s.Schedule())
}

func (s *Server) handleTimeBasedTollRates(_ context.Context, args PathArgs) (any, error) {
	rel, err := s.load(args.Path)
	if err != nil {
		return nil, err
	}
	schedule := s.Schedule()
	flat, err := toll.CalculateTollRate(rel, schedule)
	if err != nil {
		return nil, err
	}
	return toll.CalculateTimeBasedTollRates(flat, schedule)
}

func (s *Server) handleBuildReport(ctx context.Context, args ReportArgs) (any, error) {
	in := report.Inputs{ReferenceID: s.reference(args.ReferenceID)}

	for _, src := range []struct {
		path string
		dst  **table.Relation
	}{
		{args.CountsPath, &in.Counts},
		{args.IntervalsPath, &in.Intervals},
		{args.EdgesPath, &in.Edges},
		{args.TripsPath, &in.Trips},
	} {
		if src.path == "" {
			continue
		}
		rel, err := s.load(src.path)
		if err != nil {
			return nil, err
		}
		*src.dst = rel
	}
	if in.Counts == nil && in.Intervals == nil && in.Edges == nil && in.Trips == nil {
		return nil, fmt.Errorf("at least one dataset path is required")
	}

	r, err := report.Build(ctx, in, s.Schedule())
	if err != nil {
		return nil, err
	}
	paths, err := report.Write(s.cfg.ReportDir, r)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":         r.ID,
		"files":      paths,
		"nearby_ids": r.NearbyIDs,
	}, nil
}

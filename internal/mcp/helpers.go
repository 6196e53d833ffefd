package mcp

import (
	"encoding/json"
	"fmt"

	"tollcalc/internal/table"
	"tollcalc/internal/toll"
)

func (s *Server) load(path string) (*table.Relation, error) {
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return table.Load(s.cfg.ResolvePath(path), s.cfg.XLSXSheet)
}

// unrolled loads toll edges and returns the flattened distance matrix.
func (s *Server) unrolled(path string) (*table.Relation, error) {
	rel, err := s.load(path)
	if err != nil {
		return nil, err
	}
	m, err := toll.CalculateDistanceMatrix(rel)
	if err != nil {
		return nil, err
	}
	return toll.UnrollDistanceMatrix(m), nil
}

// reference returns the requested id, or the configured one when none was given.
func (s *Server) reference(id *int64) int64 {
	if id != nil {
		return *id
	}
	return s.cfg.ReferenceID
}

func formatResult(data any) string {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("failed to encode result: %v", err)
	}
	return string(out)
}

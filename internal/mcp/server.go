package mcp

import (
	"context"
	"sync"

	"tollcalc/internal/config"
	"tollcalc/internal/toll"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// Server exposes every analysis as an MCP tool.
type Server struct {
	cfg     *config.AppConfig
	version string
	mcp     *sdk.Server

	mu       sync.RWMutex
	schedule toll.Schedule
}

// NewServer creates a server with the given rate schedule and registers its tools.
func NewServer(cfg *config.AppConfig, schedule toll.Schedule, version string) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		version:  version,
		schedule: schedule,
	}
	s.mcp = sdk.NewServer(&sdk.Implementation{Name: "tollcalc", Version: version}, nil)
	if err := s.registerTools(); err != nil {
		return nil, err
	}
	return s, nil
}

// Schedule returns the rate schedule currently in effect.
func (s *Server) Schedule() toll.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schedule
}

// SetSchedule replaces the rate schedule used by subsequent tool calls.
func (s *Server) SetSchedule(schedule toll.Schedule) {
	s.mu.Lock()
	s.schedule = schedule
	s.mu.Unlock()
}

// Start serves MCP over stdio until the client disconnects or ctx is cancelled. When a
// schedule file is configured it is watched and reloaded on change.
func (s *Server) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.cfg.ScheduleFile != "" {
		go func() {
			if err := config.WatchSchedule(ctx, s.cfg.ScheduleFile, s.SetSchedule); err != nil {
				log.Warn().Err(err).Str("path", s.cfg.ScheduleFile).Msg("Schedule watch stopped")
			}
		}()
	}

	log.Info().Str("version", s.version).Msg("MCP Server starting Stdio loop")
	return s.mcp.Run(ctx, &sdk.StdioTransport{})
}

// Package mcp exposes the simulation engine as Model Context Protocol tools.
package mcp

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"painburden/internal/config"
	"painburden/internal/simulation"
)

// Server wraps the MCP SDK server around a simulation engine.
type Server struct {
	server              *sdk.Server
	engine              *simulation.Engine
	seed                uint64
	enableMermaidCharts bool
}

// NewServer registers the painburden tools for engine.
func NewServer(cfg *config.AppConfig, engine *simulation.Engine, version string) *Server {
	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    "painburden",
		Version: version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			log.Debug().Msg("MCP client initialized")
		},
	})

	s := &Server{
		server:              mcpServer,
		engine:              engine,
		seed:                cfg.Seed,
		enableMermaidCharts: cfg.EnableMermaidCharts,
	}
	s.registerTools()
	return s
}

// Run serves over stdio until the client disconnects, ctx is cancelled or
// the process receives SIGINT/SIGTERM.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("MCP Server starting Stdio loop")
	return s.server.Run(ctx, &sdk.StdioTransport{})
}

func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name: "preview_subgroups",
		Description: "Preview how the affected population splits into episodic/chronic and treated/untreated subgroups, " +
			"and how many patients a run would simulate. Optional arguments update the population settings for later runs. Cheap: no sampling.",
	}, s.handlePreviewSubgroups)

	sdk.AddTool(s.server, &sdk.Tool{
		Name: "run_simulation",
		Description: "Simulate one year of attacks for the sampled population, aggregate intensity-minute profiles per subgroup, " +
			"fit the comparator distribution and apply the active transformation. Returns the summary table and person-year totals.",
	}, s.handleRunSimulation)

	sdk.AddTool(s.server, &sdk.Tool{
		Name: "set_transformation",
		Description: "Change the intensity transformation (and optionally the comparator figures) and recompute the adjusted burden " +
			"of the latest run without re-simulating. Requires run_simulation first.",
	}, s.handleSetTransformation)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "get_summary",
		Description: "Return the summary table, totals with errors and per-patient statistics of the latest run.",
	}, s.handleGetSummary)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "get_adjusted_burden",
		Description: "Return raw and adjusted person-year profiles over the 0-10 intensity grid for the latest run and the comparator.",
	}, s.handleGetAdjustedBurden)

	sdk.AddTool(s.server, &sdk.Tool{
		Name: "run_taylor_sweep",
		Description: "Compare the burden above a threshold against the comparator for Taylor-series transformations of increasing order, " +
			"reporting the first order at which the simulated burden exceeds the comparator. Optionally returns the log10 ratio matrix.",
	}, s.handleRunTaylorSweep)
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hexmerlin/kgseed/internal/util"

	"github.com/hexmerlin/kgseed/pkg/config"
	"github.com/hexmerlin/kgseed/pkg/graphdb"
	"github.com/hexmerlin/kgseed/pkg/logger"
	"github.com/hexmerlin/kgseed/pkg/logger/console"
	"github.com/hexmerlin/kgseed/pkg/pipeline"
)

// Standalone reset of all three stores, without an import following it.
func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", "err", err)
	}

	graph, err := graphdb.New(ctx, cfg.Neo4j)
	if err != nil {
		logger.Fatal("Could not connect to graph store", "err", err)
	}
	defer graph.Close(ctx)

	p := pipeline.NewPipeline(pipeline.NewPipelineParams{
		Config: cfg,
		Graph:  graph,
		Rel:    pipeline.NewPostgresResetter(cfg.PostgresURL()),
	})

	results := p.Reset(ctx)
	if fatal, found := pipeline.FirstFatal(results); found {
		logger.Fatal("Reset failed", "stage", fatal.Stage, "err", fatal.Err)
	}
	logger.Info("All stores reset")
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hexmerlin/kgseed/internal/util"

	"github.com/hexmerlin/kgseed/pkg/ai"
	oai "github.com/hexmerlin/kgseed/pkg/ai/ollama"
	gai "github.com/hexmerlin/kgseed/pkg/ai/openai"
	"github.com/hexmerlin/kgseed/pkg/config"
	"github.com/hexmerlin/kgseed/pkg/graphdb"
	"github.com/hexmerlin/kgseed/pkg/logger"
	"github.com/hexmerlin/kgseed/pkg/logger/console"
	"github.com/hexmerlin/kgseed/pkg/pipeline"
	storepgx "github.com/hexmerlin/kgseed/pkg/store/pgx"
)

type metricsReporter interface {
	GetMetrics() ai.ModelMetrics
}

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", "err", err)
	}

	path := util.GetEnvString("KG_FILE", "json_output/knowledge_graph.json")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	embedClient, llmClient := buildAIClients(cfg)
	embedder := ai.NewEmbeddingCapability(embedClient, cfg.Embedding.Dimensions, cfg.Embedding.MaxTokens)

	graph, err := graphdb.New(ctx, cfg.Neo4j)
	if err != nil {
		logger.Fatal("Could not connect to graph store", "err", err)
	}
	defer graph.Close(ctx)

	storage, err := storepgx.NewGraphDBStorage(storepgx.NewGraphDBStorageParams{
		Config:   cfg,
		Graph:    graph,
		Embedder: embedder,
		LLM:      llmClient,
	})
	if err != nil {
		logger.Fatal("Could not create storage engine", "err", err)
	}

	p := pipeline.NewPipeline(pipeline.NewPipelineParams{
		Config:   cfg,
		Graph:    graph,
		Rel:      pipeline.NewPostgresResetter(cfg.PostgresURL()),
		Storage:  storage,
		Embedder: embedder,
	})

	startTime := time.Now()
	runErr := p.Run(ctx, path)

	if reporter, ok := embedClient.(metricsReporter); ok {
		metrics := reporter.GetMetrics()
		aiDuration := time.Duration(metrics.DurationMs) * time.Millisecond
		logger.Info(
			"AI Metrics",
			"input_tokens", metrics.InputTokens,
			"total_tokens", metrics.TotalTokens,
			"duration", formatDuration(aiDuration),
		)
	}
	logger.Info("Processing time", "duration", formatDuration(time.Since(startTime)))

	if runErr != nil {
		logger.Fatal("Import failed", "err", runErr)
	}
}

func buildAIClients(cfg *config.Config) (ai.EmbeddingClient, ai.CompletionClient) {
	switch cfg.Adapter {
	case "ollama":
		client, err := oai.NewEmbedClient(oai.NewEmbedClientParams{
			EmbeddingModel:  cfg.Embedding.Model,
			CompletionModel: cfg.LLM.Model,
			MaxTokens:       cfg.Embedding.MaxTokens,

			BaseURL: cfg.Embedding.BaseURL,
			APIKey:  cfg.Embedding.APIKey,
		})
		if err != nil {
			logger.Fatal("Could not create Ollama client", "err", err)
		}
		return client, client
	default:
		client := gai.NewEmbedClient(gai.NewEmbedClientParams{
			EmbeddingModel:  cfg.Embedding.Model,
			CompletionModel: cfg.LLM.Model,

			BaseURL: cfg.Embedding.BaseURL,
			APIKey:  cfg.Embedding.APIKey,
		})
		return client, client
	}
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

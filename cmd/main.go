package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"hr-rag/internal/config"
	"hr-rag/internal/embedding"
	"hr-rag/internal/helper"
	"hr-rag/internal/llmservice"
	"hr-rag/internal/rag"
)

const (
	configFilePath = "./configs/config.yaml"
)

func main() {
	configPath := flag.String("config", configFilePath, "Path to the config file")
	ingest := flag.Bool("ingest", false, "Rebuild the vector index from the data folder")
	query := flag.String("query", "", "Question to be answered")
	dryRun := flag.Bool("dry-run", false, "Load and chunk the data folder, print the chunks and exit")
	logLevel := flag.String("log-level", "", "Log level, overrides the config file")
	flag.Parse()

	helper.SetupLogger("info")

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Error loading .env file")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	helper.SetupLogger(cfg.Log.Level)
	log.Debug().Str("organization", cfg.RAG.Organization).Str("data_path", cfg.RAG.DataPath).Str("index_path", cfg.RAG.IndexPath).Msg("Loaded config")

	ctx := context.Background()

	if *dryRun {
		previewChunks(ctx, cfg)
		return
	}

	if !*ingest && *query == "" {
		log.Fatal().Msg("Please provide -ingest to build the index and/or -query to ask a question")
	}

	embedder, err := embedding.NewEmbedder(&cfg.Embedding)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	var llm rag.Generator
	if *query != "" {
		llm, err = llmservice.New(&cfg.LLM)
		if err != nil {
			log.Fatal().Err(err).Msg("Error initializing llm client")
		}
	}

	r := rag.NewRAG(cfg, embedder, llm)

	if *ingest {
		status, err := r.Ingest(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Error ingesting documents")
		}
		log.Info().Msg(status)
	}

	if *query != "" {
		performRAG(ctx, r, *query)
	}
}

func performRAG(ctx context.Context, r *rag.RAG, query string) {
	response, err := r.Answer(ctx, query)
	if err != nil {
		log.Fatal().Err(err).Msg("Error querying")
	}

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", query)

	log.Info().Msg("Source: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%v\n\n", response.Sources)

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Answer)
}

func previewChunks(ctx context.Context, cfg *config.Config) {
	chunks, err := rag.NewRAG(cfg, nil, nil).Preview(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Error parsing documents")
	}
	log.Info().Msgf("Parsed %d chunks", len(chunks))
	helper.PrettyPrint(os.Stdout, chunks)
}

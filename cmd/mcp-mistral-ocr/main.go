package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"mcp-mistral-ocr/internal/config"
	"mcp-mistral-ocr/internal/files"
	"mcp-mistral-ocr/internal/mcp"
	"mcp-mistral-ocr/internal/ocr"
	"mcp-mistral-ocr/internal/ocr/gemini"
	"mcp-mistral-ocr/internal/ocr/mistral"
	"mcp-mistral-ocr/internal/ocr/openai"
	"mcp-mistral-ocr/internal/ocr/tesseract"
	"mcp-mistral-ocr/internal/store"
)

func main() {
	// stdout belongs to the stdio transport, so everything else goes to stderr
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}
	if err := cfg.EnsureDirs(); err != nil {
		log.Fatal().Err(err).Msg("directory setup failed")
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("engine setup failed")
	}

	srv := mcp.New(engine, files.NewResolver(cfg.BaseDir), store.NewWriter(cfg.OutputDir()), log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("provider", engine.Name()).
		Str("model", engine.GetModel()).
		Str("base_dir", cfg.BaseDir).
		Str("transport", cfg.Transport).
		Msg("starting")

	switch cfg.Transport {
	case config.TransportHTTP:
		err = srv.ServeHTTP(ctx, ":"+cfg.Port)
	default:
		err = srv.ServeStdio(ctx, os.Stdin, os.Stdout)
	}
	if err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("transport failed")
	}
	log.Info().Msg("shutdown")
}

func buildEngine(cfg *config.Config) (ocr.Engine, error) {
	switch cfg.Provider {
	case config.ProviderMistral:
		return mistral.New(cfg.MistralAPIKey, cfg.MistralModel), nil
	case config.ProviderOpenAI:
		return openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	case config.ProviderGemini:
		return gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel), nil
	case config.ProviderTesseract:
		return tesseract.New(cfg.TessLangs), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

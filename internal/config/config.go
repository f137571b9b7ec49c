package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Providers selectable through OCR_PROVIDER.
const (
	ProviderMistral   = "mistral"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderTesseract = "tesseract"
)

// Transports selectable through MCP_TRANSPORT.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// DefaultBaseDir is where the container mounts the files to process.
const DefaultBaseDir = "/data/ocr"

type Config struct {
	BaseDir  string
	Provider string

	MistralAPIKey string
	MistralModel  string
	OpenAIAPIKey  string
	OpenAIModel   string
	GeminiAPIKey  string
	GeminiModel   string
	TessLangs     []string

	Transport string
	Port      string
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func Load() (*Config, error) {
	cfg := &Config{
		BaseDir:  getEnv("OCR_DIR", DefaultBaseDir),
		Provider: strings.ToLower(getEnv("OCR_PROVIDER", ProviderMistral)),

		MistralAPIKey: getEnv("MISTRAL_API_KEY", ""),
		MistralModel:  getEnv("MISTRAL_OCR_MODEL", "mistral-ocr-latest"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		Transport: strings.ToLower(getEnv("MCP_TRANSPORT", TransportStdio)),
		Port:      getEnv("PORT", "8080"),
	}

	if langs := getEnv("TESSERACT_LANGS", ""); langs != "" {
		for _, l := range strings.Split(langs, ",") {
			if l = strings.TrimSpace(l); l != "" {
				cfg.TessLangs = append(cfg.TessLangs, l)
			}
		}
	}

	switch cfg.Provider {
	case ProviderMistral:
		if cfg.MistralAPIKey == "" {
			return nil, fmt.Errorf("missing required env MISTRAL_API_KEY")
		}
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("missing required env OPENAI_API_KEY")
		}
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("missing required env GEMINI_API_KEY")
		}
	case ProviderTesseract:
		// runs locally, no credential
	default:
		return nil, fmt.Errorf("unknown OCR_PROVIDER %q", cfg.Provider)
	}

	switch cfg.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return nil, fmt.Errorf("unknown MCP_TRANSPORT %q", cfg.Transport)
	}

	return cfg, nil
}

// OutputDir is where OCR results are written.
func (c *Config) OutputDir() string {
	return filepath.Join(c.BaseDir, "output")
}

// EnsureDirs creates the base and output directories when they do not exist.
func (c *Config) EnsureDirs() error {
	if err := os.MkdirAll(c.OutputDir(), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", c.OutputDir(), err)
	}
	return nil
}

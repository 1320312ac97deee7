package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"hr-rag/internal/models"
)

type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	RAG       RAGConfig       `yaml:"rag"`
	Log       LogConfig       `yaml:"log"`
}

// EmbeddingConfig selects the sentence-embedding model.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // huggingface, openai, ollama
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	Key       string `yaml:"api_key"`
	BatchSize int    `yaml:"batch_size"`
}

// LLMConfig selects the chat-completion model used to answer questions.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // openai (any OpenAI-compatible endpoint), ollama
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	Key         string  `yaml:"api_key"`
	Temperature float64 `yaml:"temperature"`
}

type RAGConfig struct {
	Organization   string   `yaml:"organization"`
	DataPath       string   `yaml:"data_path"`
	IndexPath      string   `yaml:"index_path"`
	Compress       bool     `yaml:"compress"`
	EncryptionKey  string   `yaml:"encryption_key"`
	ChunkSize      int      `yaml:"chunk_size"` // 0 keeps every row as a single chunk
	ChunkOverlap   int      `yaml:"chunk_overlap"`
	Separators     []string `yaml:"separators"`
	RetrievalK     int      `yaml:"retrieval_k"`
	RetrievalMode  string   `yaml:"retrieval_mode"`
	MMRFetchK      int      `yaml:"mmr_fetch_k"`
	MMRLambda      float64  `yaml:"mmr_lambda"`
	ScoreThreshold float64  `yaml:"score_threshold"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

const (
	ProviderOpenAI      = "openai"
	ProviderOllama      = "ollama"
	ProviderHuggingFace = "huggingface"

	defaultEmbeddingModel = "sentence-transformers/all-MiniLM-L6-v2"
	defaultLLMModel       = "llama-3.3-70b-versatile"
	defaultLLMBaseURL     = "https://api.groq.com/openai/v1"
	defaultOllamaURL      = "http://localhost:11434"
	defaultOrganization   = "Swavik"
	defaultDataPath       = "data"
	defaultIndexPath      = "vector_store/index.gob"
	defaultChunkOverlap   = 150
	unsetChunkOverlap     = -1
	defaultRetrievalK     = 20
	defaultMMRFetchK      = 50
	defaultMMRLambda      = 0.5
	defaultBatchSize      = 64
)

var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{
		Embedding: EmbeddingConfig{Provider: ProviderHuggingFace},
		LLM:       LLMConfig{Provider: ProviderOpenAI},
		RAG:       RAGConfig{MMRLambda: defaultMMRLambda, ChunkOverlap: unsetChunkOverlap},
	}
	cfg.ApplyDefaults()
	return cfg
}

// LoadConfig reads a YAML config file. A missing file yields the defaults.
// ${VAR} and ${VAR:-default} references are expanded from the environment
// before parsing.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		cfg := Default()
		cfg.applyEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}

	// mmr_lambda = 0 and chunk_overlap = 0 are legal values, so both are
	// preset before parsing
	cfg := Config{RAG: RAGConfig{MMRLambda: defaultMMRLambda, ChunkOverlap: unsetChunkOverlap}}
	if err := yaml.Unmarshal(expandEnvVars(data), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ApplyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderHuggingFace
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = defaultEmbeddingModel
	}
	if c.Embedding.BatchSize <= 0 {
		c.Embedding.BatchSize = defaultBatchSize
	}
	if c.Embedding.Provider == ProviderOllama && c.Embedding.BaseURL == "" {
		c.Embedding.BaseURL = defaultOllamaURL
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderOpenAI
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.BaseURL == "" {
		switch c.LLM.Provider {
		case ProviderOllama:
			c.LLM.BaseURL = defaultOllamaURL
		case ProviderOpenAI:
			c.LLM.BaseURL = defaultLLMBaseURL
		}
	}

	if c.RAG.Organization == "" {
		c.RAG.Organization = defaultOrganization
	}
	if c.RAG.DataPath == "" {
		c.RAG.DataPath = defaultDataPath
	}
	if c.RAG.IndexPath == "" {
		c.RAG.IndexPath = defaultIndexPath
	}
	// a default overlap must fit the configured chunk size; explicit values
	// are checked by Validate
	if c.RAG.ChunkOverlap < 0 {
		c.RAG.ChunkOverlap = defaultChunkOverlap
		if c.RAG.ChunkSize > 0 && c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
			c.RAG.ChunkOverlap = c.RAG.ChunkSize / 2
		}
	}
	if len(c.RAG.Separators) == 0 {
		c.RAG.Separators = append([]string(nil), DefaultSeparators...)
	}
	if c.RAG.RetrievalK <= 0 {
		c.RAG.RetrievalK = defaultRetrievalK
	}
	if c.RAG.RetrievalMode == "" {
		c.RAG.RetrievalMode = string(models.SearchMMR)
	}
	if c.RAG.MMRFetchK <= 0 {
		c.RAG.MMRFetchK = max(defaultMMRFetchK, c.RAG.RetrievalK)
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// applyEnv fills missing API keys from the usual provider variables and
// strips stray whitespace, which hosted APIs reject.
func (c *Config) applyEnv() {
	if c.LLM.Key == "" {
		switch c.LLM.Provider {
		case ProviderOpenAI:
			c.LLM.Key = firstEnv("GROQ_API_KEY", "OPENAI_API_KEY")
		}
	}
	if c.Embedding.Key == "" {
		switch c.Embedding.Provider {
		case ProviderHuggingFace:
			c.Embedding.Key = firstEnv("HUGGINGFACEHUB_API_TOKEN")
		case ProviderOpenAI:
			c.Embedding.Key = firstEnv("OPENAI_API_KEY")
		}
	}
	c.LLM.Key = strings.TrimSpace(c.LLM.Key)
	c.Embedding.Key = strings.TrimSpace(c.Embedding.Key)
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case ProviderOpenAI, ProviderOllama, ProviderHuggingFace:
	default:
		return fmt.Errorf("embedding.provider must be one of openai, ollama, huggingface, got %q", c.Embedding.Provider)
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("llm.provider must be openai or ollama, got %q", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %v", c.LLM.Temperature)
	}
	if !models.SearchMode(c.RAG.RetrievalMode).IsValid() {
		return fmt.Errorf("rag.retrieval_mode must be \"similarity\" or \"mmr\", got %q", c.RAG.RetrievalMode)
	}
	if c.RAG.RetrievalK <= 0 {
		return fmt.Errorf("rag.retrieval_k must be positive, got %d", c.RAG.RetrievalK)
	}
	if c.RAG.MMRFetchK < c.RAG.RetrievalK {
		return fmt.Errorf("rag.mmr_fetch_k (%d) must be >= rag.retrieval_k (%d)", c.RAG.MMRFetchK, c.RAG.RetrievalK)
	}
	if c.RAG.MMRLambda < 0 || c.RAG.MMRLambda > 1 {
		return fmt.Errorf("rag.mmr_lambda must be between 0 and 1, got %v", c.RAG.MMRLambda)
	}
	if c.RAG.ChunkSize < 0 {
		return fmt.Errorf("rag.chunk_size must not be negative, got %d", c.RAG.ChunkSize)
	}
	if c.RAG.ChunkSize > 0 && c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return fmt.Errorf("rag.chunk_overlap (%d) must be smaller than rag.chunk_size (%d)", c.RAG.ChunkOverlap, c.RAG.ChunkSize)
	}
	if c.RAG.ScoreThreshold < 0 || c.RAG.ScoreThreshold > 1 {
		return fmt.Errorf("rag.score_threshold must be between 0 and 1, got %v", c.RAG.ScoreThreshold)
	}
	if k := len(c.RAG.EncryptionKey); k != 0 && k != 32 {
		return fmt.Errorf("rag.encryption_key must be empty or 32 bytes, got %d bytes", k)
	}
	return nil
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

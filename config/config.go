package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported LLM backends.
const (
	BackendOpenAI   = "openai"
	BackendDeepSeek = "deepseek"
	BackendOllama   = "ollama"
)

// Config carries every knob the application needs. It is passed explicitly
// into constructors; nothing reads it through a package-level global.
type Config struct {
	DataDir      string `json:"data_dir"`
	DataCacheDir string `json:"data_cache_dir"`
	ResultsDir   string `json:"results_dir"`

	LLMBackend  string  `json:"llm_backend"`
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`

	OpenAIAPIKey   string `json:"openai_api_key"`
	OpenAIBaseURL  string `json:"openai_base_url"`
	DeepSeekAPIKey string `json:"deepseek_api_key"`
	OllamaBaseURL  string `json:"ollama_base_url"`

	FinnhubAPIKey string `json:"finnhub_api_key"`

	CacheEnabled bool     `json:"cache_enabled"`
	PeerCount    int      `json:"peer_count"`
	MaxHeadlines int      `json:"max_headlines"`
	Analysts     []string `json:"analysts"`

	FetchTimeout     time.Duration `json:"fetch_timeout"`
	AnalysisTimeout  time.Duration `json:"analysis_timeout"`
	SynthesisTimeout time.Duration `json:"synthesis_timeout"`

	Debug bool `json:"debug"`
}

// DefaultConfig builds a config rooted at the working directory, loads .env
// if present, and applies environment overrides.
func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()
	cfg := DefaultConfigWithRoot(currentDir)

	_ = godotenv.Load()
	cfg.ApplyEnvOverrides()

	return cfg
}

// Load opens the persisted config file through a Manager, seeding it from
// the defaults on first run, and applies .env plus environment overrides on
// top of the file values. The returned config is the effective one; the
// Manager persists only what is written through Update.
func Load(opts ...ManagerOption) (*Manager, *Config, error) {
	manager, err := NewManager(opts...)
	if err != nil {
		return nil, nil, err
	}

	cfg := manager.Get()
	_ = godotenv.Load()
	cfg.ApplyEnvOverrides()
	return manager, &cfg, nil
}

// DefaultConfigWithRoot builds the default config with data directories
// anchored under root. No environment is consulted.
func DefaultConfigWithRoot(root string) *Config {
	return &Config{
		DataDir:      filepath.Join(root, "data"),
		DataCacheDir: filepath.Join(root, "data", "cache"),
		ResultsDir:   filepath.Join(root, "results"),

		LLMBackend:  BackendOllama,
		Model:       "",
		Temperature: 0,
		MaxTokens:   4096,

		OllamaBaseURL: "http://localhost:11434/v1",

		CacheEnabled: true,
		PeerCount:    3,
		MaxHeadlines: 8,

		FetchTimeout:     2 * time.Minute,
		AnalysisTimeout:  3 * time.Minute,
		SynthesisTimeout: 2 * time.Minute,
	}
}

// DefaultModel returns the model used for a backend when none is configured.
func DefaultModel(backend string) string {
	switch backend {
	case BackendOpenAI:
		return "gpt-4o-mini"
	case BackendDeepSeek:
		return "deepseek-chat"
	case BackendOllama:
		return "llama3.2"
	}
	return ""
}

// Validate checks the config and fills the per-backend default model.
func (c *Config) Validate() error {
	switch c.LLMBackend {
	case BackendOpenAI, BackendDeepSeek, BackendOllama:
	default:
		return fmt.Errorf("invalid llm_backend %q: must be one of %s, %s, %s",
			c.LLMBackend, BackendOpenAI, BackendDeepSeek, BackendOllama)
	}

	if strings.TrimSpace(c.Model) == "" {
		c.Model = DefaultModel(c.LLMBackend)
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range [0, 2]", c.Temperature)
	}
	if c.PeerCount <= 0 {
		return fmt.Errorf("peer_count must be positive, got %d", c.PeerCount)
	}
	return nil
}

// ApplyEnvOverrides applies environment variables on top of the current
// values. The environment always wins over file-persisted settings.
func (c *Config) ApplyEnvOverrides() {
	if val := os.Getenv("DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := os.Getenv("DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}
	if val := os.Getenv("RESULTS_DIR"); val != "" {
		c.ResultsDir = val
	}

	if val := os.Getenv("LLM_BACKEND"); val != "" {
		c.LLMBackend = strings.ToLower(strings.TrimSpace(val))
	}
	if val := os.Getenv("LLM_MODEL"); val != "" {
		c.Model = val
	}
	if val := os.Getenv("LLM_TEMPERATURE"); val != "" {
		if t, err := strconv.ParseFloat(val, 32); err == nil {
			c.Temperature = float32(t)
		}
	}
	if val := os.Getenv("LLM_MAX_TOKENS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.MaxTokens = n
		}
	}

	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := os.Getenv("OPENAI_BASE_URL"); val != "" {
		c.OpenAIBaseURL = val
	}
	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}
	if val := os.Getenv("OLLAMA_BASE_URL"); val != "" {
		c.OllamaBaseURL = val
	}
	if val := os.Getenv("FINNHUB_API_KEY"); val != "" {
		c.FinnhubAPIKey = val
	}

	if val := os.Getenv("CACHE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = enabled
		}
	}
	if val := os.Getenv("PEER_COUNT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.PeerCount = n
		}
	}
	if val := os.Getenv("MAX_HEADLINES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.MaxHeadlines = n
		}
	}
	if val := os.Getenv("ANALYSTS"); val != "" {
		var names []string
		for _, name := range strings.Split(val, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		c.Analysts = names
	}

	if val := os.Getenv("FETCH_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.FetchTimeout = d
		}
	}
	if val := os.Getenv("ANALYSIS_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.AnalysisTimeout = d
		}
	}
	if val := os.Getenv("SYNTHESIS_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.SynthesisTimeout = d
		}
	}

	if val := os.Getenv("EQUILENS_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
}

// Set assigns one field by its JSON key from a string value. Used by the
// CLI's `config set`; unknown keys and unparsable values are errors.
func (c *Config) Set(key, value string) error {
	switch key {
	case "llm_backend":
		c.LLMBackend = strings.ToLower(strings.TrimSpace(value))
	case "model":
		c.Model = value
	case "temperature":
		t, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return fmt.Errorf("temperature: %w", err)
		}
		c.Temperature = float32(t)
	case "max_tokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("max_tokens: %w", err)
		}
		c.MaxTokens = n
	case "openai_api_key":
		c.OpenAIAPIKey = value
	case "openai_base_url":
		c.OpenAIBaseURL = value
	case "deepseek_api_key":
		c.DeepSeekAPIKey = value
	case "ollama_base_url":
		c.OllamaBaseURL = value
	case "finnhub_api_key":
		c.FinnhubAPIKey = value
	case "cache_enabled":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache_enabled: %w", err)
		}
		c.CacheEnabled = enabled
	case "peer_count":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("peer_count: %w", err)
		}
		c.PeerCount = n
	case "max_headlines":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("max_headlines: %w", err)
		}
		c.MaxHeadlines = n
	case "fetch_timeout", "analysis_timeout", "synthesis_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		switch key {
		case "fetch_timeout":
			c.FetchTimeout = d
		case "analysis_timeout":
			c.AnalysisTimeout = d
		default:
			c.SynthesisTimeout = d
		}
	case "results_dir":
		c.ResultsDir = value
	case "data_dir":
		c.DataDir = value
	case "data_cache_dir":
		c.DataCacheDir = value
	case "debug":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("debug: %w", err)
		}
		c.Debug = enabled
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// EnsureDirectories creates the data, cache and results directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir, c.DataCacheDir, c.ResultsDir}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}

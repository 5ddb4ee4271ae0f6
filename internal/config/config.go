// Package config holds the runtime configuration for a deliberation run:
// LLM connection settings, debate bounds, data vendor routing tables and
// filesystem layout.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Data vendor categories. Every retrieval capability belongs to exactly one.
const (
	CategoryCoreStock    = "core_stock_apis"
	CategoryIndicators   = "technical_indicators"
	CategoryFundamentals = "fundamental_data"
	CategoryNews         = "news_data"
)

type Config struct {
	ProjectDir   string `json:"project_dir"`
	ResultsDir   string `json:"results_dir"`
	DataDir      string `json:"data_dir"`
	DataCacheDir string `json:"data_cache_dir"`

	// LLM settings. Quick and deep tiers map to cheaper/stronger models.
	LLMProvider   string `json:"llm_provider"`
	DeepThinkLLM  string `json:"deep_think_llm"`
	QuickThinkLLM string `json:"quick_think_llm"`
	BackendURL    string `json:"backend_url"`
	APIKey        string `json:"api_key"`

	// Embedding settings for the episodic memory store. Empty values fall
	// back to the LLM backend when the provider is openai, otherwise to the
	// public OpenAI endpoint.
	EmbeddingModel   string `json:"embedding_model"`
	EmbeddingBaseURL string `json:"embedding_base_url"`
	EmbeddingAPIKey  string `json:"embedding_api_key"`

	// Debate bounds.
	MaxDebateRounds      int `json:"max_debate_rounds"`
	MaxRiskDiscussRounds int `json:"max_risk_discuss_rounds"`
	MaxRecurLimit        int `json:"max_recur_limit"`

	// DataVendors maps a capability category to its default vendor.
	// ToolVendors maps an individual capability name to a vendor and takes
	// precedence over the category default.
	DataVendors map[string]string `json:"data_vendors"`
	ToolVendors map[string]string `json:"tool_vendors"`

	// Vendor credentials and endpoints.
	AlphaVantageAPIKey string `json:"alpha_vantage_api_key"`
	AKToolsBaseURL     string `json:"aktools_base_url"`

	CacheEnabled bool `json:"cache_enabled"`
	OnlineTools  bool `json:"online_tools"`
	Debug        bool `json:"debug"`

	// Persistence paths. Empty disables the corresponding store.
	MemoryDBPath string `json:"memory_db_path"`
	RunDBPath    string `json:"run_db_path"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	return &Config{
		ProjectDir:   currentDir,
		ResultsDir:   filepath.Join(currentDir, "results"),
		DataDir:      filepath.Join(currentDir, "data"),
		DataCacheDir: filepath.Join(currentDir, "data", "cache"),

		LLMProvider:   "openai",
		DeepThinkLLM:  "o4-mini",
		QuickThinkLLM: "gpt-4o-mini",
		BackendURL:    "https://api.openai.com/v1",

		MaxDebateRounds:      1,
		MaxRiskDiscussRounds: 1,
		MaxRecurLimit:        100,

		DataVendors: map[string]string{
			CategoryCoreStock:    "yfinance",
			CategoryIndicators:   "yfinance",
			CategoryFundamentals: "alpha_vantage",
			CategoryNews:         "alpha_vantage",
		},
		ToolVendors: map[string]string{},

		AKToolsBaseURL: "http://127.0.0.1:8080",

		CacheEnabled: true,
		OnlineTools:  true,

		MemoryDBPath: filepath.Join(currentDir, "data", "memory.db"),
		RunDBPath:    filepath.Join(currentDir, "data", "runs.db"),
	}
}

// DefaultConfigWithRoot returns defaults anchored under the given directory
// instead of the process working directory.
func DefaultConfigWithRoot(root string) *Config {
	cfg := DefaultConfig()
	cfg.ProjectDir = root
	cfg.ResultsDir = filepath.Join(root, "results")
	cfg.DataDir = filepath.Join(root, "data")
	cfg.DataCacheDir = filepath.Join(root, "data", "cache")
	cfg.MemoryDBPath = filepath.Join(root, "data", "memory.db")
	cfg.RunDBPath = filepath.Join(root, "data", "runs.db")
	return cfg
}

// LoadEnv overlays BOARDROOM_* environment variables onto the config. A .env
// file in the working directory is honored when present.
func (c *Config) LoadEnv() {
	_ = godotenv.Load()

	setStr := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(dst *bool, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = strings.EqualFold(v, "true") || v == "1"
		}
	}

	setStr(&c.LLMProvider, "BOARDROOM_LLM_PROVIDER")
	setStr(&c.DeepThinkLLM, "BOARDROOM_DEEP_THINK_LLM")
	setStr(&c.QuickThinkLLM, "BOARDROOM_QUICK_THINK_LLM")
	setStr(&c.BackendURL, "BOARDROOM_BASE_URL")
	setStr(&c.APIKey, "BOARDROOM_API_KEY")
	setStr(&c.EmbeddingModel, "BOARDROOM_EMBEDDING_MODEL")
	setStr(&c.EmbeddingBaseURL, "BOARDROOM_EMBEDDING_BASE_URL")
	setStr(&c.EmbeddingAPIKey, "BOARDROOM_EMBEDDING_API_KEY")
	setStr(&c.AlphaVantageAPIKey, "ALPHA_VANTAGE_API_KEY")
	setStr(&c.AKToolsBaseURL, "AKTOOLS_BASE_URL")
	setStr(&c.ResultsDir, "BOARDROOM_RESULTS_DIR")
	setInt(&c.MaxDebateRounds, "BOARDROOM_MAX_DEBATE_ROUNDS")
	setInt(&c.MaxRiskDiscussRounds, "BOARDROOM_MAX_RISK_DISCUSS_ROUNDS")
	setInt(&c.MaxRecurLimit, "BOARDROOM_MAX_RECUR_LIMIT")
	setBool(&c.Debug, "BOARDROOM_DEBUG")
	setBool(&c.CacheEnabled, "BOARDROOM_CACHE_ENABLED")

	if c.APIKey == "" {
		c.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

func (c *Config) Validate() error {
	if c.MaxDebateRounds < 1 {
		return fmt.Errorf("max_debate_rounds must be >= 1, got %d", c.MaxDebateRounds)
	}
	if c.MaxRiskDiscussRounds < 1 {
		return fmt.Errorf("max_risk_discuss_rounds must be >= 1, got %d", c.MaxRiskDiscussRounds)
	}
	if c.MaxRecurLimit < 10 {
		return fmt.Errorf("max_recur_limit must be >= 10, got %d", c.MaxRecurLimit)
	}
	if c.LLMProvider == "" {
		return fmt.Errorf("llm_provider must not be empty")
	}
	return nil
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ResultsDir, c.DataDir, c.DataCacheDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

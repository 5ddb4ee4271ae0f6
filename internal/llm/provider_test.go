package llm

import (
	"testing"

	"boardroom/internal/config"
)

func TestEmbeddingSettingsDefaults(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	cfg.APIKey = "chat-key"

	model, baseURL, apiKey := embeddingSettings(cfg)
	if model != defaultEmbeddingModel {
		t.Fatalf("model = %q, want %q", model, defaultEmbeddingModel)
	}
	if baseURL != cfg.BackendURL {
		t.Fatalf("baseURL = %q, want chat backend %q", baseURL, cfg.BackendURL)
	}
	if apiKey != "chat-key" {
		t.Fatalf("apiKey = %q, want chat key fallback", apiKey)
	}
}

func TestEmbeddingSettingsNonOpenAIProvider(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	cfg.LLMProvider = "deepseek"
	cfg.BackendURL = "https://api.deepseek.com/v1"
	cfg.APIKey = "chat-key"

	_, baseURL, _ := embeddingSettings(cfg)
	if baseURL != openaiBaseURL {
		t.Fatalf("baseURL = %q, want public endpoint %q", baseURL, openaiBaseURL)
	}
}

func TestEmbeddingSettingsExplicitOverrides(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	cfg.APIKey = "chat-key"
	cfg.EmbeddingModel = "text-embedding-3-large"
	cfg.EmbeddingBaseURL = "https://embed.example.com/v1"
	cfg.EmbeddingAPIKey = "embed-key"

	model, baseURL, apiKey := embeddingSettings(cfg)
	if model != "text-embedding-3-large" {
		t.Fatalf("model = %q", model)
	}
	if baseURL != "https://embed.example.com/v1" {
		t.Fatalf("baseURL = %q", baseURL)
	}
	if apiKey != "embed-key" {
		t.Fatalf("apiKey = %q", apiKey)
	}
}

// Package llm builds chat models and embedders from configuration. The rest
// of the pipeline only sees the eino interfaces, so tests can substitute
// scripted models.
package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino-ext/components/model/deepseek"
	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"

	"boardroom/internal/config"
)

const defaultMaxTokens = 8192

// Models holds the two chat models the pipeline distinguishes between. Deep
// is used for judging and planning, Quick for analyst and debate turns.
type Models struct {
	Deep  model.ToolCallingChatModel
	Quick model.ToolCallingChatModel
}

// NewModels instantiates both chat models for the configured provider.
func NewModels(ctx context.Context, cfg *config.Config) (*Models, error) {
	deep, err := newChatModel(ctx, cfg, cfg.DeepThinkLLM)
	if err != nil {
		return nil, fmt.Errorf("deep thinking model: %w", err)
	}
	quick, err := newChatModel(ctx, cfg, cfg.QuickThinkLLM)
	if err != nil {
		return nil, fmt.Errorf("quick thinking model: %w", err)
	}
	return &Models{Deep: deep, Quick: quick}, nil
}

func newChatModel(ctx context.Context, cfg *config.Config, modelName string) (model.ToolCallingChatModel, error) {
	switch cfg.LLMProvider {
	case "openai":
		maxTokens := defaultMaxTokens
		return openaimodel.NewChatModel(ctx, &openaimodel.ChatModelConfig{
			BaseURL:   cfg.BackendURL,
			APIKey:    cfg.APIKey,
			Model:     modelName,
			MaxTokens: &maxTokens,
		})
	case "deepseek":
		return deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			BaseURL:   cfg.BackendURL,
			APIKey:    cfg.APIKey,
			Model:     modelName,
			MaxTokens: defaultMaxTokens,
		})
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
	}
}

const (
	defaultEmbeddingModel = "text-embedding-3-small"
	openaiBaseURL         = "https://api.openai.com/v1"
)

// embeddingSettings resolves the embedding connection from config. Empty
// fields fall back to the chat backend when the provider is openai, otherwise
// to the public OpenAI endpoint.
func embeddingSettings(cfg *config.Config) (modelName, baseURL, apiKey string) {
	modelName = cfg.EmbeddingModel
	if modelName == "" {
		modelName = defaultEmbeddingModel
	}

	baseURL = cfg.EmbeddingBaseURL
	if baseURL == "" {
		if cfg.LLMProvider == "openai" {
			baseURL = cfg.BackendURL
		} else {
			baseURL = openaiBaseURL
		}
	}

	apiKey = cfg.EmbeddingAPIKey
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	return modelName, baseURL, apiKey
}

// NewEmbedder builds the embedding client used by the memory stores.
func NewEmbedder(ctx context.Context, cfg *config.Config) (embedding.Embedder, error) {
	modelName, baseURL, apiKey := embeddingSettings(cfg)
	emb, err := openai.NewEmbedder(ctx, &openai.EmbeddingConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding client: %w", err)
	}
	return emb, nil
}

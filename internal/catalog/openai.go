package catalog

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"llmsettings/pkg/types"
)

// OpenAIClient lists models through the OpenAI SDK. BaseURL may point at any
// OpenAI-compatible deployment.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient builds a client using token, and baseURL when non-empty.
func NewOpenAIClient(token, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(token)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg)}
}

// ListModels calls the SDK's model listing.
func (c *OpenAIClient) ListModels(ctx context.Context) ([]types.ModelCard, error) {
	list, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.ModelCard, 0, len(list.Models))
	for _, m := range list.Models {
		out = append(out, types.ModelCard{ID: m.ID})
	}
	return out, nil
}

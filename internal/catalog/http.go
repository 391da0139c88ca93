package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"llmsettings/pkg/types"
)

// modelsResponse is the OpenAI-compatible GET /models payload.
type modelsResponse struct {
	Object string        `json:"object"`
	Data   []remoteModel `json:"data"`
}

type remoteModel struct {
	ID               string `json:"id"`
	Object           string `json:"object"`
	OwnedBy          string `json:"owned_by"`
	Created          int64  `json:"created"`
	DisplayName      string `json:"display_name"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	ContextLength    int    `json:"context_length"`
	MaxContextLength int    `json:"max_context_length"`
}

func (m remoteModel) card() types.ModelCard {
	c := types.ModelCard{ID: m.ID, DisplayName: m.DisplayName, Description: m.Description, Tokens: m.ContextLength}
	if c.DisplayName == "" {
		c.DisplayName = m.Name
	}
	if c.Tokens == 0 {
		c.Tokens = m.MaxContextLength
	}
	return c
}

// HTTPClient lists models from an OpenAI-compatible endpoint.
type HTTPClient struct {
	client  *resty.Client
	baseURL string
	name    string
}

// HTTPOptions configures an HTTPClient.
type HTTPOptions struct {
	// Name labels log lines, usually the provider key.
	Name    string
	BaseURL string
	// Headers are sent with every request (e.g. Authorization).
	Headers map[string]string
	Timeout time.Duration
	Logger  *zerolog.Logger
}

// NewHTTPClient builds a client for opts.BaseURL.
func NewHTTPClient(opts HTTPOptions) *HTTPClient {
	client := resty.New()
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	for k, v := range opts.Headers {
		client.SetHeader(k, v)
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	name := opts.Name
	client.AddResponseMiddleware(func(c *resty.Client, r *resty.Response) error {
		ev := log.Debug().Str("client", name).Int("status", r.StatusCode())
		if raw := r.Request.RawRequest; raw != nil {
			ev = ev.Str("method", raw.Method).Str("path", raw.URL.Path)
		}
		ev.Msg("catalog request")
		return nil
	})
	return &HTTPClient{client: client, baseURL: strings.TrimRight(opts.BaseURL, "/"), name: name}
}

// ListModels calls GET {baseURL}/models.
func (c *HTTPClient) ListModels(ctx context.Context) ([]types.ModelCard, error) {
	var body modelsResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get(c.baseURL + "/models")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		msg := strings.TrimSpace(resp.String())
		if msg == "" {
			return nil, fmt.Errorf("list models request failed with status %d", resp.StatusCode())
		}
		return nil, fmt.Errorf("list models request failed with status %d: %s", resp.StatusCode(), msg)
	}
	if body.Data == nil {
		return nil, nil
	}
	out := make([]types.ModelCard, 0, len(body.Data))
	for _, m := range body.Data {
		out = append(out, m.card())
	}
	return out, nil
}

// Close releases idle connections.
func (c *HTTPClient) Close() error { return c.client.Close() }

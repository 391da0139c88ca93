// Package catalog lists the models a provider offers. Clients talk to
// OpenAI-compatible HTTP endpoints, the OpenAI API through its SDK, or scan a
// local directory of model files. Router picks the client configured for a
// provider.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"llmsettings/internal/modelcard"
	"llmsettings/pkg/types"
)

// Lister fetches one provider's model list.
type Lister interface {
	ListModels(ctx context.Context) ([]types.ModelCard, error)
}

// notConfiguredError signals that no catalog client exists for a provider.
type notConfiguredError struct{ provider types.ProviderKey }

func (e notConfiguredError) Error() string {
	return "no model catalog configured for provider " + string(e.provider)
}

// IsNotConfigured reports whether err indicates a provider without a catalog.
func IsNotConfigured(err error) bool {
	var ne notConfiguredError
	return errors.As(err, &ne)
}

// Router dispatches model list requests to per-provider clients.
type Router struct {
	listers map[types.ProviderKey]Lister
}

// NewRouter returns a router over listers.
func NewRouter(listers map[types.ProviderKey]Lister) *Router {
	r := &Router{listers: make(map[types.ProviderKey]Lister, len(listers))}
	for k, l := range listers {
		r.listers[k] = l
	}
	return r
}

// Has reports whether a client is configured for provider.
func (r *Router) Has(provider types.ProviderKey) bool {
	_, ok := r.listers[provider]
	return ok
}

// Providers returns the providers with a configured client.
func (r *Router) Providers() []types.ProviderKey {
	out := make([]types.ProviderKey, 0, len(r.listers))
	for _, k := range types.ProviderKeys() {
		if _, ok := r.listers[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// GetChatModels lists provider's models and normalizes them.
func (r *Router) GetChatModels(ctx context.Context, provider types.ProviderKey) ([]types.ModelCard, error) {
	l, ok := r.listers[provider]
	if !ok {
		return nil, notConfiguredError{provider: provider}
	}
	cards, err := l.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s catalog: %w", provider, err)
	}
	if cards == nil {
		return nil, nil
	}
	return Normalize(cards), nil
}

// Normalize drops cards without an id, trims ids, fills a missing display
// name from the id and removes duplicate ids (the last occurrence wins, at
// the first position).
func Normalize(cards []types.ModelCard) []types.ModelCard {
	clean := make([]types.ModelCard, 0, len(cards))
	for _, c := range cards {
		c.ID = strings.TrimSpace(c.ID)
		if c.ID == "" {
			continue
		}
		if c.DisplayName == "" {
			c.DisplayName = c.ID
		}
		clean = append(clean, c)
	}
	return modelcard.Reduce(nil, modelcard.Replace{Cards: clean})
}

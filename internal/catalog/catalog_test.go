package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmsettings/pkg/types"
)

type staticLister struct {
	cards []types.ModelCard
	err   error
}

func (s staticLister) ListModels(context.Context) ([]types.ModelCard, error) { return s.cards, s.err }

func TestRouter_Dispatch(t *testing.T) {
	r := NewRouter(map[types.ProviderKey]Lister{
		types.ProviderOllama: staticLister{cards: []types.ModelCard{{ID: " llama3 "}, {ID: ""}, {ID: "llama3", DisplayName: "Llama 3"}}},
		types.ProviderGroq:   staticLister{err: errors.New("boom")},
		types.ProviderOpenAI: staticLister{},
	})

	cards, err := r.GetChatModels(context.Background(), types.ProviderOllama)
	require.NoError(t, err)
	assert.Equal(t, []types.ModelCard{{ID: "llama3", DisplayName: "Llama 3"}}, cards)

	_, err = r.GetChatModels(context.Background(), types.ProviderGroq)
	assert.ErrorContains(t, err, "boom")

	cards, err = r.GetChatModels(context.Background(), types.ProviderOpenAI)
	require.NoError(t, err)
	assert.Nil(t, cards)

	_, err = r.GetChatModels(context.Background(), types.ProviderMistral)
	assert.True(t, IsNotConfigured(err))

	assert.True(t, r.Has(types.ProviderGroq))
	assert.Equal(t, []types.ProviderKey{types.ProviderOpenAI, types.ProviderOllama, types.ProviderGroq}, r.Providers())
}

func TestNormalize_FillsDisplayName(t *testing.T) {
	got := Normalize([]types.ModelCard{{ID: "m1"}, {ID: "m2", DisplayName: "Two"}})
	assert.Equal(t, []types.ModelCard{{ID: "m1", DisplayName: "m1"}, {ID: "m2", DisplayName: "Two"}}, got)
}

func TestHTTPClient_ListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[
			{"id":"gpt-4o","object":"model","owned_by":"openai"},
			{"id":"local","name":"Local Model","max_context_length":8192}
		]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPOptions{
		Name:    "openai",
		BaseURL: srv.URL + "/v1/",
		Headers: map[string]string{"Authorization": "Bearer sk-test"},
	})
	defer c.Close()

	cards, err := c.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []types.ModelCard{
		{ID: "gpt-4o"},
		{ID: "local", DisplayName: "Local Model", Tokens: 8192},
	}, cards)
}

func TestHTTPClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPOptions{BaseURL: srv.URL})
	defer c.Close()
	_, err := c.ListModels(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPClient_MissingDataIsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPOptions{BaseURL: srv.URL})
	defer c.Close()
	cards, err := c.ListModels(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cards)
}

func TestOpenAIClient_ListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		assert.Equal(t, "Bearer sk-openai", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"gpt-4o-mini","object":"model","owned_by":"openai","created":1}]}`))
	}))
	defer srv.Close()

	cards, err := NewOpenAIClient("sk-openai", srv.URL+"/v1").ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []types.ModelCard{{ID: "gpt-4o-mini"}}, cards)
}

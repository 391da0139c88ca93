package persist

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmsettings/pkg/types"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "db", "settings.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLite_EmptyLoadsDefaults(t *testing.T) {
	db := openTestDB(t)
	got, err := db.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.DefaultSettings(), got)
}

func TestSQLite_ApplyAndLoad(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	require.NoError(t, db.ApplySettings(ctx, samplePatch(at)))
	got, err := db.Load(ctx)
	require.NoError(t, err)

	cfg := got.LanguageModel[types.ProviderOllama]
	assert.True(t, cfg.Enabled)
	assert.Equal(t, []string{"llama3", "qwen2"}, cfg.EnabledModels)
	require.NotNil(t, cfg.LatestFetchTime)
	assert.True(t, at.Equal(*cfg.LatestFetchTime))
	assert.True(t, got.LanguageModel[types.ProviderOpenAI].Enabled)
}

func TestSQLite_PartialMergePerRow(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.ApplySettings(ctx, types.SettingsPatch{LanguageModel: map[types.ProviderKey]types.ProviderConfigPatch{
		types.ProviderOpenAI: {EnabledModels: &[]string{"gpt-4o"}},
		types.ProviderGroq:   {Enabled: types.Ptr(true)},
	}}))
	require.NoError(t, db.ApplySettings(ctx, types.SettingsPatch{LanguageModel: map[types.ProviderKey]types.ProviderConfigPatch{
		types.ProviderOpenAI: {Endpoint: types.Ptr("https://proxy.local/v1")},
	}}))

	got, err := db.Load(ctx)
	require.NoError(t, err)
	openai := got.LanguageModel[types.ProviderOpenAI]
	assert.True(t, openai.Enabled, "default enabled flag kept for a fresh row")
	assert.Equal(t, []string{"gpt-4o"}, openai.EnabledModels)
	assert.Equal(t, "https://proxy.local/v1", openai.Endpoint)
	assert.True(t, got.LanguageModel[types.ProviderGroq].Enabled)
}

func TestSQLite_CanceledContext(t *testing.T) {
	db := openTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, db.ApplySettings(ctx, samplePatch(time.Now())))

	got, err := db.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, got.LanguageModel[types.ProviderOllama].Enabled)
}

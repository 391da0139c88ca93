package persist

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmsettings/pkg/types"
)

func samplePatch(at time.Time) types.SettingsPatch {
	return types.SettingsPatch{LanguageModel: map[types.ProviderKey]types.ProviderConfigPatch{
		types.ProviderOllama: {
			Enabled:          types.Ptr(true),
			Endpoint:         types.Ptr("http://127.0.0.1:11434/v1"),
			Options:          map[string]string{"region": "local"},
			EnabledModels:    &[]string{"llama3", "qwen2"},
			CustomModelCards: &[]types.ModelCard{{ID: "mine", DisplayName: "Mine", Tokens: 4096, IsCustom: true}},
			LatestFetchTime:  &at,
		},
	}}
}

func TestFile_RoundTripAllFormats(t *testing.T) {
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	for _, name := range []string{"settings.json", "settings.yaml", "settings.yml", "settings.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			ctx := context.Background()

			f, err := NewFile(path, nil)
			require.NoError(t, err)
			require.NoError(t, f.ApplySettings(ctx, samplePatch(at)))

			reopened, err := NewFile(path, nil)
			require.NoError(t, err)
			got, err := reopened.Load(ctx)
			require.NoError(t, err)

			cfg := got.LanguageModel[types.ProviderOllama]
			assert.True(t, cfg.Enabled)
			assert.Equal(t, "http://127.0.0.1:11434/v1", cfg.Endpoint)
			assert.Equal(t, map[string]string{"region": "local"}, cfg.Options)
			assert.Equal(t, []string{"llama3", "qwen2"}, cfg.EnabledModels)
			assert.Equal(t, []types.ModelCard{{ID: "mine", DisplayName: "Mine", Tokens: 4096, IsCustom: true}}, cfg.CustomModelCards)
			require.NotNil(t, cfg.LatestFetchTime)
			assert.True(t, at.Equal(*cfg.LatestFetchTime))

			// untouched providers keep their defaults
			assert.True(t, got.LanguageModel[types.ProviderOpenAI].Enabled)
			assert.Len(t, got.LanguageModel, len(types.ProviderKeys()))
		})
	}
}

func TestFile_MissingFileLoadsDefaults(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "none.json"), nil)
	require.NoError(t, err)
	got, err := f.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.DefaultSettings(), got)
}

func TestFile_UnsupportedExtension(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "settings.ini"), nil)
	assert.Error(t, err)
}

func TestFile_MergesSuccessivePatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	ctx := context.Background()
	f, err := NewFile(path, nil)
	require.NoError(t, err)

	require.NoError(t, f.ApplySettings(ctx, types.SettingsPatch{LanguageModel: map[types.ProviderKey]types.ProviderConfigPatch{
		types.ProviderGroq: {EnabledModels: &[]string{"a"}, Options: map[string]string{"x": "1", "y": "2"}},
	}}))
	require.NoError(t, f.ApplySettings(ctx, types.SettingsPatch{LanguageModel: map[types.ProviderKey]types.ProviderConfigPatch{
		types.ProviderGroq: {Enabled: types.Ptr(true), Options: map[string]string{"y": ""}},
	}}))

	got, err := f.Load(ctx)
	require.NoError(t, err)
	groq := got.LanguageModel[types.ProviderGroq]
	assert.True(t, groq.Enabled)
	assert.Equal(t, []string{"a"}, groq.EnabledModels)
	assert.Equal(t, map[string]string{"x": "1"}, groq.Options)
}

func TestFile_DropsUnknownProviders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"languageModel":{"bogus":{"enabled":true},"groq":{"enabled":true}}}`), 0o644))
	f, err := NewFile(path, nil)
	require.NoError(t, err)
	got, err := f.Load(context.Background())
	require.NoError(t, err)
	_, ok := got.LanguageModel["bogus"]
	assert.False(t, ok)
	assert.True(t, got.LanguageModel[types.ProviderGroq].Enabled)
}

func TestFile_CorruptFileFailsLoadAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))
	f, err := NewFile(path, nil)
	require.NoError(t, err)

	_, err = f.Load(context.Background())
	assert.Error(t, err)
	err = f.ApplySettings(context.Background(), samplePatch(time.Now()))
	assert.Error(t, err)

	b, _ := os.ReadFile(path)
	assert.Equal(t, `{not json`, string(b), "file must not be overwritten")
}

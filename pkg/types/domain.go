package types

import (
	"maps"
	"slices"
	"time"
)

// ProviderKey identifies a language-model provider. The set of keys is fixed;
// see ProviderKeys.
type ProviderKey string

const (
	ProviderOpenAI     ProviderKey = "openai"
	ProviderAzure      ProviderKey = "azure"
	ProviderAnthropic  ProviderKey = "anthropic"
	ProviderGoogle     ProviderKey = "google"
	ProviderBedrock    ProviderKey = "bedrock"
	ProviderOllama     ProviderKey = "ollama"
	ProviderMistral    ProviderKey = "mistral"
	ProviderGroq       ProviderKey = "groq"
	ProviderOpenRouter ProviderKey = "openrouter"
	ProviderPerplexity ProviderKey = "perplexity"
	ProviderDeepSeek   ProviderKey = "deepseek"
	ProviderTogetherAI ProviderKey = "togetherai"
	ProviderMoonshot   ProviderKey = "moonshot"
	ProviderZhipu      ProviderKey = "zhipu"
)

var providerKeys = []ProviderKey{
	ProviderOpenAI,
	ProviderAzure,
	ProviderAnthropic,
	ProviderGoogle,
	ProviderBedrock,
	ProviderOllama,
	ProviderMistral,
	ProviderGroq,
	ProviderOpenRouter,
	ProviderPerplexity,
	ProviderDeepSeek,
	ProviderTogetherAI,
	ProviderMoonshot,
	ProviderZhipu,
}

// ProviderKeys returns every known provider key in display order.
func ProviderKeys() []ProviderKey { return slices.Clone(providerKeys) }

// IsKnownProvider reports whether k belongs to the fixed provider set.
func IsKnownProvider(k ProviderKey) bool { return slices.Contains(providerKeys, k) }

// ModelCard describes one model offered by a provider, either authored by the
// user (custom) or reported by the provider's catalog (remote).
type ModelCard struct {
	// Stable model identifier as understood by the provider.
	// example: gpt-4o-mini
	ID string `json:"id" yaml:"id" toml:"id" validate:"required" example:"gpt-4o-mini"`
	// Human-friendly name.
	// example: GPT-4o mini
	DisplayName string `json:"displayName,omitempty" yaml:"displayName,omitempty" toml:"displayName,omitempty" example:"GPT-4o mini"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	// Context window size in tokens.
	// example: 128000
	Tokens         int    `json:"tokens,omitempty" yaml:"tokens,omitempty" toml:"tokens,omitempty" example:"128000"`
	FunctionCall   bool   `json:"functionCall,omitempty" yaml:"functionCall,omitempty" toml:"functionCall,omitempty"`
	Vision         bool   `json:"vision,omitempty" yaml:"vision,omitempty" toml:"vision,omitempty"`
	Files          bool   `json:"files,omitempty" yaml:"files,omitempty" toml:"files,omitempty"`
	Enabled        bool   `json:"enabled,omitempty" yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	Hidden         bool   `json:"hidden,omitempty" yaml:"hidden,omitempty" toml:"hidden,omitempty"`
	Legacy         bool   `json:"legacy,omitempty" yaml:"legacy,omitempty" toml:"legacy,omitempty"`
	IsCustom       bool   `json:"isCustom,omitempty" yaml:"isCustom,omitempty" toml:"isCustom,omitempty"`
	DeploymentName string `json:"deploymentName,omitempty" yaml:"deploymentName,omitempty" toml:"deploymentName,omitempty"`
}

// ModelCardPatch names the model card fields an update replaces. Nil fields
// are left untouched.
type ModelCardPatch struct {
	DisplayName    *string `json:"displayName,omitempty"`
	Description    *string `json:"description,omitempty"`
	Tokens         *int    `json:"tokens,omitempty"`
	FunctionCall   *bool   `json:"functionCall,omitempty"`
	Vision         *bool   `json:"vision,omitempty"`
	Files          *bool   `json:"files,omitempty"`
	Enabled        *bool   `json:"enabled,omitempty"`
	Hidden         *bool   `json:"hidden,omitempty"`
	Legacy         *bool   `json:"legacy,omitempty"`
	DeploymentName *string `json:"deploymentName,omitempty"`
}

// ProviderConfig is the per-provider configuration record.
type ProviderConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" toml:"enabled"`
	// Optional endpoint override for the provider's API.
	// example: https://api.openai.com/v1
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" toml:"endpoint,omitempty" example:"https://api.openai.com/v1"`
	// Free-form provider options, merged key by key.
	Options map[string]string `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty"`
	// Model ids the user enabled for this provider. Order is preserved.
	EnabledModels    []string    `json:"enabledModels,omitempty" yaml:"enabledModels,omitempty" toml:"enabledModels,omitempty"`
	CustomModelCards []ModelCard `json:"customModelCards,omitempty" yaml:"customModelCards,omitempty" toml:"customModelCards,omitempty"`
	// Provider-reported models from the last successful catalog fetch.
	RemoteModelCards []ModelCard `json:"remoteModelCards,omitempty" yaml:"remoteModelCards,omitempty" toml:"remoteModelCards,omitempty"`
	// Time of the last successful catalog fetch; nil until the first one.
	LatestFetchTime *time.Time `json:"latestFetchTime,omitempty" yaml:"latestFetchTime,omitempty" toml:"latestFetchTime,omitempty"`
}

// Clone returns a deep copy of c.
func (c ProviderConfig) Clone() ProviderConfig {
	out := c
	out.Options = maps.Clone(c.Options)
	out.EnabledModels = slices.Clone(c.EnabledModels)
	out.CustomModelCards = slices.Clone(c.CustomModelCards)
	out.RemoteModelCards = slices.Clone(c.RemoteModelCards)
	if c.LatestFetchTime != nil {
		t := *c.LatestFetchTime
		out.LatestFetchTime = &t
	}
	return out
}

// GlobalLLMConfig maps each provider to its configuration.
type GlobalLLMConfig map[ProviderKey]ProviderConfig

// Clone returns a deep copy of g.
func (g GlobalLLMConfig) Clone() GlobalLLMConfig {
	if g == nil {
		return nil
	}
	out := make(GlobalLLMConfig, len(g))
	for k, v := range g {
		out[k] = v.Clone()
	}
	return out
}

// Settings is the persisted settings tree. Only the language model branch is
// owned by this module.
type Settings struct {
	LanguageModel GlobalLLMConfig `json:"languageModel" yaml:"languageModel" toml:"languageModel"`
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	return Settings{LanguageModel: s.LanguageModel.Clone()}
}

// DefaultSettings builds the initial tree: one empty entry per known provider,
// with OpenAI enabled.
func DefaultSettings() Settings {
	lm := make(GlobalLLMConfig, len(providerKeys))
	for _, k := range providerKeys {
		lm[k] = ProviderConfig{Enabled: k == ProviderOpenAI}
	}
	return Settings{LanguageModel: lm}
}

// ProviderConfigPatch is a partial ProviderConfig. A nil field is absent and
// leaves the stored value alone; slices, when present, replace the stored
// slice wholesale; Options is merged key by key.
type ProviderConfigPatch struct {
	Enabled          *bool             `json:"enabled,omitempty"`
	Endpoint         *string           `json:"endpoint,omitempty"`
	Options          map[string]string `json:"options,omitempty"`
	EnabledModels    *[]string         `json:"enabledModels,omitempty"`
	CustomModelCards *[]ModelCard      `json:"customModelCards,omitempty"`
	RemoteModelCards *[]ModelCard      `json:"remoteModelCards,omitempty"`
	LatestFetchTime  *time.Time        `json:"latestFetchTime,omitempty"`
}

// IsEmpty reports whether the patch names no field at all.
func (p ProviderConfigPatch) IsEmpty() bool {
	return p.Enabled == nil && p.Endpoint == nil && p.Options == nil &&
		p.EnabledModels == nil && p.CustomModelCards == nil &&
		p.RemoteModelCards == nil && p.LatestFetchTime == nil
}

// SettingsPatch is the fragment handed to persistence:
// {languageModel: {<provider>: <partial config>}}.
type SettingsPatch struct {
	LanguageModel map[ProviderKey]ProviderConfigPatch `json:"languageModel"`
}

// EditingTarget points at the custom model card currently open for edit.
type EditingTarget struct {
	ID       string      `json:"id" validate:"required"`
	Provider ProviderKey `json:"provider" validate:"required"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

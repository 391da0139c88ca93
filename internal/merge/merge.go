// Package merge applies partial provider configuration fragments to the
// language model settings tree.
//
// Merging is one level deep: scalar fields present in the patch overwrite,
// the Options map is merged key by key, and slice fields are replaced
// wholesale. Callers compute full replacement slices themselves.
package merge

import (
	"maps"
	"slices"

	"llmsettings/pkg/types"
)

// Provider returns cfg with patch applied. Neither argument is modified and the
// result shares no memory with them.
func Provider(cfg types.ProviderConfig, patch types.ProviderConfigPatch) types.ProviderConfig {
	out := cfg.Clone()
	if patch.Enabled != nil {
		out.Enabled = *patch.Enabled
	}
	if patch.Endpoint != nil {
		out.Endpoint = *patch.Endpoint
	}
	if patch.Options != nil {
		out.Options = mergeOptions(out.Options, patch.Options)
	}
	if patch.EnabledModels != nil {
		out.EnabledModels = replaceSlice(*patch.EnabledModels)
	}
	if patch.CustomModelCards != nil {
		out.CustomModelCards = replaceSlice(*patch.CustomModelCards)
	}
	if patch.RemoteModelCards != nil {
		out.RemoteModelCards = replaceSlice(*patch.RemoteModelCards)
	}
	if patch.LatestFetchTime != nil {
		t := *patch.LatestFetchTime
		out.LatestFetchTime = &t
	}
	return out
}

// Settings returns tree with every provider fragment in patch merged in.
// Providers not named by patch are copied unchanged. A fragment for a provider
// missing from tree starts from the zero ProviderConfig.
func Settings(tree types.Settings, patch types.SettingsPatch) types.Settings {
	out := tree.Clone()
	if out.LanguageModel == nil {
		out.LanguageModel = make(types.GlobalLLMConfig, len(patch.LanguageModel))
	}
	for provider, p := range patch.LanguageModel {
		out.LanguageModel[provider] = Provider(out.LanguageModel[provider], p)
	}
	return out
}

// mergeOptions overlays src onto dst. An empty value in src deletes the key.
func mergeOptions(dst, src map[string]string) map[string]string {
	out := maps.Clone(dst)
	if out == nil {
		out = make(map[string]string, len(src))
	}
	for k, v := range src {
		if v == "" {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// replaceSlice copies s so the stored tree never aliases caller memory. An
// empty, non-nil input stays non-nil: "replace with nothing" is not "absent".
func replaceSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clone(s)
}

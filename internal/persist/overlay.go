package persist

import (
	"github.com/rs/zerolog"

	"llmsettings/pkg/types"
)

// overlay lays stored provider entries over the default tree. Entries for
// providers outside the known set are dropped.
func overlay(stored types.GlobalLLMConfig, log zerolog.Logger) types.Settings {
	out := types.DefaultSettings()
	for k, cfg := range stored {
		if !types.IsKnownProvider(k) {
			log.Warn().Str("provider", string(k)).Msg("dropping stored settings for unknown provider")
			continue
		}
		out.LanguageModel[k] = cfg.Clone()
	}
	return out
}

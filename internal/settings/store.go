package settings

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"llmsettings/internal/merge"
	"llmsettings/pkg/types"
)

// Persister is the persistence collaborator. ApplySettings receives the
// fragment {languageModel: {<provider>: <partial config>}} of every merge and
// must return only once the fragment is durable.
type Persister interface {
	ApplySettings(ctx context.Context, patch types.SettingsPatch) error
}

type noopPersister struct{}

func (noopPersister) ApplySettings(context.Context, types.SettingsPatch) error { return nil }

// StoreConfig encapsulates all inputs for Store construction.
type StoreConfig struct {
	// Initial tree. Zero value means types.DefaultSettings().
	Initial   types.Settings
	Persister Persister
	Publisher EventPublisher
	Logger    *zerolog.Logger
}

// Store holds the canonical language model settings tree and the editing
// target. All mutations run one at a time, from the read of the current
// value through persistence to the commit, so concurrent callers are applied
// in call order.
type Store struct {
	// writeMu serializes mutations end to end.
	writeMu sync.Mutex
	// mu guards tree and editing for readers.
	mu      sync.RWMutex
	tree    types.Settings
	editing *types.EditingTarget

	persister Persister
	pub       EventPublisher
	log       zerolog.Logger
}

// New creates a store over initial that persists through p.
func New(initial types.Settings, p Persister) *Store {
	return NewWithConfig(StoreConfig{Initial: initial, Persister: p})
}

// NewWithConfig constructs a Store from StoreConfig, applying defaults for
// unset fields.
func NewWithConfig(cfg StoreConfig) *Store {
	s := &Store{
		tree:      cfg.Initial.Clone(),
		persister: cfg.Persister,
		pub:       cfg.Publisher,
		log:       zerolog.Nop(),
	}
	if s.tree.LanguageModel == nil {
		s.tree = types.DefaultSettings()
	}
	if s.persister == nil {
		s.persister = noopPersister{}
	}
	if s.pub == nil {
		s.pub = noopPublisher{}
	}
	if cfg.Logger != nil {
		s.log = cfg.Logger.With().Str("component", "settings").Logger()
	}
	return s
}

// ProviderConfig returns a copy of the committed configuration for provider.
// ok is false when the tree has no entry for it.
func (s *Store) ProviderConfig(provider types.ProviderKey) (types.ProviderConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.tree.LanguageModel[provider]
	if !ok {
		return types.ProviderConfig{}, false
	}
	return cfg.Clone(), true
}

// Settings returns a copy of the whole committed tree.
func (s *Store) Settings() types.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Clone()
}

// Editing returns the card currently open for edit, or nil.
func (s *Store) Editing() *types.EditingTarget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.editing == nil {
		return nil
	}
	t := *s.editing
	return &t
}

// mergeLocked merges patch into provider's config, persists the fragment and
// commits. Callers must hold writeMu.
func (s *Store) mergeLocked(ctx context.Context, provider types.ProviderKey, patch types.ProviderConfigPatch) error {
	if !types.IsKnownProvider(provider) {
		return ErrUnknownProvider(provider)
	}
	fragment := types.SettingsPatch{LanguageModel: map[types.ProviderKey]types.ProviderConfigPatch{provider: patch}}

	s.mu.RLock()
	next := merge.Settings(s.tree, fragment)
	s.mu.RUnlock()

	if err := s.persister.ApplySettings(ctx, fragment); err != nil {
		s.log.Error().Err(err).Str("provider", string(provider)).Msg("persist settings failed")
		return persistenceError{provider: provider, err: err}
	}

	s.mu.Lock()
	s.tree = next
	s.mu.Unlock()

	s.pub.Publish(Event{Name: EventMerged, Provider: provider, Fields: map[string]any{"fields": patchFields(patch)}})
	s.log.Debug().Str("provider", string(provider)).Strs("fields", patchFields(patch)).Msg("provider config merged")
	return nil
}

// skip records a mutation that found nothing to act on.
func (s *Store) skip(action string, provider types.ProviderKey, reason string) {
	s.pub.Publish(Event{Name: EventNoop, Provider: provider, Fields: map[string]any{"action": action, "reason": reason}})
	s.log.Debug().Str("provider", string(provider)).Str("action", action).Msg(reason)
}

func patchFields(p types.ProviderConfigPatch) []string {
	var out []string
	if p.Enabled != nil {
		out = append(out, "enabled")
	}
	if p.Endpoint != nil {
		out = append(out, "endpoint")
	}
	if p.Options != nil {
		out = append(out, "options")
	}
	if p.EnabledModels != nil {
		out = append(out, "enabledModels")
	}
	if p.CustomModelCards != nil {
		out = append(out, "customModelCards")
	}
	if p.RemoteModelCards != nil {
		out = append(out, "remoteModelCards")
	}
	if p.LatestFetchTime != nil {
		out = append(out, "latestFetchTime")
	}
	return out
}

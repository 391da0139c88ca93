package settings

import (
	"context"

	"llmsettings/internal/modelcard"
	"llmsettings/pkg/types"
)

// SetModelProviderConfig merges patch into provider's configuration and
// persists the fragment before returning. Fields absent from patch keep their
// value; slices in patch replace the stored slice.
func (s *Store) SetModelProviderConfig(ctx context.Context, provider types.ProviderKey, patch types.ProviderConfigPatch) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.mergeLocked(ctx, provider, patch)
}

// DispatchCustomModelCards applies op to provider's custom model cards. It is
// a no-op when the provider has no configuration entry.
func (s *Store) DispatchCustomModelCards(ctx context.Context, provider types.ProviderKey, op modelcard.Op) error {
	if !types.IsKnownProvider(provider) {
		return ErrUnknownProvider(provider)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	prev, ok := s.ProviderConfig(provider)
	if !ok {
		s.skip("dispatchCustomModelCards", provider, "provider has no configuration entry")
		return nil
	}
	next := modelcard.Reduce(prev.CustomModelCards, op)
	return s.mergeLocked(ctx, provider, types.ProviderConfigPatch{CustomModelCards: &next})
}

// RemoveEnabledModel drops every occurrence of modelID, and any empty entry,
// from provider's enabled models. Order of the remaining ids is kept. Nothing
// is written when the provider has no enabled models list.
func (s *Store) RemoveEnabledModel(ctx context.Context, provider types.ProviderKey, modelID string) error {
	if !types.IsKnownProvider(provider) {
		return ErrUnknownProvider(provider)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cfg, ok := s.ProviderConfig(provider)
	if !ok || cfg.EnabledModels == nil {
		s.skip("removeEnabledModel", provider, "provider has no enabled models list")
		return nil
	}
	kept := make([]string, 0, len(cfg.EnabledModels))
	for _, m := range cfg.EnabledModels {
		if m == "" || m == modelID {
			continue
		}
		kept = append(kept, m)
	}
	return s.mergeLocked(ctx, provider, types.ProviderConfigPatch{EnabledModels: &kept})
}

// ToggleProviderEnabled sets only the enabled flag. Model lists are kept when a
// provider is disabled.
func (s *Store) ToggleProviderEnabled(ctx context.Context, provider types.ProviderKey, enabled bool) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.mergeLocked(ctx, provider, types.ProviderConfigPatch{Enabled: &enabled})
}

// ToggleEditingCustomModelCard points the editing target at target, or
// clears it when target is nil. The target is not persisted.
func (s *Store) ToggleEditingCustomModelCard(target *types.EditingTarget) {
	var next *types.EditingTarget
	fields := map[string]any{}
	if target != nil {
		t := *target
		next = &t
		fields["id"] = t.ID
	}
	s.mu.Lock()
	s.editing = next
	s.mu.Unlock()

	var provider types.ProviderKey
	if next != nil {
		provider = next.Provider
	}
	s.pub.Publish(Event{Name: EventEditing, Provider: provider, Fields: fields})
}

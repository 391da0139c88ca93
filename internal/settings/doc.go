// Package settings owns the in-memory language model settings tree and the
// mutation entry points used by the API layer. It is structured into small
// files by concern:
//
//   - store.go: Store type, constructor, read accessors and the merge path.
//   - actions.go: entry points (SetModelProviderConfig, DispatchCustomModelCards,
//     RemoveEnabledModel, ToggleProviderEnabled, ToggleEditingCustomModelCard).
//   - errors.go: error types and helpers (IsPersistenceFailure, IsUnknownProvider).
//   - events.go: Event and EventPublisher; eventpub_memory.go records events for tests.
//
// Every merge hands its fragment to the Persister before the new tree is
// committed. A rejected fragment leaves the tree as it was and the error is
// returned to the caller. Missing targets (no provider entry, no enabled
// models list) are skipped without error and published as "noop" events.
package settings

package settings

import (
	"errors"
	"fmt"

	"llmsettings/pkg/types"
)

// persistenceError signals that the persistence collaborator rejected a
// settings fragment. The in-memory tree is left unchanged.
type persistenceError struct {
	provider types.ProviderKey
	err      error
}

func (e persistenceError) Error() string {
	return fmt.Sprintf("persist settings for %s: %v", e.provider, e.err)
}

func (e persistenceError) Unwrap() error { return e.err }

// IsPersistenceFailure reports whether err came from a rejected persistence call.
func IsPersistenceFailure(err error) bool {
	var pe persistenceError
	return errors.As(err, &pe)
}

// unknownProviderError signals a provider key outside the fixed provider set.
type unknownProviderError struct{ provider types.ProviderKey }

func (e unknownProviderError) Error() string { return "unknown provider: " + string(e.provider) }

// ErrUnknownProvider returns an error for a provider key outside the fixed set.
func ErrUnknownProvider(p types.ProviderKey) error { return unknownProviderError{provider: p} }

// IsUnknownProvider reports whether err indicates an unknown provider key.
func IsUnknownProvider(err error) bool {
	var ue unknownProviderError
	return errors.As(err, &ue)
}

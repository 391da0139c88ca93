package modellist

import (
	"errors"
	"fmt"

	"llmsettings/pkg/types"
)

// fetchError wraps a catalog client failure for one provider. It is only ever
// reported to requesters of the failing key and is never written to settings.
type fetchError struct {
	provider types.ProviderKey
	err      error
}

func (e fetchError) Error() string {
	return fmt.Sprintf("fetch model list for %s: %v", e.provider, e.err)
}

func (e fetchError) Unwrap() error { return e.err }

// IsFetchFailure reports whether err came from the remote catalog.
func IsFetchFailure(err error) bool {
	var fe fetchError
	return errors.As(err, &fe)
}

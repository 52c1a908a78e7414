package ports

import "github.com/openshelf/libctl/internal/core/domain"

// CredentialStore persists the bearer token and the identity it belongs to
// across process restarts. The two entries are always written and cleared
// together; a store must never surface one without the other, or a restore
// could break the "authenticated iff identity present" invariant.
type CredentialStore interface {
	// Save writes the token and identity atomically.
	Save(token string, identity domain.Identity) error
	// Load returns the persisted pair. A store with nothing persisted
	// returns ("", nil, nil).
	Load() (token string, identity *domain.Identity, err error)
	// Clear removes both entries. Clearing an empty store is not an error.
	Clear() error
}

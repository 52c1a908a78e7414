package ports

import (
	"context"

	"github.com/openshelf/libctl/internal/core/domain"
)

// SessionState is the client's view of the current session. Transitions keep
// the invariant IsAuthenticated == (Identity != nil); consumers may rely on
// never observing a half-updated state.
type SessionState struct {
	Identity        *domain.Identity
	IsAuthenticated bool
	// IsLoading is true only while the one-time session restore runs.
	// Route guards must suspend instead of redirecting while it is set.
	IsLoading     bool
	LoginError    string
	RegisterError string
}

// SessionService owns the session lifecycle: restore on startup, login,
// registration, logout, and forced invalidation when the server answers 401.
type SessionService interface {
	// Initialize restores a persisted session. It runs its work exactly once
	// per process and must complete before any protected surface renders.
	Initialize(ctx context.Context)
	// Login exchanges credentials for a session. It reports success; on
	// failure the state's LoginError carries a user-visible message and the
	// session stays unauthenticated.
	Login(ctx context.Context, username, password string) bool
	// Register creates an account. Success does not establish a session;
	// the caller logs in separately.
	Register(ctx context.Context, input RegisterInput) bool
	// Logout clears the session and its persisted copy. Idempotent.
	Logout()
	// Invalidate is the hook the request layer calls on a 401 response to
	// force the local session to agree with the server.
	Invalidate()
	ResetLoginError()
	ResetRegisterError()

	Snapshot() SessionState
	// Subscribe registers fn to run after every committed state transition.
	// The returned function unsubscribes.
	Subscribe(fn func(SessionState)) (unsubscribe func())
}

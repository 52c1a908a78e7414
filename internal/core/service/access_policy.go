package service

import (
	"github.com/openshelf/libctl/internal/core/domain"
	"github.com/openshelf/libctl/internal/core/ports"
)

// Requirement describes what a protected surface demands from the session:
// any authenticated identity, or an authenticated identity with one exact
// role. The zero value is unusable; build one with the constructors below.
type Requirement struct {
	role *domain.Role
}

// RequireAuthenticated admits any logged-in identity.
func RequireAuthenticated() Requirement {
	return Requirement{}
}

// RequireRole admits only a logged-in identity holding exactly r.
func RequireRole(r domain.Role) Requirement {
	return Requirement{role: &r}
}

// Verdict is the route guard's decision.
type Verdict int

const (
	// Allow renders the protected surface.
	Allow Verdict = iota
	// Wait suspends with a neutral indicator while the one-time session
	// restore is still running, instead of flash-redirecting.
	Wait
	// RedirectLogin sends an unauthenticated caller to the login surface.
	RedirectLogin
	// RedirectHome sends an authenticated caller with the wrong role home.
	RedirectHome
)

// CanAccess reports whether the session satisfies the requirement. It is a
// pure predicate over the session snapshot.
func CanAccess(s ports.SessionState, req Requirement) bool {
	if !s.IsAuthenticated || s.Identity == nil {
		return false
	}
	if req.role == nil {
		return true
	}
	return s.Identity.Role == *req.role
}

// Evaluate turns a session snapshot and a requirement into a guard verdict,
// including where to send a rejected caller.
func Evaluate(s ports.SessionState, req Requirement) Verdict {
	if s.IsLoading {
		return Wait
	}
	if CanAccess(s, req) {
		return Allow
	}
	if req.role != nil {
		return RedirectHome
	}
	return RedirectLogin
}

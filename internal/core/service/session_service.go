package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/openshelf/libctl/internal/auth"
	"github.com/openshelf/libctl/internal/core/domain"
	"github.com/openshelf/libctl/internal/core/ports"
)

const (
	loginFallback    = "Login failed. Please check your credentials and try again."
	registerFallback = "Registration failed. Please try again."
)

// serverMessage is implemented by transport errors that carry a
// human-readable message supplied by the server.
type serverMessage interface {
	ServerMessage() string
}

// SessionService is the single owner of session state for the process. All
// transitions happen under one mutex and only after a network call has
// returned, so no consumer ever observes a half-updated state.
type SessionService struct {
	api   ports.AuthAPI
	store ports.CredentialStore
	log   zerolog.Logger

	mu    sync.Mutex
	state ports.SessionState
	// gen invalidates in-flight completions: a login that finishes after a
	// newer login, logout, or forced invalidation must not clobber state.
	gen uint64

	initOnce sync.Once

	subsMu  sync.Mutex
	subs    map[int]func(ports.SessionState)
	nextSub int
}

// now is swapped out by tests that exercise expiry behaviour.
var now = time.Now

func NewSessionService(api ports.AuthAPI, store ports.CredentialStore, log zerolog.Logger) *SessionService {
	return &SessionService{
		api:   api,
		store: store,
		log:   log,
		state: ports.SessionState{IsLoading: true},
		subs:  make(map[int]func(ports.SessionState)),
	}
}

var _ ports.SessionService = (*SessionService)(nil)

// Initialize restores the persisted session, if any. The work runs exactly
// once per process; later calls return immediately. No token, an unreadable
// token, or an expired token all resolve silently to the unauthenticated
// state and clear whatever was persisted.
func (s *SessionService) Initialize(ctx context.Context) {
	s.initOnce.Do(func() { s.restore(ctx) })
}

func (s *SessionService) restore(_ context.Context) {
	token, identity, err := s.store.Load()
	if err != nil {
		s.log.Warn().Err(err).Msg("credential store unreadable, starting unauthenticated")
	}

	restored := (*domain.Identity)(nil)
	if err == nil && token != "" && identity != nil && identity.Role.Valid() {
		claims, decodeErr := auth.Decode(token)
		switch {
		case decodeErr != nil:
			s.log.Debug().Err(decodeErr).Msg("persisted token unreadable")
		case claims.ExpiredAt(now()):
			s.log.Debug().Str("username", identity.Username).Msg("persisted session expired")
		default:
			restored = identity
		}
	}

	if restored == nil {
		if clearErr := s.store.Clear(); clearErr != nil {
			s.log.Warn().Err(clearErr).Msg("failed to clear stale credentials")
		}
	}

	s.mu.Lock()
	s.state = ports.SessionState{
		Identity:        restored,
		IsAuthenticated: restored != nil,
	}
	s.mu.Unlock()
	s.notify()

	if restored != nil {
		s.log.Info().Str("username", restored.Username).Str("role", string(restored.Role)).Msg("session restored")
	}
}

// Login exchanges credentials for a token and, on success, persists the
// token and identity together and marks the session authenticated. On
// failure the session stays unauthenticated and LoginError carries the
// server's message when one was supplied.
func (s *SessionService) Login(ctx context.Context, username, password string) bool {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.state.IsLoading = true
	s.state.LoginError = ""
	s.mu.Unlock()
	s.notify()

	result, err := s.api.Login(ctx, ports.LoginInput{Username: username, Password: password})

	s.mu.Lock()
	if gen != s.gen {
		// A newer login or a logout won the race; this completion is stale.
		s.mu.Unlock()
		return false
	}
	s.state.IsLoading = false

	if err != nil {
		s.state.LoginError = userMessage(err, loginFallback)
		s.mu.Unlock()
		s.notify()
		s.log.Debug().Err(err).Str("username", username).Msg("login rejected")
		return false
	}

	role, roleErr := domain.ParseRole(result.Role)
	if roleErr != nil {
		s.state.LoginError = loginFallback
		s.mu.Unlock()
		s.notify()
		s.log.Error().Str("role", result.Role).Msg("login response carried an unknown role")
		return false
	}

	identity := domain.Identity{Username: result.Username, Role: role}
	if saveErr := s.store.Save(result.Token, identity); saveErr != nil {
		// The in-memory session is still good; it just will not survive a
		// restart.
		s.log.Warn().Err(saveErr).Msg("failed to persist credentials")
	}

	s.state.Identity = &identity
	s.state.IsAuthenticated = true
	s.state.LoginError = ""
	s.mu.Unlock()
	s.notify()

	s.log.Info().Str("username", identity.Username).Str("role", string(role)).Msg("logged in")
	return true
}

// Register creates an account. It deliberately does not establish a session:
// the caller logs in afterwards with the new credentials.
func (s *SessionService) Register(ctx context.Context, input ports.RegisterInput) bool {
	s.mu.Lock()
	gen := s.gen
	s.state.IsLoading = true
	s.state.RegisterError = ""
	s.mu.Unlock()
	s.notify()

	_, err := s.api.Register(ctx, input)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return false
	}
	s.state.IsLoading = false
	if err != nil {
		s.state.RegisterError = userMessage(err, registerFallback)
		s.mu.Unlock()
		s.notify()
		s.log.Debug().Err(err).Str("username", input.Username).Msg("registration rejected")
		return false
	}
	s.state.RegisterError = ""
	s.mu.Unlock()
	s.notify()

	s.log.Info().Str("username", input.Username).Msg("account registered")
	return true
}

// Logout clears the persisted credentials and resets to the unauthenticated
// initial state. Safe to call when already logged out.
func (s *SessionService) Logout() {
	s.clear("logged out")
}

// Invalidate is the 401 hook: the server no longer honours our token, so the
// local "authenticated" belief is wrong and must be dropped immediately.
func (s *SessionService) Invalidate() {
	s.clear("session invalidated by server")
}

func (s *SessionService) clear(reason string) {
	if err := s.store.Clear(); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear persisted credentials")
	}

	s.mu.Lock()
	s.gen++
	wasAuthenticated := s.state.IsAuthenticated
	s.state = ports.SessionState{}
	s.mu.Unlock()
	s.notify()

	if wasAuthenticated {
		s.log.Info().Msg(reason)
	}
}

// ResetLoginError clears a stale login error without touching identity.
func (s *SessionService) ResetLoginError() {
	s.mu.Lock()
	s.state.LoginError = ""
	s.mu.Unlock()
	s.notify()
}

// ResetRegisterError clears a stale registration error without touching
// identity.
func (s *SessionService) ResetRegisterError() {
	s.mu.Lock()
	s.state.RegisterError = ""
	s.mu.Unlock()
	s.notify()
}

// Snapshot returns a copy of the current session state.
func (s *SessionService) Snapshot() ports.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to run after every committed transition and returns
// the matching unsubscribe function.
func (s *SessionService) Subscribe(fn func(ports.SessionState)) func() {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *SessionService) notify() {
	state := s.Snapshot()

	s.subsMu.Lock()
	fns := make([]func(ports.SessionState), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

// userMessage prefers the server-supplied message over the generic fallback.
func userMessage(err error, fallback string) string {
	var sm serverMessage
	if errors.As(err, &sm) && sm.ServerMessage() != "" {
		return sm.ServerMessage()
	}
	return fallback
}

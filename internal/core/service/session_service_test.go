package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/openshelf/libctl/internal/core/domain"
	"github.com/openshelf/libctl/internal/core/ports"
)

type memStore struct {
	token    string
	identity *domain.Identity
	saves    int
	clears   int
	loadErr  error
}

func (m *memStore) Save(token string, identity domain.Identity) error {
	m.token = token
	m.identity = &identity
	m.saves++
	return nil
}

func (m *memStore) Load() (string, *domain.Identity, error) {
	if m.loadErr != nil {
		return "", nil, m.loadErr
	}
	return m.token, m.identity, nil
}

func (m *memStore) Clear() error {
	m.token = ""
	m.identity = nil
	m.clears++
	return nil
}

type stubAuthAPI struct {
	loginResult    *ports.AuthResult
	loginErr       error
	registerErr    error
	loginCalls     int
	registerCalls  int
	loginEntered   chan struct{}
	loginBlockedOn chan struct{}
}

func (s *stubAuthAPI) Login(context.Context, ports.LoginInput) (*ports.AuthResult, error) {
	s.loginCalls++
	if s.loginEntered != nil {
		s.loginEntered <- struct{}{}
	}
	if s.loginBlockedOn != nil {
		<-s.loginBlockedOn
	}
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.loginResult, nil
}

func (s *stubAuthAPI) Register(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
	s.registerCalls++
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &ports.AuthResult{Username: "new-user", Role: "PATRON"}, nil
}

// rejectionError mimics a transport error carrying a server-supplied message.
type rejectionError struct{ msg string }

func (e *rejectionError) Error() string         { return "rejected" }
func (e *rejectionError) ServerMessage() string { return e.msg }

func testToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"username": "alice", "role": "PATRON", "exp": expiresAt.Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to forge token: %v", err)
	}
	return token
}

func newTestSession(api *stubAuthAPI, store *memStore) *SessionService {
	return NewSessionService(api, store, zerolog.Nop())
}

func assertUnauthenticated(t *testing.T, state ports.SessionState) {
	t.Helper()
	if state.IsAuthenticated || state.Identity != nil {
		t.Fatalf("expected unauthenticated state, got %+v", state)
	}
}

func TestInitialize_NoStoredToken(t *testing.T) {
	svc := newTestSession(&stubAuthAPI{}, &memStore{})

	svc.Initialize(context.Background())

	state := svc.Snapshot()
	assertUnauthenticated(t, state)
	if state.IsLoading {
		t.Fatalf("IsLoading must be false after Initialize")
	}
}

func TestInitialize_RestoresValidSession(t *testing.T) {
	store := &memStore{
		token:    testToken(t, time.Now().Add(time.Hour)),
		identity: &domain.Identity{Username: "alice", Role: domain.RolePatron},
	}
	svc := newTestSession(&stubAuthAPI{}, store)

	svc.Initialize(context.Background())

	state := svc.Snapshot()
	if !state.IsAuthenticated || state.Identity == nil {
		t.Fatalf("expected restored session, got %+v", state)
	}
	if state.Identity.Username != "alice" || state.Identity.Role != domain.RolePatron {
		t.Fatalf("restored identity mismatch: %+v", state.Identity)
	}
}

func TestInitialize_ExpiredTokenClearsStore(t *testing.T) {
	store := &memStore{
		token:    testToken(t, time.Now().Add(-time.Hour)),
		identity: &domain.Identity{Username: "alice", Role: domain.RolePatron},
	}
	svc := newTestSession(&stubAuthAPI{}, store)

	svc.Initialize(context.Background())

	assertUnauthenticated(t, svc.Snapshot())
	if store.clears == 0 {
		t.Fatalf("expected persisted credentials to be cleared")
	}
	if store.token != "" {
		t.Fatalf("expected token removed from store")
	}
}

func TestInitialize_MalformedTokenClearsStore(t *testing.T) {
	store := &memStore{
		token:    "garbage",
		identity: &domain.Identity{Username: "alice", Role: domain.RolePatron},
	}
	svc := newTestSession(&stubAuthAPI{}, store)

	svc.Initialize(context.Background())

	assertUnauthenticated(t, svc.Snapshot())
	if store.clears == 0 {
		t.Fatalf("expected persisted credentials to be cleared")
	}
}

func TestInitialize_TokenWithoutIdentityClearsStore(t *testing.T) {
	// A token alone must never restore a session: the pair is written
	// together, so a missing identity means the store is corrupt.
	store := &memStore{token: testToken(t, time.Now().Add(time.Hour))}
	svc := newTestSession(&stubAuthAPI{}, store)

	svc.Initialize(context.Background())

	assertUnauthenticated(t, svc.Snapshot())
	if store.clears == 0 {
		t.Fatalf("expected persisted credentials to be cleared")
	}
}

func TestInitialize_UnreadableStoreStartsUnauthenticated(t *testing.T) {
	store := &memStore{loadErr: errors.New("disk gone")}
	svc := newTestSession(&stubAuthAPI{}, store)

	svc.Initialize(context.Background())

	state := svc.Snapshot()
	assertUnauthenticated(t, state)
	if state.IsLoading {
		t.Fatalf("IsLoading must be false after Initialize")
	}
}

func TestInitialize_RunsOnce(t *testing.T) {
	store := &memStore{}
	svc := newTestSession(&stubAuthAPI{}, store)

	svc.Initialize(context.Background())
	store.token = testToken(t, time.Now().Add(time.Hour))
	store.identity = &domain.Identity{Username: "alice", Role: domain.RolePatron}
	svc.Initialize(context.Background())

	// The second call must not re-run the restore.
	assertUnauthenticated(t, svc.Snapshot())
}

func TestLogin_Success(t *testing.T) {
	store := &memStore{}
	api := &stubAuthAPI{loginResult: &ports.AuthResult{
		Token:    testToken(t, time.Now().Add(time.Hour)),
		Username: "alice",
		Role:     "LIBRARIAN",
	}}
	svc := newTestSession(api, store)
	svc.Initialize(context.Background())

	if !svc.Login(context.Background(), "alice", "pw") {
		t.Fatalf("expected login to succeed")
	}

	state := svc.Snapshot()
	if !state.IsAuthenticated || state.Identity == nil {
		t.Fatalf("expected authenticated state, got %+v", state)
	}
	if state.Identity.Role != domain.RoleLibrarian {
		t.Fatalf("unexpected role: %s", state.Identity.Role)
	}
	if state.LoginError != "" {
		t.Fatalf("LoginError must be empty after success, got %q", state.LoginError)
	}
	if store.saves != 1 || store.token == "" || store.identity == nil {
		t.Fatalf("expected token and identity persisted together")
	}
}

func TestLogin_FailureUsesServerMessage(t *testing.T) {
	api := &stubAuthAPI{loginErr: &rejectionError{msg: "Invalid username or password"}}
	svc := newTestSession(api, &memStore{})
	svc.Initialize(context.Background())

	if svc.Login(context.Background(), "alice", "wrong") {
		t.Fatalf("expected login to fail")
	}

	state := svc.Snapshot()
	assertUnauthenticated(t, state)
	if state.LoginError != "Invalid username or password" {
		t.Fatalf("expected server message, got %q", state.LoginError)
	}
}

func TestLogin_FailureFallsBackToGenericMessage(t *testing.T) {
	api := &stubAuthAPI{loginErr: errors.New("connection refused")}
	svc := newTestSession(api, &memStore{})
	svc.Initialize(context.Background())

	if svc.Login(context.Background(), "alice", "pw") {
		t.Fatalf("expected login to fail")
	}

	state := svc.Snapshot()
	assertUnauthenticated(t, state)
	if state.LoginError != loginFallback {
		t.Fatalf("expected generic fallback, got %q", state.LoginError)
	}
}

func TestLogin_UnknownRoleRejected(t *testing.T) {
	api := &stubAuthAPI{loginResult: &ports.AuthResult{Token: "t", Username: "alice", Role: "SUPERUSER"}}
	svc := newTestSession(api, &memStore{})
	svc.Initialize(context.Background())

	if svc.Login(context.Background(), "alice", "pw") {
		t.Fatalf("expected login to fail on unknown role")
	}
	assertUnauthenticated(t, svc.Snapshot())
}

func TestLogin_StaleCompletionIgnored(t *testing.T) {
	api := &stubAuthAPI{
		loginResult: &ports.AuthResult{
			Token:    testToken(t, time.Now().Add(time.Hour)),
			Username: "alice",
			Role:     "PATRON",
		},
		loginEntered:   make(chan struct{}, 1),
		loginBlockedOn: make(chan struct{}),
	}
	svc := newTestSession(api, &memStore{})
	svc.Initialize(context.Background())

	done := make(chan bool)
	go func() { done <- svc.Login(context.Background(), "alice", "pw") }()

	<-api.loginEntered
	// Logout wins the race before the login call completes.
	svc.Logout()
	close(api.loginBlockedOn)

	if <-done {
		t.Fatalf("stale login completion must report failure")
	}
	assertUnauthenticated(t, svc.Snapshot())
}

func TestRegister_SuccessDoesNotAuthenticate(t *testing.T) {
	svc := newTestSession(&stubAuthAPI{}, &memStore{})
	svc.Initialize(context.Background())

	ok := svc.Register(context.Background(), ports.RegisterInput{Username: "new-user"})
	if !ok {
		t.Fatalf("expected registration to succeed")
	}

	state := svc.Snapshot()
	assertUnauthenticated(t, state)
	if state.RegisterError != "" {
		t.Fatalf("RegisterError must be empty after success, got %q", state.RegisterError)
	}
}

func TestRegister_FailureSetsError(t *testing.T) {
	api := &stubAuthAPI{registerErr: &rejectionError{msg: "username already taken"}}
	svc := newTestSession(api, &memStore{})
	svc.Initialize(context.Background())

	if svc.Register(context.Background(), ports.RegisterInput{Username: "dup"}) {
		t.Fatalf("expected registration to fail")
	}
	if got := svc.Snapshot().RegisterError; got != "username already taken" {
		t.Fatalf("expected server message, got %q", got)
	}
}

func TestLogout_Idempotent(t *testing.T) {
	store := &memStore{}
	api := &stubAuthAPI{loginResult: &ports.AuthResult{Token: "t", Username: "alice", Role: "PATRON"}}
	svc := newTestSession(api, store)
	svc.Initialize(context.Background())
	svc.Login(context.Background(), "alice", "pw")

	svc.Logout()
	svc.Logout()

	assertUnauthenticated(t, svc.Snapshot())
	if store.token != "" || store.identity != nil {
		t.Fatalf("expected persisted credentials cleared")
	}
}

func TestInvalidate_ClearsSession(t *testing.T) {
	store := &memStore{}
	api := &stubAuthAPI{loginResult: &ports.AuthResult{Token: "t", Username: "alice", Role: "PATRON"}}
	svc := newTestSession(api, store)
	svc.Initialize(context.Background())
	svc.Login(context.Background(), "alice", "pw")

	// The request layer saw a 401: the server's view wins.
	svc.Invalidate()

	assertUnauthenticated(t, svc.Snapshot())
	if store.token != "" {
		t.Fatalf("expected persisted token cleared")
	}
}

func TestResetErrors(t *testing.T) {
	api := &stubAuthAPI{
		loginErr:    &rejectionError{msg: "bad login"},
		registerErr: &rejectionError{msg: "bad register"},
	}
	svc := newTestSession(api, &memStore{})
	svc.Initialize(context.Background())
	svc.Login(context.Background(), "alice", "pw")
	svc.Register(context.Background(), ports.RegisterInput{})

	svc.ResetLoginError()
	svc.ResetRegisterError()

	state := svc.Snapshot()
	if state.LoginError != "" || state.RegisterError != "" {
		t.Fatalf("expected errors cleared, got %+v", state)
	}
}

func TestSubscribe_NotifiesAndUnsubscribes(t *testing.T) {
	svc := newTestSession(&stubAuthAPI{loginErr: errors.New("nope")}, &memStore{})
	svc.Initialize(context.Background())

	var seen []ports.SessionState
	unsubscribe := svc.Subscribe(func(s ports.SessionState) { seen = append(seen, s) })

	svc.ResetLoginError()
	if len(seen) != 1 {
		t.Fatalf("expected one notification, got %d", len(seen))
	}

	unsubscribe()
	svc.ResetLoginError()
	if len(seen) != 1 {
		t.Fatalf("expected no notification after unsubscribe, got %d", len(seen))
	}
}

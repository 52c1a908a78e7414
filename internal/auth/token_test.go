package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openshelf/libctl/internal/core/domain"
)

func forgeToken(t *testing.T, username, role string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"username": username,
		"role":     role,
		"exp":      expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to forge token: %v", err)
	}
	return token
}

func TestDecode_ValidToken(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	token := forgeToken(t, "alice", "PATRON", exp)

	claims, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if claims.Username != "alice" {
		t.Fatalf("unexpected username: %q", claims.Username)
	}
	if claims.Role != "PATRON" {
		t.Fatalf("unexpected role: %q", claims.Role)
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Unix() != exp.Unix() {
		t.Fatalf("unexpected expiry: %v", claims.ExpiresAt)
	}
}

func TestDecode_MalformedToken(t *testing.T) {
	for _, token := range []string{"", "not-a-jwt", "a.b", "x.y.z"} {
		if _, err := Decode(token); !errors.Is(err, domain.ErrTokenInvalid) {
			t.Fatalf("Decode(%q): expected ErrTokenInvalid, got %v", token, err)
		}
	}
}

func TestDecode_ExpiredTokenStillDecodes(t *testing.T) {
	token := forgeToken(t, "bob", "LIBRARIAN", time.Now().Add(-time.Hour))

	claims, err := Decode(token)
	if err != nil {
		t.Fatalf("expired token must still decode, got error: %v", err)
	}
	if !claims.ExpiredAt(time.Now()) {
		t.Fatalf("expected claims to be expired")
	}
}

func TestClaims_ExpiredAt(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name    string
		exp     *time.Time
		expired bool
	}{
		{"future expiry", ptr(now.Add(time.Minute)), false},
		{"past expiry", ptr(now.Add(-time.Minute)), true},
		{"exactly now", ptr(now), true},
		{"missing exp claim", nil, true},
	}

	for _, tc := range cases {
		claims := &Claims{}
		if tc.exp != nil {
			claims.ExpiresAt = jwt.NewNumericDate(*tc.exp)
		}
		if got := claims.ExpiredAt(now); got != tc.expired {
			t.Fatalf("%s: ExpiredAt = %v, want %v", tc.name, got, tc.expired)
		}
	}
}

func ptr(t time.Time) *time.Time { return &t }

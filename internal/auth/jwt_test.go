package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"classroom-api/internal/config"
	"classroom-api/internal/guard"

	"github.com/golang-jwt/jwt/v5"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.AuthConfig{TokenSecret: "secret", TokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return m
}

func TestNewManager_RequiresSecret(t *testing.T) {
	if _, err := NewManager(config.AuthConfig{}); err == nil {
		t.Fatalf("expected error without secret")
	}
	m, err := NewManager(config.AuthConfig{TokenSecret: "s"})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	if m.TTL() != time.Hour {
		t.Fatalf("expected default ttl of 1h, got %s", m.TTL())
	}
}

func TestIssueAndVerify_RoundTripUntilExpiry(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0).UTC()

	tok, err := m.Issue(now, map[string]any{"email": "a@x.com", "name": "Ada"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := m.Verify(tok, now.Add(59*time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Email != "a@x.com" {
		t.Fatalf("unexpected email %q", claims.Email)
	}
	if claims.Payload["name"] != "Ada" {
		t.Fatalf("expected payload signed verbatim, got %+v", claims.Payload)
	}
	if !claims.ExpiresAt.Equal(now.Add(time.Hour)) || !claims.IssuedAt.Equal(now) {
		t.Fatalf("unexpected times: iat=%s exp=%s", claims.IssuedAt, claims.ExpiresAt)
	}

	for _, at := range []time.Duration{time.Hour, 61 * time.Minute, 48 * time.Hour} {
		_, err := m.Verify(tok, now.Add(at))
		if !errors.Is(err, guard.ErrUnauthenticated) {
			t.Fatalf("expected unauthenticated at +%s, got %v", at, err)
		}
	}
}

func TestIssue_OverridesClientTimestamps(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0).UTC()

	tok, err := m.Issue(now, map[string]any{"email": "a@x.com", "exp": now.Add(365 * 24 * time.Hour).Unix()})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(tok, now.Add(2*time.Hour)); err == nil {
		t.Fatalf("expected client-supplied exp to be ignored")
	}
}

func TestVerify_RejectsTampering(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0).UTC()
	tok, err := m.Issue(now, map[string]any{"email": "a@x.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("expected compact jws, got %q", tok)
	}

	forgedPayload := base64.RawURLEncoding.EncodeToString([]byte(`{"email":"admin@x.com","iat":1700000000,"exp":1700003600}`))
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}

	cases := map[string]string{
		"payload":   parts[0] + "." + forgedPayload + "." + parts[2],
		"signature": parts[0] + "." + parts[1] + "." + string(sig),
		"truncated": parts[0] + "." + parts[1],
		"garbage":   "not-a-token",
		"empty":     "",
	}
	for name, bad := range cases {
		if _, err := m.Verify(bad, now); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("%s: expected ErrUnauthenticated, got %v", name, err)
		}
	}
}

func TestVerify_RejectsOtherSecretAndAlgorithm(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0).UTC()

	other, _ := NewManager(config.AuthConfig{TokenSecret: "other"})
	tok, err := other.Issue(now, map[string]any{"email": "a@x.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(tok, now); err == nil {
		t.Fatalf("expected signature mismatch")
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"email": "a@x.com",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Verify(hs512, now); err == nil {
		t.Fatalf("expected algorithm rejection")
	}
}

func TestVerify_RequiresEmail(t *testing.T) {
	m := newTestManager(t)
	now := time.Unix(1700000000, 0).UTC()
	tok, err := m.Issue(now, map[string]any{"name": "anonymous"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(tok, now); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

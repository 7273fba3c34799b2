package auth

import (
	"errors"
	"fmt"
	"time"

	"classroom-api/internal/config"
	"classroom-api/internal/guard"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthenticated covers every reason a token is not accepted.
var ErrUnauthenticated = fmt.Errorf("auth: %w", guard.ErrUnauthenticated)

// Manager issues and verifies access tokens. It holds no per-token state.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(cfg config.AuthConfig) (*Manager, error) {
	if cfg.TokenSecret == "" {
		return nil, errors.New("ACCESS_TOKEN_SECRET is required")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Manager{secret: []byte(cfg.TokenSecret), ttl: ttl}, nil
}

func (m *Manager) TTL() time.Duration { return m.ttl }

/* ===================== ISSUE ===================== */

// Issue signs payload as-is. Only iat and exp are owned by the server and overwritten.
func (m *Manager) Issue(now time.Time, payload map[string]any) (string, error) {
	claims := make(jwt.MapClaims, len(payload)+2)
	for k, v := range payload {
		claims[k] = v
	}
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(m.ttl))

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

/* ===================== VERIFY ===================== */

func (m *Manager) Verify(tokenString string, now time.Time) (Claims, error) {
	if tokenString == "" {
		return Claims{}, fmt.Errorf("%w: empty token", ErrUnauthenticated)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	mc := jwt.MapClaims{}
	if _, err := parser.ParseWithClaims(tokenString, mc, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	email, _ := mc["email"].(string)
	if email == "" {
		return Claims{}, fmt.Errorf("%w: email claim missing", ErrUnauthenticated)
	}

	out := Claims{Email: email, Payload: map[string]any(mc)}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

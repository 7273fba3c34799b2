package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"classroom-api/internal/guard"
	"classroom-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"
const bearerScheme = "Bearer"

// Authenticate verifies the bearer token and puts the caller identity into the request context.
// It does not perform role checks; those belong to internal/rbac.
func Authenticate(m *Manager) guard.Guard {
	return guard.Guard{
		Name:     "authenticate",
		Provides: guard.Identity,
		Check: func(c *gin.Context) (context.Context, error) {
			tok, err := bearerToken(c.GetHeader(authorizationHeader))
			if err != nil {
				return nil, err
			}
			claims, err := m.Verify(tok, time.Now())
			if err != nil {
				return nil, err
			}

			c.Set(logger.CallerKey, claims.Email)
			return WithIdentity(c.Request.Context(), claims.Identity()), nil
		},
	}
}

// bearerToken extracts the credential from "Bearer <token>".
func bearerToken(header string) (string, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return "", fmt.Errorf("%w: missing authorization header", ErrUnauthenticated)
	}
	scheme, tok, ok := strings.Cut(raw, " ")
	if !ok || scheme != bearerScheme {
		return "", fmt.Errorf("%w: not a bearer credential", ErrUnauthenticated)
	}
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return "", fmt.Errorf("%w: missing bearer token", ErrUnauthenticated)
	}
	return tok, nil
}

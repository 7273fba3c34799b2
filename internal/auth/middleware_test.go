package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"classroom-api/internal/guard"

	"github.com/gin-gonic/gin"
)

func TestAuthenticate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newTestManager(t)

	valid, err := m.Issue(time.Now(), map[string]any{"email": "a@x.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	expired, err := m.Issue(time.Now().Add(-2*time.Hour), map[string]any{"email": "a@x.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"missing token segment", "Bearer", http.StatusUnauthorized},
		{"blank token", "Bearer   ", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"valid", "Bearer " + valid, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/x", guard.New(Authenticate(m)).Handler(), func(c *gin.Context) {
				email, err := Email(c.Request.Context())
				if err != nil {
					t.Errorf("expected identity in context: %v", err)
				}
				c.JSON(http.StatusOK, gin.H{"email": email})
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d (%s)", tc.status, w.Code, w.Body.String())
			}
			if tc.status == http.StatusUnauthorized && w.Body.String() != `{"message":"unauthorized access"}` {
				t.Fatalf("unexpected body %s", w.Body.String())
			}
		})
	}
}

func TestIdentityFrom_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := IdentityFrom(req.Context()); err != ErrNoIdentity {
		t.Fatalf("expected ErrNoIdentity, got %v", err)
	}
}

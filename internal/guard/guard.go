// Package guard composes request guards into an ordered chain.
//
// A guard either admits a request, optionally enriching its context, or stops
// it with an error. Guards that read the caller identity must run after a guard
// that provides it; New enforces that at route registration time.
package guard

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"classroom-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Response bodies. They never say which rule failed.
const (
	MessageUnauthorized = "unauthorized access"
	MessageForbidden    = "forbidden access"
	MessageInternal     = "internal server error"
)

// Capability is something a guard either needs in the request context or puts there.
type Capability uint8

const (
	// Identity means an authenticated caller identity is present in the request context.
	Identity Capability = 1 << iota
)

// CheckFunc inspects a request. It returns the context subsequent guards and
// the handler should see, or an error to stop the request.
type CheckFunc func(c *gin.Context) (context.Context, error)

type Guard struct {
	Name     string
	Requires Capability
	Provides Capability
	Check    CheckFunc
}

// DenyFunc observes a stopped request.
type DenyFunc func(guardName string, status int)

type Chain struct {
	guards []Guard
	onDeny DenyFunc
}

// New validates the ordering of guards and returns the chain.
// It panics on an ordering error: that is a wiring bug, not a request condition.
func New(guards ...Guard) *Chain {
	var have Capability
	for i, g := range guards {
		if g.Check == nil {
			panic(fmt.Sprintf("guard: %q at position %d has no check", g.Name, i))
		}
		if missing := g.Requires &^ have; missing != 0 {
			panic(fmt.Sprintf("guard: %q at position %d runs before its identity is established", g.Name, i))
		}
		have |= g.Provides
	}
	out := make([]Guard, len(guards))
	copy(out, guards)
	return &Chain{guards: out}
}

func (ch *Chain) OnDeny(fn DenyFunc) *Chain {
	ch.onDeny = fn
	return ch
}

// Handler renders the chain as a single gin middleware.
func (ch *Chain) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, g := range ch.guards {
			ctx, err := g.Check(c)
			if err != nil {
				ch.deny(c, g.Name, err)
				return
			}
			if ctx != nil && ctx != c.Request.Context() {
				c.Request = c.Request.WithContext(ctx)
			}
		}
		c.Next()
	}
}

// Status maps a guard error to its HTTP status and public message.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, MessageUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, MessageForbidden
	default:
		return http.StatusInternalServerError, MessageInternal
	}
}

func (ch *Chain) deny(c *gin.Context, name string, err error) {
	status, msg := Status(err)
	if status == http.StatusInternalServerError {
		logger.FromGin(c).Error("guard failed", "guard", name, "err", err)
		_ = c.Error(err)
	}
	if ch.onDeny != nil {
		ch.onDeny(name, status)
	}
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

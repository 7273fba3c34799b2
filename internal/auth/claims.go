package auth

import "time"

// Claims is the decoded content of a verified access token.
// Payload holds every claim exactly as it was signed, including iat and exp.
type Claims struct {
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Payload   map[string]any
}

// Identity is what a verified token proves about the caller. It lives for one request.
type Identity struct {
	Email string
}

func (c Claims) Identity() Identity { return Identity{Email: c.Email} }

package auth

import (
	"errors"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrNotAdmin        = errors.New("admin access required")
)

// AdminPolicy decides who may read platform analytics. It is built once from
// configuration and handed to the middleware and the websocket server.
type AdminPolicy struct {
	emails map[string]struct{}
}

func NewAdminPolicy(emails []string) *AdminPolicy {
	p := &AdminPolicy{emails: make(map[string]struct{}, len(emails))}
	for _, email := range emails {
		normalized := normalizeEmail(email)
		if normalized != "" {
			p.emails[normalized] = struct{}{}
		}
	}
	return p
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *AdminPolicy) IsAdmin(email string) bool {
	if p == nil {
		return false
	}
	normalized := normalizeEmail(email)
	if normalized == "" {
		return false
	}
	_, ok := p.emails[normalized]
	return ok
}

// Authorize returns ErrUnauthenticated for a missing identity and ErrNotAdmin
// for a signed-in non-admin.
func (p *AdminPolicy) Authorize(claims *Claims) error {
	if claims == nil || strings.TrimSpace(claims.Email) == "" {
		return ErrUnauthenticated
	}
	if !p.IsAdmin(claims.Email) {
		return ErrNotAdmin
	}
	return nil
}

// Authenticate verifies token and applies the policy in one step.
func (p *AdminPolicy) Authenticate(token, secret string) (*Claims, error) {
	claims, err := VerifyAccessToken(token, secret)
	if err != nil {
		return nil, errors.Join(ErrUnauthenticated, err)
	}
	if err := p.Authorize(claims); err != nil {
		return nil, err
	}
	return claims, nil
}

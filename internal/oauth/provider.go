// Package oauth signs users in through an external identity provider and
// keeps the one-time state values that protect the redirect round trip.
package oauth

import (
	"context"
	"errors"
)

var (
	ErrInvalidState = errors.New("oauth: invalid or expired state")
	ErrNoEmail      = errors.New("oauth: provider returned no email")
)

// Identity is what the provider tells us about the signed-in account.
type Identity struct {
	Email string
	Name  string
}

type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (Identity, error)
}

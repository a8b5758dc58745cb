package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/proposals/internal/common"
)

// ErrMissingBearer means the request carried no "Bearer" credentials.
var ErrMissingBearer = errors.New("missing bearer token")

// Identity is the authenticated caller. It is bound to the request context
// once and never modified.
type Identity struct {
	Email string
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity bound to ctx, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.Email != ""
}

// TokenVerifier is the part of TokenCodec the guard needs.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Guard combines the route gate with token verification.
type Guard struct {
	gate   *RouteGate
	tokens TokenVerifier
}

func NewGuard(gate *RouteGate, tokens TokenVerifier) *Guard {
	return &Guard{gate: gate, tokens: tokens}
}

// IsPublic reports whether path skips authentication.
func (g *Guard) IsPublic(path string) bool {
	return g.gate.IsPublic(path)
}

// Authenticate turns an Authorization header value into an Identity.
// The returned error explains why there is none: ErrMissingBearer or one
// of the token errors from common.
func (g *Guard) Authenticate(authHeader string) (Identity, error) {
	if !strings.HasPrefix(authHeader, common.BearerPrefix) {
		return Identity{}, ErrMissingBearer
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, common.BearerPrefix))
	if token == "" {
		return Identity{}, ErrMissingBearer
	}

	subject, err := g.tokens.Verify(token)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Email: subject}, nil
}

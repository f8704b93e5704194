package gateway

import (
	"context"
	"time"

	"washpos/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// KV is the slice of the store the token lifecycle needs.
type KV interface {
	GetValue(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key, value string) error
	DeleteValue(ctx context.Context, key string) error
}

// TokenStore persists the bearer token under its well-known key. An empty
// token means "not authenticated".
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

type kvTokenStore struct {
	kv KV
}

func NewTokenStore(kv KV) TokenStore {
	return &kvTokenStore{kv: kv}
}

func (t *kvTokenStore) Token(ctx context.Context) (string, error) {
	return t.kv.GetValue(ctx, model.KeyAuthToken)
}

func (t *kvTokenStore) SetToken(ctx context.Context, token string) error {
	return t.kv.SetValue(ctx, model.KeyAuthToken, token)
}

func (t *kvTokenStore) ClearToken(ctx context.Context) error {
	return t.kv.DeleteValue(ctx, model.KeyAuthToken)
}

// TokenExpiresWithin reports whether the token's exp claim falls inside the
// next window. The signature is NOT verified — the remote is the verifier,
// this is only a local hint to refresh before a drain. Tokens that cannot be
// parsed or carry no exp are treated as expiring.
func TokenExpiresWithin(token string, window time.Duration) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return time.Until(exp.Time) < window
}

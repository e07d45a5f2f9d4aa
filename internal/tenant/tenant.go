// Package tenant carries the authenticated principal through a request.
package tenant

import (
	"context"
	"errors"
)

var ErrNoPrincipal = errors.New("no authenticated principal")

// Principal is the tenant user a request acts for. ShopID scopes every query.
type Principal struct {
	UserID int64
	ShopID int64
	Email  string
	Role   string
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by WithPrincipal, or ErrNoPrincipal.
func FromContext(ctx context.Context) (Principal, error) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || p.ShopID == 0 {
		return Principal{}, ErrNoPrincipal
	}
	return p, nil
}

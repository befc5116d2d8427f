package internal

import (
	"context"
	"time"
)

// AccountType is the coarse business classification of a user, used for
// visibility scoping across roles and users.
type AccountType int

const (
	AccountTypeOperation AccountType = iota + 1
	AccountTypeShop
	AccountTypeAgency
	AccountTypeCollaborator
)

func (t AccountType) String() string {
	switch t {
	case AccountTypeOperation:
		return "operation"
	case AccountTypeShop:
		return "shop"
	case AccountTypeAgency:
		return "agency"
	case AccountTypeCollaborator:
		return "collaborator"
	}
	return "unknown"
}

// Principal is the authenticated caller, built once by the auth middleware
// from the bearer-token claims and passed through the request context. The
// core never re-parses claims; this struct is the only identity input.
type Principal struct {
	UserID      int64
	IsAdmin     bool
	AccountType AccountType
	RoleIDs     []int64
}

type ctxKey string

const principalKey ctxKey = "principal"

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}

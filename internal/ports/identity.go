package ports

import "context"

// Principal is the verified caller as asserted by the identity provider.
type Principal struct {
	UserID    string
	Email     string
	Admin     bool
	Affiliate bool
}

type IdentityVerifier interface {
	VerifyToken(ctx context.Context, token string) (Principal, error)
}

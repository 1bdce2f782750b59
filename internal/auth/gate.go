// Package auth decides who is calling and whether they may run privileged operations.
package auth

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/identity"
)

type TokenVerifier interface {
	GetUser(ctx context.Context, accessToken string) (*identity.User, error)
}

// RoleResolver reads the caller's role from its profile on every request.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID string) (internal.Role, error)
}

type Gate struct {
	tokens TokenVerifier
	roles  RoleResolver
	logger *slog.Logger
}

func NewGate(tokens TokenVerifier, roles RoleResolver, logger *slog.Logger) *Gate {
	return &Gate{
		tokens: tokens,
		roles:  roles,
		logger: logger,
	}
}

// Authenticate turns a bearer token into a Principal.
//
// A missing token is Unauthorized, as is a token the identity provider rejects.
// A valid token whose role cannot be resolved is Forbidden.
func (g *Gate) Authenticate(ctx context.Context, bearer string) (*internal.Principal, error) {
	if bearer == "" {
		return nil, internal.ErrMissingToken
	}

	user, err := g.tokens.GetUser(ctx, bearer)
	if err != nil {
		if internal.IsType(err, internal.ErrorTypeExternal) {
			return nil, err
		}
		g.logger.Warn("rejected bearer token", "error", err)
		if internal.IsType(err, internal.ErrorTypeUnauthorized) {
			return nil, err
		}
		return nil, internal.ErrInvalidToken.WithCause(err)
	}

	role, err := g.roles.ResolveRole(ctx, user.ID)
	if err != nil || !role.Valid() {
		g.logger.Warn("role lookup failed", "user_id", user.ID, "error", err)
		if err != nil {
			return nil, internal.ErrRoleLookupFailed.WithCause(err)
		}
		return nil, internal.ErrRoleLookupFailed
	}

	return &internal.Principal{UserID: user.ID, Email: user.Email, Role: role}, nil
}

// AuthorizeAdmin authenticates and then requires the admin role.
func (g *Gate) AuthorizeAdmin(ctx context.Context, bearer string) (*internal.Principal, error) {
	p, err := g.Authenticate(ctx, bearer)
	if err != nil {
		return nil, err
	}
	if err := RequireAdmin(p); err != nil {
		g.logger.Warn("access denied: admin role required", "user_id", p.UserID, "role", p.Role)
		return nil, err
	}
	return p, nil
}

// RequireAdmin is checked again inside every privileged service method so callers
// that bypass HTTP are held to the same rule.
func RequireAdmin(p *internal.Principal) error {
	if p == nil {
		return internal.ErrMissingToken
	}
	if !p.IsAdmin() {
		return internal.ErrAdminRequired
	}
	return nil
}

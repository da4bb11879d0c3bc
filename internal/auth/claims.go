package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel errors for the auth package.
var (
	ErrMalformedToken = errors.New("auth: malformed token")
	ErrNoTenantClaim  = errors.New("auth: token carries no tenant claim")
)

// UserIDClaimKind selects which token claim is "the" user id for a tenant.
// All identity-dependent code resolves the actor id through this kind once,
// via engine.AssignmentResolver, instead of reading token fields directly.
type UserIDClaimKind string

const (
	ClaimKindSubject           UserIDClaimKind = "subject"
	ClaimKindEmail             UserIDClaimKind = "email"
	ClaimKindPreferredUsername UserIDClaimKind = "preferred_username"
)

// ParseClaimKind validates a configured claim-kind string.
func ParseClaimKind(s string) (UserIDClaimKind, error) {
	switch k := UserIDClaimKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ClaimKindSubject, ClaimKindEmail, ClaimKindPreferredUsername:
		return k, nil
	case "":
		return ClaimKindSubject, nil
	default:
		return "", fmt.Errorf("auth.ParseClaimKind: unknown user-id claim kind %q", s)
	}
}

// bridgeClaims is the raw claim set the bridge reads off a bearer token.
// Keycloak-shaped: realm roles under realm_access, tenant under a custom
// "allowed_tenant" claim stamped by the realm's protocol mapper.
type bridgeClaims struct {
	jwt.RegisteredClaims
	PreferredUsername string `json:"preferred_username,omitempty"`
	Email             string `json:"email,omitempty"`
	AuthorizedParty   string `json:"azp,omitempty"`
	AllowedTenant     string `json:"allowed_tenant,omitempty"`
	RealmAccess       struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
}

// ClaimsContext is the immutable per-request bundle of identity claims.
// Tokens reach the bridge already validated by the ingress gateway; this
// package only extracts claims and never re-checks the signature.
type ClaimsContext struct {
	Subject           string
	PreferredUsername string
	Email             string
	Issuer            string
	AuthorizedParty   string
	TenantID          string
	Roles             []string
}

// HasRole reports whether the token carried the given realm role.
func (c *ClaimsContext) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ClaimValue returns the claim value named by kind, or empty when the token
// does not carry it. Only the subject is reliably present on every token;
// callers needing email or preferred-username must fall back to an identity
// provider lookup when this returns empty.
func (c *ClaimsContext) ClaimValue(kind UserIDClaimKind) string {
	switch kind {
	case ClaimKindEmail:
		return c.Email
	case ClaimKindPreferredUsername:
		return c.PreferredUsername
	default:
		return c.Subject
	}
}

// ExtractClaims reads the bridge's claim set out of a bearer token that the
// ingress has already validated. Signature and expiry are deliberately not
// re-checked here.
func ExtractClaims(token string) (*ClaimsContext, error) {
	claims := &bridgeClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("auth.ExtractClaims: %w: %w", ErrMalformedToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("auth.ExtractClaims: %w: empty subject", ErrMalformedToken)
	}

	return &ClaimsContext{
		Subject:           claims.Subject,
		PreferredUsername: claims.PreferredUsername,
		Email:             claims.Email,
		Issuer:            claims.Issuer,
		AuthorizedParty:   claims.AuthorizedParty,
		TenantID:          claims.AllowedTenant,
		Roles:             claims.RealmAccess.Roles,
	}, nil
}

// Package middleware holds the authentication gate that protects
// account-scoped endpoints.
package middleware

import (
	"context"
	"net/http"

	"github.com/vidora/vidora/pkg/accounts"
	"github.com/vidora/vidora/pkg/auth"
	"github.com/vidora/vidora/pkg/contextkeys"
	"github.com/vidora/vidora/pkg/httputil"
	"github.com/vidora/vidora/pkg/observability"
)

// AccessTokenCookie is the cookie protected endpoints read the access token
// from. The Authorization header is the fallback for cookie-less clients.
const AccessTokenCookie = "accessToken"

// accountFinder is the slice of the account directory the gate needs. Only
// the redacted view is loaded; the gate never touches stored secrets.
type accountFinder interface {
	FindRedactedByID(ctx context.Context, id string) (*accounts.Account, error)
}

// AuthGate verifies access tokens and attaches the authenticated account to
// the request context. Every failure mode maps to the same 401 so callers
// cannot probe which stage rejected them.
type AuthGate struct {
	issuer    *auth.TokenIssuer
	directory accountFinder
	logger    *observability.Logger
}

// NewAuthGate creates a gate over the given issuer and directory.
func NewAuthGate(issuer *auth.TokenIssuer, directory accountFinder, logger *observability.Logger) *AuthGate {
	return &AuthGate{
		issuer:    issuer,
		directory: directory,
		logger:    logger,
	}
}

// Require wraps a handler so it only runs for authenticated requests. The
// token is taken from the accessToken cookie when present, otherwise from a
// Bearer Authorization header.
func (g *AuthGate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := httputil.CookieValue(r, AccessTokenCookie)
		if token == "" {
			token = httputil.BearerToken(r)
		}
		if token == "" {
			httputil.WriteUnauthorized(w, "unauthorized request")
			return
		}

		claims, err := g.issuer.VerifyAccessToken(token)
		if err != nil {
			g.logger.WithError(err).Debug("access token rejected")
			httputil.WriteUnauthorized(w, "invalid access token")
			return
		}

		account, err := g.directory.FindRedactedByID(r.Context(), claims.ID)
		if err != nil {
			// A valid token for a deleted account is still a 401, not a 404.
			g.logger.WithError(err).WithField("account_id", claims.ID).Debug("token subject not found")
			httputil.WriteUnauthorized(w, "invalid access token")
			return
		}

		ctx := contextkeys.WithAccount(r.Context(), account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"lexora/internal/common"
	"lexora/internal/common/security"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const authCtxKey contextKey = "auth"

type authInfo struct {
	identity  security.Identity
	tokenID   string
	expiresAt time.Time
}

const (
	msgNoToken      = "No token, authorization denied"
	msgInvalidToken = "Token is not valid"
)

// Authenticator rejects requests whose bearer token is missing, invalid,
// expired or revoked. It must run after jwtauth.Verify. On success the
// token's identity is stored in the request context; the user record is not
// consulted.
func Authenticator(denylist security.Denylist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				if token == nil && (err == nil || errors.Is(err, jwtauth.ErrNoTokenFound)) {
					common.RespondWithError(w, http.StatusUnauthorized, msgNoToken)
				} else {
					common.RespondWithError(w, http.StatusUnauthorized, msgInvalidToken)
				}
				return
			}

			id, err := security.IdentityFromClaims(claims)
			if err != nil {
				common.RespondWithError(w, http.StatusUnauthorized, msgInvalidToken)
				return
			}

			info := authInfo{identity: id, tokenID: token.JwtID(), expiresAt: token.Expiration()}
			if denylist != nil && info.tokenID != "" {
				revoked, err := denylist.IsRevoked(r.Context(), info.tokenID)
				if err != nil {
					log.Printf("ERROR: denylist lookup for token %s: %v", info.tokenID, err)
					common.RespondWithErr(w, fmt.Errorf("denylist lookup: %w", common.ErrServiceUnavailable))
					return
				}
				if revoked {
					common.RespondWithError(w, http.StatusUnauthorized, msgInvalidToken)
					return
				}
			}

			ctx := context.WithValue(r.Context(), authCtxKey, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePolicy applies a policy that does not depend on resource
// ownership, such as security.AdminOnly. It must run after Authenticator.
func RequirePolicy(p security.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, _ := IdentityFromContext(r.Context())
			if err := p.Authorize(id, ""); err != nil {
				common.RespondWithErr(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext returns the identity set by Authenticator.
func IdentityFromContext(ctx context.Context) (security.Identity, bool) {
	info, ok := ctx.Value(authCtxKey).(authInfo)
	return info.identity, ok
}

// TokenFromContext returns the id and expiry of the token that
// authenticated the request.
func TokenFromContext(ctx context.Context) (string, time.Time, bool) {
	info, ok := ctx.Value(authCtxKey).(authInfo)
	return info.tokenID, info.expiresAt, ok
}

// WithIdentity returns a copy of ctx carrying id, as Authenticator would.
func WithIdentity(ctx context.Context, id security.Identity) context.Context {
	return context.WithValue(ctx, authCtxKey, authInfo{identity: id})
}

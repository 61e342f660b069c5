package handlers

import (
	"strings"

	"github.com/prestamos/vales-gateway/internal/auth"
	"github.com/prestamos/vales-gateway/internal/model"
	xhttp "github.com/prestamos/vales-gateway/pkg/http"
)

const identityKey = "identity"

// RequireAuth wraps a handler so it only runs with a valid bearer token.
// The resolved branch identity is attached to the request and trusted by
// everything downstream; credentials are never re-verified per request.
func RequireAuth(tokens *auth.JWTManager, next xhttp.RequestHandler) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		raw := bearerToken(ctx)
		if raw == "" {
			writeError(ctx, xhttp.StatusUnauthorized, auth.ErrMissingToken.Error())
			return
		}

		claims, err := tokens.Validate(raw)
		if err != nil {
			writeError(ctx, xhttp.StatusUnauthorized, auth.ErrInvalidToken.Error())
			return
		}

		ctx.SetUserValue(identityKey, claims.Identity())
		next(ctx)
	}
}

// CallerIdentity returns the identity stored by RequireAuth.
func CallerIdentity(ctx *xhttp.RequestCtx) (model.Identity, bool) {
	identity, ok := ctx.UserValue(identityKey).(model.Identity)
	return identity, ok
}

// bearerToken accepts both `Authorization: Bearer <t>` and the legacy
// X-Auth-Token header.
func bearerToken(ctx *xhttp.RequestCtx) string {
	if v := ctx.Request.Header.Peek("Authorization"); len(v) > 0 {
		return strings.TrimPrefix(string(v), "Bearer ")
	}
	if v := ctx.Request.Header.Peek("X-Auth-Token"); len(v) > 0 {
		return string(v)
	}
	return ""
}

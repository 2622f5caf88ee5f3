package httpx

import (
	"net/http"
	"strings"

	"github.com/minhkq1998/SampleJWT/pkg/jwtx"
	"github.com/minhkq1998/SampleJWT/pkg/slogx"
)

// BearerAuth extracts a bearer token from the Authorization header and, when
// it verifies, attaches the decoded Principal to the request context. It
// never rejects: public routes proceed unauthenticated and protected routes
// enforce the principal's presence via RequireAuth. Verification failures are
// logged without detail so the response carries no oracle.
func BearerAuth(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				slogx.FromContext(ctx).Warn("bearer token rejected")
				next.ServeHTTP(w, r)
				return
			}

			ctx = ContextWithPrincipal(ctx, Principal{
				ID:       claims.UID,
				Username: claims.Subject,
				Email:    claims.Email,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests whose context carries no authenticated
// principal. Apply it to every route outside the public allow-list.
func RequireAuth() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PrincipalFromContext(r.Context()); !ok {
				writeBearerError(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	WriteMessage(w, http.StatusUnauthorized, "Error: Unauthorized")
}

package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/fashionmart/storefront/internal/users"
)

type contextKey string

const claimsKey contextKey = "claims"

func claimsFromContext(ctx context.Context) *users.Claims {
	claims, _ := ctx.Value(claimsKey).(*users.Claims)
	return claims
}

// Authenticate parses a Bearer token when one is present and stores its
// claims in the request context. Requests without a token pass through
// anonymously; RequireAuth decides per route whether that is acceptable.
func Authenticate(issuer *users.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			claims, err := issuer.Parse(token)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "invalid_token", "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claimsFromContext(r.Context()) == nil {
			respondError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil {
			respondError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		if !claims.IsAdmin {
			respondError(w, http.StatusForbidden, "forbidden", "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs one line per request through zap instead of chi's
// stdlib logger.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())))
		})
	}
}

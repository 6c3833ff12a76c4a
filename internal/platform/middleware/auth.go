package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"trustledger/pkg/chain"
)

// CallerValidator validates a bearer token and returns the principal it was
// issued to.
type CallerValidator interface {
	ValidateToken(tokenString string) (chain.Principal, error)
}

type contextKeyCaller struct{}

var ContextKeyCaller = contextKeyCaller{}

// GetCaller retrieves the authenticated caller from the context. Handlers
// behind RequireCaller can rely on it being non-empty.
func GetCaller(ctx context.Context) chain.Principal {
	caller, ok := ctx.Value(ContextKeyCaller).(chain.Principal)
	if !ok {
		return ""
	}
	return caller
}

// WithCaller stores a caller principal in the context. Used by tests and by
// non-HTTP entry points that already know the principal.
func WithCaller(ctx context.Context, caller chain.Principal) context.Context {
	return context.WithValue(ctx, ContextKeyCaller, caller)
}

func RequireCaller(validator CallerValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			after, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				logger.WarnContext(r.Context(), "unauthorized access - missing token",
					"request_id", GetRequestID(r.Context()),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			caller, err := validator.ValidateToken(after)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(r.Context()),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := WithCaller(r.Context(), caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}

package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"mechanic-service/internal/httputil"
)

type contextKey string

// CustomerIDKey is the context key for the authenticated customer id
const CustomerIDKey contextKey = "customer_id"

// RequireToken validates the Authorization bearer header and adds the
// caller's customer id to the request context. Every failure yields the
// same 401 body.
func RequireToken(tokens *TokenService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				logger.Warn("missing bearer token", "path", r.URL.Path)
				httputil.RespondWithError(w, http.StatusUnauthorized, ErrUnauthorized.Error())
				return
			}

			customerID, err := tokens.Validate(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
			if err != nil {
				logger.Warn("invalid token", "path", r.URL.Path)
				httputil.RespondWithError(w, http.StatusUnauthorized, ErrUnauthorized.Error())
				return
			}

			ctx := context.WithValue(r.Context(), CustomerIDKey, customerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CustomerID extracts the authenticated customer id from context
func CustomerID(ctx context.Context) (int, bool) {
	customerID, ok := ctx.Value(CustomerIDKey).(int)
	return customerID, ok
}

package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"mechanic-service/internal/httputil"

	"github.com/go-chi/chi/v5"
)

// ErrUnknownResource is returned by an OwnerFunc when the guarded
// resource does not exist.
var ErrUnknownResource = errors.New("resource not found")

// OwnerFunc resolves the owning customer id of a resource.
type OwnerFunc func(ctx context.Context, resourceID int) (int, error)

// RequireOwner gates a mutating route on resource ownership. It must
// run after RequireToken: the caller identity comes from the request
// context, the resource id from the {id} route parameter. A valid token
// for the wrong customer yields 403 and the mutation never runs.
func RequireOwner(owner OwnerFunc, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			customerID, ok := CustomerID(r.Context())
			if !ok {
				httputil.RespondWithError(w, http.StatusUnauthorized, ErrUnauthorized.Error())
				return
			}

			resourceID, err := strconv.Atoi(chi.URLParam(r, "id"))
			if err != nil || resourceID <= 0 {
				httputil.RespondWithError(w, http.StatusNotFound, ErrUnknownResource.Error())
				return
			}

			ownerID, err := owner(r.Context(), resourceID)
			if err != nil {
				if errors.Is(err, ErrUnknownResource) {
					httputil.RespondWithError(w, http.StatusNotFound, ErrUnknownResource.Error())
					return
				}
				logger.Error("owner lookup failed", "resource_id", resourceID, "error", err)
				httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			if ownerID != customerID {
				logger.Warn("ownership check failed", "resource_id", resourceID, "caller", customerID)
				httputil.RespondWithError(w, http.StatusForbidden, "you do not own this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

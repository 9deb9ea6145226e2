package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/meetscribe/backend/pkg/ctxutil"
)

// Account extracts the caller's account id from the X-Account-Id header and
// stores it in the request context. A malformed id answers 400; an absent
// header passes through, handlers that need an identity reject it themselves.
func Account(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-Account-Id")
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid X-Account-Id header", http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctxutil.WithAccountID(r.Context(), id)))
	})
}

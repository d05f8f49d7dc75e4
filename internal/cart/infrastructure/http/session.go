package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmehra2102/storefront/internal/cart/application"
)

const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "cart_session"
)

// Session resolves the browsing session of the request, issuing a new cookie
// when there is none, and binds that session's cart to the request context.
func Session(svc *application.Service, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if id == "" {
				if c, err := r.Cookie(SessionCookie); err == nil {
					id = c.Value
				}
			}
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}

			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			w.Header().Set(SessionHeader, id)

			ctx := application.WithStore(r.Context(), id, svc.ForSession(id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

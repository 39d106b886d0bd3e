package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Nok1969/regent-work-order-system/internal/models"
	"github.com/Nok1969/regent-work-order-system/internal/service"
)

type ctxKey string

const (
	CtxUserID ctxKey = "uid"
	CtxRole   ctxKey = "role"
	ctxUser   ctxKey = "user"
)

// CurrentUser returns the resolved user for the request, or nil when the
// request is unauthenticated.
func CurrentUser(ctx context.Context) *models.User {
	u, _ := ctx.Value(ctxUser).(*models.User)
	return u
}

// WithAuth resolves the session token from the "session" cookie or an
// Authorization bearer header. Requests without a valid, unrevoked session
// pass through unauthenticated; handlers decide what that means.
func WithAuth(log zerolog.Logger, auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tok string
			if c, err := r.Cookie("session"); err == nil {
				tok = c.Value
			} else if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				tok = strings.TrimPrefix(h, "Bearer ")
			}

			if tok == "" {
				next.ServeHTTP(w, r)
				return
			}

			u, err := auth.Resolve(r.Context(), tok)
			if err != nil || u == nil {
				// Clear a broken/expired/revoked cookie so it stops being sent.
				http.SetCookie(w, &http.Cookie{
					Name:     "session",
					Value:    "",
					Path:     "/",
					HttpOnly: true,
					MaxAge:   -1,
				})
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), CtxUserID, u.ID)
			ctx = context.WithValue(ctx, CtxRole, string(u.Role))
			ctx = context.WithValue(ctx, ctxUser, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUser injects a user directly; test helper for handler tests.
func WithUser(u *models.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), CtxUserID, u.ID)
			ctx = context.WithValue(ctx, CtxRole, string(u.Role))
			ctx = context.WithValue(ctx, ctxUser, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

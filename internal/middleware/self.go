package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Nok1969/regent-work-order-system/internal/models"
	"github.com/Nok1969/regent-work-order-system/internal/utils"
)

// RequireSelfOrRoles allows if {id} == ctx user id OR the user has any of
// the given roles.
func RequireSelfOrRoles(roles ...models.Role) func(http.Handler) http.Handler {
	roleSet := map[models.Role]struct{}{}
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := CurrentUser(r.Context())
			pathID := chi.URLParam(r, "id")

			if u != nil {
				if _, ok := roleSet[u.Role]; ok {
					next.ServeHTTP(w, r)
					return
				}
				if pathID == u.ID {
					next.ServeHTTP(w, r)
					return
				}
			}
			utils.Error(w, http.StatusForbidden, "forbidden")
		})
	}
}

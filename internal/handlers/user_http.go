package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Nok1969/regent-work-order-system/internal/models"
	"github.com/Nok1969/regent-work-order-system/internal/repository"
	"github.com/Nok1969/regent-work-order-system/internal/service"
	"github.com/Nok1969/regent-work-order-system/internal/utils"
)

type UserHTTP struct {
	repo repository.UserRepository
	auth *service.AuthService
}

func NewUserHTTP(r repository.UserRepository, auth *service.AuthService) *UserHTTP {
	return &UserHTTP{repo: r, auth: auth}
}

// GET /api/users?q=&role=&active=&limit=&offset=
func (h *UserHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		q := qv.Get("q")
		role := qv.Get("role")
		active := utils.QueryBool(qv, "active")
		limit := utils.QueryInt(qv, "limit", 20)
		offset := utils.QueryInt(qv, "offset", 0)

		users, total, err := h.repo.List(r.Context(), q, role, active, limit, offset)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": users, "total": total})
	}
}

// POST /api/users lets an admin create a profile with any role.
func (h *UserHTTP) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Name     string `json:"name"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid request")
			return
		}
		u, err := h.auth.CreateUser(r.Context(), req.Username, req.Name, req.Password, req.Role)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.JSON(w, http.StatusCreated, u)
	}
}

// PATCH /api/users/{id}/role
func (h *UserHTTP) UpdateRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req struct {
			Role string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !models.ValidRole(req.Role) {
			utils.Error(w, http.StatusBadRequest, "invalid request")
			return
		}
		u, err := h.repo.UpdateRole(r.Context(), id, req.Role)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, u)
	}
}

// PATCH /api/users/{id}/active
func (h *UserHTTP) SetActive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req struct {
			Active bool `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid request")
			return
		}
		u, err := h.repo.SetActive(r.Context(), id, req.Active)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, u)
	}
}

// PATCH /api/users/{id}/basic
func (h *UserHTTP) UpdateBasic() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			utils.Error(w, http.StatusBadRequest, "invalid request")
			return
		}
		u, err := h.repo.UpdateBasic(r.Context(), id, req.Name)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, u)
	}
}

// PATCH /api/users/{id}/password
func (h *UserHTTP) UpdatePassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Password) < 6 {
			utils.Error(w, http.StatusBadRequest, "invalid request")
			return
		}
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if err := h.repo.UpdatePasswordHash(r.Context(), id, hash); err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

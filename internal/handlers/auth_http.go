package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Nok1969/regent-work-order-system/internal/apperr"
	"github.com/Nok1969/regent-work-order-system/internal/middleware"
	"github.com/Nok1969/regent-work-order-system/internal/service"
	"github.com/Nok1969/regent-work-order-system/internal/utils"
)

type AuthHTTP struct {
	svc        *service.AuthService
	sessionTTL time.Duration
}

func NewAuthHTTP(s *service.AuthService, sessionTTL time.Duration) *AuthHTTP {
	return &AuthHTTP{svc: s, sessionTTL: sessionTTL}
}

func (h *AuthHTTP) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Username string `json:"username"`
			Name     string `json:"name"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		u, err := h.svc.Register(r.Context(), in.Username, in.Name, in.Password, in.Role)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.JSON(w, http.StatusCreated, u)
	}
}

func (h *AuthHTTP) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		token, u, err := h.svc.Login(r.Context(), in.Username, in.Password)
		if err != nil {
			if errors.Is(err, apperr.ErrInvalidCredentials) {
				utils.Error(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     "session",
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			// Set Secure behind HTTPS in prod.
			Secure:  false,
			Expires: time.Now().Add(h.sessionTTL),
		})
		utils.JSON(w, http.StatusOK, u)
	}
}

// Logout always clears the local session cookie; revocation failures on the
// store side never block the logged-out response.
func (h *AuthHTTP) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil {
			h.svc.Logout(r.Context(), c.Value)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     "session",
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,              // expire immediately
			Expires:  time.Unix(0, 0), // for older browsers
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *AuthHTTP) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := middleware.CurrentUser(r.Context())
		if u == nil {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		utils.JSON(w, http.StatusOK, u)
	}
}

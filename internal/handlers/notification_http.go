package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Nok1969/regent-work-order-system/internal/middleware"
	"github.com/Nok1969/regent-work-order-system/internal/service"
	"github.com/Nok1969/regent-work-order-system/internal/utils"
)

type NotificationHTTP struct {
	svc *service.NotificationService
}

func NewNotificationHTTP(s *service.NotificationService) *NotificationHTTP {
	return &NotificationHTTP{svc: s}
}

// GET /api/notifications returns the feed filtered to the caller's role.
func (h *NotificationHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := middleware.CurrentUser(r.Context())
		if u == nil {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{
			"items":       h.svc.ForUser(u),
			"unreadCount": h.svc.UnreadCount(u),
		})
	}
}

// POST /api/notifications/{id}/read
func (h *NotificationHTTP) MarkAsRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := middleware.CurrentUser(r.Context())
		if u == nil {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		id := chi.URLParam(r, "id")
		if !h.svc.MarkAsRead(u.ID, id) {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /api/notifications/read-all
func (h *NotificationHTTP) MarkAllAsRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.svc.MarkAllAsRead(middleware.CurrentUser(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	}
}

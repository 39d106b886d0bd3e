package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Nok1969/regent-work-order-system/internal/apperr"
	"github.com/Nok1969/regent-work-order-system/internal/middleware"
	"github.com/Nok1969/regent-work-order-system/internal/models"
	"github.com/Nok1969/regent-work-order-system/internal/repository"
	"github.com/Nok1969/regent-work-order-system/internal/service"
	"github.com/Nok1969/regent-work-order-system/internal/utils"
)

// ObjectStore is the object-storage slice the upload endpoint needs
// (satisfied by storage.ObjectStore).
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// RepairHTTP wires the repair facade to HTTP.
type RepairHTTP struct {
	repairs *service.RepairService
	repo    repository.RepairRepository
	users   repository.UserRepository
	objects ObjectStore
}

func NewRepairHTTP(repairs *service.RepairService, repo repository.RepairRepository, users repository.UserRepository, objects ObjectStore) *RepairHTTP {
	return &RepairHTTP{repairs: repairs, repo: repo, users: users, objects: objects}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotAuthenticated):
		utils.Error(w, http.StatusUnauthorized, "not authenticated")
	case errors.Is(err, apperr.ErrForbidden):
		utils.Error(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, apperr.ErrNotFound):
		utils.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, apperr.ErrInvalidTransition):
		utils.Error(w, http.StatusConflict, err.Error())
	case apperr.IsWrite(err) || apperr.IsFetch(err):
		utils.Error(w, http.StatusInternalServerError, err.Error())
	default:
		utils.Error(w, http.StatusInternalServerError, err.Error())
	}
}

// visible filters the list for the actor: staff see only their own
// requests, every other role sees the full set.
func visible(u *models.User, items []models.RepairRequest) []models.RepairRequest {
	if u == nil || u.Role != models.RoleStaff {
		return items
	}
	out := make([]models.RepairRequest, 0, len(items))
	for _, r := range items {
		if r.RequestedBy.ID == u.ID {
			out = append(out, r)
		}
	}
	return out
}

// GET /api/repairs?q=&status=&priority=&refresh=
func (h *RepairHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := middleware.CurrentUser(r.Context())

		var items []models.RepairRequest
		var err error
		if r.URL.Query().Get("refresh") == "true" {
			items, err = h.repairs.ForceRefresh(r.Context())
		} else {
			items, err = h.repairs.FetchAll(r.Context())
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}
		items = visible(u, items)

		// In-memory filters over the cached set.
		qv := r.URL.Query()
		q := strings.ToLower(strings.TrimSpace(qv.Get("q")))
		status := strings.TrimSpace(qv.Get("status"))
		priority := strings.TrimSpace(qv.Get("priority"))
		if q != "" || status != "" || priority != "" {
			filtered := make([]models.RepairRequest, 0, len(items))
			for _, it := range items {
				if q != "" &&
					!strings.Contains(strings.ToLower(it.Title), q) &&
					!strings.Contains(strings.ToLower(it.Description), q) &&
					!strings.Contains(strings.ToLower(it.RoomNumber), q) {
					continue
				}
				if status != "" && string(it.Status) != status {
					continue
				}
				if priority != "" && string(it.Priority) != priority {
					continue
				}
				filtered = append(filtered, it)
			}
			items = filtered
		}

		utils.JSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
	}
}

// GET /api/repairs/{id}
func (h *RepairHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			utils.Error(w, http.StatusBadRequest, "missing id")
			return
		}

		// Fill the cache if stale, then look up in memory.
		if _, err := h.repairs.FetchAll(r.Context()); err != nil {
			writeServiceError(w, err)
			return
		}
		rec, ok := h.repairs.GetByID(id)
		if !ok {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}

		u := middleware.CurrentUser(r.Context())
		if u != nil && u.Role == models.RoleStaff && rec.RequestedBy.ID != u.ID {
			utils.Error(w, http.StatusForbidden, "forbidden")
			return
		}
		utils.JSON(w, http.StatusOK, rec)
	}
}

// POST /api/repairs
func (h *RepairHTTP) Create() http.HandlerFunc {
	type inDTO struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		RoomNumber  string `json:"roomNumber"`
		Priority    string `json:"priority"`
		WorkType    string `json:"workType"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		rec, err := h.repairs.Add(r.Context(), middleware.CurrentUser(r.Context()), service.AddRepairInput{
			Title:       in.Title,
			Description: in.Description,
			RoomNumber:  in.RoomNumber,
			Priority:    in.Priority,
			WorkType:    in.WorkType,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSON(w, http.StatusCreated, rec)
	}
}

// PATCH /api/repairs/{id}/status
func (h *RepairHTTP) UpdateStatus() http.HandlerFunc {
	type inDTO struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		rec, err := h.repairs.UpdateStatus(r.Context(), middleware.CurrentUser(r.Context()), id, in.Status, in.Notes)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, rec)
	}
}

// PATCH /api/repairs/{id}/assign
func (h *RepairHTTP) Assign() http.HandlerFunc {
	type inDTO struct {
		TechnicianID string `json:"technicianId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.TechnicianID == "" {
			utils.Error(w, http.StatusBadRequest, "technicianId is required")
			return
		}

		tech, err := h.users.GetByID(r.Context(), in.TechnicianID)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if tech == nil || tech.Role != models.RoleTechnician {
			utils.Error(w, http.StatusBadRequest, "assignee must be a technician")
			return
		}

		rec, err := h.repairs.Assign(r.Context(), middleware.CurrentUser(r.Context()), id, *tech)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, rec)
	}
}

// POST /api/repairs/{id}/attachments (multipart field "file")
func (h *RepairHTTP) UploadAttachment() http.HandlerFunc {
	const maxUpload = 10 << 20 // 10 MiB
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if middleware.CurrentUser(r.Context()) == nil {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		row, err := h.repo.Get(r.Context(), id)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if row == nil {
			utils.Error(w, http.StatusNotFound, "not found")
			return
		}

		if err := r.ParseMultipartForm(maxUpload); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid multipart body")
			return
		}
		file, hdr, err := r.FormFile("file")
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "file is required")
			return
		}
		defer file.Close()

		contentType := hdr.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		attID := uuid.NewString()
		key := id + "/" + attID + "-" + hdr.Filename
		url, err := h.objects.Put(r.Context(), key, file, hdr.Size, contentType)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}

		att := &models.Attachment{
			ID:          attID,
			RepairID:    id,
			URL:         url,
			Filename:    hdr.Filename,
			ContentType: contentType,
		}
		if err := h.repo.AddAttachment(r.Context(), att); err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.repairs.Invalidate()
		utils.JSON(w, http.StatusCreated, att)
	}
}

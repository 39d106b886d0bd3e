package handlers

import (
	"net/http"

	"github.com/Nok1969/regent-work-order-system/internal/models"
	"github.com/Nok1969/regent-work-order-system/internal/repository"
	"github.com/Nok1969/regent-work-order-system/internal/utils"
)

type ReportsHTTP struct {
	repo repository.RepairRepository
}

func NewReportsHTTP(r repository.RepairRepository) *ReportsHTTP { return &ReportsHTTP{repo: r} }

// GET /api/reports/summary
// Returns counts per lifecycle stage, feeding the dashboard cards.
func (h *ReportsHTTP) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		byStatus, err := h.repo.CountByStatus(r.Context())
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}

		total := 0
		for _, n := range byStatus {
			total += n
		}
		utils.JSON(w, http.StatusOK, map[string]int{
			"total":      total,
			"new":        byStatus[string(models.StatusNew)],
			"inProgress": byStatus[string(models.StatusInProgress)],
			"completed":  byStatus[string(models.StatusCompleted)],
			"cancelled":  byStatus[string(models.StatusCancelled)],
		})
	}
}

// GET /api/reports/work-types
// Counts of repairs grouped by work type, for the statistics chart.
func (h *ReportsHTTP) WorkTypes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := h.repo.CountByWorkType(r.Context())
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if counts == nil {
			counts = []repository.WorkTypeCount{}
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": counts})
	}
}

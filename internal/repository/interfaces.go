package repository

import (
	"context"
	"time"

	"github.com/Nok1969/regent-work-order-system/internal/models"
)

// RepairRow is the raw repairs-table shape. Requester and assignee are
// carried as profile ids; resolution to full users happens in the query
// service via MapRepair.
type RepairRow struct {
	ID          string
	Title       string
	Description string
	RoomNumber  string
	Status      string
	Priority    string
	WorkType    string
	RequestedBy string
	AssignedTo  *string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
	Attachments []models.Attachment
}

type RepairRepository interface {
	// List returns every repair ordered by creation time descending.
	List(ctx context.Context) ([]RepairRow, error)
	Get(ctx context.Context, id string) (*RepairRow, error)
	Create(ctx context.Context, r *RepairRow) error
	// UpdateStatus sets status and notes; completedAt is stamped only when
	// the new status is completed.
	UpdateStatus(ctx context.Context, id, status, notes string, completedAt *time.Time) (*RepairRow, error)
	// Assign sets the assignee and forces status to inProgress.
	Assign(ctx context.Context, id, technicianID string) (*RepairRow, error)
	AddAttachment(ctx context.Context, a *models.Attachment) error
	CountByStatus(ctx context.Context) (map[string]int, error)
	CountByWorkType(ctx context.Context) ([]WorkTypeCount, error)
}

type WorkTypeCount struct {
	WorkType string `json:"workType"`
	Count    int    `json:"count"`
}

type UserRepository interface {
	Create(ctx context.Context, username, name, role, passwordHash string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, string /*passwordHash*/, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByIDs resolves a set of profile ids in one query.
	GetByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
	List(ctx context.Context, q, role string, active *bool, limit, offset int) ([]models.User, int, error)
	UpdateRole(ctx context.Context, id, role string) (*models.User, error)
	SetActive(ctx context.Context, id string, active bool) (*models.User, error)
	UpdateBasic(ctx context.Context, id, name string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}

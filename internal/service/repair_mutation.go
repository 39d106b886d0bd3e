package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nok1969/regent-work-order-system/internal/apperr"
	"github.com/Nok1969/regent-work-order-system/internal/models"
	"github.com/Nok1969/regent-work-order-system/internal/repository"
)

// Notifier decouples mutations from the notification feed.
type Notifier interface {
	Add(in AddInput) models.Notification
}

// cacheInvalidator is the slice of RepairQuery that mutations need.
type cacheInvalidator interface {
	Invalidate()
}

// RepairMutation issues create/update-status/assign writes. Every operation
// requires an authenticated actor and enforces role permissions at this
// layer, not in the UI. Successful writes invalidate the query cache and
// emit a role-addressed notification; failed writes are never retried.
type RepairMutation struct {
	log      zerolog.Logger
	repairs  repository.RepairRepository
	profiles repository.UserRepository
	cache    cacheInvalidator
	notify   Notifier

	adding    atomic.Bool
	updating  atomic.Bool
	assigning atomic.Bool
}

func NewRepairMutation(log zerolog.Logger, repairs repository.RepairRepository, profiles repository.UserRepository, cache cacheInvalidator, notify Notifier) *RepairMutation {
	return &RepairMutation{log: log, repairs: repairs, profiles: profiles, cache: cache, notify: notify}
}

// In-flight flags let views disable duplicate submission.
func (m *RepairMutation) IsAdding() bool         { return m.adding.Load() }
func (m *RepairMutation) IsUpdatingStatus() bool { return m.updating.Load() }
func (m *RepairMutation) IsAssigning() bool      { return m.assigning.Load() }

type AddRepairInput struct {
	Title       string
	Description string
	RoomNumber  string
	Priority    string
	WorkType    string
}

// Add files a new repair request. Status is forced to new and the requester
// is forced to the acting user.
func (m *RepairMutation) Add(ctx context.Context, actor *models.User, in AddRepairInput) (*models.RepairRequest, error) {
	if actor == nil {
		return nil, apperr.ErrNotAuthenticated
	}
	in.Title = strings.TrimSpace(in.Title)
	in.RoomNumber = strings.TrimSpace(in.RoomNumber)
	if in.Title == "" || in.RoomNumber == "" {
		return nil, apperr.Write(fmt.Errorf("title and room number are required"), "add repair")
	}
	if in.Priority == "" {
		in.Priority = string(models.PriorityMedium)
	}
	if !models.ValidPriority(in.Priority) {
		return nil, apperr.Write(fmt.Errorf("unknown priority %q", in.Priority), "add repair")
	}

	m.adding.Store(true)
	defer m.adding.Store(false)

	row := &repository.RepairRow{
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		RoomNumber:  in.RoomNumber,
		Status:      string(models.StatusNew),
		Priority:    in.Priority,
		WorkType:    strings.TrimSpace(in.WorkType),
		RequestedBy: actor.ID,
	}
	if err := m.repairs.Create(ctx, row); err != nil {
		return nil, apperr.Write(err, "add repair")
	}

	m.cache.Invalidate()
	m.notify.Add(AddInput{
		Title:     "งานซ่อมใหม่",
		Message:   fmt.Sprintf("มีงานซ่อมใหม่: %s ในห้อง %s", row.Title, row.RoomNumber),
		RelatedTo: row.ID,
		ForRoles:  []models.Role{models.RoleTechnician, models.RoleManager},
	})

	mapped := m.resolve(ctx, row)
	m.log.Info().Str("id", row.ID).Str("room", row.RoomNumber).Msg("repair added")
	return mapped, nil
}

// UpdateStatus moves a repair along its lifecycle. Completion stamps
// completedAt; cancellation is restricted to managers.
func (m *RepairMutation) UpdateStatus(ctx context.Context, actor *models.User, id, status, notes string) (*models.RepairRequest, error) {
	if actor == nil {
		return nil, apperr.ErrNotAuthenticated
	}
	switch actor.Role {
	case models.RoleTechnician, models.RoleManager, models.RoleAdmin:
	default:
		return nil, apperr.ErrForbidden
	}
	if !models.ValidStatus(status) {
		return nil, apperr.Write(fmt.Errorf("unknown status %q", status), "update status")
	}
	next := models.RepairStatus(status)
	if next == models.StatusCancelled && actor.Role != models.RoleManager && actor.Role != models.RoleAdmin {
		return nil, apperr.ErrForbidden
	}

	current, err := m.repairs.Get(ctx, id)
	if err != nil {
		return nil, apperr.Write(err, "load repair")
	}
	if current == nil {
		return nil, apperr.ErrNotFound
	}
	if !models.RepairStatus(current.Status).CanTransition(next) {
		return nil, apperr.ErrInvalidTransition
	}

	m.updating.Store(true)
	defer m.updating.Store(false)

	var completedAt *time.Time
	if next == models.StatusCompleted {
		now := time.Now()
		completedAt = &now
	}
	row, err := m.repairs.UpdateStatus(ctx, id, status, strings.TrimSpace(notes), completedAt)
	if err != nil {
		return nil, apperr.Write(err, "update status")
	}
	if row == nil {
		return nil, apperr.ErrNotFound
	}

	m.cache.Invalidate()
	m.notify.Add(AddInput{
		Title:     "สถานะงานเปลี่ยนแปลง",
		Message:   fmt.Sprintf("งานซ่อม%s ในห้อง %s %s", row.Title, row.RoomNumber, statusText(next)),
		RelatedTo: row.ID,
		ForRoles:  []models.Role{models.RoleStaff, models.RoleManager},
	})

	mapped := m.resolve(ctx, row)
	m.log.Info().Str("id", row.ID).Str("status", status).Msg("repair status updated")
	return mapped, nil
}

// Assign hands a repair to a technician and forces status to inProgress.
func (m *RepairMutation) Assign(ctx context.Context, actor *models.User, id string, technician models.User) (*models.RepairRequest, error) {
	if actor == nil {
		return nil, apperr.ErrNotAuthenticated
	}
	if actor.Role != models.RoleManager && actor.Role != models.RoleAdmin {
		return nil, apperr.ErrForbidden
	}
	if technician.ID == "" {
		return nil, apperr.Write(fmt.Errorf("technician is required"), "assign repair")
	}

	current, err := m.repairs.Get(ctx, id)
	if err != nil {
		return nil, apperr.Write(err, "load repair")
	}
	if current == nil {
		return nil, apperr.ErrNotFound
	}
	if models.RepairStatus(current.Status).Terminal() {
		return nil, apperr.ErrInvalidTransition
	}

	m.assigning.Store(true)
	defer m.assigning.Store(false)

	row, err := m.repairs.Assign(ctx, id, technician.ID)
	if err != nil {
		return nil, apperr.Write(err, "assign repair")
	}
	if row == nil {
		return nil, apperr.ErrNotFound
	}

	m.cache.Invalidate()
	m.notify.Add(AddInput{
		Title:     "งานซ่อมได้รับมอบหมาย",
		Message:   fmt.Sprintf("คุณได้รับมอบหมายให้ซ่อม%s ในห้อง %s", row.Title, row.RoomNumber),
		RelatedTo: row.ID,
		ForRoles:  []models.Role{models.RoleTechnician, models.RoleManager},
	})

	mapped := m.resolve(ctx, row)
	m.log.Info().Str("id", row.ID).Str("technician", technician.ID).Msg("repair assigned")
	return mapped, nil
}

// resolve maps one row to the domain shape with profiles attached. Profile
// failures degrade to the sample set, same as the list path.
func (m *RepairMutation) resolve(ctx context.Context, row *repository.RepairRow) *models.RepairRequest {
	profiles, err := m.profiles.GetByIDs(ctx, repository.ProfileIDs([]repository.RepairRow{*row}))
	if err != nil {
		m.log.Warn().Err(err).Msg("profile lookup failed after mutation")
		profiles = nil
	}
	mapped := repository.MapRepair(*row, profiles)
	return &mapped
}

func statusText(s models.RepairStatus) string {
	switch s {
	case models.StatusInProgress:
		return "กำลังดำเนินการ"
	case models.StatusCompleted:
		return "เสร็จสิ้นแล้ว"
	case models.StatusCancelled:
		return "ถูกยกเลิก"
	default:
		return string(s)
	}
}

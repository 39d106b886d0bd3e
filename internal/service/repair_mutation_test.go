package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nok1969/regent-work-order-system/internal/apperr"
	"github.com/Nok1969/regent-work-order-system/internal/models"
	"github.com/Nok1969/regent-work-order-system/internal/repository"
)

func newTestService(repo *fakeRepairRepo, users *fakeUserRepo, notify *fakeNotifier) *RepairService {
	q := NewRepairQuery(zerolog.Nop(), repo, users)
	m := NewRepairMutation(zerolog.Nop(), repo, users, q, notify)
	return &RepairService{RepairQuery: q, RepairMutation: m}
}

func staffUser() *models.User {
	return &models.User{ID: "s-1", Username: "staff1", Role: models.RoleStaff, Active: true}
}

func managerUser() *models.User {
	return &models.User{ID: "m-1", Username: "manager1", Role: models.RoleManager, Active: true}
}

func techUser() *models.User {
	return &models.User{ID: "t-1", Username: "tech1", Role: models.RoleTechnician, Active: true}
}

func TestAddRepairRequiresActor(t *testing.T) {
	svc := newTestService(&fakeRepairRepo{}, newFakeUserRepo(), &fakeNotifier{})
	_, err := svc.Add(context.Background(), nil, AddRepairInput{Title: "x", RoomNumber: "101"})
	if !errors.Is(err, apperr.ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestAddRepairForcesStatusAndRequester(t *testing.T) {
	repo := &fakeRepairRepo{}
	notify := &fakeNotifier{}
	svc := newTestService(repo, newFakeUserRepo(testUsers()...), notify)

	rec, err := svc.Add(context.Background(), staffUser(), AddRepairInput{
		Title:      "เครื่องปรับอากาศไม่ทำงาน",
		RoomNumber: "101",
		Priority:   "high",
	})
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != models.StatusNew {
		t.Fatalf("status = %q, want new", rec.Status)
	}
	if rec.RequestedBy.ID != "s-1" {
		t.Fatalf("requester = %q, want acting user", rec.RequestedBy.ID)
	}

	// cache was invalidated: next fetch returns the new record
	items, err := svc.ForceRefresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].RoomNumber != "101" || items[0].Priority != models.PriorityHigh {
		t.Fatalf("unexpected list after add: %+v", items)
	}

	n, ok := notify.last()
	if !ok {
		t.Fatal("expected a notification")
	}
	wantRoles := []models.Role{models.RoleTechnician, models.RoleManager}
	if len(n.ForRoles) != 2 || n.ForRoles[0] != wantRoles[0] || n.ForRoles[1] != wantRoles[1] {
		t.Fatalf("notification roles = %v, want %v", n.ForRoles, wantRoles)
	}
}

func TestUpdateStatusCompletedStampsCompletionTime(t *testing.T) {
	repo := &fakeRepairRepo{rows: []repository.RepairRow{
		{ID: "r-1", Title: "x", RoomNumber: "101", Status: "inProgress", Priority: "low", RequestedBy: "s-1", UpdatedAt: time.Now().Add(-time.Hour)},
	}}
	prior := repo.rows[0].UpdatedAt
	notify := &fakeNotifier{}
	svc := newTestService(repo, newFakeUserRepo(testUsers()...), notify)

	rec, err := svc.UpdateStatus(context.Background(), techUser(), "r-1", "completed", "เปลี่ยนฟิวส์ใหม่")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != models.StatusCompleted {
		t.Fatalf("status = %q", rec.Status)
	}
	if rec.Notes != "เปลี่ยนฟิวส์ใหม่" {
		t.Fatalf("notes = %q", rec.Notes)
	}
	if rec.CompletedAt == nil || rec.CompletedAt.Before(prior) {
		t.Fatalf("completedAt = %v, want >= %v", rec.CompletedAt, prior)
	}

	n, _ := notify.last()
	if n.ForRoles[0] != models.RoleStaff || n.ForRoles[1] != models.RoleManager {
		t.Fatalf("notification roles = %v", n.ForRoles)
	}
}

func TestUpdateStatusNonCompletedLeavesCompletionEmpty(t *testing.T) {
	repo := &fakeRepairRepo{rows: []repository.RepairRow{
		{ID: "r-1", Title: "x", RoomNumber: "101", Status: "new", Priority: "low", RequestedBy: "s-1"},
	}}
	svc := newTestService(repo, newFakeUserRepo(testUsers()...), &fakeNotifier{})

	rec, err := svc.UpdateStatus(context.Background(), techUser(), "r-1", "inProgress", "")
	if err != nil {
		t.Fatal(err)
	}
	if rec.CompletedAt != nil {
		t.Fatalf("completedAt must stay empty, got %v", rec.CompletedAt)
	}
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	repo := &fakeRepairRepo{rows: []repository.RepairRow{
		{ID: "r-1", Title: "x", RoomNumber: "101", Status: "completed", Priority: "low", RequestedBy: "s-1"},
	}}
	svc := newTestService(repo, newFakeUserRepo(testUsers()...), &fakeNotifier{})

	_, err := svc.UpdateStatus(context.Background(), managerUser(), "r-1", "inProgress", "")
	if !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestCancelRequiresManager(t *testing.T) {
	repo := &fakeRepairRepo{rows: []repository.RepairRow{
		{ID: "r-1", Title: "x", RoomNumber: "101", Status: "new", Priority: "low", RequestedBy: "s-1"},
	}}
	svc := newTestService(repo, newFakeUserRepo(testUsers()...), &fakeNotifier{})

	if _, err := svc.UpdateStatus(context.Background(), techUser(), "r-1", "cancelled", ""); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("technician cancel: err = %v, want ErrForbidden", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), managerUser(), "r-1", "cancelled", ""); err != nil {
		t.Fatalf("manager cancel: %v", err)
	}
}

func TestStaffCannotUpdateStatus(t *testing.T) {
	repo := &fakeRepairRepo{rows: []repository.RepairRow{
		{ID: "r-1", Title: "x", RoomNumber: "101", Status: "new", Priority: "low", RequestedBy: "s-1"},
	}}
	svc := newTestService(repo, newFakeUserRepo(testUsers()...), &fakeNotifier{})

	_, err := svc.UpdateStatus(context.Background(), staffUser(), "r-1", "inProgress", "")
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestAssignForcesInProgressAndNotifies(t *testing.T) {
	repo := &fakeRepairRepo{rows: []repository.RepairRow{
		{ID: "r-1", Title: "x", RoomNumber: "101", Status: "new", Priority: "low", RequestedBy: "s-1"},
	}}
	notify := &fakeNotifier{}
	svc := newTestService(repo, newFakeUserRepo(testUsers()...), notify)

	rec, err := svc.Assign(context.Background(), managerUser(), "r-1", *techUser())
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != models.StatusInProgress {
		t.Fatalf("status = %q, want inProgress", rec.Status)
	}
	if rec.AssignedTo == nil || rec.AssignedTo.ID != "t-1" {
		t.Fatalf("assignee = %+v, want t-1", rec.AssignedTo)
	}

	n, ok := notify.last()
	if !ok {
		t.Fatal("expected a notification")
	}
	if n.ForRoles[0] != models.RoleTechnician || n.ForRoles[1] != models.RoleManager {
		t.Fatalf("notification roles = %v", n.ForRoles)
	}
}

func TestAssignRequiresManager(t *testing.T) {
	repo := &fakeRepairRepo{rows: []repository.RepairRow{
		{ID: "r-1", Title: "x", RoomNumber: "101", Status: "new", Priority: "low", RequestedBy: "s-1"},
	}}
	svc := newTestService(repo, newFakeUserRepo(testUsers()...), &fakeNotifier{})

	_, err := svc.Assign(context.Background(), techUser(), "r-1", *techUser())
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestConcurrentStatusUpdatesLastWriteWins(t *testing.T) {
	repo := &fakeRepairRepo{rows: []repository.RepairRow{
		{ID: "r-1", Title: "x", RoomNumber: "101", Status: "new", Priority: "low", RequestedBy: "s-1"},
	}}
	svc := newTestService(repo, newFakeUserRepo(testUsers()...), &fakeNotifier{})

	if _, err := svc.UpdateStatus(context.Background(), managerUser(), "r-1", "inProgress", "first"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateStatus(context.Background(), managerUser(), "r-1", "completed", "second"); err != nil {
		t.Fatal(err)
	}

	items, err := svc.ForceRefresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// whole-field overwrite, no merge of notes
	if items[0].Notes != "second" || items[0].Status != models.StatusCompleted {
		t.Fatalf("record after refetch = %+v, want last write", items[0])
	}
}

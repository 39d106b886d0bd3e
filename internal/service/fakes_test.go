package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Nok1969/regent-work-order-system/internal/models"
	"github.com/Nok1969/regent-work-order-system/internal/repository"
	"github.com/Nok1969/regent-work-order-system/internal/session"
)

type fakeRepairRepo struct {
	mu           sync.Mutex
	rows         []repository.RepairRow
	listCalls    int
	listFailures int // fail this many List calls before succeeding
	failAll      bool
}

func (f *fakeRepairRepo) List(ctx context.Context) ([]repository.RepairRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.failAll || f.listCalls <= f.listFailures {
		return nil, fmt.Errorf("store unavailable")
	}
	out := make([]repository.RepairRow, len(f.rows))
	copy(out, f.rows)
	// newest first, like the real query
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (f *fakeRepairRepo) Get(ctx context.Context, id string) (*repository.RepairRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			r := f.rows[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeRepairRepo) Create(ctx context.Context, r *repository.RepairRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = fmt.Sprintf("r-%d", len(f.rows)+1)
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	f.rows = append(f.rows, *r)
	return nil
}

func (f *fakeRepairRepo) UpdateStatus(ctx context.Context, id, status, notes string, completedAt *time.Time) (*repository.RepairRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Status = status
			f.rows[i].Notes = notes
			f.rows[i].UpdatedAt = time.Now()
			f.rows[i].CompletedAt = completedAt
			r := f.rows[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeRepairRepo) Assign(ctx context.Context, id, technicianID string) (*repository.RepairRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			tid := technicianID
			f.rows[i].AssignedTo = &tid
			f.rows[i].Status = string(models.StatusInProgress)
			f.rows[i].UpdatedAt = time.Now()
			r := f.rows[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeRepairRepo) AddAttachment(ctx context.Context, a *models.Attachment) error {
	a.CreatedAt = time.Now()
	return nil
}

func (f *fakeRepairRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int)
	for _, r := range f.rows {
		out[r.Status]++
	}
	return out, nil
}

func (f *fakeRepairRepo) CountByWorkType(ctx context.Context) ([]repository.WorkTypeCount, error) {
	return nil, nil
}

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[string]models.User
	passwords map[string]string // username -> bcrypt hash
	lookupErr error
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	f := &fakeUserRepo{users: make(map[string]models.User), passwords: make(map[string]string)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, username, name, role, passwordHash string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := models.User{
		ID: fmt.Sprintf("u-%d", len(f.users)+1), Username: username, Name: name,
		Role: models.Role(role), Active: true, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	f.users[u.ID] = u
	f.passwords[username] = passwordHash
	return &u, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			uu := u
			return &uu, f.passwords[username], nil
		}
	}
	return nil, "", nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		uu := u
		return &uu, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	out := make(map[string]models.User)
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (f *fakeUserRepo) List(ctx context.Context, q, role string, active *bool, limit, offset int) ([]models.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, id, role string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[id]
	u.Role = models.Role(role)
	f.users[id] = u
	return &u, nil
}

func (f *fakeUserRepo) SetActive(ctx context.Context, id string, active bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[id]
	u.Active = active
	f.users[id] = u
	return &u, nil
}

func (f *fakeUserRepo) UpdateBasic(ctx context.Context, id, name string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[id]
	u.Name = name
	f.users[id] = u
	return &u, nil
}

func (f *fakeUserRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return nil
}

// fakeNotifier records added notifications without a hub.
type fakeNotifier struct {
	mu    sync.Mutex
	added []AddInput
}

func (f *fakeNotifier) Add(in AddInput) models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, in)
	return models.Notification{Title: in.Title, Message: in.Message, RelatedTo: in.RelatedTo, ForRoles: in.ForRoles}
}

func (f *fakeNotifier) last() (AddInput, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.added) == 0 {
		return AddInput{}, false
	}
	return f.added[len(f.added)-1], true
}

// fakeSessionStore is an in-memory SessionStore.
type fakeSessionStore struct {
	mu        sync.Mutex
	records   map[string]session.Record
	deleteErr error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{records: make(map[string]session.Record)}
}

func (f *fakeSessionStore) Put(ctx context.Context, id string, rec session.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[id] = rec
	return nil
}

func (f *fakeSessionStore) Get(ctx context.Context, id string) (*session.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.records[id]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.records, id)
	return nil
}

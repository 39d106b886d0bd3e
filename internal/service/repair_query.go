package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Nok1969/regent-work-order-system/internal/apperr"
	"github.com/Nok1969/regent-work-order-system/internal/models"
	"github.com/Nok1969/regent-work-order-system/internal/repository"
)

const (
	repairsKey    = "repairs"
	staleAfter    = 30 * time.Second
	fetchAttempts = 3 // initial try + 2 retries
)

// RepairQuery serves the repair list from a staleness-windowed cache.
// Concurrent callers share one in-flight fetch; profile resolution failures
// degrade to the sample user set instead of failing the whole list.
type RepairQuery struct {
	log      zerolog.Logger
	repairs  repository.RepairRepository
	profiles repository.UserRepository

	group singleflight.Group

	mu        sync.RWMutex
	cached    []models.RepairRequest
	fetchedAt time.Time
}

func NewRepairQuery(log zerolog.Logger, repairs repository.RepairRepository, profiles repository.UserRepository) *RepairQuery {
	return &RepairQuery{log: log, repairs: repairs, profiles: profiles}
}

// FetchAll returns the repair list, refetching only when the cache has
// passed the staleness window.
func (q *RepairQuery) FetchAll(ctx context.Context) ([]models.RepairRequest, error) {
	q.mu.RLock()
	fresh := !q.fetchedAt.IsZero() && time.Since(q.fetchedAt) < staleAfter
	cached := q.cached
	q.mu.RUnlock()
	if fresh {
		return cached, nil
	}
	return q.fetch(ctx)
}

// Refetch is FetchAll under its caller-facing name: it respects the
// staleness window.
func (q *RepairQuery) Refetch(ctx context.Context) ([]models.RepairRequest, error) {
	return q.FetchAll(ctx)
}

// ForceRefresh unconditionally invalidates the cache and refetches. Used
// after mutations to guarantee freshness.
func (q *RepairQuery) ForceRefresh(ctx context.Context) ([]models.RepairRequest, error) {
	q.Invalidate()
	return q.fetch(ctx)
}

// GetByID is a pure lookup over the last fetched result set. It never
// triggers a fetch.
func (q *RepairQuery) GetByID(id string) (models.RepairRequest, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	for _, r := range q.cached {
		if r.ID == id {
			return r, true
		}
	}
	return models.RepairRequest{}, false
}

// Invalidate discards the cached result set so the next read refetches.
func (q *RepairQuery) Invalidate() {
	q.mu.Lock()
	q.fetchedAt = time.Time{}
	q.mu.Unlock()
}

func (q *RepairQuery) fetch(ctx context.Context) ([]models.RepairRequest, error) {
	v, err, _ := q.group.Do(repairsKey, func() (any, error) {
		var rows []repository.RepairRow
		var err error
		for attempt := 1; attempt <= fetchAttempts; attempt++ {
			rows, err = q.repairs.List(ctx)
			if err == nil {
				break
			}
			q.log.Warn().Err(err).Int("attempt", attempt).Msg("repair list fetch failed")
		}
		if err != nil {
			return nil, apperr.Fetch(err, "list repairs")
		}

		profiles, perr := q.profiles.GetByIDs(ctx, repository.ProfileIDs(rows))
		if perr != nil {
			// Non-fatal: the mapper falls back to the sample user set.
			q.log.Warn().Err(apperr.Profile(perr, "resolve profiles")).Msg("profile lookup failed, using sample users")
			profiles = nil
		}

		out := repository.MapRepairs(rows, profiles)
		q.mu.Lock()
		q.cached = out
		q.fetchedAt = time.Now()
		q.mu.Unlock()
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.RepairRequest), nil
}

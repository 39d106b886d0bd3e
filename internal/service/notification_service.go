package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Nok1969/regent-work-order-system/internal/models"
)

// Broadcaster pushes a freshly added notification to live listeners.
type Broadcaster interface {
	Broadcast(n models.Notification)
}

// NotificationService keeps the in-memory notification feed. Nothing here
// is persisted: a restart discards all state. Read-state is tracked per
// user so one reader's mark-all does not clear another's unread count; the
// only transition for a given reader is unread to read.
type NotificationService struct {
	log zerolog.Logger
	hub Broadcaster

	mu     sync.RWMutex
	items  []models.Notification // newest first
	readBy map[string]map[string]struct{} // notification id -> reader user ids
}

func NewNotificationService(log zerolog.Logger, hub Broadcaster) *NotificationService {
	return &NotificationService{
		log:    log,
		hub:    hub,
		readBy: make(map[string]map[string]struct{}),
	}
}

// AddInput carries the caller-supplied fields; id, timestamp and read
// state are assigned here.
type AddInput struct {
	Title     string
	Message   string
	RelatedTo string
	ForRoles  []models.Role
}

func (s *NotificationService) Add(in AddInput) models.Notification {
	n := models.Notification{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Message:   in.Message,
		Read:      false,
		CreatedAt: time.Now(),
		RelatedTo: in.RelatedTo,
		ForRoles:  in.ForRoles,
	}

	s.mu.Lock()
	s.items = append([]models.Notification{n}, s.items...)
	s.mu.Unlock()

	if s.hub != nil {
		s.hub.Broadcast(n)
	}
	s.log.Debug().Str("title", n.Title).Str("relatedTo", n.RelatedTo).Msg("notification added")
	return n
}

// ForUser returns the notifications addressed to the user's role, newest
// first, with the read flag computed for that user.
func (s *NotificationService) ForUser(u *models.User) []models.Notification {
	if u == nil {
		return []models.Notification{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Notification, 0)
	for _, n := range s.items {
		if !n.Targets(u.Role) {
			continue
		}
		_, read := s.readBy[n.ID][u.ID]
		n.Read = read
		out = append(out, n)
	}
	return out
}

func (s *NotificationService) MarkAsRead(userID, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			if s.readBy[id] == nil {
				s.readBy[id] = make(map[string]struct{})
			}
			s.readBy[id][userID] = struct{}{}
			return true
		}
	}
	return false
}

// MarkAllAsRead marks every notification visible to the user as read for
// that user.
func (s *NotificationService) MarkAllAsRead(u *models.User) {
	if u == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.items {
		if !n.Targets(u.Role) {
			continue
		}
		if s.readBy[n.ID] == nil {
			s.readBy[n.ID] = make(map[string]struct{})
		}
		s.readBy[n.ID][u.ID] = struct{}{}
	}
}

// UnreadCount is derived, never stored; it cannot go negative.
func (s *NotificationService) UnreadCount(u *models.User) int {
	if u == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.items {
		if !n.Targets(u.Role) {
			continue
		}
		if _, read := s.readBy[n.ID][u.ID]; !read {
			count++
		}
	}
	return count
}

package models

import "time"

// Notification is process-local state: it is never persisted and does not
// survive a restart.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
	RelatedTo string    `json:"relatedTo,omitempty"` // repair request id
	ForRoles  []Role    `json:"forRoles"`
}

// Targets reports whether the notification is addressed to the given role.
func (n Notification) Targets(role Role) bool {
	for _, r := range n.ForRoles {
		if r == role {
			return true
		}
	}
	return false
}

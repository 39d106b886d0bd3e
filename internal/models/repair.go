package models

import "time"

type RepairStatus string

const (
	StatusNew        RepairStatus = "new"
	StatusInProgress RepairStatus = "inProgress"
	StatusCompleted  RepairStatus = "completed"
	StatusCancelled  RepairStatus = "cancelled"
)

func ValidStatus(s string) bool {
	switch RepairStatus(s) {
	case StatusNew, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transitions are allowed from s.
func (s RepairStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step: new → inProgress → completed, with cancelled reachable from any
// non-terminal state.
func (s RepairStatus) CanTransition(next RepairStatus) bool {
	if s.Terminal() {
		return false
	}
	switch next {
	case StatusCancelled:
		return true
	case StatusInProgress:
		return s == StatusNew
	case StatusCompleted:
		return s == StatusNew || s == StatusInProgress
	default:
		return false
	}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func ValidPriority(p string) bool {
	switch Priority(p) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

type RepairRequest struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	RoomNumber  string       `json:"roomNumber"`
	RequestedBy User         `json:"requestedBy"`
	AssignedTo  *User        `json:"assignedTo,omitempty"`
	Status      RepairStatus `json:"status"`
	Priority    Priority     `json:"priority"`
	WorkType    string       `json:"workType,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
	Notes       string       `json:"notes,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

type Attachment struct {
	ID          string    `json:"id"`
	RepairID    string    `json:"repairId"`
	URL         string    `json:"url"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	CreatedAt   time.Time `json:"createdAt"`
}

package task

import (
	"strings"
	"time"
)

type Task struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Status      Status     `json:"status" db:"status"`
	UserID      int64      `json:"userId" db:"user_id"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty" db:"updated_at"`
}

type Status string

const StatusOpen Status = "OPEN"
const StatusInProgress Status = "IN_PROGRESS"
const StatusDone Status = "DONE"

var statuses = []Status{StatusOpen, StatusInProgress, StatusDone}

func (s Status) Valid() bool {
	for _, st := range statuses {
		if s == st {
			return true
		}
	}
	return false
}

// Statuses lists the accepted values in declaration order.
func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

// Filter narrows a listing. Nil fields impose no constraint.
type Filter struct {
	Search *string `json:"search,omitempty"`
	Status *Status `json:"status,omitempty"`
}

// Matches reports whether t satisfies both predicates of f.
// Search is a case-sensitive substring of the title or the description.
func (f Filter) Matches(t *Task) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Search != nil {
		return strings.Contains(t.Title, *f.Search) || strings.Contains(t.Description, *f.Search)
	}
	return true
}

package task

import (
	"time"
)

type TaskOption func(*Task)

func WithStatus(status Status) TaskOption {
	if status == "" {
		return nil
	}
	return func(task *Task) {
		task.Status = status
	}
}

func WithUpdatedAt(at time.Time) TaskOption {
	return func(task *Task) {
		task.UpdatedAt = &at
	}
}

// Apply runs opts in order, skipping nil options.
func (t *Task) Apply(opts ...TaskOption) {
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
}


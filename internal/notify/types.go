package notify

import (
	"context"
	"errors"
	"time"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

type Stats struct {
	RunID     string
	Status    Status
	Operation string
	Engine    string
	Database  string
	FileName  string
	Size      int64
	Duration  time.Duration
	Error     error
}

type Notifier interface {
	Notify(ctx context.Context, stats Stats) error
}

type MultiNotifier struct {
	Notifiers []Notifier
}

// Notify fans out to every notifier and joins their errors.
func (m *MultiNotifier) Notify(ctx context.Context, stats Stats) error {
	var errs []error
	for _, n := range m.Notifiers {
		if err := n.Notify(ctx, stats); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

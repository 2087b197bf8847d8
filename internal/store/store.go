package store

import (
	"context"
	"time"
)

// Transition is one supervisor status change. Reason is empty unless the
// status carries a machine-readable reason code. Epoch identifies the flow
// invocation that produced the transition; Trigger is what started that flow
// ("autostart", "retry", "kill-retry").
type Transition struct {
	Status  string    `json:"status"`
	Reason  string    `json:"reason,omitempty"`
	Trigger string    `json:"trigger"`
	Epoch   uint64    `json:"epoch"`
	At      time.Time `json:"at"`
}

// Store persists supervisor transitions. Recording is best-effort from the
// supervisor's perspective; callers discard errors after logging them.
type Store interface {
	EnsureSchema(ctx context.Context) error
	RecordTransition(ctx context.Context, tr Transition) error
	RecentTransitions(ctx context.Context, limit int) ([]Transition, error)
	Close() error
}

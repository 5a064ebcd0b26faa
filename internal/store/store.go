package store

import (
	"context"
	"time"
)

// AuditStore persists the append-only audit trail of action-surface
// invocations. Implementations must be safe for concurrent use.
type AuditStore interface {
	AppendAudit(ctx context.Context, rec *AuditRecord) error
	ListAudit(ctx context.Context, filter AuditFilter) ([]*AuditRecord, error)
	Close() error
}

// AuditRecord is one action-surface invocation. A record is written for
// every invocation when auditing is enabled, independent of success.
type AuditRecord struct {
	ID        string         `json:"id"`
	Operation string         `json:"operation"`
	Params    map[string]any `json:"params,omitempty"`
	Outcome   string         `json:"outcome"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Audit outcomes.
const (
	OutcomeOK     = "ok"
	OutcomeDenied = "denied"
	OutcomeError  = "error"
)

// AuditFilter narrows an audit listing. Zero values mean no filtering;
// Limit defaults to 50.
type AuditFilter struct {
	Operation string
	Outcome   string
	Limit     int
}

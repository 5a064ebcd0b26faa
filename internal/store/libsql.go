package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/rendis/jenkgate/pkg/schema"
)

// LibSQLStore implements AuditStore using libSQL (embedded SQLite fork).
type LibSQLStore struct {
	db *sql.DB
}

var _ AuditStore = (*LibSQLStore)(nil)

// NewLibSQLStore opens a libSQL database at the given path.
// The path should be a file URI, e.g. "file:/path/to/audit.db".
func NewLibSQLStore(dbPath string) (*LibSQLStore, error) {
	db, err := sql.Open("libsql", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open libsql: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Connection-level PRAGMAs. Some PRAGMAs return rows so QueryRow is used.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		var result string
		_ = db.QueryRow(p).Scan(&result)
	}

	return &LibSQLStore{db: db}, nil
}

// Close closes the database.
func (s *LibSQLStore) Close() error { return s.db.Close() }

// Migrate runs all pending database migrations.
func (s *LibSQLStore) Migrate(ctx context.Context) error {
	return runMigrations(ctx, s.db)
}

// AppendAudit inserts one audit record.
func (s *LibSQLStore) AppendAudit(ctx context.Context, rec *AuditRecord) error {
	params, err := nullableJSON(rec.Params)
	if err != nil {
		return schema.NewError(schema.ErrCodeStore, "marshal audit params").WithCause(err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO audit_records (id, operation, params, outcome, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Operation, params, rec.Outcome, rec.Error, createdAt,
	)
	if err != nil {
		return schema.NewErrorf(schema.ErrCodeStore, "append audit record %s", rec.ID).WithCause(err)
	}
	return nil
}

// ListAudit returns audit records matching the filter, newest first.
func (s *LibSQLStore) ListAudit(ctx context.Context, filter AuditFilter) ([]*AuditRecord, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, operation, params, outcome, error, created_at FROM audit_records`
	var conditions []string
	var args []any
	if filter.Operation != "" {
		conditions = append(conditions, "operation = ?")
		args = append(args, filter.Operation)
	}
	if filter.Outcome != "" {
		conditions = append(conditions, "outcome = ?")
		args = append(args, filter.Outcome)
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "list audit records").WithCause(err)
	}
	defer rows.Close()

	var records []*AuditRecord
	for rows.Next() {
		rec := &AuditRecord{}
		var params sql.NullString
		var errText sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Operation, &params, &rec.Outcome, &errText, &rec.CreatedAt); err != nil {
			return nil, schema.NewError(schema.ErrCodeStore, "scan audit record").WithCause(err)
		}
		rec.Params = jsonOrNil(params)
		rec.Error = errText.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nullableJSON(m map[string]any) (any, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonOrNil(s sql.NullString) map[string]any {
	if !s.Valid || s.String == "" {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s.String), &m); err != nil {
		return nil
	}
	return m
}

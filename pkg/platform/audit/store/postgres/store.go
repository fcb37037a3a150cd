package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	audit "soulbound/pkg/platform/audit"
)

// Schema creates the audit table. Applied by Migrate.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id         UUID PRIMARY KEY,
	category   TEXT NOT NULL,
	timestamp  TIMESTAMPTZ NOT NULL,
	subject    TEXT NOT NULL,
	action     TEXT NOT NULL,
	resource   TEXT NOT NULL DEFAULT '',
	token      TEXT NOT NULL DEFAULT '',
	amount     TEXT NOT NULL DEFAULT '',
	reason     TEXT NOT NULL DEFAULT '',
	request_id TEXT NOT NULL DEFAULT '',
	client_ip  TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT ''
);
ALTER TABLE audit_events ADD COLUMN IF NOT EXISTS client_ip TEXT NOT NULL DEFAULT '';
ALTER TABLE audit_events ADD COLUMN IF NOT EXISTS user_agent TEXT NOT NULL DEFAULT '';
CREATE INDEX IF NOT EXISTS audit_events_subject_idx ON audit_events (subject, timestamp);
`

// Store implements audit.Store on PostgreSQL through database/sql and lib/pq.
type Store struct {
	db *sql.DB
}

// New wraps an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects with the lib/pq driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse audit dsn: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping audit db: %w", err)
	}
	return New(db), nil
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate audit schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append inserts one event under a fresh id.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	return s.AppendWithID(ctx, uuid.New(), event)
}

// AppendWithID inserts an event with a caller-chosen id. Duplicate ids are
// ignored so redelivered events are idempotent.
func (s *Store) AppendWithID(ctx context.Context, eventID uuid.UUID, event audit.Event) error {
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}

	query := `
		INSERT INTO audit_events (
			id, category, timestamp, subject, action,
			resource, token, amount, reason, request_id,
			client_ip, user_agent
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		eventID,
		string(category),
		event.Timestamp,
		event.Subject,
		event.Action,
		event.Resource,
		event.Token,
		event.Amount,
		event.Reason,
		event.RequestID,
		event.ClientIP,
		event.UserAgent,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil
		}
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

const uniqueViolation = pq.ErrorCode("23505")

// ListBySubject returns events for one account, oldest first.
func (s *Store) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	return s.query(ctx, `
		SELECT category, timestamp, subject, action, resource, token, amount, reason, request_id,
		       client_ip, user_agent
		FROM audit_events
		WHERE subject = $1
		ORDER BY timestamp ASC
	`, subject)
}

// ListByActions returns events whose action is in actions, newest first.
func (s *Store) ListByActions(ctx context.Context, actions []audit.AuditEvent, limit int) ([]audit.Event, error) {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}
	return s.query(ctx, `
		SELECT category, timestamp, subject, action, resource, token, amount, reason, request_id,
		       client_ip, user_agent
		FROM audit_events
		WHERE action = ANY($1)
		ORDER BY timestamp DESC
		LIMIT $2
	`, pq.Array(names), limit)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event    audit.Event
			category string
		)
		if err := rows.Scan(
			&category,
			&event.Timestamp,
			&event.Subject,
			&event.Action,
			&event.Resource,
			&event.Token,
			&event.Amount,
			&event.Reason,
			&event.RequestID,
			&event.ClientIP,
			&event.UserAgent,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ailearn-hub/learning-progress-hub/internal/domain/progress"
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
	"github.com/ailearn-hub/learning-progress-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD STORE IMPLEMENTATION
// All record variants share one table; the JSONB payload carries the
// variant-specific fields. A payload that fails to decode is logged and
// returned as an empty record, never as an error - aggregation skips it.
// ══════════════════════════════════════════════════════════════════════════════

// Sentinel values for key columns unused by a record's kind. They keep the
// composite primary key NOT NULL while staying outside the valid domain.
const (
	noDate  = "0001-01-01"
	noIndex = -1
)

// RecordStore implements progress.Store for PostgreSQL.
type RecordStore struct {
	conn *Connection
	log  *logger.Logger
}

// NewRecordStore creates a new RecordStore.
func NewRecordStore(conn *Connection, log *logger.Logger) *RecordStore {
	return &RecordStore{
		conn: conn,
		log:  log.With(logger.Component("postgres.record_store")),
	}
}

// recordPayload is the JSONB shape of the variant-specific fields.
type recordPayload struct {
	Indices []int                   `json:"indices,omitempty"`
	Terms   []string                `json:"terms,omitempty"`
	Quiz    *progress.QuizResult    `json:"quiz,omitempty"`
	Stats   *progress.StatsSnapshot `json:"stats,omitempty"`
}

// Get returns one record, or shared.ErrRecordNotFound.
func (s *RecordStore) Get(ctx context.Context, sessionID shared.SessionID, key progress.RecordKey) (*progress.Record, error) {
	query := `
		SELECT session_id, kind, date, content_index, sequence, payload, created_at, updated_at
		FROM progress_records
		WHERE session_id = $1 AND kind = $2 AND date = $3 AND content_index = $4 AND sequence = $5
	`

	row := s.conn.QueryRow(ctx, query,
		sessionID.String(),
		string(key.Kind),
		dateColumn(key.Date),
		indexColumn(key),
		key.Sequence,
	)

	record, err := s.scanRecord(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get record %s: %w", key, err)
	}

	return record, nil
}

// Put inserts or replaces one record.
func (s *RecordStore) Put(ctx context.Context, record *progress.Record) error {
	payload, err := json.Marshal(recordPayload{
		Indices: record.Indices,
		Terms:   record.Terms,
		Quiz:    record.Quiz,
		Stats:   record.Stats,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal record payload: %w", err)
	}

	query := `
		INSERT INTO progress_records (
			session_id, kind, date, content_index, sequence, payload, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id, kind, date, content_index, sequence)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`

	_, err = s.conn.Exec(ctx, query,
		record.SessionID.String(),
		string(record.Key.Kind),
		dateColumn(record.Key.Date),
		indexColumn(record.Key),
		record.Key.Sequence,
		payload,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to put record %s: %w", record.Key, err)
	}

	return nil
}

// List returns the session's records matching the filter.
func (s *RecordStore) List(ctx context.Context, sessionID shared.SessionID, filter progress.Filter) ([]*progress.Record, error) {
	query := `
		SELECT session_id, kind, date, content_index, sequence, payload, created_at, updated_at
		FROM progress_records
		WHERE session_id = $1
	`
	args := []interface{}{sessionID.String()}

	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		query += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	if !filter.Date.IsZero() {
		args = append(args, filter.Date.Time())
		query += fmt.Sprintf(" AND date = $%d", len(args))
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []*progress.Record
	for rows.Next() {
		record, err := s.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// Sessions returns the distinct session IDs present in the store.
func (s *RecordStore) Sessions(ctx context.Context) ([]shared.SessionID, error) {
	rows, err := s.conn.Query(ctx, "SELECT DISTINCT session_id FROM progress_records ORDER BY session_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []shared.SessionID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, shared.SessionID(id))
	}

	return sessions, rows.Err()
}

// rowScanner abstracts pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord decodes one row into a domain record. An undecodable payload
// degrades to an empty record of the same key instead of failing the read.
func (s *RecordStore) scanRecord(row rowScanner) (*progress.Record, error) {
	var (
		sessionID    string
		kind         string
		date         time.Time
		contentIndex int
		sequence     int
		rawPayload   []byte
		createdAt    time.Time
		updatedAt    time.Time
	)

	if err := row.Scan(&sessionID, &kind, &date, &contentIndex, &sequence, &rawPayload, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	record := &progress.Record{
		SessionID: shared.SessionID(sessionID),
		Key: progress.RecordKey{
			Kind:     progress.RecordKind(kind),
			Sequence: sequence,
		},
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if date.Year() > 1 {
		record.Key.Date = shared.DateOf(date)
	}
	if contentIndex >= 0 {
		record.Key.ContentIndex = shared.ContentIndex(contentIndex)
	}

	var payload recordPayload
	if err := json.Unmarshal(rawPayload, &payload); err != nil {
		s.log.Warn("malformed record payload, treating as empty",
			logger.SessionID(sessionID),
			logger.RecordKey(record.Key.String()),
			logger.Err(err),
		)
		return record, nil
	}

	record.Indices = payload.Indices
	record.Terms = payload.Terms
	record.Quiz = payload.Quiz
	record.Stats = payload.Stats

	return record, nil
}

// dateColumn maps a domain date to its column value, using the sentinel for
// keys whose kind carries no date.
func dateColumn(d shared.Date) time.Time {
	if d.IsZero() {
		t, _ := time.Parse("2006-01-02", noDate)
		return t
	}
	return d.Time()
}

// indexColumn maps the content index to its column value, using the sentinel
// for kinds that do not key on an index.
func indexColumn(key progress.RecordKey) int {
	if key.Kind != progress.KindTerms {
		return noIndex
	}
	return key.ContentIndex.Int()
}

// Package postgres implements the PostgreSQL persistence layer for the
// learning progress hub.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE PROGRESS RECORDS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create progress records table
-- Version: 001

-- One heterogeneous table for all record variants. The variant is selected by
-- kind; date, content_index and sequence are meaningful only for the kinds
-- that use them and default to sentinel values so the composite key stays
-- NOT NULL.
CREATE TABLE IF NOT EXISTS progress_records (
    session_id VARCHAR(128) NOT NULL,
    kind VARCHAR(10) NOT NULL,
    date DATE NOT NULL DEFAULT '0001-01-01',
    content_index INTEGER NOT NULL DEFAULT -1,
    sequence INTEGER NOT NULL DEFAULT 0,
    payload JSONB NOT NULL DEFAULT '{}'::jsonb,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (session_id, kind, date, content_index, sequence),
    CONSTRAINT valid_kind CHECK (kind IN ('daily', 'terms', 'quiz', 'stats'))
);

CREATE INDEX IF NOT EXISTS idx_progress_records_session ON progress_records(session_id);
CREATE INDEX IF NOT EXISTS idx_progress_records_session_kind ON progress_records(session_id, kind);
CREATE INDEX IF NOT EXISTS idx_progress_records_session_date ON progress_records(session_id, date);

-- Updated_at trigger function for automatic timestamp updates
CREATE OR REPLACE FUNCTION update_updated_at_column()
RETURNS TRIGGER AS $$
BEGIN
    NEW.updated_at = NOW();
    RETURN NEW;
END;
$$ language 'plpgsql';

DROP TRIGGER IF EXISTS update_progress_records_updated_at ON progress_records;
CREATE TRIGGER update_progress_records_updated_at
    BEFORE UPDATE ON progress_records
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();
`

const migration001Down = `
DROP TRIGGER IF EXISTS update_progress_records_updated_at ON progress_records;
DROP FUNCTION IF EXISTS update_updated_at_column();
DROP TABLE IF EXISTS progress_records;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE EVENT LOG
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create event log table
-- Version: 002
-- Purpose: Durable audit trail of domain events for debugging and replay.

CREATE TABLE IF NOT EXISTS event_log (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    event_type VARCHAR(64) NOT NULL,
    aggregate_id VARCHAR(128) NOT NULL,
    payload JSONB NOT NULL DEFAULT '{}'::jsonb,
    occurred_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_event_log_aggregate ON event_log(aggregate_id);
CREATE INDEX IF NOT EXISTS idx_event_log_type ON event_log(event_type);
CREATE INDEX IF NOT EXISTS idx_event_log_occurred_at ON event_log(occurred_at DESC);
`

const migration002Down = `
DROP TABLE IF EXISTS event_log;
`

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_progress_records",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_event_log",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
	}
}

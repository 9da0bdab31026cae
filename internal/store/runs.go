package store

import (
	"context"
	"time"

	"github.com/kapu/contentful-constructor-go/pkg/errors"
	"go.uber.org/zap"
)

// RunRecord is one row of the indexation audit log.
type RunRecord struct {
	ID          int64     `json:"id"`
	ContentType string    `json:"contentType"`
	Ok          bool      `json:"ok"`
	Message     string    `json:"message"`
	ENUploaded  int       `json:"enUploaded"`
	FRUploaded  int       `json:"frUploaded"`
	ENTaskID    string    `json:"enTaskId,omitempty"`
	FRTaskID    string    `json:"frTaskId,omitempty"`
	DurationMS  int64     `json:"durationMs"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RunRepository persists indexation runs.
type RunRepository struct {
	pg     *PostgresService
	logger *zap.Logger
}

func NewRunRepository(pg *PostgresService, logger *zap.Logger) *RunRepository {
	return &RunRepository{pg: pg, logger: logger}
}

const createRunsTable = `
CREATE TABLE IF NOT EXISTS indexation_runs (
	id           BIGSERIAL PRIMARY KEY,
	content_type TEXT NOT NULL,
	ok           BOOLEAN NOT NULL,
	message      TEXT NOT NULL DEFAULT '',
	en_uploaded  INTEGER NOT NULL DEFAULT 0,
	fr_uploaded  INTEGER NOT NULL DEFAULT 0,
	en_task_id   TEXT NOT NULL DEFAULT '',
	fr_task_id   TEXT NOT NULL DEFAULT '',
	duration_ms  BIGINT NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_indexation_runs_type_time
	ON indexation_runs (content_type, created_at DESC);`

// Init creates the audit log schema if missing.
func (r *RunRepository) Init(ctx context.Context) error {
	if _, err := r.pg.GetDB().ExecContext(ctx, createRunsTable); err != nil {
		return errors.NewStoreError("failed to create runs table", "init", err)
	}
	return nil
}

// Record appends one run to the audit log.
func (r *RunRepository) Record(ctx context.Context, rec *RunRecord) error {
	const query = `
		INSERT INTO indexation_runs
			(content_type, ok, message, en_uploaded, fr_uploaded, en_task_id, fr_task_id, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.pg.GetDB().QueryRowContext(ctx, query,
		rec.ContentType, rec.Ok, rec.Message,
		rec.ENUploaded, rec.FRUploaded,
		rec.ENTaskID, rec.FRTaskID,
		rec.DurationMS,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return errors.NewStoreError("failed to insert run record", "record", err)
	}

	r.logger.Debug("Run recorded",
		zap.Int64("id", rec.ID),
		zap.String("content_type", rec.ContentType),
	)
	return nil
}

// Recent lists the latest runs for a content type, newest first.
func (r *RunRepository) Recent(ctx context.Context, contentType string, limit int) ([]*RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	const query = `
		SELECT id, content_type, ok, message, en_uploaded, fr_uploaded,
		       en_task_id, fr_task_id, duration_ms, created_at
		FROM indexation_runs
		WHERE content_type = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pg.GetDB().QueryContext(ctx, query, contentType, limit)
	if err != nil {
		return nil, errors.NewStoreError("failed to query run records", "recent", err)
	}
	defer rows.Close()

	records := make([]*RunRecord, 0)
	for rows.Next() {
		rec := &RunRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.ContentType, &rec.Ok, &rec.Message,
			&rec.ENUploaded, &rec.FRUploaded,
			&rec.ENTaskID, &rec.FRTaskID,
			&rec.DurationMS, &rec.CreatedAt,
		); err != nil {
			return nil, errors.NewStoreError("failed to scan run record", "recent", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("failed to iterate run records", "recent", err)
	}
	return records, nil
}

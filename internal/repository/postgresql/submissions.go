package postgresql

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kurochkinivan/stego_portal/internal/domain"
	"github.com/kurochkinivan/stego_portal/internal/transfer"
)

const TableSubmissions = "submissions"

var submissionColumns = []string{
	"id",
	"form",
	"filename",
	"file_size",
	"status",
	"error_message",
	"payload_size",
	"started_at",
	"finished_at",
}

var _ transfer.Recorder = (*SubmissionsRepository)(nil)

type SubmissionsRepository struct {
	pool *pgxpool.Pool
	qb   sq.StatementBuilderType
}

func NewSubmissionsRepository(pool *pgxpool.Pool) *SubmissionsRepository {
	return &SubmissionsRepository{
		pool: pool,
		qb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *SubmissionsRepository) RecordSubmission(ctx context.Context, s *domain.Submission) error {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Insert(TableSubmissions).
		Columns(submissionColumns...).
		Values(
			s.ID,
			s.Form,
			s.Filename,
			s.FileSize,
			s.Status,
			s.ErrorMessage,
			s.PayloadSize,
			s.StartedAt,
			s.FinishedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			error_message = EXCLUDED.error_message,
			payload_size = EXCLUDED.payload_size,
			finished_at = EXCLUDED.finished_at
		`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert query: %w", err)
	}

	_, err = db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to record submission %s: %w", s.ID, err)
	}

	return nil
}

// Submissions returns a page of the journal, newest first, and the total count.
func (r *SubmissionsRepository) Submissions(ctx context.Context, limit, offset uint64) ([]*domain.Submission, int, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Select("COUNT(*)").
		From(TableSubmissions).
		ToSql()
	if err != nil {
		return nil, -1, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int
	if err := db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, -1, fmt.Errorf("failed to count submissions: %w", err)
	}

	sql, args, err = r.qb.
		Select(submissionColumns...).
		From(TableSubmissions).
		OrderBy("started_at DESC", "id").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, -1, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, -1, fmt.Errorf("failed to select submissions: %w", err)
	}

	submissions, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByNameLax[domain.Submission])
	if err != nil {
		return nil, -1, fmt.Errorf("failed to collect submissions: %w", err)
	}

	return submissions, total, nil
}

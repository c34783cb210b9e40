package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"portfolio-assistant/internal/domain/model"
	"portfolio-assistant/internal/domain/ports/repository"
)

var _ repository.NotificationLogRepository = (*notificationLogRepo)(nil)

type notificationLogRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationLogRepo(pool *pgxpool.Pool) repository.NotificationLogRepository {
	return &notificationLogRepo{pool: pool}
}

func (r *notificationLogRepo) Save(ctx context.Context, qx any, rec *model.NotificationLog) error {
	const q = `
INSERT INTO notification_log
  (id, session_id, kind, name, company, email, body, meeting_time, status, attempts, last_error, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,COALESCE($12,NOW()),COALESCE($13,NOW()))
ON CONFLICT (id) DO UPDATE SET
  status = EXCLUDED.status,
  attempts = EXCLUDED.attempts,
  last_error = EXCLUDED.last_error,
  updated_at = EXCLUDED.updated_at;`
	p := rec.Payload
	_, err := execSQL(ctx, r.pool, qx, q,
		rec.ID, rec.SessionID, string(p.Kind), p.Name, p.Company, p.Email, p.Body, p.Datetime,
		string(rec.Status), rec.Attempts, rec.LastError, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return fmt.Errorf("save notification (%s): %w", pgErr.Code, err)
		}
		return fmt.Errorf("save notification: %w", err)
	}
	return nil
}

func (r *notificationLogRepo) FindFailed(ctx context.Context, qx any, limit int) ([]*model.NotificationLog, error) {
	const q = selectCols + `
WHERE status = 'failed'
ORDER BY created_at ASC
LIMIT $1;`
	return r.list(ctx, qx, q, limit)
}

func (r *notificationLogRepo) FindRecent(ctx context.Context, qx any, limit int) ([]*model.NotificationLog, error) {
	const q = selectCols + `
ORDER BY created_at DESC
LIMIT $1;`
	return r.list(ctx, qx, q, limit)
}

func (r *notificationLogRepo) CountByStatus(ctx context.Context, qx any, status model.NotificationStatus) (int64, error) {
	const q = `SELECT COUNT(*) FROM notification_log WHERE status = $1;`
	row, err := pickRow(ctx, r.pool, qx, q, string(status))
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return n, nil
}

const selectCols = `
SELECT id, session_id, kind, name, company, email, body, meeting_time, status, attempts, last_error, created_at, updated_at
FROM notification_log`

func (r *notificationLogRepo) list(ctx context.Context, qx any, q string, limit int) ([]*model.NotificationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := queryRows(ctx, r.pool, qx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.NotificationLog
	for rows.Next() {
		rec := &model.NotificationLog{}
		var kind, status string
		if err := rows.Scan(&rec.ID, &rec.SessionID, &kind,
			&rec.Payload.Name, &rec.Payload.Company, &rec.Payload.Email, &rec.Payload.Body, &rec.Payload.Datetime,
			&status, &rec.Attempts, &rec.LastError, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		rec.Payload.Kind = model.NotificationKind(kind)
		rec.Status = model.NotificationStatus(status)
		out = append(out, rec)
	}
	return out, rows.Err()
}

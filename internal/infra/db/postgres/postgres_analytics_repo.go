package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"portfolio-assistant/internal/domain/model"
	"portfolio-assistant/internal/domain/ports/repository"
)

var _ repository.AnalyticsRepository = (*analyticsRepo)(nil)

type analyticsRepo struct {
	pool *pgxpool.Pool
}

func NewAnalyticsRepo(pool *pgxpool.Pool) repository.AnalyticsRepository {
	return &analyticsRepo{pool: pool}
}

func (r *analyticsRepo) SaveEvent(ctx context.Context, qx any, ev *model.PageEvent) error {
	const q = `
INSERT INTO page_events (id, session_id, path, referrer, occurred_at)
VALUES ($1, $2, $3, $4, $5);`
	_, err := execSQL(ctx, r.pool, qx, q, ev.ID, ev.SessionID, ev.Path, ev.Referrer, ev.OccurredAt)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 = unique_violation; a replayed event id is not an error.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil
		}
		return fmt.Errorf("save event: %w", err)
	}
	return nil
}

func (r *analyticsRepo) CountViews(ctx context.Context, qx any, since time.Time) (int64, error) {
	const q = `SELECT COUNT(*) FROM page_events WHERE occurred_at >= $1;`
	row, err := pickRow(ctx, r.pool, qx, q, since)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count views: %w", err)
	}
	return n, nil
}

func (r *analyticsRepo) ViewsByDay(ctx context.Context, qx any, since time.Time) (map[string]int64, error) {
	const q = `
SELECT TO_CHAR(occurred_at, 'YYYY-MM-DD') AS day, COUNT(*)
FROM page_events
WHERE occurred_at >= $1
GROUP BY day
ORDER BY day;`
	rows, err := queryRows(ctx, r.pool, qx, q, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var day string
		var n int64
		if err := rows.Scan(&day, &n); err != nil {
			return nil, fmt.Errorf("scan day bucket: %w", err)
		}
		out[day] = n
	}
	return out, rows.Err()
}

func (r *analyticsRepo) TopPaths(ctx context.Context, qx any, since time.Time, limit int) (map[string]int64, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
SELECT path, COUNT(*) AS views
FROM page_events
WHERE occurred_at >= $1
GROUP BY path
ORDER BY views DESC
LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, qx, q, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var path string
		var n int64
		if err := rows.Scan(&path, &n); err != nil {
			return nil, fmt.Errorf("scan path bucket: %w", err)
		}
		out[path] = n
	}
	return out, rows.Err()
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"portfolio-assistant/internal/domain"
	"portfolio-assistant/internal/domain/model"
	"portfolio-assistant/internal/domain/ports/repository"
	"portfolio-assistant/internal/infra/security"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo persists visitor sessions and their turn log. Turns are
// append-only; ordering is by timestamp, which the schema indexes.
// When an encryption service is provided, turn text is AES-GCM encrypted
// at rest; visitors paste contact details into chat.
type SessionRepo struct {
	pool *pgxpool.Pool
	enc  *security.EncryptionService
}

func NewSessionRepo(pool *pgxpool.Pool, enc *security.EncryptionService) *SessionRepo {
	return &SessionRepo{pool: pool, enc: enc}
}

func (r *SessionRepo) sealText(text string) (string, error) {
	if r.enc == nil {
		return text, nil
	}
	return r.enc.Encrypt(text)
}

func (r *SessionRepo) openText(stored string) (string, error) {
	if r.enc == nil {
		return stored, nil
	}
	return r.enc.Decrypt(stored)
}

func (r *SessionRepo) EnsureSession(ctx context.Context, qx any, sessionID string) (*model.Session, error) {
	const q = `
INSERT INTO sessions (id, created_at, updated_at)
VALUES ($1, NOW(), NOW())
ON CONFLICT (id) DO UPDATE SET updated_at = NOW()
RETURNING id, created_at, updated_at;`
	row, err := pickRow(ctx, r.pool, qx, q, sessionID)
	if err != nil {
		return nil, err
	}
	s := &model.Session{}
	if err := row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, fmt.Errorf("ensure session: %w", err)
	}
	return s, nil
}

func (r *SessionRepo) AppendTurn(ctx context.Context, qx any, m *model.Turn) error {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	text, err := r.sealText(m.Text)
	if err != nil {
		return fmt.Errorf("seal turn: %w", err)
	}
	const q = `
INSERT INTO turns (session_id, role, text, created_at)
VALUES ($1, $2, $3, $4);`
	if _, err := execSQL(ctx, r.pool, qx, q, m.SessionID, string(m.Role), text, m.Timestamp); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

func (r *SessionRepo) FindBySessionID(ctx context.Context, qx any, sessionID string) (*model.Session, error) {
	const qSess = `SELECT id, created_at, updated_at FROM sessions WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, qx, qSess, sessionID)
	if err != nil {
		return nil, err
	}
	s := &model.Session{}
	if err := row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	const qTurns = `
SELECT session_id, role, text, created_at
FROM turns
WHERE session_id = $1
ORDER BY created_at ASC, id ASC;`
	rows, err := queryRows(ctx, r.pool, qx, qTurns, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t model.Turn
		var role string
		if err := rows.Scan(&t.SessionID, &role, &t.Text, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		if t.Text, err = r.openText(t.Text); err != nil {
			return nil, fmt.Errorf("open turn: %w", err)
		}
		t.Role = model.TurnRole(role)
		s.Turns = append(s.Turns, t)
	}
	return s, rows.Err()
}

func (r *SessionRepo) CountSessions(ctx context.Context) (int64, error) {
	const q = `SELECT COUNT(*) FROM sessions;`
	var n int64
	if err := r.pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

func (r *SessionRepo) CleanupOldTurns(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	const q = `DELETE FROM turns WHERE created_at < NOW() - ($1 * INTERVAL '1 day');`
	tag, err := execSQL(ctx, r.pool, nil, q, retentionDays)
	if err != nil {
		return 0, fmt.Errorf("cleanup turns: %w", err)
	}
	return tag.RowsAffected(), nil
}

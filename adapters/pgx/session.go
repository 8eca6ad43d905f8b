package pgx

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/avelez/boxkeep/core"
)

func (a *Adapter) CreateSession(ctx context.Context, s *core.Session) error {
	query := `INSERT INTO sessions (id, user_id, token, refresh_token, expires_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING created_at, updated_at`

	return a.pool.QueryRow(ctx, query,
		s.ID, s.UserID, s.Token, s.RefreshToken, s.ExpiresAt,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (a *Adapter) GetSessionByRefreshToken(ctx context.Context, refreshToken, userID string) (*core.Session, error) {
	q := `SELECT id, user_id, token, refresh_token, expires_at, created_at, updated_at
	      FROM sessions WHERE refresh_token = $1 AND user_id = $2`

	s := &core.Session{}
	err := a.pool.QueryRow(ctx, q, refreshToken, userID).Scan(
		&s.ID, &s.UserID, &s.Token, &s.RefreshToken, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, core.ErrSessionNotFound
		}
		return nil, err
	}
	return s, nil
}

func (a *Adapter) UpdateSessionTokens(ctx context.Context, sessionID, token, refreshToken string, expiresAt time.Time) error {
	tag, err := a.pool.Exec(ctx,
		`UPDATE sessions SET token = $1, refresh_token = $2, expires_at = $3, updated_at = now() WHERE id = $4`,
		token, refreshToken, expiresAt, sessionID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrSessionNotFound
	}
	return nil
}

func (a *Adapter) DeleteSessionsByToken(ctx context.Context, token string) (int, error) {
	tag, err := a.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (a *Adapter) DeleteExpiredSessions(ctx context.Context) (int, error) {
	tag, err := a.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

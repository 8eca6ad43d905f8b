package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avelez/boxkeep/core"
)

// sessionMaxAge is how long a session row stays redeemable. Rotation
// extends it by the same window.
const sessionMaxAge = 30 * 24 * time.Hour

// SessionManager issues token pairs backed by revocable session rows.
//
// The tokens themselves are verifiable offline; the session row is what
// makes a refresh token revocable. Rotation overwrites the row's token
// fields in place, so a refresh token can be redeemed exactly once.
type SessionManager struct {
	sessions core.SessionStorage
	users    core.UserStorage
	issuer   core.TokenIssuer
	maxAge   time.Duration
}

func NewSessionManager(sessions core.SessionStorage, users core.UserStorage, issuer core.TokenIssuer) *SessionManager {
	return &SessionManager{
		sessions: sessions,
		users:    users,
		issuer:   issuer,
		maxAge:   sessionMaxAge,
	}
}

// Issue signs a fresh token pair and persists the session row holding it.
func (sm *SessionManager) Issue(ctx context.Context, user *core.User) (*core.TokenPair, error) {
	pair, err := sm.signPair(user)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &core.Session{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    now.Add(sm.maxAge),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := sm.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return pair, nil
}

// Rotate redeems a refresh token for a new pair, overwriting the session
// row's token fields and extending its expiry.
//
// The previous access token is not revoked; it stays valid until its own
// short expiry elapses. The previous refresh token dies here: the row no
// longer matches it.
func (sm *SessionManager) Rotate(ctx context.Context, refreshToken string) (*core.TokenPair, error) {
	userID, err := sm.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, core.ErrInvalidRefresh
	}

	// Match both the token value and the decoded user id so a valid token
	// cannot redeem someone else's session.
	session, err := sm.sessions.GetSessionByRefreshToken(ctx, refreshToken, userID)
	if err != nil {
		return nil, core.ErrInvalidRefresh
	}
	if session.ExpiresAt.Before(time.Now()) {
		return nil, core.ErrInvalidRefresh
	}

	user, err := sm.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, core.ErrInvalidRefresh
	}

	pair, err := sm.signPair(user)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(sm.maxAge)
	if err := sm.sessions.UpdateSessionTokens(ctx, session.ID, pair.AccessToken, pair.RefreshToken, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to rotate session: %w", err)
	}

	return pair, nil
}

// Destroy deletes every session holding the given access token.
// Unknown tokens are a no-op, not an error.
func (sm *SessionManager) Destroy(ctx context.Context, accessToken string) error {
	if _, err := sm.sessions.DeleteSessionsByToken(ctx, accessToken); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (sm *SessionManager) signPair(user *core.User) (*core.TokenPair, error) {
	accessToken, err := sm.issuer.AccessToken(core.AccessClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := sm.issuer.RefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &core.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

package storage

import (
	"context"
)

// Store keeps the opaque refresh tokens handed out at login.
// Unknown and expired tokens are reported as cnst.ErrInvalidRefreshToken.
type Store interface {
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error
	GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	// ConsumeRefreshToken returns the token and removes it in one step, so a
	// token can be exchanged only once.
	ConsumeRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteRefreshTokensByUser(ctx context.Context, userID uint) error
}

// RefreshToken represents a refresh token issued to a user
type RefreshToken struct {
	Token     string `json:"token"`
	UserID    uint   `json:"user_id"`
	ExpiresAt int64  `json:"expires_at"`
	CreatedAt int64  `json:"created_at"`
}

func (t *RefreshToken) expired(now int64) bool {
	return t.ExpiresAt <= now
}

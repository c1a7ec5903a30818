// Package auth issues and rotates the tokens of the catalog API: a short
// lived signed access token and an opaque refresh token kept in a store.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/amoylab/catalog/internal/auth/jwt"
	"github.com/amoylab/catalog/internal/auth/storage"
	"github.com/amoylab/catalog/internal/common/cnst"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenTypeBearer is the token type reported to clients
const TokenTypeBearer = "Bearer"

// Subject is what a token is issued for
type Subject struct {
	UserID     uint
	Username   string
	Role       string
	BusinessID *uint
}

// TokenPair is the result of a login or refresh
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// Tokens issues, rotates and revokes tokens
type Tokens struct {
	logger     *zap.Logger
	jwt        *jwt.Service
	store      storage.Store
	refreshTTL time.Duration
}

// NewTokens creates a token issuer
func NewTokens(logger *zap.Logger, jwtService *jwt.Service, store storage.Store, refreshTTL time.Duration) *Tokens {
	return &Tokens{
		logger:     logger.Named("auth"),
		jwt:        jwtService,
		store:      store,
		refreshTTL: refreshTTL,
	}
}

// Issue creates a new access token and refresh token for sub
func (t *Tokens) Issue(ctx context.Context, sub Subject) (*TokenPair, error) {
	access, err := t.jwt.GenerateToken(sub.UserID, sub.Username, sub.Role, sub.BusinessID)
	if err != nil {
		return nil, err
	}
	refresh := &storage.RefreshToken{
		Token:     uuid.NewString(),
		UserID:    sub.UserID,
		ExpiresAt: time.Now().Add(t.refreshTTL).Unix(),
	}
	if err := t.store.SaveRefreshToken(ctx, refresh); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh.Token, ExpiresIn: t.jwt.Duration()}, nil
}

// Redeem exchanges a refresh token for the id of its user. The token is
// spent; the caller issues a new pair.
func (t *Tokens) Redeem(ctx context.Context, refreshToken string) (uint, error) {
	rt, err := t.store.ConsumeRefreshToken(ctx, refreshToken)
	if err != nil {
		return 0, err
	}
	return rt.UserID, nil
}

// Revoke deletes a refresh token. Unknown tokens are not an error.
func (t *Tokens) Revoke(ctx context.Context, refreshToken string) error {
	err := t.store.DeleteRefreshToken(ctx, refreshToken)
	if errors.Is(err, cnst.ErrInvalidRefreshToken) {
		return nil
	}
	return err
}

// RevokeUser deletes every refresh token of a user
func (t *Tokens) RevokeUser(ctx context.Context, userID uint) error {
	if err := t.store.DeleteRefreshTokensByUser(ctx, userID); err != nil {
		t.logger.Warn("failed to revoke refresh tokens", zap.Uint("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

// Verify validates an access token and returns its claims
func (t *Tokens) Verify(token string) (*jwt.Claims, error) {
	claims, err := t.jwt.ValidateToken(token)
	if err != nil {
		return nil, cnst.ErrInvalidToken
	}
	return claims, nil
}

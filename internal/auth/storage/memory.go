package storage

import (
	"context"
	"sync"
	"time"

	"github.com/amoylab/catalog/internal/common/cnst"
)

// MemoryStorage implements the Store interface using in-memory storage
type MemoryStorage struct {
	mu     sync.Mutex
	tokens map[string]*RefreshToken
}

// NewMemoryStorage creates a new memory storage instance
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tokens: make(map[string]*RefreshToken),
	}
}

// SaveRefreshToken saves a refresh token
func (s *MemoryStorage) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token.CreatedAt = time.Now().Unix()
	stored := *token
	s.tokens[token.Token] = &stored
	return nil
}

// GetRefreshToken retrieves a refresh token
func (s *MemoryStorage) GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lookup(token)
}

// ConsumeRefreshToken retrieves and removes a refresh token
func (s *MemoryStorage) ConsumeRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.lookup(token)
	if err != nil {
		return nil, err
	}
	delete(s.tokens, token)
	return t, nil
}

// lookup must be called with mu held
func (s *MemoryStorage) lookup(token string) (*RefreshToken, error) {
	t, ok := s.tokens[token]
	if !ok {
		return nil, cnst.ErrInvalidRefreshToken
	}
	if t.expired(time.Now().Unix()) {
		delete(s.tokens, token)
		return nil, cnst.ErrInvalidRefreshToken
	}
	out := *t
	return &out, nil
}

// DeleteRefreshToken deletes a refresh token
func (s *MemoryStorage) DeleteRefreshToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tokens[token]; !exists {
		return cnst.ErrInvalidRefreshToken
	}
	delete(s.tokens, token)
	return nil
}

// DeleteRefreshTokensByUser deletes every refresh token of a user
func (s *MemoryStorage) DeleteRefreshTokensByUser(ctx context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, t := range s.tokens {
		if t.UserID == userID {
			delete(s.tokens, key)
		}
	}
	return nil
}

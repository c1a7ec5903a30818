package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/amoylab/catalog/internal/common/cnst"
	"github.com/amoylab/catalog/internal/common/config"
	"github.com/redis/go-redis/v9"
)

// RedisStorage implements the Store interface using Redis
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(cfg config.TokenStoreRedisConfig) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStorage{
		client: client,
		prefix: cfg.Prefix,
	}, nil
}

func (s *RedisStorage) tokenKey(token string) string {
	return s.prefix + "token:" + token
}

func (s *RedisStorage) userKey(userID uint) string {
	return s.prefix + "user:" + strconv.FormatUint(uint64(userID), 10)
}

// SaveRefreshToken saves a refresh token; Redis expires it on its own
func (s *RedisStorage) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	now := time.Now()
	token.CreatedAt = now.Unix()
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}

	ttl := time.Duration(token.ExpiresAt-token.CreatedAt) * time.Second
	if ttl <= 0 {
		return cnst.ErrInvalidRefreshToken
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.tokenKey(token.Token), data, ttl)
	pipe.SAdd(ctx, s.userKey(token.UserID), token.Token)
	pipe.Expire(ctx, s.userKey(token.UserID), ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// GetRefreshToken retrieves a refresh token
func (s *RedisStorage) GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	data, err := s.client.Get(ctx, s.tokenKey(token)).Bytes()
	return s.decode(data, err)
}

// ConsumeRefreshToken retrieves and removes a refresh token with GETDEL
func (s *RedisStorage) ConsumeRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	data, err := s.client.GetDel(ctx, s.tokenKey(token)).Bytes()
	t, err := s.decode(data, err)
	if err != nil {
		return nil, err
	}
	s.client.SRem(ctx, s.userKey(t.UserID), token)
	return t, nil
}

func (s *RedisStorage) decode(data []byte, err error) (*RefreshToken, error) {
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cnst.ErrInvalidRefreshToken
		}
		return nil, err
	}

	var t RefreshToken
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	if t.expired(time.Now().Unix()) {
		return nil, cnst.ErrInvalidRefreshToken
	}
	return &t, nil
}

// DeleteRefreshToken deletes a refresh token
func (s *RedisStorage) DeleteRefreshToken(ctx context.Context, token string) error {
	if _, err := s.ConsumeRefreshToken(ctx, token); err != nil {
		return err
	}
	return nil
}

// DeleteRefreshTokensByUser deletes every refresh token of a user
func (s *RedisStorage) DeleteRefreshTokensByUser(ctx context.Context, userID uint) error {
	key := s.userKey(userID)
	tokens, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, s.tokenKey(t))
	}
	keys = append(keys, key)
	return s.client.Del(ctx, keys...).Err()
}

// Close closes the Redis client
func (s *RedisStorage) Close() error {
	return s.client.Close()
}

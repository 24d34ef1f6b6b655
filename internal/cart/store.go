package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"wellspring/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned by a Store when no cart exists for the session.
var ErrNotFound = errors.New("cart not found")

// Store persists one cart record per session.
type Store interface {
	// Load returns the stored cart or ErrNotFound.
	Load(ctx context.Context, session string) (*model.Cart, error)

	// Save replaces the stored cart.
	Save(ctx context.Context, session string, c model.Cart) error

	// Delete removes the stored cart. Deleting a missing cart is not an error.
	Delete(ctx context.Context, session string) error
}

// RedisStore keeps carts as JSON strings under cart:<session> with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed cart store.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "cart_redis_store").Logger(),
	}
}

func (s *RedisStore) key(session string) string {
	return "cart:" + session
}

// Load fetches and decodes the cart of a session.
func (s *RedisStore) Load(ctx context.Context, session string) (*model.Cart, error) {
	data, err := s.client.Get(ctx, s.key(session)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	var c model.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		s.logger.Warn().Err(err).Str("session", session).Msg("discarding undecodable cart")
		return nil, ErrNotFound
	}
	if c.Items == nil {
		c.Items = []model.CartItem{}
	}
	return &c, nil
}

// Save encodes the cart and stores it with the configured TTL.
func (s *RedisStore) Save(ctx context.Context, session string, c model.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete removes the cart of a session.
func (s *RedisStore) Delete(ctx context.Context, session string) error {
	if err := s.client.Del(ctx, s.key(session)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

// MemoryStore keeps carts in process memory. Used when Redis is disabled and in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]model.Cart
}

// NewMemoryStore creates an empty in-memory cart store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]model.Cart)}
}

func (s *MemoryStore) Load(_ context.Context, session string) (*model.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[session]
	if !ok {
		return nil, ErrNotFound
	}
	c.Items = copyItems(c.Items)
	return &c, nil
}

func (s *MemoryStore) Save(_ context.Context, session string, c model.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.Items = copyItems(c.Items)
	s.carts[session] = c
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, session string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, session)
	return nil
}

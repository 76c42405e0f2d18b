package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"petotel/internal/domain"
)

const (
	attemptPrefix = "checkout:attempt:"
	contextPrefix = "checkout:ctx:"
	guardPrefix   = "checkout:booking:"
)

// CheckoutStore keeps attempts and checkout contexts under a fixed TTL that
// every write resets; reads leave it alone. An expired context surfaces as
// domain.ErrSessionExpired, an undecodable one as domain.ErrInvalidSession.
type CheckoutStore struct {
	c   *redis.Client
	ttl time.Duration
}

func NewCheckoutStore(c *redis.Client, ttl time.Duration) *CheckoutStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CheckoutStore{c: c, ttl: ttl}
}

func (s *CheckoutStore) SaveAttempt(ctx context.Context, a domain.Attempt) error {
	return s.put(ctx, attemptPrefix+a.ID, a)
}

func (s *CheckoutStore) GetAttempt(ctx context.Context, id string) (domain.Attempt, error) {
	var a domain.Attempt
	if err := s.get(ctx, attemptPrefix+id, &a); err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Attempt{}, domain.ErrNotFound
		}
		return domain.Attempt{}, err
	}
	return a, nil
}

func (s *CheckoutStore) CreateContext(ctx context.Context, attemptID string, cc domain.CheckoutContext) error {
	return s.put(ctx, contextPrefix+attemptID, cc)
}

func (s *CheckoutStore) ReadContext(ctx context.Context, attemptID string) (domain.CheckoutContext, error) {
	var cc domain.CheckoutContext
	if err := s.get(ctx, contextPrefix+attemptID, &cc); err != nil {
		var syn *json.SyntaxError
		var typ *json.UnmarshalTypeError
		switch {
		case errors.Is(err, redis.Nil):
			return domain.CheckoutContext{}, domain.ErrSessionExpired
		case errors.As(err, &syn), errors.As(err, &typ):
			return domain.CheckoutContext{}, fmt.Errorf("%w: %v", domain.ErrInvalidSession, err)
		}
		return domain.CheckoutContext{}, err
	}
	return cc, nil
}

func (s *CheckoutStore) DeleteContext(ctx context.Context, attemptID string) error {
	return s.c.Del(ctx, contextPrefix+attemptID).Err()
}

func (s *CheckoutStore) AcquireBooking(ctx context.Context, attemptID string, ttl time.Duration) (bool, error) {
	return s.c.SetNX(ctx, guardPrefix+attemptID, time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
}

func (s *CheckoutStore) ReleaseBooking(ctx context.Context, attemptID string) error {
	return s.c.Del(ctx, guardPrefix+attemptID).Err()
}

func (s *CheckoutStore) put(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.c.Set(ctx, key, b, s.ttl).Err()
}

func (s *CheckoutStore) get(ctx context.Context, key string, dst any) error {
	b, err := s.c.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

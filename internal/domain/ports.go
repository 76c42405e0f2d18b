package domain

import (
	"context"
	"time"
)

// HotelAPI is the upstream distribution API.
type HotelAPI interface {
	SearchPlaces(ctx context.Context, query string) ([]Place, error)
	SearchRates(ctx context.Context, c RateCriteria) (RateSearchResult, error)
	GetHotelDetails(ctx context.Context, hotelID string) (*HotelDetail, error)
	Prebook(ctx context.Context, offerID string) (*PrebookData, error)
	Book(ctx context.Context, req BookRequest) (*BookingData, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// CheckoutStore holds attempts and the checkout context between requests.
type CheckoutStore interface {
	SaveAttempt(ctx context.Context, a Attempt) error
	GetAttempt(ctx context.Context, id string) (Attempt, error) // ErrNotFound when absent

	CreateContext(ctx context.Context, attemptID string, c CheckoutContext) error
	ReadContext(ctx context.Context, attemptID string) (CheckoutContext, error) // ErrSessionExpired when absent, ErrInvalidSession when unreadable
	DeleteContext(ctx context.Context, attemptID string) error

	// AcquireBooking is a one-shot guard: true for the first caller until released.
	AcquireBooking(ctx context.Context, attemptID string, ttl time.Duration) (bool, error)
	ReleaseBooking(ctx context.Context, attemptID string) error
}

type PolicyRepository interface {
	UpsertSnapshot(ctx context.Context, s PetPolicySnapshot) error
	LogMiss(ctx context.Context, hotelID string, status int, reason string) error
	GetSnapshot(ctx context.Context, hotelID string) (PetPolicySnapshot, error)
}

type BookingLedger interface {
	RecordBooking(ctx context.Context, e LedgerEntry) error
	GetBooking(ctx context.Context, bookingID string) (LedgerEntry, error)
}

// EventPublisher emits domain events; implementations must not block checkout.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, v any) error
}

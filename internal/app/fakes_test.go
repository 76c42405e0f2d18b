package app_test

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"petotel/internal/domain"
)

// ---- fakes ----

type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

type fakeDetails struct {
	details map[string]*domain.HotelDetail
	errs    map[string]error
	calls   int32
}

func (f *fakeDetails) GetHotelDetails(ctx context.Context, id string) (*domain.HotelDetail, error) {
	atomic.AddInt32(&f.calls, 1)
	if err, ok := f.errs[id]; ok {
		return nil, err
	}
	if d, ok := f.details[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

type fakeRates struct {
	res  domain.RateSearchResult
	err  error
	last domain.RateCriteria
}

func (f *fakeRates) SearchRates(ctx context.Context, c domain.RateCriteria) (domain.RateSearchResult, error) {
	f.last = c
	return f.res, f.err
}

type fakeRepo struct {
	snaps  map[string]domain.PetPolicySnapshot
	misses []string
}

func (f *fakeRepo) UpsertSnapshot(ctx context.Context, s domain.PetPolicySnapshot) error {
	if f.snaps == nil {
		f.snaps = map[string]domain.PetPolicySnapshot{}
	}
	f.snaps[s.HotelID] = s
	return nil
}

func (f *fakeRepo) LogMiss(ctx context.Context, hotelID string, status int, reason string) error {
	f.misses = append(f.misses, hotelID+":"+reason)
	return nil
}

func (f *fakeRepo) GetSnapshot(ctx context.Context, hotelID string) (domain.PetPolicySnapshot, error) {
	s, ok := f.snaps[hotelID]
	if !ok {
		return domain.PetPolicySnapshot{}, domain.ErrNotFound
	}
	return s, nil
}

type fakeLedger struct {
	entries map[string]domain.LedgerEntry
}

func (f *fakeLedger) RecordBooking(ctx context.Context, e domain.LedgerEntry) error {
	f.entries[e.BookingID] = e
	return nil
}

func (f *fakeLedger) GetBooking(ctx context.Context, id string) (domain.LedgerEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return domain.LedgerEntry{}, domain.ErrNotFound
	}
	return e, nil
}

// ---- fixtures ----

func ptr[T any](v T) *T { return &v }

func rateData(hotelID string, amount float64, tag string) domain.HotelRateData {
	r := domain.Rate{
		Name:         "Deluxe King",
		MappedRoomID: 101,
		BoardName:    "Room Only",
		RetailRate:   domain.RetailRate{Total: []domain.Money{{Amount: amount, Currency: "USD"}}},
	}
	if tag != "" {
		r.CancellationPolicies = &domain.CancellationPolicies{RefundableTag: tag}
	}
	return domain.HotelRateData{
		HotelID:   hotelID,
		RoomTypes: []domain.RoomType{{OfferID: "offer-" + hotelID, Rates: []domain.Rate{r}}},
	}
}

package app

import (
	"context"
	"time"

	"petotel/internal/domain"
)

type QueryService struct {
	repo     domain.PolicyRepository
	ledger   domain.BookingLedger
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.PolicyRepository, l domain.BookingLedger, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, ledger: l, cache: c, cacheTTL: ttl}
}

// GetPetPolicy serves the last persisted verdict for a hotel.
func (s *QueryService) GetPetPolicy(ctx context.Context, hotelID string) (domain.PetPolicySnapshot, error) {
	key := PolicyKey(hotelID)
	var snap domain.PetPolicySnapshot
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &snap); ok {
			return snap, nil
		}
	}
	snap, err := s.repo.GetSnapshot(ctx, hotelID)
	if err != nil {
		return domain.PetPolicySnapshot{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, snap, int(s.cacheTTL.Seconds()))
	}
	return snap, nil
}

func (s *QueryService) GetBooking(ctx context.Context, bookingID string) (domain.LedgerEntry, error) {
	if s.ledger == nil {
		return domain.LedgerEntry{}, domain.ErrNotFound
	}
	return s.ledger.GetBooking(ctx, bookingID)
}

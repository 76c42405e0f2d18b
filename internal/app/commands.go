package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"petotel/internal/adapters/observability"
	"petotel/internal/domain"
	"petotel/internal/petpolicy"
)

func PolicyKey(hotelID string) string { return "hotel:petpolicy:" + hotelID }

// SnapshotService resolves and persists the pet policy of one hotel. The
// ingestor runs it over a configured list of hotel IDs.
type SnapshotService struct {
	api   DetailSource
	repo  domain.PolicyRepository
	cache domain.Cache
}

func NewSnapshotService(api DetailSource, r domain.PolicyRepository, cache domain.Cache) *SnapshotService {
	return &SnapshotService{api: api, repo: r, cache: cache}
}

// Snapshot returns (nil, nil) for a hotel upstream does not serve: the miss
// is recorded and stale caches are dropped.
func (s *SnapshotService) Snapshot(ctx context.Context, hotelID string) (*domain.PetPolicySnapshot, error) {
	d, err := s.api.GetHotelDetails(ctx, hotelID)
	if err != nil {
		if status, reason, miss := classifyMiss(err); miss {
			_ = s.repo.LogMiss(ctx, hotelID, status, reason)
			s.invalidate(ctx, hotelID)
			return nil, nil
		}
		return nil, err
	}

	res := petpolicy.ForDetail(d)
	observability.ObservePetPolicy("snapshot", string(res.Source), res.PetFriendly)
	raw, _ := json.Marshal(d)
	snap := domain.PetPolicySnapshot{
		HotelID:     hotelID,
		HotelName:   d.Name,
		PetFriendly: res.PetFriendly,
		PolicyText:  res.PolicyText,
		Source:      string(res.Source),
		RawJSON:     raw,
	}
	if err := s.repo.UpsertSnapshot(ctx, snap); err != nil {
		return nil, err
	}
	// fresh snapshot supersedes both cached views of this hotel
	s.invalidate(ctx, hotelID)
	return &snap, nil
}

// classifyMiss maps "not found" and "not allowed" upstream answers to a miss row.
func classifyMiss(err error) (status int, reason string, miss bool) {
	if errors.Is(err, domain.ErrNotFound) {
		return http.StatusNotFound, "not found", true
	}
	var ue *domain.UpstreamError
	if errors.As(err, &ue) && (ue.Status == http.StatusUnauthorized || ue.Status == http.StatusForbidden) {
		return ue.Status, "inactive", true
	}
	return 0, "", false
}

func (s *SnapshotService) invalidate(ctx context.Context, hotelID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, DetailKey(hotelID))
	_ = s.cache.Del(ctx, PolicyKey(hotelID))
}

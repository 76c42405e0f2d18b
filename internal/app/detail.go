package app

import (
	"context"
	"time"

	"petotel/internal/domain"
)

// DetailSource fetches one upstream hotel record.
type DetailSource interface {
	GetHotelDetails(ctx context.Context, hotelID string) (*domain.HotelDetail, error)
}

func DetailKey(hotelID string) string { return "hotel:detail:" + hotelID }

// DetailReader is a read-through cache over DetailSource. Cache errors never
// fail a read.
type DetailReader struct {
	src      DetailSource
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewDetailReader(src DetailSource, c domain.Cache, ttl time.Duration) *DetailReader {
	return &DetailReader{src: src, cache: c, cacheTTL: ttl}
}

func (r *DetailReader) GetHotelDetails(ctx context.Context, hotelID string) (*domain.HotelDetail, error) {
	key := DetailKey(hotelID)
	if r.cache != nil {
		var d domain.HotelDetail
		if ok, _ := r.cache.Get(ctx, key, &d); ok {
			return &d, nil
		}
	}
	d, err := r.src.GetHotelDetails(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if r.cache != nil && r.cacheTTL > 0 {
		_ = r.cache.Set(ctx, key, d, int(r.cacheTTL.Seconds()))
	}
	return d, nil
}

func (r *DetailReader) Evict(ctx context.Context, hotelID string) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Del(ctx, DetailKey(hotelID))
}

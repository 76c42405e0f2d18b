package app

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"petotel/internal/adapters/observability"
	"petotel/internal/domain"
	"petotel/internal/petpolicy"
	"petotel/internal/rates"
)

type HotelQuery struct {
	HotelID  string
	Checkin  string
	Checkout string
	Adults   int
}

// HotelPage is the detail-page view: the hotel record, its pet policy and
// every offer grouped by physical room.
type HotelPage struct {
	HotelID          string               `json:"hotelId"`
	Hotel            *domain.HotelDetail  `json:"hotel,omitempty"`
	PetPolicy        petpolicy.Result     `json:"petPolicy"`
	Rooms            []domain.GroupedRoom `json:"rooms"`
	RatesUnavailable bool                 `json:"ratesUnavailable,omitempty"`
}

type HotelService struct {
	rates   RateSearcher
	details DetailSource
}

func NewHotelService(r RateSearcher, d DetailSource) *HotelService {
	return &HotelService{rates: r, details: d}
}

// Page fetches the detail record and the hotel's rates concurrently. Either
// half may fail on its own; the page is only missing when both came back empty.
func (s *HotelService) Page(ctx context.Context, q HotelQuery) (HotelPage, error) {
	id := strings.TrimSpace(q.HotelID)
	if id == "" {
		return HotelPage{}, domain.Validation("hotelId is required")
	}

	var (
		detail   *domain.HotelDetail
		detErr   error
		rateRes  domain.RateSearchResult
		rateErr  error
		withRate = q.Checkin != "" && q.Checkout != ""
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		detail, detErr = s.details.GetHotelDetails(gctx, id)
		return nil
	})
	if withRate {
		g.Go(func() error {
			rateRes, rateErr = s.rates.SearchRates(gctx, hotelCriteria(id, q))
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return HotelPage{}, err
	}

	page := HotelPage{HotelID: id, Rooms: []domain.GroupedRoom{}}
	if detErr != nil {
		detail = nil
		if !errors.Is(detErr, domain.ErrNotFound) {
			log.Warn().Err(detErr).Str("hotel_id", id).Msg("hotel detail fetch failed")
		}
	}
	if rateErr != nil {
		page.RatesUnavailable = true
		log.Warn().Err(rateErr).Str("hotel_id", id).Msg("hotel rate search failed")
	}

	var catalog []domain.HotelRoom
	if detail != nil {
		catalog = detail.Rooms
	}
	if h, ok := ratesFor(id, rateRes.Data); ok {
		page.Rooms = rates.GroupRooms(h, catalog)
	}

	if detail == nil && len(page.Rooms) == 0 {
		return HotelPage{}, domain.ErrNotFound
	}

	page.Hotel = detail
	page.PetPolicy = petpolicy.ForDetail(detail)
	observability.ObservePetPolicy("detail", string(page.PetPolicy.Source), page.PetPolicy.PetFriendly)
	return page, nil
}

// ratesFor picks the hotel's entry, falling back to the first one since the
// search was scoped to a single hotel.
func ratesFor(id string, data []domain.HotelRateData) (domain.HotelRateData, bool) {
	for _, h := range data {
		if h.HotelID == id {
			return h, true
		}
	}
	if len(data) > 0 {
		return data[0], true
	}
	return domain.HotelRateData{}, false
}

func hotelCriteria(id string, q HotelQuery) domain.RateCriteria {
	adults := q.Adults
	if adults <= 0 {
		adults = 2
	}
	return domain.RateCriteria{
		HotelIDs:         []string{id},
		Occupancies:      []domain.Occupancy{{Adults: adults}},
		Currency:         "USD",
		GuestNationality: "US",
		Checkin:          q.Checkin,
		Checkout:         q.Checkout,
		RoomMapping:      true,
		IncludeHotelData: true,
	}
}

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

const (
	MsgNoRates     = "No pet-friendly hotels found for your search. Try adjusting your dates or destination."
	MsgAllFiltered = "No pet-friendly hotels found for your search. Try a different destination or use the vibe search with pet-related terms."

	// FacilityPetsAllowed is the upstream facility ID for "Pets allowed".
	FacilityPetsAllowed = 4
)

type RateSearcher interface {
	SearchRates(ctx context.Context, c domain.RateCriteria) (domain.RateSearchResult, error)
}

type SearchQuery struct {
	Checkin   string
	Checkout  string
	Adults    int
	PlaceID   string
	PlaceName string
	VibeQuery string
	PetType   string
	PetCount  string
}

type SearchResult struct {
	Hotels  []HotelCard `json:"hotels"`
	Message string      `json:"message,omitempty"`
	// Checked counts hotels whose policy was evaluated before filtering.
	Checked int `json:"checked"`
}

// SearchService builds the pet-friendly listing: one rate search, then a
// concurrent detail fetch per hotel to verify the pet policy.
type SearchService struct {
	rates       RateSearcher
	details     DetailSource
	concurrency int // 0 = one goroutine per hotel
}

func NewSearchService(r RateSearcher, d DetailSource, concurrency int) *SearchService {
	return &SearchService{rates: r, details: d, concurrency: concurrency}
}

func (s *SearchService) Search(ctx context.Context, q SearchQuery) (SearchResult, error) {
	if q.Checkin == "" || q.Checkout == "" {
		return SearchResult{}, domain.Validation("checkin and checkout are required")
	}
	if strings.TrimSpace(q.PlaceID) == "" && strings.TrimSpace(q.VibeQuery) == "" {
		return SearchResult{}, domain.Validation("placeId or vibeQuery is required")
	}

	res, err := s.rates.SearchRates(ctx, listingCriteria(q))
	if err != nil {
		return SearchResult{}, err
	}
	if len(res.Data) == 0 {
		return SearchResult{Hotels: []HotelCard{}, Message: MsgNoRates}, nil
	}

	prices := rates.PriceIndex(res.Data)
	briefs := indexBriefs(res.Hotels)
	ids := make([]string, len(res.Data))
	for i, h := range res.Data {
		ids[i] = h.HotelID
	}

	fetched, err := s.fetchDetails(ctx, ids)
	if err != nil {
		return SearchResult{}, err
	}

	cards := make([]HotelCard, 0, len(ids))
	for i, id := range ids {
		pol := petpolicy.ForListing(fetched[i].detail)
		observability.ObservePetPolicy("listing", string(pol.Source), pol.PetFriendly)
		if !pol.PetFriendly {
			continue
		}
		cards = append(cards, mapCard(id, fetched[i].detail, briefs[id], prices[id], pol))
	}

	out := SearchResult{Hotels: cards, Checked: len(ids)}
	if len(cards) == 0 {
		out.Message = MsgAllFiltered
	}
	log.Info().Int("rated", len(ids)).Int("pet_friendly", len(cards)).Msg("search completed")
	return out, nil
}

type detailResult struct {
	detail *domain.HotelDetail
	err    error
}

// fetchDetails fetches every hotel concurrently. A failed fetch only marks
// its own slot; the join fails only when the request itself is cancelled.
func (s *SearchService) fetchDetails(ctx context.Context, ids []string) ([]detailResult, error) {
	out := make([]detailResult, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for i, id := range ids {
		g.Go(func() error {
			d, err := s.details.GetHotelDetails(gctx, id)
			if err != nil {
				out[i] = detailResult{err: err}
				if !errors.Is(err, context.Canceled) {
					log.Warn().Err(err).Str("hotel_id", id).Msg("detail fetch failed; using listing default")
				}
				return nil
			}
			out[i] = detailResult{detail: d}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func listingCriteria(q SearchQuery) domain.RateCriteria {
	adults := q.Adults
	if adults <= 0 {
		adults = 2
	}
	c := domain.RateCriteria{
		Checkin:          q.Checkin,
		Checkout:         q.Checkout,
		Occupancies:      []domain.Occupancy{{Adults: adults}},
		Currency:         "USD",
		GuestNationality: "US",
		RoomMapping:      true,
		MaxRatesPerHotel: 1,
		IncludeHotelData: true,
		Facilities:       []int{FacilityPetsAllowed},
	}
	if v := strings.TrimSpace(q.VibeQuery); v != "" {
		c.AISearch = v + " pet friendly"
	} else {
		c.PlaceID = strings.TrimSpace(q.PlaceID)
	}
	return c
}

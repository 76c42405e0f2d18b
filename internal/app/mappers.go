package app

import (
	"strings"

	"petotel/internal/domain"
	"petotel/internal/petpolicy"
	"petotel/internal/rates"
)

// HotelCard is one entry of the search listing.
type HotelCard struct {
	HotelID    string   `json:"hotelId"`
	Name       string   `json:"name"`
	Photo      string   `json:"photo"`
	Address    string   `json:"address"`
	Rating     float64  `json:"rating"`
	Price      float64  `json:"price"`
	Currency   string   `json:"currency"`
	Tags       []string `json:"tags,omitempty"`
	Story      string   `json:"story,omitempty"`
	PetPolicy  string   `json:"petPolicy"`
	Refundable bool     `json:"refundable"`
}

/********** card assembly: detail first, then brief, then synthetic **********/

func mapCard(hotelID string, d *domain.HotelDetail, b *domain.HotelBrief, p rates.Price, pol petpolicy.Result) HotelCard {
	c := HotelCard{
		HotelID:    hotelID,
		Currency:   "USD",
		PetPolicy:  pol.PolicyText,
		Price:      p.Amount,
		Refundable: p.Refundable,
	}
	if p.Currency != "" {
		c.Currency = p.Currency
	}
	if c.PetPolicy == "" {
		c.PetPolicy = petpolicy.ListingUnknownText
	}

	var detailName, detailPhoto, briefName, briefPhoto string
	if d != nil {
		detailName = d.Name
		detailPhoto = d.MainPhoto
		if detailPhoto == "" && len(d.HotelImages) > 0 {
			detailPhoto = d.HotelImages[0].URL
		}
		c.Address = joinAddress(d.Address, d.City)
	}
	if b != nil {
		briefName, briefPhoto = b.Name, b.MainPhoto
		c.Tags = b.Tags
		c.Story = b.Story
		c.Rating = b.Rating
		if d == nil {
			c.Address = b.Address
		}
	}
	c.Name = firstNonEmpty(detailName, briefName, "Hotel "+hotelID)
	c.Photo = firstNonEmpty(detailPhoto, briefPhoto)
	if c.Rating == 0 && d != nil {
		c.Rating = d.StarRating
	}
	return c
}

func joinAddress(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func indexBriefs(bs []domain.HotelBrief) map[string]*domain.HotelBrief {
	out := make(map[string]*domain.HotelBrief, len(bs))
	for i := range bs {
		if _, dup := out[bs[i].ID]; !dup {
			out[bs[i].ID] = &bs[i]
		}
	}
	return out
}

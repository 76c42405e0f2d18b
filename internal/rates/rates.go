// Package rates turns a rate-search result tree into display shapes.
package rates

import "petotel/internal/domain"

// Price is the representative price of a hotel in the listing.
type Price struct {
	Amount     float64 `json:"price"`
	Currency   string  `json:"currency"`
	Refundable bool    `json:"refundable"`
}

// GroupRooms collects every rate plan under the physical room it maps to.
// Group order is first appearance; offer order is upstream order.
func GroupRooms(h domain.HotelRateData, catalog []domain.HotelRoom) []domain.GroupedRoom {
	var out []domain.GroupedRoom
	index := make(map[int]int)

	for _, rt := range h.RoomTypes {
		for _, rate := range rt.Rates {
			offer, ok := toOffer(rt.OfferID, rate)
			if !ok {
				continue
			}
			i, seen := index[rate.MappedRoomID]
			if !seen {
				i = len(out)
				index[rate.MappedRoomID] = i
				out = append(out, newGroup(rate, catalog))
			}
			out[i].Offers = append(out[i].Offers, offer)
		}
	}
	return out
}

func newGroup(first domain.Rate, catalog []domain.HotelRoom) domain.GroupedRoom {
	g := domain.GroupedRoom{MappedRoomID: first.MappedRoomID, RoomName: first.Name}
	for _, room := range catalog {
		if room.ID != first.MappedRoomID {
			continue
		}
		if room.RoomName != "" {
			g.RoomName = room.RoomName
		}
		if len(room.Photos) > 0 {
			g.RoomPhoto = room.Photos[0].URL
		}
		break
	}
	return g
}

// toOffer normalizes one rate plan; rates without a total are not sellable.
func toOffer(offerID string, r domain.Rate) (domain.Offer, bool) {
	if len(r.RetailRate.Total) == 0 {
		return domain.Offer{}, false
	}
	o := domain.Offer{
		OfferID:       offerID,
		RateName:      r.Name,
		BoardName:     r.BoardName,
		Price:         r.RetailRate.Total[0].Amount,
		Currency:      r.RetailRate.Total[0].Currency,
		RefundableTag: RefundableTag(r.CancellationPolicies),
	}
	if len(r.RetailRate.TaxesAndFees) > 0 {
		o.TaxesIncluded = r.RetailRate.TaxesAndFees[0].Included
		o.TaxAmount = r.RetailRate.TaxesAndFees[0].Amount
	}
	if cp := r.CancellationPolicies; cp != nil && len(cp.CancelPolicyInfos) > 0 {
		o.CancelTime = cp.CancelPolicyInfos[0].CancelTime
	}
	return o, true
}

// RefundableTag never reports a missing cancellation block as refundable.
func RefundableTag(cp *domain.CancellationPolicies) string {
	if cp == nil || cp.RefundableTag == "" {
		return domain.TagNonRefundable
	}
	return cp.RefundableTag
}

// FirstObservedPrice is the first rate of the first room type. It is not a
// minimum over the hotel's rates.
func FirstObservedPrice(h domain.HotelRateData) (Price, bool) {
	if len(h.RoomTypes) == 0 || len(h.RoomTypes[0].Rates) == 0 {
		return Price{}, false
	}
	r := h.RoomTypes[0].Rates[0]
	if len(r.RetailRate.Total) == 0 {
		return Price{}, false
	}
	return Price{
		Amount:     r.RetailRate.Total[0].Amount,
		Currency:   r.RetailRate.Total[0].Currency,
		Refundable: RefundableTag(r.CancellationPolicies) == domain.TagRefundable,
	}, true
}

// PriceIndex maps hotel ID to its first observed price.
func PriceIndex(items []domain.HotelRateData) map[string]Price {
	out := make(map[string]Price, len(items))
	for _, it := range items {
		if p, ok := FirstObservedPrice(it); ok {
			out[it.HotelID] = p
		}
	}
	return out
}

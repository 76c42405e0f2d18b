package domain

type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type TaxOrFee struct {
	Included bool     `json:"included"`
	Amount   *float64 `json:"amount,omitempty"`
}

type RetailRate struct {
	Total        []Money    `json:"total"`
	TaxesAndFees []TaxOrFee `json:"taxesAndFees,omitempty"`
}

type CancelPolicyInfo struct {
	CancelTime string `json:"cancelTime"`
}

type CancellationPolicies struct {
	RefundableTag     string             `json:"refundableTag"`
	CancelPolicyInfos []CancelPolicyInfo `json:"cancelPolicyInfos,omitempty"`
}

// Refundable tags as sent by upstream.
const (
	TagRefundable    = "RFN"
	TagNonRefundable = "NRFN"
)

type Rate struct {
	RateID               string                `json:"rateId,omitempty"`
	Name                 string                `json:"name"`
	MappedRoomID         int                   `json:"mappedRoomId"`
	BoardName            string                `json:"boardName"`
	RetailRate           RetailRate            `json:"retailRate"`
	CancellationPolicies *CancellationPolicies `json:"cancellationPolicies,omitempty"`
}

// RoomType is one purchasable offer; all of its rates share OfferID.
type RoomType struct {
	OfferID string `json:"offerId"`
	Rates   []Rate `json:"rates"`
}

type HotelRateData struct {
	HotelID   string     `json:"hotelId"`
	RoomTypes []RoomType `json:"roomTypes"`
}

// Occupancy is one room's guests in a rate search.
type Occupancy struct {
	Adults   int   `json:"adults"`
	Children []int `json:"children,omitempty"`
}

// RateCriteria is the rate-search request body.
type RateCriteria struct {
	Checkin          string      `json:"checkin"`
	Checkout         string      `json:"checkout"`
	Occupancies      []Occupancy `json:"occupancies"`
	Currency         string      `json:"currency"`
	GuestNationality string      `json:"guestNationality"`
	PlaceID          string      `json:"placeId,omitempty"`
	AISearch         string      `json:"aiSearch,omitempty"`
	HotelIDs         []string    `json:"hotelIds,omitempty"`
	Facilities       []int       `json:"facilities,omitempty"`
	RoomMapping      bool        `json:"roomMapping,omitempty"`
	MaxRatesPerHotel int         `json:"maxRatesPerHotel,omitempty"`
	IncludeHotelData bool        `json:"includeHotelData,omitempty"`
}

type RateSearchResult struct {
	Data   []HotelRateData `json:"data"`
	Hotels []HotelBrief    `json:"hotels"`
}

// Offer is one rate plan normalized for display under its physical room.
type Offer struct {
	OfferID       string   `json:"offerId"`
	RateName      string   `json:"rateName"`
	BoardName     string   `json:"boardName"`
	Price         float64  `json:"price"`
	Currency      string   `json:"currency"`
	TaxesIncluded bool     `json:"taxesIncluded"`
	TaxAmount     *float64 `json:"taxAmount,omitempty"`
	RefundableTag string   `json:"refundableTag"`
	CancelTime    string   `json:"cancelTime,omitempty"`
}

// GroupedRoom is derived per request and never stored.
type GroupedRoom struct {
	MappedRoomID int     `json:"mappedRoomId"`
	RoomName     string  `json:"roomName"`
	RoomPhoto    string  `json:"roomPhoto"`
	Offers       []Offer `json:"offers"`
}

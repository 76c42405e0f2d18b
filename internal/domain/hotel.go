package domain

// Place is a destination returned by place search. PlaceID is opaque and only
// ever fed back into a rate search.
type Place struct {
	PlaceID          string `json:"placeId"`
	DisplayName      string `json:"displayName"`
	FormattedAddress string `json:"formattedAddress"`
}

// HotelBrief is the side-channel summary returned next to rate search results.
type HotelBrief struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	MainPhoto    string   `json:"main_photo"`
	Address      string   `json:"address"`
	Rating       float64  `json:"rating"`
	Tags         []string `json:"tags,omitempty"`
	Persona      string   `json:"persona,omitempty"`
	Style        string   `json:"style,omitempty"`
	LocationType string   `json:"location_type,omitempty"`
	Story        string   `json:"story,omitempty"`
}

type HotelImage struct {
	URL          string `json:"url"`
	DefaultImage bool   `json:"defaultImage,omitempty"`
}

type HotelPolicy struct {
	PolicyType  string `json:"policy_type,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PetsAllowed string `json:"pets_allowed,omitempty"` // free text, not a flag
}

type RoomPhoto struct {
	URL string `json:"url"`
}

type HotelRoom struct {
	ID       int         `json:"id"`
	RoomName string      `json:"roomName"`
	Photos   []RoomPhoto `json:"photos"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Sentiment struct {
	Pros []string `json:"pros"`
	Cons []string `json:"cons"`
}

// HotelDetail is the full upstream hotel record and the only input of the
// pet-policy resolver. PetsAllowed is tri-state: nil means upstream said nothing.
type HotelDetail struct {
	ID                        string        `json:"id"`
	Name                      string        `json:"name"`
	HotelDescription          string        `json:"hotelDescription"`
	HotelImages               []HotelImage  `json:"hotelImages"`
	HotelImportantInformation string        `json:"hotelImportantInformation,omitempty"`
	MainPhoto                 string        `json:"main_photo"`
	VideoURL                  string        `json:"videoUrl,omitempty"`
	City                      string        `json:"city"`
	Country                   string        `json:"country"`
	Address                   string        `json:"address"`
	HotelFacilities           []string      `json:"hotelFacilities"`
	StarRating                float64       `json:"starRating"`
	Location                  Location      `json:"location"`
	Rooms                     []HotelRoom   `json:"rooms"`
	Policies                  []HotelPolicy `json:"policies"`
	PetsAllowed               *bool         `json:"petsAllowed,omitempty"`
	SentimentAnalysis         *Sentiment    `json:"sentiment_analysis,omitempty"`
}

// PetPolicySnapshot is a persisted resolver verdict for one hotel.
type PetPolicySnapshot struct {
	HotelID     string `json:"hotelId"`
	HotelName   string `json:"hotelName"`
	PetFriendly bool   `json:"petFriendly"`
	PolicyText  string `json:"policyText,omitempty"`
	Source      string `json:"source,omitempty"`
	RawJSON     []byte `json:"-"` // full upstream detail payload
}

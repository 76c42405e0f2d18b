package domain

import "time"

type PrebookRate struct {
	RateID               string                `json:"rateId"`
	RetailRate           RetailRate            `json:"retailRate"`
	CancellationPolicies *CancellationPolicies `json:"cancellationPolicies,omitempty"`
}

type PrebookRoomType struct {
	Rates []PrebookRate `json:"rates"`
}

// PrebookData is a short-lived locked quote. It is consumed by exactly one book call.
type PrebookData struct {
	PrebookID     string            `json:"prebookId"`
	OfferID       string            `json:"offerId"`
	HotelID       string            `json:"hotelId"`
	Price         float64           `json:"price"`
	Commission    float64           `json:"commission"`
	Currency      string            `json:"currency"`
	TransactionID string            `json:"transactionId"`
	SecretKey     string            `json:"secretKey"`
	PaymentTypes  []string          `json:"paymentTypes"`
	RoomTypes     []PrebookRoomType `json:"roomTypes"`
}

type BookedHotel struct {
	HotelID string `json:"hotelId"`
	Name    string `json:"name"`
}

// BookingData is the confirmed reservation; immutable once returned.
type BookingData struct {
	BookingID             string                `json:"bookingId"`
	Status                string                `json:"status"`
	HotelConfirmationCode string                `json:"hotelConfirmationCode"`
	Checkin               string                `json:"checkin"`
	Checkout              string                `json:"checkout"`
	Hotel                 BookedHotel           `json:"hotel"`
	Price                 float64               `json:"price"`
	Currency              string                `json:"currency"`
	CancellationPolicies  *CancellationPolicies `json:"cancellationPolicies,omitempty"`
}

type Holder struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type BookGuest struct {
	OccupancyNumber int    `json:"occupancyNumber"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
}

// PaymentMethodTransaction pays with the transaction created by the payment widget.
const PaymentMethodTransaction = "TRANSACTION_ID"

type BookPayment struct {
	Method        string `json:"method"`
	TransactionID string `json:"transactionId"`
}

type BookRequest struct {
	PrebookID string      `json:"prebookId"`
	Holder    Holder      `json:"holder"`
	Payment   BookPayment `json:"payment"`
	Guests    []BookGuest `json:"guests"`
}

// LedgerEntry is a confirmed booking as recorded locally.
type LedgerEntry struct {
	BookingID    string    `json:"bookingId"`
	AttemptID    string    `json:"attemptId"`
	HotelID      string    `json:"hotelId"`
	HotelName    string    `json:"hotelName"`
	Checkin      string    `json:"checkin"`
	Checkout     string    `json:"checkout"`
	Status       string    `json:"status"`
	Confirmation string    `json:"hotelConfirmationCode"`
	Price        float64   `json:"price"`
	Currency     string    `json:"currency"`
	HolderEmail  string    `json:"holderEmail"`
	PetType      string    `json:"petType"`
	PetCount     string    `json:"petCount"`
	RawJSON      []byte    `json:"-"`
	ConfirmedAt  time.Time `json:"confirmedAt"`
}

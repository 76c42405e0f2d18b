package domain

import "time"

// Stage is a checkout attempt's position in the linear flow.
type Stage string

const (
	StagePrebook Stage = "prebook"
	StageDetails Stage = "details"
	StagePayment Stage = "payment"
	StageFailed  Stage = "failed" // terminal; only way out is back to the hotel page
)

type Guest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// PaymentSession is what the front-end needs to mount the payment widget.
type PaymentSession struct {
	PublicKey     string `json:"publicKey"`
	SecretKey     string `json:"secretKey"`
	ReturnURL     string `json:"returnUrl"`
	TargetElement string `json:"targetElement"`
	BusinessName  string `json:"businessName"`
}

// Attempt is one checkout session, held server-side and keyed by ID.
type Attempt struct {
	ID            string          `json:"id"`
	Stage         Stage           `json:"stage"`
	OfferID       string          `json:"offerId"`
	HotelID       string          `json:"hotelId"`
	Checkin       string          `json:"checkin"`
	Checkout      string          `json:"checkout"`
	Adults        int             `json:"adults"`
	PetType       string          `json:"petType"`
	PetCount      string          `json:"petCount"`
	HotelName     string          `json:"hotelName,omitempty"`
	RoomName      string          `json:"roomName,omitempty"`
	Prebook       *PrebookData    `json:"prebook,omitempty"`
	Guest         Guest           `json:"guest"`
	Error         string          `json:"error,omitempty"`
	PaymentError  string          `json:"paymentError,omitempty"`
	ContextStored bool            `json:"contextStored"`
	Payment       *PaymentSession `json:"payment,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// CheckoutContext bridges the payment step and the confirmation step.
// Written once when payment starts, read by confirmation, deleted after a
// successful booking so the transaction cannot be replayed.
type CheckoutContext struct {
	PrebookID     string `json:"prebookId"`
	TransactionID string `json:"transactionId"`
	HotelID       string `json:"hotelId"`
	Checkin       string `json:"checkin"`
	Checkout      string `json:"checkout"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	HotelName     string `json:"hotelName"`
	PetType       string `json:"petType"`
	PetCount      string `json:"petCount"`
}

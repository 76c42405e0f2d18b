package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"petotel/internal/adapters/observability"
	"petotel/internal/domain"
)

const (
	MsgSessionExpired  = "Session expired. Please start a new booking."
	MsgInvalidSession  = "Invalid session data. Please try booking again."
	MsgBookingFailed   = "Booking failed. Please contact support."
	MsgUnexpected      = "Unexpected response. Please contact support."
	MsgBookingNetwork  = "Network error. Please try again or contact support."
	MsgBookingRunning  = "Your booking is already being confirmed."
	SubjectBookingDone = "booking.confirmed"
)

// Error carries the message shown to the guest next to the cause.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

type Booker interface {
	Book(ctx context.Context, req domain.BookRequest) (*domain.BookingData, error)
}

type Confirmation struct {
	AttemptID string                 `json:"attemptId"`
	Booking   domain.BookingData     `json:"booking"`
	Context   domain.CheckoutContext `json:"context"`
}

// Confirmer completes a paid attempt. It books at most once concurrently per
// attempt and deletes the checkout context only after a successful booking.
type Confirmer struct {
	api      Booker
	store    domain.CheckoutStore
	ledger   domain.BookingLedger
	events   domain.EventPublisher
	guardTTL time.Duration
	now      func() time.Time
}

func NewConfirmer(api Booker, store domain.CheckoutStore, ledger domain.BookingLedger, events domain.EventPublisher) *Confirmer {
	return &Confirmer{
		api:      api,
		store:    store,
		ledger:   ledger,
		events:   events,
		guardTTL: time.Minute,
		now:      time.Now,
	}
}

// Confirm takes the booking guard before reading the context, so a caller
// that lost the race sees either "in progress" or the context already gone.
func (c *Confirmer) Confirm(ctx context.Context, attemptID string) (Confirmation, error) {
	ok, err := c.store.AcquireBooking(ctx, attemptID, c.guardTTL)
	if err != nil {
		return Confirmation{}, err
	}
	if !ok {
		return Confirmation{}, &Error{Message: MsgBookingRunning, Err: domain.ErrBookingInProgress}
	}
	defer func() {
		if err := c.store.ReleaseBooking(context.WithoutCancel(ctx), attemptID); err != nil {
			log.Warn().Err(err).Str("attempt", attemptID).Msg("release booking guard failed")
		}
	}()

	cc, err := c.store.ReadContext(ctx, attemptID)
	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		observability.ObserveBooking("expired")
		return Confirmation{}, &Error{Message: MsgSessionExpired, Err: err}
	case errors.Is(err, domain.ErrInvalidSession):
		observability.ObserveBooking("invalid")
		log.Warn().Err(err).Str("attempt", attemptID).Msg("checkout context unreadable")
		return Confirmation{}, &Error{Message: MsgInvalidSession, Err: err}
	case err != nil:
		return Confirmation{}, err
	}
	if cc.PrebookID == "" || cc.TransactionID == "" {
		observability.ObserveBooking("expired")
		return Confirmation{}, &Error{Message: MsgSessionExpired, Err: domain.ErrSessionExpired}
	}

	bd, err := c.api.Book(ctx, bookRequest(cc))
	if err != nil {
		observability.ObserveBooking("failed")
		log.Warn().Err(err).Str("attempt", attemptID).Msg("book failed")
		return Confirmation{}, bookError(err)
	}
	if bd == nil {
		observability.ObserveBooking("failed")
		return Confirmation{}, &Error{Message: MsgUnexpected, Err: domain.ErrEmptyResponse}
	}

	// From here on the booking exists upstream; local bookkeeping is best-effort.
	if err := c.store.DeleteContext(ctx, attemptID); err != nil {
		log.Error().Err(err).Str("attempt", attemptID).Msg("delete checkout context failed")
	}
	c.record(ctx, attemptID, cc, *bd)
	observability.ObserveBooking("confirmed")
	log.Info().Str("attempt", attemptID).Str("booking", bd.BookingID).Str("hotel_id", cc.HotelID).Msg("booking confirmed")

	return Confirmation{AttemptID: attemptID, Booking: *bd, Context: cc}, nil
}

func (c *Confirmer) record(ctx context.Context, attemptID string, cc domain.CheckoutContext, bd domain.BookingData) {
	if c.ledger != nil {
		raw, _ := json.Marshal(bd)
		hotelName := bd.Hotel.Name
		if hotelName == "" {
			hotelName = cc.HotelName
		}
		e := domain.LedgerEntry{
			BookingID:    bd.BookingID,
			AttemptID:    attemptID,
			HotelID:      cc.HotelID,
			HotelName:    hotelName,
			Checkin:      cc.Checkin,
			Checkout:     cc.Checkout,
			Status:       bd.Status,
			Confirmation: bd.HotelConfirmationCode,
			Price:        bd.Price,
			Currency:     bd.Currency,
			HolderEmail:  cc.Email,
			PetType:      cc.PetType,
			PetCount:     cc.PetCount,
			RawJSON:      raw,
			ConfirmedAt:  c.now().UTC(),
		}
		if err := c.ledger.RecordBooking(ctx, e); err != nil {
			log.Error().Err(err).Str("booking", bd.BookingID).Msg("ledger write failed")
		}
	}
	if c.events != nil {
		evt := map[string]any{
			"bookingId": bd.BookingID,
			"attemptId": attemptID,
			"hotelId":   cc.HotelID,
			"status":    bd.Status,
			"checkin":   cc.Checkin,
			"checkout":  cc.Checkout,
			"petType":   cc.PetType,
			"petCount":  cc.PetCount,
		}
		if err := c.events.Publish(ctx, SubjectBookingDone, evt); err != nil {
			log.Warn().Err(err).Str("booking", bd.BookingID).Msg("publish booking event failed")
		}
	}
}

func bookRequest(cc domain.CheckoutContext) domain.BookRequest {
	return domain.BookRequest{
		PrebookID: cc.PrebookID,
		Holder:    domain.Holder{FirstName: cc.FirstName, LastName: cc.LastName, Email: cc.Email},
		Payment:   domain.BookPayment{Method: domain.PaymentMethodTransaction, TransactionID: cc.TransactionID},
		Guests: []domain.BookGuest{{
			OccupancyNumber: 1,
			FirstName:       cc.FirstName,
			LastName:        cc.LastName,
			Email:           cc.Email,
		}},
	}
}

func bookError(err error) error {
	var ue *domain.UpstreamError
	switch {
	case errors.As(err, &ue):
		msg := MsgBookingFailed
		if ue.Description != "" {
			msg = ue.Description
		}
		return &Error{Message: msg, Err: err}
	case errors.Is(err, domain.ErrEmptyResponse):
		return &Error{Message: MsgUnexpected, Err: err}
	default:
		return &Error{Message: MsgBookingNetwork, Err: err}
	}
}

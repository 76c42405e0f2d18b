// Package checkout runs the three-stage booking flow (prebook, guest details,
// payment) and the confirmation step that turns a paid prebook into a booking.
package checkout

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"petotel/internal/adapters/observability"
	"petotel/internal/domain"
)

// User-facing messages.
const (
	MsgRateUnavailable = "This rate is no longer available. Please go back and select a different room."
	MsgPrebookFailed   = "Failed to prebook. Please try again."
	MsgPrebookNetwork  = "Network error. Please try again."
	MsgPaymentInit     = "Failed to initialize payment. Please try again."
)

type Prebooker interface {
	Prebook(ctx context.Context, offerID string) (*domain.PrebookData, error)
}

// PaymentInitializer prepares the external payment widget for a prebooked attempt.
type PaymentInitializer interface {
	Init(ctx context.Context, a domain.Attempt) (*domain.PaymentSession, error)
}

type StartRequest struct {
	OfferID   string `json:"offerId"`
	HotelID   string `json:"hotelId"`
	Checkin   string `json:"checkin"`
	Checkout  string `json:"checkout"`
	Adults    int    `json:"adults"`
	PetType   string `json:"petType"`
	PetCount  string `json:"petCount"`
	HotelName string `json:"hotelName"`
	RoomName  string `json:"roomName"`
}

type Flow struct {
	api      Prebooker
	store    domain.CheckoutStore
	payments PaymentInitializer
	now      func() time.Time
	newID    func() string
}

func NewFlow(api Prebooker, store domain.CheckoutStore, payments PaymentInitializer) *Flow {
	return &Flow{
		api:      api,
		store:    store,
		payments: payments,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Start creates an attempt and immediately prebooks its offer. A failed
// prebook is not an error: the attempt is returned in StageFailed with a
// message, and nothing retries it.
func (f *Flow) Start(ctx context.Context, req StartRequest) (domain.Attempt, error) {
	if strings.TrimSpace(req.OfferID) == "" {
		return domain.Attempt{}, domain.Validation("offerId is required")
	}
	now := f.now().UTC()
	a := domain.Attempt{
		ID:        f.newID(),
		Stage:     domain.StagePrebook,
		OfferID:   req.OfferID,
		HotelID:   req.HotelID,
		Checkin:   req.Checkin,
		Checkout:  req.Checkout,
		Adults:    req.Adults,
		PetType:   req.PetType,
		PetCount:  req.PetCount,
		HotelName: req.HotelName,
		RoomName:  req.RoomName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if a.Adults <= 0 {
		a.Adults = 2
	}
	if a.PetType == "" {
		a.PetType = "dog"
	}
	if a.PetCount == "" {
		a.PetCount = "1"
	}
	observability.ObserveCheckout(string(domain.StagePrebook))

	pb, err := f.api.Prebook(ctx, req.OfferID)
	switch {
	case err == nil && pb != nil:
		a.Prebook = pb
		a.Stage = domain.StageDetails
	case err == nil || errors.Is(err, domain.ErrEmptyResponse):
		fail(&a, MsgPrebookFailed)
	default:
		var ue *domain.UpstreamError
		if errors.As(err, &ue) {
			msg := MsgRateUnavailable
			if ue.Description != "" {
				msg = ue.Description
			}
			fail(&a, msg)
		} else {
			fail(&a, MsgPrebookNetwork)
		}
		log.Warn().Err(err).Str("attempt", a.ID).Str("offer", a.OfferID).Msg("prebook failed")
	}
	observability.ObserveCheckout(string(a.Stage))

	if err := f.save(ctx, &a); err != nil {
		return domain.Attempt{}, err
	}
	return a, nil
}

func (f *Flow) Get(ctx context.Context, id string) (domain.Attempt, error) {
	return f.store.GetAttempt(ctx, id)
}

// SubmitDetails records the guest and moves the attempt to payment. No
// network call happens in the details stage itself.
func (f *Flow) SubmitDetails(ctx context.Context, id string, g domain.Guest) (domain.Attempt, error) {
	a, err := f.store.GetAttempt(ctx, id)
	if err != nil {
		return domain.Attempt{}, err
	}
	if a.Stage != domain.StageDetails {
		return a, domain.ErrInvalidStage
	}
	g = domain.Guest{
		FirstName: strings.TrimSpace(g.FirstName),
		LastName:  strings.TrimSpace(g.LastName),
		Email:     strings.TrimSpace(g.Email),
	}
	if g.FirstName == "" || g.LastName == "" || g.Email == "" {
		return a, domain.Validation("firstName, lastName and email are required")
	}

	a.Guest = g
	a.Stage = domain.StagePayment
	if err := f.enterPayment(ctx, &a); err != nil {
		return domain.Attempt{}, err
	}
	observability.ObserveCheckout(string(a.Stage))
	if err := f.save(ctx, &a); err != nil {
		return domain.Attempt{}, err
	}
	return a, nil
}

// RetryPayment re-runs widget initialization after a failed one. It never
// touches the stored checkout context.
func (f *Flow) RetryPayment(ctx context.Context, id string) (domain.Attempt, error) {
	a, err := f.store.GetAttempt(ctx, id)
	if err != nil {
		return domain.Attempt{}, err
	}
	if a.Stage != domain.StagePayment {
		return a, domain.ErrInvalidStage
	}
	if a.Payment != nil {
		return a, nil
	}
	f.initPayment(ctx, &a)
	if err := f.save(ctx, &a); err != nil {
		return domain.Attempt{}, err
	}
	return a, nil
}

// enterPayment runs once per attempt: persist the context, then mount the widget.
func (f *Flow) enterPayment(ctx context.Context, a *domain.Attempt) error {
	if a.ContextStored {
		return nil
	}
	if err := f.store.CreateContext(ctx, a.ID, contextOf(*a)); err != nil {
		return err
	}
	a.ContextStored = true
	f.initPayment(ctx, a)
	return nil
}

func (f *Flow) initPayment(ctx context.Context, a *domain.Attempt) {
	sess, err := f.payments.Init(ctx, *a)
	if err != nil {
		log.Error().Err(err).Str("attempt", a.ID).Msg("payment init failed")
		a.PaymentError = MsgPaymentInit
		return
	}
	a.Payment = sess
	a.PaymentError = ""
}

func (f *Flow) save(ctx context.Context, a *domain.Attempt) error {
	a.UpdatedAt = f.now().UTC()
	return f.store.SaveAttempt(ctx, *a)
}

func fail(a *domain.Attempt, msg string) {
	a.Stage = domain.StageFailed
	a.Error = msg
}

func contextOf(a domain.Attempt) domain.CheckoutContext {
	c := domain.CheckoutContext{
		HotelID:   a.HotelID,
		Checkin:   a.Checkin,
		Checkout:  a.Checkout,
		FirstName: a.Guest.FirstName,
		LastName:  a.Guest.LastName,
		Email:     a.Guest.Email,
		HotelName: a.HotelName,
		PetType:   a.PetType,
		PetCount:  a.PetCount,
	}
	if a.Prebook != nil {
		c.PrebookID = a.Prebook.PrebookID
		c.TransactionID = a.Prebook.TransactionID
	}
	return c
}

// BackURL is the only navigation offered by a failed attempt.
func BackURL(a domain.Attempt) string {
	q := url.Values{}
	q.Set("hotelId", a.HotelID)
	q.Set("checkin", a.Checkin)
	q.Set("checkout", a.Checkout)
	q.Set("adults", strconv.Itoa(a.Adults))
	q.Set("petType", a.PetType)
	q.Set("petCount", a.PetCount)
	return "/hotel?" + q.Encode()
}

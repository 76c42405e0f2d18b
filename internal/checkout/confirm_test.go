package checkout_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"petotel/internal/checkout"
	"petotel/internal/domain"
)

func paidAttempt(t *testing.T, store *memStore) string {
	t.Helper()
	f := checkout.NewFlow(&fakeAPI{prebook: prebookFixture()}, store, &fakePayments{})
	ctx := context.Background()
	a, err := f.Start(ctx, startReq())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	a, err = f.SubmitDetails(ctx, a.ID, domain.Guest{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"})
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	return a.ID
}

func TestConfirm_NoContextIsSessionExpiredWithoutBooking(t *testing.T) {
	api := &fakeAPI{}
	c := checkout.NewConfirmer(api, newMemStore(), nil, nil)

	_, err := c.Confirm(context.Background(), "unknown")
	var ce *checkout.Error
	if !errors.As(err, &ce) || ce.Message != "Session expired. Please start a new booking." {
		t.Fatalf("expected session expired, got %v", err)
	}
	if !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired in chain")
	}
	if api.calls() != 0 {
		t.Fatalf("book must not be called")
	}
}

func TestConfirm_SuccessClearsContextAndRecords(t *testing.T) {
	store := newMemStore()
	id := paidAttempt(t, store)
	api := &fakeAPI{booking: &domain.BookingData{BookingID: "BK-1", Status: "CONFIRMED", HotelConfirmationCode: "HC-7", Price: 240, Currency: "USD"}}
	ledger := &fakeLedger{}
	events := &fakeEvents{}
	c := checkout.NewConfirmer(api, store, ledger, events)

	conf, err := c.Confirm(context.Background(), id)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if conf.Booking.BookingID != "BK-1" || conf.Context.HotelName != "Barkley Inn" {
		t.Fatalf("unexpected confirmation: %+v", conf)
	}
	req := api.lastBook
	if req.PrebookID != "pb-1" || req.Payment.Method != "TRANSACTION_ID" || req.Payment.TransactionID != "tx-9" ||
		len(req.Guests) != 1 || req.Guests[0].OccupancyNumber != 1 || req.Holder.Email != "jane@example.com" {
		t.Fatalf("unexpected book request: %+v", req)
	}
	if _, err := store.ReadContext(context.Background(), id); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("context must be deleted after success")
	}
	if len(ledger.entries) != 1 || ledger.entries[0].AttemptID != id || ledger.entries[0].HotelName != "Barkley Inn" {
		t.Fatalf("ledger: %+v", ledger.entries)
	}
	if len(events.subjects) != 1 || events.subjects[0] != checkout.SubjectBookingDone {
		t.Fatalf("events: %+v", events.subjects)
	}

	// replay of the same attempt cannot book again
	if _, err := c.Confirm(context.Background(), id); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("replay must report session expired, got %v", err)
	}
	if api.calls() != 1 {
		t.Fatalf("book called %d times", api.calls())
	}
}

func TestConfirm_FailureKeepsContextForManualRetry(t *testing.T) {
	cases := []struct {
		name    string
		booking *domain.BookingData
		err     error
		want    string
	}{
		{"business", nil, &domain.UpstreamError{Status: 400, Description: "Card declined"}, "Card declined"},
		{"business generic", nil, &domain.UpstreamError{Status: 500}, checkout.MsgBookingFailed},
		{"transport", nil, fmt.Errorf("%w: %v", domain.ErrTransport, errNetwork), checkout.MsgBookingNetwork},
		{"no data", nil, nil, checkout.MsgUnexpected},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			id := paidAttempt(t, store)
			api := &fakeAPI{booking: tc.booking, bookErr: tc.err}
			c := checkout.NewConfirmer(api, store, &fakeLedger{}, nil)

			_, err := c.Confirm(context.Background(), id)
			var ce *checkout.Error
			if !errors.As(err, &ce) || ce.Message != tc.want {
				t.Fatalf("got %v, want message %q", err, tc.want)
			}
			if _, err := store.ReadContext(context.Background(), id); err != nil {
				t.Fatalf("context must survive a failed booking: %v", err)
			}

			// manual retry reuses the same prebook and transaction
			api.booking, api.bookErr = &domain.BookingData{BookingID: "BK-2"}, nil
			conf, err := c.Confirm(context.Background(), id)
			if err != nil || conf.Booking.BookingID != "BK-2" || api.lastBook.PrebookID != "pb-1" {
				t.Fatalf("retry failed: %+v %v", conf, err)
			}
		})
	}
}

func TestConfirm_ConcurrentDuplicateDoesNotBookTwice(t *testing.T) {
	store := newMemStore()
	id := paidAttempt(t, store)
	release := make(chan struct{})
	api := &fakeAPI{booking: &domain.BookingData{BookingID: "BK-1"}, bookRelease: release}
	c := checkout.NewConfirmer(api, store, nil, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = c.Confirm(context.Background(), id)
	}()

	// wait until the first call is inside Book
	deadline := time.Now().Add(2 * time.Second)
	for api.calls() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	_, err := c.Confirm(context.Background(), id)
	if !errors.Is(err, domain.ErrBookingInProgress) {
		t.Fatalf("expected in-progress, got %v", err)
	}
	close(release)
	wg.Wait()
	if firstErr != nil {
		t.Fatalf("first confirm: %v", firstErr)
	}
	if api.calls() != 1 {
		t.Fatalf("book called %d times", api.calls())
	}
}

func TestConfirm_CallerArrivingAfterReadCannotBookAgain(t *testing.T) {
	mem := newMemStore()
	id := paidAttempt(t, mem)
	api := &fakeAPI{booking: &domain.BookingData{BookingID: "BK-1"}}
	store := &hookStore{memStore: mem}
	c := checkout.NewConfirmer(api, store, nil, nil)

	// a second confirm runs to completion while the first holds a fresh read
	var lateErr error
	store.afterRead = func() {
		_, lateErr = c.Confirm(context.Background(), id)
	}

	if _, err := c.Confirm(context.Background(), id); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	if !errors.Is(lateErr, domain.ErrBookingInProgress) {
		t.Fatalf("interleaved confirm: expected in-progress, got %v", lateErr)
	}
	if api.calls() != 1 {
		t.Fatalf("book called %d times for one prebook", api.calls())
	}

	// once done, later attempts find the context gone
	if _, err := c.Confirm(context.Background(), id); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("after booking: expected session expired, got %v", err)
	}
	if api.calls() != 1 {
		t.Fatalf("book called %d times", api.calls())
	}
}

func TestConfirm_UnreadableContextAsksToRebook(t *testing.T) {
	mem := newMemStore()
	id := paidAttempt(t, mem)
	api := &fakeAPI{booking: &domain.BookingData{BookingID: "BK-1"}}
	store := &hookStore{memStore: mem, readErr: fmt.Errorf("%w: unexpected end of JSON input", domain.ErrInvalidSession)}
	c := checkout.NewConfirmer(api, store, nil, nil)

	_, err := c.Confirm(context.Background(), id)
	var ce *checkout.Error
	if !errors.As(err, &ce) || ce.Message != checkout.MsgInvalidSession {
		t.Fatalf("expected invalid session message, got %v", err)
	}
	if !errors.Is(err, domain.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession in chain")
	}
	if api.calls() != 0 {
		t.Fatalf("book must not be called")
	}
	if ok, _ := mem.AcquireBooking(context.Background(), id, time.Minute); !ok {
		t.Fatalf("guard must be released after an early return")
	}
}

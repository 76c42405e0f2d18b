package checkout_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"petotel/internal/domain"
)

// ---- fakes ----

type memStore struct {
	mu       sync.Mutex
	attempts map[string]domain.Attempt
	contexts map[string]domain.CheckoutContext
	guards   map[string]bool
	deletes  int
}

func newMemStore() *memStore {
	return &memStore{
		attempts: map[string]domain.Attempt{},
		contexts: map[string]domain.CheckoutContext{},
		guards:   map[string]bool{},
	}
}

func (s *memStore) SaveAttempt(ctx context.Context, a domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[a.ID] = a
	return nil
}

func (s *memStore) GetAttempt(ctx context.Context, id string) (domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok {
		return domain.Attempt{}, domain.ErrNotFound
	}
	return a, nil
}

func (s *memStore) CreateContext(ctx context.Context, id string, c domain.CheckoutContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[id] = c
	return nil
}

func (s *memStore) ReadContext(ctx context.Context, id string) (domain.CheckoutContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contexts[id]
	if !ok {
		return domain.CheckoutContext{}, domain.ErrSessionExpired
	}
	return c, nil
}

func (s *memStore) DeleteContext(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, id)
	s.deletes++
	return nil
}

func (s *memStore) AcquireBooking(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.guards[id] {
		return false, nil
	}
	s.guards[id] = true
	return true, nil
}

func (s *memStore) ReleaseBooking(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.guards, id)
	return nil
}

type fakeAPI struct {
	mu          sync.Mutex
	prebook     *domain.PrebookData
	prebookErr  error
	booking     *domain.BookingData
	bookErr     error
	bookCalls   int
	lastBook    domain.BookRequest
	bookRelease chan struct{} // when set, Book blocks until closed
}

func (f *fakeAPI) Prebook(ctx context.Context, offerID string) (*domain.PrebookData, error) {
	return f.prebook, f.prebookErr
}

func (f *fakeAPI) Book(ctx context.Context, req domain.BookRequest) (*domain.BookingData, error) {
	f.mu.Lock()
	f.bookCalls++
	f.lastBook = req
	ch := f.bookRelease
	f.mu.Unlock()
	if ch != nil {
		<-ch
	}
	return f.booking, f.bookErr
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bookCalls
}

type fakePayments struct {
	err   error
	calls int
}

func (p *fakePayments) Init(ctx context.Context, a domain.Attempt) (*domain.PaymentSession, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &domain.PaymentSession{SecretKey: a.Prebook.SecretKey, ReturnURL: "/confirmation?attempt=" + a.ID}, nil
}

type fakeLedger struct {
	entries []domain.LedgerEntry
}

func (l *fakeLedger) RecordBooking(ctx context.Context, e domain.LedgerEntry) error {
	l.entries = append(l.entries, e)
	return nil
}

func (l *fakeLedger) GetBooking(ctx context.Context, id string) (domain.LedgerEntry, error) {
	for _, e := range l.entries {
		if e.BookingID == id {
			return e, nil
		}
	}
	return domain.LedgerEntry{}, domain.ErrNotFound
}

type fakeEvents struct {
	subjects []string
}

func (e *fakeEvents) Publish(ctx context.Context, subject string, v any) error {
	e.subjects = append(e.subjects, subject)
	return nil
}

var errNetwork = errors.New("dial tcp: connection refused")

func prebookFixture() *domain.PrebookData {
	return &domain.PrebookData{
		PrebookID:     "pb-1",
		OfferID:       "offer-1",
		HotelID:       "lp123",
		Price:         240,
		Currency:      "USD",
		TransactionID: "tx-9",
		SecretKey:     "sk_test",
	}
}

// hookStore runs afterRead once, right after the first ReadContext returns,
// so a test can slip another caller in between reading and booking.
type hookStore struct {
	*memStore
	afterRead func()
	fired     bool
	readErr   error
}

func (s *hookStore) ReadContext(ctx context.Context, id string) (domain.CheckoutContext, error) {
	if s.readErr != nil {
		return domain.CheckoutContext{}, s.readErr
	}
	cc, err := s.memStore.ReadContext(ctx, id)
	if s.afterRead != nil && !s.fired {
		s.fired = true
		s.afterRead()
	}
	return cc, err
}

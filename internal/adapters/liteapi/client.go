// internal/adapters/liteapi/client.go
package liteapi

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"petotel/internal/adapters/observability"
	"petotel/internal/domain"
)

const (
	DefaultBase     = "https://api.liteapi.travel/v3.0"
	DefaultBookBase = "https://book.liteapi.travel/v3.0"

	service = "liteapi"
	maxBody = 8 << 20
)

type Client struct {
	base     string
	bookBase string
	hc       *http.Client
	key      string
	rl       *rate.Limiter
	retries  int
}

// New builds a client for the data host (base) and the booking host (bookBase).
// retries is the extra attempt budget for read calls; writes never retry.
func New(base, bookBase, key string, rps, retries int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if base == "" {
		base = DefaultBase
	}
	if bookBase == "" {
		bookBase = DefaultBookBase
	}
	if rps <= 0 {
		rps = 5
	}
	if retries < 0 {
		retries = 0
	}
	return &Client{
		base:     strings.TrimRight(base, "/"),
		bookBase: strings.TrimRight(bookBase, "/"),
		hc:       &http.Client{Timeout: 20 * time.Second},
		key:      key,
		rl:       rate.NewLimiter(rate.Limit(rps), rps),
		retries:  retries,
	}, nil
}

// ---- Public API ----

func (c *Client) SearchPlaces(ctx context.Context, query string) ([]domain.Place, error) {
	body, err := c.do(ctx, request{
		endpoint: "places",
		method:   http.MethodGet,
		url:      c.base + "/data/places?textQuery=" + url.QueryEscape(query),
		read:     true,
	})
	if err != nil {
		return nil, err
	}
	var out []domain.Place
	if _, err := decodeData(body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SearchRates(ctx context.Context, cr domain.RateCriteria) (domain.RateSearchResult, error) {
	body, err := c.do(ctx, request{
		endpoint: "rates",
		method:   http.MethodPost,
		url:      c.base + "/hotels/rates",
		body:     cr,
		read:     true,
	})
	if err != nil {
		return domain.RateSearchResult{}, err
	}
	var out domain.RateSearchResult
	if err := json.Unmarshal(body, &out); err != nil {
		return domain.RateSearchResult{}, fmt.Errorf("decode rates: %w", err)
	}
	return out, nil
}

func (c *Client) GetHotelDetails(ctx context.Context, hotelID string) (*domain.HotelDetail, error) {
	body, err := c.do(ctx, request{
		endpoint: "hotel",
		method:   http.MethodGet,
		url:      c.base + "/data/hotel?hotelId=" + url.QueryEscape(hotelID) + "&timeout=4",
		read:     true,
		notFound: true,
	})
	if err != nil {
		return nil, err
	}
	var out domain.HotelDetail
	ok, err := decodeData(body, &out)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &out, nil
}

// Prebook locks the offer's price. It is sent exactly once.
func (c *Client) Prebook(ctx context.Context, offerID string) (*domain.PrebookData, error) {
	body, err := c.do(ctx, request{
		endpoint: "prebook",
		method:   http.MethodPost,
		url:      c.bookBase + "/rates/prebook",
		body:     map[string]any{"usePaymentSdk": true, "offerId": offerID},
	})
	if err != nil {
		return nil, err
	}
	var out domain.PrebookData
	ok, err := decodeData(body, &out)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrEmptyResponse
	}
	return &out, nil
}

// Book finalizes a prebook. It is sent exactly once.
func (c *Client) Book(ctx context.Context, req domain.BookRequest) (*domain.BookingData, error) {
	body, err := c.do(ctx, request{
		endpoint: "book",
		method:   http.MethodPost,
		url:      c.bookBase + "/rates/book",
		body:     req,
	})
	if err != nil {
		return nil, err
	}
	var out domain.BookingData
	ok, err := decodeData(body, &out)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrEmptyResponse
	}
	return &out, nil
}

// ---- Internals ----

type request struct {
	endpoint string // metrics label
	method   string
	url      string
	body     any
	read     bool // safe to repeat
	notFound bool // 404 means the record does not exist
}

type wireError struct {
	Code        json.RawMessage `json:"code"`
	Message     string          `json:"message"`
	Description string          `json:"description"`
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *wireError      `json:"error"`
}

// do sends the request with client-side rate limiting. Read calls retry on
// transport errors, 429 and 5xx up to the configured budget, honoring Retry-After.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	var payload []byte
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", r.endpoint, err)
		}
		payload = b
	}

	attempts := 1
	if r.read {
		attempts += c.retries
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := c.rl.Wait(ctx); err != nil {
			return nil, transport(err)
		}
		body, status, wait, err := c.roundTrip(ctx, r, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if i == attempts-1 || ctx.Err() != nil || !retryable(status, err) {
			break
		}
		if wait == 0 {
			wait = backoff(i)
		}
		if !sleepCtx(ctx, wait) {
			return nil, transport(ctx.Err())
		}
	}
	return nil, lastErr
}

func (c *Client) roundTrip(ctx context.Context, r request, payload []byte) ([]byte, int, time.Duration, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, r.url, rd)
	if err != nil {
		return nil, 0, 0, err
	}
	req.Header.Set("X-API-Key", c.key)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "petotel/1.0")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(service, r.endpoint, 0, time.Since(start))
		return nil, 0, 0, transport(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	observability.ObserveExternal(service, r.endpoint, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, resp.StatusCode, 0, transport(err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		// a 2xx body may still carry only an error envelope
		var env envelope
		if json.Unmarshal(body, &env) == nil && env.Error != nil && !hasData(env.Data) {
			return nil, resp.StatusCode, 0, businessError(resp.StatusCode, env.Error)
		}
		return body, resp.StatusCode, 0, nil
	}

	if resp.StatusCode == http.StatusNotFound && r.notFound {
		return nil, resp.StatusCode, 0, domain.ErrNotFound
	}

	var wait time.Duration
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		wait = retryAfter(resp)
	}
	var env envelope
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		return nil, resp.StatusCode, wait, businessError(resp.StatusCode, env.Error)
	}
	return nil, resp.StatusCode, wait, &domain.UpstreamError{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("%s: %s", r.endpoint, http.StatusText(resp.StatusCode)),
	}
}

func businessError(status int, w *wireError) *domain.UpstreamError {
	return &domain.UpstreamError{
		Status:      status,
		Code:        codeString(w.Code),
		Message:     w.Message,
		Description: w.Description,
	}
}

// codeString accepts both numeric and string error codes.
func codeString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func hasData(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// decodeData unmarshals the envelope's data member into dst. It reports false
// when data is absent or null.
func decodeData(body []byte, dst any) (bool, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return false, fmt.Errorf("decode envelope: %w", err)
	}
	if !hasData(env.Data) {
		return false, nil
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return false, fmt.Errorf("decode data: %w", err)
	}
	return true, nil
}

func transport(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrTransport, err)
}

func retryable(status int, err error) bool {
	if errors.Is(err, domain.ErrTransport) {
		return true
	}
	return status == http.StatusTooManyRequests || status >= 500
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns 200ms doubling per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}

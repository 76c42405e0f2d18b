// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"petotel/internal/app"
	"petotel/internal/checkout"
	"petotel/internal/domain"
)

type Handlers struct {
	API     domain.HotelAPI // raw upstream for the forwarding endpoints
	Details app.DetailSource
	Search  *app.SearchService
	Hotels  *app.HotelService
	Q       *app.QueryService
	Flow    *checkout.Flow
	Confirm *checkout.Confirmer
	Ready   func(ctx context.Context) error
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", h.health)

	s.mux.Route("/api", func(r chi.Router) {
		r.Get("/places", h.places)
		r.Post("/rates", h.rates)
		r.Get("/hotel", h.hotel)
		r.Post("/prebook", h.prebook)
		r.Post("/book", h.book)
	})

	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/search", h.search)
		r.Get("/hotels/{id}", h.getHotel)
		r.Get("/hotels/{id}/pet-policy", h.getPetPolicy)
		r.Post("/checkout", h.startCheckout)
		r.Get("/checkout/{id}", h.getCheckout)
		r.Post("/checkout/{id}/details", h.submitDetails)
		r.Post("/checkout/{id}/payment", h.retryPayment)
		r.Post("/confirmation/{id}", h.confirm)
		r.Get("/bookings/{id}", h.getBooking)
	})
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	if h.Ready != nil {
		if err := h.Ready(r.Context()); err != nil {
			writeProblem(w, http.StatusServiceUnavailable, "Unavailable", err.Error())
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	var (
		ce *checkout.Error
		ue *domain.UpstreamError
	)
	detail := err.Error()
	if errors.As(err, &ce) {
		detail = ce.Message
	}
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeProblem(w, http.StatusBadRequest, "Invalid request", detail)
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", detail)
	case errors.Is(err, domain.ErrSessionExpired):
		writeProblem(w, http.StatusGone, "Session expired", detail)
	case errors.Is(err, domain.ErrInvalidSession):
		writeProblem(w, http.StatusGone, "Session invalid", detail)
	case errors.Is(err, domain.ErrInvalidStage), errors.Is(err, domain.ErrBookingInProgress):
		writeProblem(w, http.StatusConflict, "Conflict", detail)
	case errors.As(err, &ue):
		if ce == nil && ue.Description != "" {
			detail = ue.Description
		}
		writeProblem(w, http.StatusUnprocessableEntity, "Upstream rejected the request", detail)
	case errors.Is(err, domain.ErrTransport), errors.Is(err, domain.ErrEmptyResponse):
		writeProblem(w, http.StatusBadGateway, "Upstream unavailable", detail)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeProblem(w, http.StatusGatewayTimeout, "Request cancelled", "")
	default:
		log.Error().Err(err).Msg("unhandled error")
		writeProblem(w, http.StatusInternalServerError, "Internal error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeTagged writes v with a weak ETag and honors If-None-Match.
func writeTagged(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal error", "")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write tagged body")
	}
}

func adultsParam(r *http.Request) (int, error) {
	v := r.URL.Query().Get("adults")
	if v == "" {
		return 2, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 8 {
		return 0, domain.Validation("adults must be an integer between 1 and 8")
	}
	return n, nil
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	adults, err := adultsParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	qs := r.URL.Query()
	out, err := h.Search.Search(r.Context(), app.SearchQuery{
		Checkin:   qs.Get("checkin"),
		Checkout:  qs.Get("checkout"),
		Adults:    adults,
		PlaceID:   qs.Get("placeId"),
		PlaceName: qs.Get("placeName"),
		VibeQuery: qs.Get("vibeQuery"),
		PetType:   qs.Get("petType"),
		PetCount:  qs.Get("petCount"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	adults, err := adultsParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	qs := r.URL.Query()
	page, err := h.Hotels.Page(r.Context(), app.HotelQuery{
		HotelID:  chi.URLParam(r, "id"),
		Checkin:  qs.Get("checkin"),
		Checkout: qs.Get("checkout"),
		Adults:   adults,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeTagged(w, r, page)
}

func (h *Handlers) getPetPolicy(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Q.GetPetPolicy(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeTagged(w, r, snap)
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	e, err := h.Q.GetBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

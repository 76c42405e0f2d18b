package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"petotel/internal/domain"
)

// Same-origin forwarding endpoints. They keep the browser off the API key and
// answer in the upstream's own {data} / {error} shape.

type envelope struct {
	Data   any `json:"data"`
	Hotels any `json:"hotels,omitempty"`
}

type errorEnvelope struct {
	Error any `json:"error"`
}

func writeUpstreamError(w http.ResponseWriter, err error) {
	var ue *domain.UpstreamError
	switch {
	case errors.As(err, &ue):
		writeJSON(w, http.StatusUnprocessableEntity, errorEnvelope{Error: ue})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorEnvelope{Error: "not found"})
	case errors.Is(err, domain.ErrEmptyResponse):
		writeJSON(w, http.StatusBadGateway, errorEnvelope{Error: "upstream returned no data"})
	case errors.Is(err, domain.ErrTransport):
		writeJSON(w, http.StatusBadGateway, errorEnvelope{Error: "upstream unreachable"})
	default:
		log.Error().Err(err).Msg("forwarding failed")
		writeJSON(w, http.StatusInternalServerError, errorEnvelope{Error: "internal error"})
	}
}

// places degrades to an empty list so the search box never breaks.
func (h *Handlers) places(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusOK, envelope{Data: []domain.Place{}})
		return
	}
	out, err := h.API.SearchPlaces(r.Context(), q)
	if err != nil {
		log.Warn().Err(err).Str("q", q).Msg("place search failed")
		out = nil
	}
	if out == nil {
		out = []domain.Place{}
	}
	writeJSON(w, http.StatusOK, envelope{Data: out})
}

func (h *Handlers) rates(w http.ResponseWriter, r *http.Request) {
	var c domain.RateCriteria
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: "invalid JSON body"})
		return
	}
	res, err := h.API.SearchRates(r.Context(), c)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	if res.Data == nil {
		res.Data = []domain.HotelRateData{}
	}
	if res.Hotels == nil {
		res.Hotels = []domain.HotelBrief{}
	}
	writeJSON(w, http.StatusOK, envelope{Data: res.Data, Hotels: res.Hotels})
}

func (h *Handlers) hotel(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("hotelId"))
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: "hotelId is required"})
		return
	}
	d, err := h.Details.GetHotelDetails(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: d})
}

func (h *Handlers) prebook(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OfferID string `json:"offerId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if strings.TrimSpace(body.OfferID) == "" {
		writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: "offerId is required"})
		return
	}
	pb, err := h.API.Prebook(r.Context(), body.OfferID)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: pb})
}

func (h *Handlers) book(w http.ResponseWriter, r *http.Request) {
	var req domain.BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: "invalid JSON body"})
		return
	}
	if req.PrebookID == "" || req.Payment.TransactionID == "" {
		writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: "prebookId and payment.transactionId are required"})
		return
	}
	bd, err := h.API.Book(r.Context(), req)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: bd})
}

package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"petotel/internal/checkout"
	"petotel/internal/domain"
)

// prebookSummary is the part of a prebook the browser may see. Prebook and
// transaction IDs stay server-side.
type prebookSummary struct {
	OfferID   string                   `json:"offerId"`
	HotelID   string                   `json:"hotelId"`
	Price     float64                  `json:"price"`
	Currency  string                   `json:"currency"`
	RoomTypes []domain.PrebookRoomType `json:"roomTypes,omitempty"`
}

type attemptView struct {
	domain.Attempt
	Prebook *prebookSummary `json:"prebook,omitempty"`
	BackURL string          `json:"backUrl,omitempty"`
}

func viewOf(a domain.Attempt) attemptView {
	v := attemptView{Attempt: a}
	if a.Prebook != nil {
		v.Prebook = &prebookSummary{
			OfferID:   a.Prebook.OfferID,
			HotelID:   a.Prebook.HotelID,
			Price:     a.Prebook.Price,
			Currency:  a.Prebook.Currency,
			RoomTypes: a.Prebook.RoomTypes,
		}
	}
	if a.Stage == domain.StageFailed {
		v.BackURL = checkout.BackURL(a)
	}
	return v
}

func (h *Handlers) startCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkout.StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid request", "invalid JSON body")
		return
	}
	a, err := h.Flow.Start(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(a))
}

func (h *Handlers) getCheckout(w http.ResponseWriter, r *http.Request) {
	a, err := h.Flow.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(a))
}

func (h *Handlers) submitDetails(w http.ResponseWriter, r *http.Request) {
	var g domain.Guest
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid request", "invalid JSON body")
		return
	}
	a, err := h.Flow.SubmitDetails(r.Context(), chi.URLParam(r, "id"), g)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(a))
}

func (h *Handlers) retryPayment(w http.ResponseWriter, r *http.Request) {
	a, err := h.Flow.RetryPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(a))
}

func (h *Handlers) confirm(w http.ResponseWriter, r *http.Request) {
	c, err := h.Confirm.Confirm(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

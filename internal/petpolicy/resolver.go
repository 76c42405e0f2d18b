// Package petpolicy decides whether a hotel accepts pets from the three
// independent signals upstream provides: policy entries, the petsAllowed flag
// and the facility list.
package petpolicy

import (
	"fmt"
	"strings"

	"petotel/internal/domain"
)

type Source string

const (
	SourceNone     Source = ""
	SourcePolicy   Source = "policy"
	SourceBoolean  Source = "boolean"
	SourceFacility Source = "facility"
)

const (
	BooleanText        = "Pets are welcome at this hotel. Contact the property for specific requirements and fees."
	ListingUnknownText = "Contact hotel for pet policy details"
	DetailUnknownText  = "Contact the hotel directly for pet policy details."
	DetailDeniedText   = "This hotel does not allow pets."
	facilityTextFormat = "This hotel offers: %s. Contact the property for full pet policy details."

	// Shorter texts for listing cards.
	ListingBooleanText  = "Pets are welcome at this hotel."
	ListingFacilityText = "This hotel offers pet-friendly facilities."
)

type Result struct {
	PetFriendly bool   `json:"petFriendly"`
	PolicyText  string `json:"policyText,omitempty"`
	Source      Source `json:"source,omitempty"`
}

// Strategy inspects one signal. ok=false means "no opinion, ask the next one".
type Strategy func(d *domain.HotelDetail) (r Result, ok bool)

var denylist = []string{
	"no pets allowed",
	"pets are not allowed",
	"pets not permitted",
	"no pets are allowed",
}

// strategies run in priority order; the veto is evaluated before them in Resolve.
var strategies = []Strategy{
	petsAllowedField,
	petNamedPolicy,
	petsAllowedFlag,
	petFacilities,
}

// Resolve applies the veto and then the first strategy with an opinion.
// A nil detail yields the zero Result; callers pick their own default via
// ForListing or ForDetail.
func Resolve(d *domain.HotelDetail) Result {
	if d == nil || vetoed(d) {
		return Result{}
	}
	if r, ok := firstSome(strategies, func(s Strategy) (Result, bool) { return s(d) }); ok {
		return r
	}
	return Result{}
}

// ForListing is the search-results policy: a missing detail record means the
// hotel already passed upstream's pets-allowed facility filter, so it stays in.
func ForListing(d *domain.HotelDetail) Result {
	if d == nil {
		return Result{PetFriendly: true, PolicyText: ListingUnknownText}
	}
	r := Resolve(d)
	switch {
	case !r.PetFriendly:
		// excluded from the listing
	case r.Source == SourceBoolean:
		r.PolicyText = ListingBooleanText
	case r.Source == SourceFacility:
		r.PolicyText = ListingFacilityText
	case r.PolicyText == "":
		r.PolicyText = ListingUnknownText
	}
	return r
}

// ForDetail is the hotel-page policy: never assert friendliness without data.
// An explicit refusal gets its own text, distinct from "no data".
func ForDetail(d *domain.HotelDetail) Result {
	if vetoed(d) {
		return Result{PolicyText: DetailDeniedText}
	}
	r := Resolve(d)
	if !r.PetFriendly {
		return Result{PolicyText: DetailUnknownText}
	}
	return r
}

func vetoed(d *domain.HotelDetail) bool {
	return d != nil && d.PetsAllowed != nil && !*d.PetsAllowed
}

// petsAllowedField: the dedicated pets_allowed text, first acceptable entry wins.
func petsAllowedField(d *domain.HotelDetail) (Result, bool) {
	return firstSome(d.Policies, func(p domain.HotelPolicy) (Result, bool) {
		if !acceptable(p.PetsAllowed) {
			return Result{}, false
		}
		return Result{PetFriendly: true, PolicyText: p.PetsAllowed, Source: SourcePolicy}, true
	})
}

// petNamedPolicy: policies named like "Pet policy". A later match overwrites
// an earlier one.
func petNamedPolicy(d *domain.HotelDetail) (Result, bool) {
	return lastSome(d.Policies, func(p domain.HotelPolicy) (Result, bool) {
		if !containsFold(p.Name, "pet") || !acceptable(p.Description) {
			return Result{}, false
		}
		return Result{PetFriendly: true, PolicyText: p.Description, Source: SourcePolicy}, true
	})
}

func petsAllowedFlag(d *domain.HotelDetail) (Result, bool) {
	if d.PetsAllowed == nil || !*d.PetsAllowed {
		return Result{}, false
	}
	return Result{PetFriendly: true, PolicyText: BooleanText, Source: SourceBoolean}, true
}

func petFacilities(d *domain.HotelDetail) (Result, bool) {
	var matched []string
	for _, f := range d.HotelFacilities {
		if containsFold(f, "pet") {
			matched = append(matched, f)
		}
	}
	if len(matched) == 0 {
		return Result{}, false
	}
	return Result{
		PetFriendly: true,
		PolicyText:  fmt.Sprintf(facilityTextFormat, strings.Join(matched, ", ")),
		Source:      SourceFacility,
	}, true
}

// acceptable: present, not blank and not a negation.
func acceptable(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	low := strings.ToLower(t)
	for _, neg := range denylist {
		if strings.Contains(low, neg) {
			return false
		}
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), sub)
}

// firstSome returns the first item for which fn has an opinion.
func firstSome[T, R any](items []T, fn func(T) (R, bool)) (R, bool) {
	for _, it := range items {
		if r, ok := fn(it); ok {
			return r, true
		}
	}
	var zero R
	return zero, false
}

// lastSome returns the last item for which fn has an opinion.
func lastSome[T, R any](items []T, fn func(T) (R, bool)) (R, bool) {
	var (
		out   R
		found bool
	)
	for _, it := range items {
		if r, ok := fn(it); ok {
			out, found = r, true
		}
	}
	return out, found
}

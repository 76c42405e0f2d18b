package checkout

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"petotel/internal/domain"
)

const (
	paymentTarget = "#payment-element"
	businessName  = "PetOtel"
)

// Widget configures the upstream's hosted payment widget. The browser mounts
// it with the returned session; the widget redirects to ReturnURL when paid.
type Widget struct {
	PublicKey string
	BaseURL   string // public origin of the storefront
}

func (w Widget) Init(_ context.Context, a domain.Attempt) (*domain.PaymentSession, error) {
	if a.Prebook == nil || a.Prebook.SecretKey == "" {
		return nil, errors.New("prebook carries no payment secret")
	}
	pk := w.PublicKey
	if pk == "" {
		pk = "sandbox"
	}
	return &domain.PaymentSession{
		PublicKey:     pk,
		SecretKey:     a.Prebook.SecretKey,
		ReturnURL:     strings.TrimRight(w.BaseURL, "/") + "/confirmation?attempt=" + url.QueryEscape(a.ID),
		TargetElement: paymentTarget,
		BusinessName:  businessName,
	}, nil
}

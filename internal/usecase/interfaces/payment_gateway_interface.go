package interfaces

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

type PaymentLinkRequest struct {
	InvoiceID   string
	Title       string
	Description string
	Amount      decimal.Decimal
	Currency    string
	PayerEmail  string
}

type PaymentLink struct {
	URL       string
	SessionID string
	Raw       json.RawMessage
}

type PaymentStatus struct {
	ProviderPaymentID string
	Status            string
	ExternalReference string
	Approved          bool
	Raw               json.RawMessage
}

// IPaymentGateway abstracts external payment providers (e.g. Mercado Pago).
//
// The service never captures money itself: it asks for a checkout link
// for an invoice and later verifies a payment the provider notified.
type IPaymentGateway interface {
	CreatePaymentLink(ctx context.Context, req PaymentLinkRequest) (PaymentLink, error)
	GetPayment(ctx context.Context, providerPaymentID string) (PaymentStatus, error)
}

package request

import (
	"bytes"
	"encoding/json"
	"strings"
)

type RecordPaymentRequest struct {
	PaymentReference string `json:"payment_reference" binding:"required"`
}

// ProviderID accepts both JSON strings and numbers.
type ProviderID string

func (p *ProviderID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = ProviderID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*p = ProviderID(n.String())
	return nil
}

// PaymentWebhookRequest is the Mercado Pago notification body.
type PaymentWebhookRequest struct {
	ID     ProviderID `json:"id"`
	Type   string     `json:"type"`
	Topic  string     `json:"topic"`
	Action string     `json:"action"`
	Data   struct {
		ID ProviderID `json:"id"`
	} `json:"data"`
}

// IsPayment reports whether the notification is about a payment. Unknown
// shapes are treated as payments so the gateway lookup decides.
func (r PaymentWebhookRequest) IsPayment() bool {
	kind := strings.ToLower(strings.TrimSpace(r.Type))
	if kind == "" {
		kind = strings.ToLower(strings.TrimSpace(r.Topic))
	}
	return kind == "" || kind == "payment"
}

// ResolvePaymentID prefers data.id, then the query string fallbacks
// (data.id, id) that the provider uses for IPN style callbacks.
func (r PaymentWebhookRequest) ResolvePaymentID(queryDataID, queryID string) string {
	for _, v := range []string{string(r.Data.ID), queryDataID, queryID} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

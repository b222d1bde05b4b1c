package payments

import (
	"context"
	"errors"
	"strings"
	"testing"

	"facility_workorders/internal/config"
	"facility_workorders/internal/usecase/interfaces"

	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/shopspring/decimal"
)

type fakePreferences struct {
	got  preference.Request
	resp *preference.Response
	err  error
}

func (f *fakePreferences) Create(_ context.Context, req preference.Request) (*preference.Response, error) {
	f.got = req
	return f.resp, f.err
}

type fakePayments struct {
	gotID int
	resp  *payment.Response
	err   error
}

func (f *fakePayments) Get(_ context.Context, id int) (*payment.Response, error) {
	f.gotID = id
	return f.resp, f.err
}

func linkRequest() interfaces.PaymentLinkRequest {
	return interfaces.PaymentLinkRequest{
		InvoiceID:   "inv-1",
		Title:       "Invoice INV-1",
		Description: "Leaking roof",
		Amount:      decimal.RequireFromString("1100.456"),
		Currency:    "BRL",
		PayerEmail:  "client@example.com",
	}
}

func TestMercadoPagoGateway_CreatePaymentLink(t *testing.T) {
	t.Run("builds preference from invoice", func(t *testing.T) {
		prefs := &fakePreferences{resp: &preference.Response{ID: "pref-1", InitPoint: "https://mp/checkout", SandboxInitPoint: "https://sandbox/checkout"}}
		g := &MercadoPagoGateway{
			preferences: prefs,
			cfg:         config.MercadoPagoConfig{NotificationURL: "https://api/v1/payments/webhook", BackURL: "https://app/paid"},
		}

		link, err := g.CreatePaymentLink(context.Background(), linkRequest())
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if link.URL != "https://mp/checkout" || link.SessionID != "pref-1" || len(link.Raw) == 0 {
			t.Fatalf("unexpected link: %+v", link)
		}
		if prefs.got.ExternalReference != "inv-1" || prefs.got.NotificationURL != "https://api/v1/payments/webhook" {
			t.Fatalf("unexpected preference: %+v", prefs.got)
		}
		if len(prefs.got.Items) != 1 || prefs.got.Items[0].UnitPrice != 1100.46 || prefs.got.Items[0].CurrencyID != "BRL" {
			t.Fatalf("unexpected items: %+v", prefs.got.Items)
		}
		if prefs.got.Payer == nil || prefs.got.Payer.Email != "client@example.com" {
			t.Fatalf("unexpected payer: %+v", prefs.got.Payer)
		}
		if prefs.got.BackURLs == nil || prefs.got.AutoReturn != "approved" {
			t.Fatalf("expected back urls")
		}
	})

	t.Run("sandbox uses test payer and sandbox link", func(t *testing.T) {
		prefs := &fakePreferences{resp: &preference.Response{ID: "pref-2", InitPoint: "https://mp/checkout", SandboxInitPoint: "https://sandbox/checkout"}}
		g := &MercadoPagoGateway{preferences: prefs, sandbox: true}

		link, err := g.CreatePaymentLink(context.Background(), linkRequest())
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if link.URL != "https://sandbox/checkout" {
			t.Fatalf("expected sandbox link, got %s", link.URL)
		}
		if prefs.got.Payer == nil || prefs.got.Payer.Email != sandboxPayerEmail {
			t.Fatalf("expected sandbox payer, got %+v", prefs.got.Payer)
		}
	})

	t.Run("provider errors are classified", func(t *testing.T) {
		cases := map[string]error{
			`{"message":"invalid token","status":401}`:          ErrGatewayUnauthorized,
			`{"message":"bad request","status":400}`:            ErrGatewayRejected,
			`{"cause":[{"code":2034,"description":"invalid"}]}`: ErrGatewayRejected,
		}
		for body, want := range cases {
			g := &MercadoPagoGateway{preferences: &fakePreferences{err: errors.New(body)}}
			if _, err := g.CreatePaymentLink(context.Background(), linkRequest()); !errors.Is(err, want) {
				t.Fatalf("%s: expected %v, got %v", body, want, err)
			}
		}
	})

	t.Run("unconfigured gateway", func(t *testing.T) {
		var g *MercadoPagoGateway
		if _, err := g.CreatePaymentLink(context.Background(), linkRequest()); !errors.Is(err, ErrMercadoPagoGatewayNotConfigured) {
			t.Fatalf("expected ErrMercadoPagoGatewayNotConfigured, got %v", err)
		}
	})
}

func TestMercadoPagoGateway_GetPayment(t *testing.T) {
	t.Run("approved payment", func(t *testing.T) {
		pays := &fakePayments{resp: &payment.Response{ID: 123, Status: "approved", ExternalReference: "inv-1"}}
		g := &MercadoPagoGateway{payments: pays}

		st, err := g.GetPayment(context.Background(), " 123 ")
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if pays.gotID != 123 || !st.Approved || st.ExternalReference != "inv-1" || st.ProviderPaymentID != "123" {
			t.Fatalf("unexpected status: %+v", st)
		}
	})

	t.Run("pending payment is not approved", func(t *testing.T) {
		g := &MercadoPagoGateway{payments: &fakePayments{resp: &payment.Response{ID: 5, Status: "in_process"}}}
		st, err := g.GetPayment(context.Background(), "5")
		if err != nil || st.Approved {
			t.Fatalf("expected unapproved status, got %+v (%v)", st, err)
		}
	})

	t.Run("non numeric id", func(t *testing.T) {
		g := &MercadoPagoGateway{payments: &fakePayments{}}
		if _, err := g.GetPayment(context.Background(), "abc"); !errors.Is(err, ErrInvalidPaymentID) {
			t.Fatalf("expected ErrInvalidPaymentID, got %v", err)
		}
	})
}

func TestMercadoPagoGateway_MockMode(t *testing.T) {
	g, err := NewMercadoPagoGateway(config.MercadoPagoConfig{Mock: "on"}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	link, err := g.CreatePaymentLink(context.Background(), linkRequest())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(link.URL, "payment_id=mock-inv-1") || link.SessionID == "" {
		t.Fatalf("unexpected mock link: %+v", link)
	}

	st, err := g.GetPayment(context.Background(), "mock-inv-1")
	if err != nil || !st.Approved || st.ExternalReference != "inv-1" {
		t.Fatalf("unexpected mock payment: %+v (%v)", st, err)
	}

	if _, err := g.GetPayment(context.Background(), "42"); !errors.Is(err, ErrInvalidPaymentID) {
		t.Fatalf("expected ErrInvalidPaymentID for non mock id, got %v", err)
	}
}

func TestNewMercadoPagoGateway_MissingToken(t *testing.T) {
	if _, err := NewMercadoPagoGateway(config.MercadoPagoConfig{}, nil); !errors.Is(err, ErrMissingMercadoPagoAccessToken) {
		t.Fatalf("expected ErrMissingMercadoPagoAccessToken, got %v", err)
	}
}

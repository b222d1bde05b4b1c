package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"facility_workorders/internal/config"
	"facility_workorders/internal/usecase/interfaces"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"go.uber.org/zap"
)

var (
	ErrMissingMercadoPagoAccessToken   = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")
	ErrMercadoPagoGatewayNotConfigured = errors.New("mercado pago gateway not configured")
	ErrGatewayUnauthorized             = errors.New("payment provider rejected credentials")
	ErrGatewayRejected                 = errors.New("payment provider rejected request")
	ErrInvalidPaymentID                = errors.New("invalid provider payment id")
)

const (
	sandboxPayerEmail = "test_user_br@testuser.com"
	mockPaymentPrefix = "mock-"
)

type preferenceCreator interface {
	Create(ctx context.Context, request preference.Request) (*preference.Response, error)
}

type paymentGetter interface {
	Get(ctx context.Context, id int) (*payment.Response, error)
}

// MercadoPagoGateway creates Checkout Pro preferences for invoices and verifies
// payments notified by the provider. In mock mode no network call is made.
type MercadoPagoGateway struct {
	preferences preferenceCreator
	payments    paymentGetter
	cfg         config.MercadoPagoConfig
	sandbox     bool
	mockMode    bool
	log         *zap.Logger
}

var _ interfaces.IPaymentGateway = (*MercadoPagoGateway)(nil)

func NewMercadoPagoGateway(cfg config.MercadoPagoConfig, log *zap.Logger) (*MercadoPagoGateway, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("payments")

	if cfg.MockEnabled() {
		log.Info("mock mode enabled")
		return &MercadoPagoGateway{cfg: cfg, mockMode: true, log: log}, nil
	}

	if cfg.AccessToken == "" {
		return nil, ErrMissingMercadoPagoAccessToken
	}

	sdkCfg, err := mpconfig.New(cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	log.Info("Mercado Pago client initialized")

	return &MercadoPagoGateway{
		preferences: preference.NewClient(sdkCfg),
		payments:    payment.NewClient(sdkCfg),
		cfg:         cfg,
		sandbox:     strings.HasPrefix(cfg.AccessToken, "TEST-"),
		log:         log,
	}, nil
}

func (g *MercadoPagoGateway) CreatePaymentLink(ctx context.Context, req interfaces.PaymentLinkRequest) (interfaces.PaymentLink, error) {
	if g != nil && g.mockMode {
		return g.mockLink(req)
	}
	if g == nil || g.preferences == nil {
		return interfaces.PaymentLink{}, ErrMercadoPagoGatewayNotConfigured
	}

	unitPrice, _ := req.Amount.Round(2).Float64()
	pref := preference.Request{
		Items: []preference.ItemRequest{{
			ID:          req.InvoiceID,
			Title:       req.Title,
			Description: req.Description,
			CurrencyID:  req.Currency,
			Quantity:    1,
			UnitPrice:   unitPrice,
		}},
		ExternalReference: req.InvoiceID,
		NotificationURL:   g.cfg.NotificationURL,
	}
	if email := g.payerEmail(req.PayerEmail); email != "" {
		pref.Payer = &preference.PayerRequest{Email: email}
	}
	if g.cfg.BackURL != "" {
		pref.BackURLs = &preference.BackURLsRequest{
			Success: g.cfg.BackURL,
			Pending: g.cfg.BackURL,
			Failure: g.cfg.BackURL,
		}
		pref.AutoReturn = "approved"
	}

	g.logger().Debug("create preference start", zap.String("invoice_id", req.InvoiceID), zap.String("amount", req.Amount.StringFixed(2)))
	resp, err := g.preferences.Create(ctx, pref)
	if err != nil {
		g.logger().Warn("create preference failed", zap.String("invoice_id", req.InvoiceID), zap.Error(err))
		return interfaces.PaymentLink{}, classify(err)
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return interfaces.PaymentLink{}, err
	}
	url := resp.InitPoint
	if g.sandbox && resp.SandboxInitPoint != "" {
		url = resp.SandboxInitPoint
	}
	g.logger().Info("create preference success", zap.String("invoice_id", req.InvoiceID), zap.String("preference_id", resp.ID))

	return interfaces.PaymentLink{URL: url, SessionID: resp.ID, Raw: raw}, nil
}

func (g *MercadoPagoGateway) GetPayment(ctx context.Context, providerPaymentID string) (interfaces.PaymentStatus, error) {
	providerPaymentID = strings.TrimSpace(providerPaymentID)
	if g != nil && g.mockMode {
		return g.mockPayment(providerPaymentID)
	}
	if g == nil || g.payments == nil {
		return interfaces.PaymentStatus{}, ErrMercadoPagoGatewayNotConfigured
	}

	id, err := strconv.Atoi(providerPaymentID)
	if err != nil || id <= 0 {
		return interfaces.PaymentStatus{}, fmt.Errorf("%w: %q", ErrInvalidPaymentID, providerPaymentID)
	}

	resp, err := g.payments.Get(ctx, id)
	if err != nil {
		g.logger().Warn("get payment failed", zap.Int("payment_id", id), zap.Error(err))
		return interfaces.PaymentStatus{}, classify(err)
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return interfaces.PaymentStatus{}, err
	}
	g.logger().Info("get payment success", zap.Int("payment_id", resp.ID), zap.String("status", resp.Status), zap.String("external_reference", resp.ExternalReference))

	return interfaces.PaymentStatus{
		ProviderPaymentID: strconv.Itoa(resp.ID),
		Status:            resp.Status,
		ExternalReference: resp.ExternalReference,
		Approved:          resp.Status == "approved",
		Raw:               raw,
	}, nil
}

func (g *MercadoPagoGateway) payerEmail(requested string) string {
	if requested != "" && !g.sandbox {
		return requested
	}
	if g.cfg.TestPayerEmail != "" {
		return g.cfg.TestPayerEmail
	}
	if g.sandbox {
		return sandboxPayerEmail
	}
	return requested
}

// mockLink embeds a payment id that GetPayment later resolves back to the invoice.
func (g *MercadoPagoGateway) mockLink(req interfaces.PaymentLinkRequest) (interfaces.PaymentLink, error) {
	paymentID := mockPaymentPrefix + req.InvoiceID
	sessionID := "mock-pref-" + strconv.FormatInt(time.Now().UTC().UnixNano(), 10)
	raw, err := json.Marshal(map[string]any{
		"id":                 sessionID,
		"external_reference": req.InvoiceID,
		"payment_id":         paymentID,
		"amount":             req.Amount.StringFixed(2),
		"currency_id":        req.Currency,
	})
	if err != nil {
		return interfaces.PaymentLink{}, err
	}
	g.logger().Info("mock preference created", zap.String("invoice_id", req.InvoiceID), zap.String("payment_id", paymentID))
	return interfaces.PaymentLink{
		URL:       "https://sandbox.mercadopago.local/checkout?payment_id=" + paymentID,
		SessionID: sessionID,
		Raw:       raw,
	}, nil
}

func (g *MercadoPagoGateway) mockPayment(providerPaymentID string) (interfaces.PaymentStatus, error) {
	invoiceID, ok := strings.CutPrefix(providerPaymentID, mockPaymentPrefix)
	if !ok || invoiceID == "" {
		return interfaces.PaymentStatus{}, fmt.Errorf("%w: %q", ErrInvalidPaymentID, providerPaymentID)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	raw, err := json.Marshal(map[string]any{
		"id":                 providerPaymentID,
		"status":             "approved",
		"status_detail":      "accredited",
		"external_reference": invoiceID,
		"date_approved":      now,
	})
	if err != nil {
		return interfaces.PaymentStatus{}, err
	}
	return interfaces.PaymentStatus{
		ProviderPaymentID: providerPaymentID,
		Status:            "approved",
		ExternalReference: invoiceID,
		Approved:          true,
		Raw:               raw,
	}, nil
}

func (g *MercadoPagoGateway) logger() *zap.Logger {
	if g.log == nil {
		return zap.NewNop()
	}
	return g.log
}

// classify maps SDK error text onto stable sentinels; unknown failures pass through.
func classify(err error) error {
	switch {
	case isGatewayUnauthorized(err):
		return fmt.Errorf("%w: %v", ErrGatewayUnauthorized, err)
	case isGatewayBadRequest(err), isGatewayInvalidUsers(err), isGatewayCustomerNotFound(err):
		return fmt.Errorf("%w: %v", ErrGatewayRejected, err)
	default:
		return err
	}
}

func isGatewayBadRequest(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, `"status":400`) || strings.Contains(msg, "bad_request") || strings.Contains(msg, "status code: 400")
}

func isGatewayUnauthorized(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, `"status":401`) || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "status code: 401")
}

func isGatewayInvalidUsers(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, `"code":2034`) || strings.Contains(msg, "invalid users involved")
}

func isGatewayCustomerNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, `"code":2002`) || strings.Contains(msg, "customer not found")
}

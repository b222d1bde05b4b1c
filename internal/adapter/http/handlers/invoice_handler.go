package handlers

import (
	"errors"
	"net/http"

	"facility_workorders/internal/adapter/http/dto/request"
	"facility_workorders/internal/adapter/http/dto/response"
	"facility_workorders/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InvoiceHandler issues invoices and records their payment, either from an
// operator or from the payment provider's webhook.
type InvoiceHandler struct {
	usecase usecase.IInvoiceUseCase
	log     *zap.Logger
}

func NewInvoiceHandler(uc usecase.IInvoiceUseCase, log *zap.Logger) *InvoiceHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &InvoiceHandler{usecase: uc, log: log.Named("invoice_handler")}
}

// Issue godoc
// @Summary      Issue the invoice of a completed work order
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Work order id"
// @Success      201 {object} response.InvoiceResponse
// @Failure      409 {object} pkg.HTTPError
// @Failure      503 {object} pkg.HTTPError
// @Security     BearerAuth
// @Router       /work-orders/{id}/invoice [post]
func (h *InvoiceHandler) Issue(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	inv, err := h.usecase.Issue(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.FromInvoice(inv))
}

// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice id"
// @Success      200 {object} response.InvoiceResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	inv, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromInvoice(inv))
}

// @Summary      Record a payment received out of band
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice id"
// @Param        payload body request.RecordPaymentRequest true "Payment reference"
// @Success      200 {object} response.InvoiceResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload request.RecordPaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeAppError(c, errInvalidPayload.WithDetails(err))
		return
	}
	inv, err := h.usecase.RecordPayment(c.Request.Context(), c.Param("id"), payload.PaymentReference, actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromInvoice(inv))
}

// PaymentWebhook godoc
// @Summary      Mercado Pago payment notification
// @Description  Unauthenticated. The payment is re-read from the provider before anything is recorded.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /payments/webhook [post]
func (h *InvoiceHandler) PaymentWebhook(c *gin.Context) {
	var payload request.PaymentWebhookRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			h.log.Warn("unreadable payment webhook", zap.Error(err))
		}
	}
	if payload.Type == "" && payload.Topic == "" {
		payload.Topic = c.Query("topic")
		payload.Type = c.Query("type")
	}
	if !payload.IsPayment() {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	paymentID := payload.ResolvePaymentID(c.Query("data.id"), c.Query("id"))
	if paymentID == "" {
		writeAppError(c, errInvalidPayload.WithDetails(errors.New("missing payment id")))
		return
	}

	inv, err := h.usecase.HandlePaymentWebhook(c.Request.Context(), paymentID)
	switch {
	case errors.Is(err, usecase.ErrPaymentNotApproved), errors.Is(err, usecase.ErrNotFound):
		h.log.Info("payment webhook ignored", zap.String("payment_id", paymentID), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	case err != nil:
		h.log.Error("payment webhook failed", zap.String("payment_id", paymentID), zap.Error(err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recorded", "invoice_id": inv.ID, "invoice_status": string(inv.Status)})
}

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"facility_workorders/internal/adapter/http/dto/request"
	"facility_workorders/internal/domain/entities"
	"facility_workorders/internal/usecase"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"transition", &usecase.TransitionError{From: entities.WorkOrderPending, To: entities.WorkOrderPaid, Reason: "no path"}, "INVALID_TRANSITION", http.StatusConflict},
		{"bidding closed", usecase.ErrBiddingClosed, "INVALID_TRANSITION", http.StatusConflict},
		{"duplicate quote", usecase.ErrDuplicateActiveQuote, "DUPLICATE_ACTIVE_QUOTE", http.StatusConflict},
		{"not found wrapped", fmt.Errorf("load: %w", usecase.ErrQuoteNotFound), "NOT_FOUND", http.StatusNotFound},
		{"amounts", usecase.ErrInvalidQuoteAmounts, "INVALID_REQUEST", http.StatusBadRequest},
		{"bad date", request.ErrInvalidDate, "INVALID_REQUEST", http.StatusBadRequest},
		{"concurrent", usecase.ErrConcurrentUpdate, "CONCURRENT_UPDATE", http.StatusConflict},
		{"inactive", usecase.ErrDefinitionInactive, "DEFINITION_INACTIVE", http.StatusConflict},
		{"forbidden", usecase.ErrForbidden, "FORBIDDEN", http.StatusForbidden},
		{"gateway", usecase.ErrPaymentGatewayNotConfig, "PAYMENT_GATEWAY_UNAVAILABLE", http.StatusServiceUnavailable},
		{"unknown", errors.New("dynamo timeout"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mapError(tc.err)
			if got.Code != tc.code || got.HTTPStatus != tc.status {
				t.Fatalf("expected %s/%d, got %s/%d", tc.code, tc.status, got.Code, got.HTTPStatus)
			}
		})
	}

	t.Run("internal errors hide details", func(t *testing.T) {
		if d := mapError(errors.New("secret dsn")).ToHTTPError().Details; d != "" {
			t.Fatalf("details leaked: %q", d)
		}
	})
}

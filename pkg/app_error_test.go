package pkg

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppError_ToHTTPError(t *testing.T) {
	t.Run("client error exposes details", func(t *testing.T) {
		e := NewDomainErrorSimple("INVALID_TRANSITION", "Transition not allowed", http.StatusConflict).
			WithDetails(errors.New("pending -> assigned"))
		body := e.ToHTTPError()
		if body.Code != "INVALID_TRANSITION" || body.Details != "pending -> assigned" {
			t.Fatalf("unexpected body: %+v", body)
		}
	})

	t.Run("server error hides cause", func(t *testing.T) {
		cause := errors.New("dynamodb: timeout")
		e := NewDomainError("INTERNAL_ERROR", "An internal error occurred", cause, 0)
		if e.HTTPStatus != http.StatusInternalServerError {
			t.Fatalf("expected 500 default, got %d", e.HTTPStatus)
		}
		if body := e.ToHTTPError(); body.Details != "" {
			t.Fatalf("expected no details, got %q", body.Details)
		}
		if !errors.Is(e, cause) {
			t.Fatalf("expected AppError to unwrap to cause")
		}
	})
}

package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leafcart/internal/http/response"
	"github.com/leafcart/internal/service"

	"github.com/gin-gonic/gin"
)

func respondWith(t *testing.T, err error) response.Response {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)

	RespondMappedError(c, err, ValidationErrorRules, ConflictErrorRules, NotFoundErrorRules)

	if w.Code != http.StatusOK {
		t.Fatalf("http status want 200 got %d", w.Code)
	}
	var body response.Response
	if decodeErr := json.Unmarshal(w.Body.Bytes(), &body); decodeErr != nil {
		t.Fatalf("decode response failed: %v", decodeErr)
	}
	return body
}

func TestRespondMappedErrorUsesBusinessReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{
			name: "out of stock",
			err:  fmt.Errorf("reserve: %w", &service.OutOfStockError{ProductID: 3, ProductName: "Matcha"}),
			code: response.CodeConflict,
			msg:  "reserve: Product Matcha is out of stock",
		},
		{
			name: "expired promo",
			err:  service.ErrPromoCodeExpired,
			code: response.CodeConflict,
			msg:  "Promo code expired",
		},
		{
			name: "missing idempotency key",
			err:  service.ErrIdempotencyKeyRequired,
			code: response.CodeBadRequest,
			msg:  "idempotency key is required",
		},
		{
			name: "unknown order",
			err:  service.ErrOrderNotFound,
			code: response.CodeNotFound,
			msg:  service.ErrOrderNotFound.Error(),
		},
	}
	for _, tc := range cases {
		body := respondWith(t, tc.err)
		if body.StatusCode != tc.code || body.Msg != tc.msg {
			t.Fatalf("%s: want %d %q, got %d %q", tc.name, tc.code, tc.msg, body.StatusCode, body.Msg)
		}
	}
}

func TestRespondMappedErrorHidesInternalErrors(t *testing.T) {
	body := respondWith(t, errors.New("dial tcp 10.0.0.5:5432: connection refused"))
	if body.StatusCode != response.CodeInternal {
		t.Fatalf("status_code want 500 got %d", body.StatusCode)
	}
	if body.Msg != internalErrorMessage {
		t.Fatalf("internal details leaked: %q", body.Msg)
	}
}

func TestAppErrorInternal(t *testing.T) {
	cause := errors.New("boom")
	wrapped := response.WrapError(response.CodeInternal, internalErrorMessage, cause)
	if !wrapped.Internal() || !errors.Is(wrapped, cause) {
		t.Fatalf("wrapped internal error should unwrap to cause: %v", wrapped)
	}
	if wrapped.Error() != "internal server error: boom" {
		t.Fatalf("unexpected error text: %s", wrapped.Error())
	}
	mapped := response.FromBusinessError(response.CodeConflict, service.ErrDuplicateRequest)
	if mapped.Internal() || mapped.Message != service.ErrDuplicateRequest.Error() {
		t.Fatalf("unexpected mapped error: %+v", mapped)
	}
}

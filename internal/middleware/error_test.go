package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

func TestProperty_ErrorResponsesAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every error response carries code, message and timestamp", prop.ForAll(
		func(statusCode int, message string) bool {
			if statusCode < 400 || statusCode > 599 {
				statusCode = 400
			}

			w := httptest.NewRecorder()
			RespondWithError(w, statusCode, message)

			if w.Code != statusCode {
				return false
			}
			if w.Header().Get("Content-Type") != "application/json" {
				return false
			}

			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				return false
			}

			return resp.Error.Code == http.StatusText(statusCode) &&
				resp.Error.Message == message &&
				resp.Error.Timestamp != ""
		},
		gen.IntRange(400, 599),
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRespondWithValidationErrorsIncludesFieldDetails(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithValidationErrors(w, []ValidationError{
		{Field: "Email", Message: "Invalid email format"},
		{Field: "Password", Message: "Value is too short"},
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Response is not valid JSON: %v", err)
	}
	if resp.Error.Message != "validation failed" {
		t.Errorf("Unexpected message: %q", resp.Error.Message)
	}
	if _, ok := resp.Error.Details["validation_errors"]; !ok {
		t.Error("Details should carry the validation errors")
	}
}

func TestErrorHandlingMiddlewareRecoversPanics(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	handler := ErrorHandlingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 after a panic, got %d", w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Panic response is not valid JSON: %v", err)
	}
	if resp.Error.Message != "internal server error" {
		t.Errorf("Unexpected panic message: %q", resp.Error.Message)
	}
}

func TestRespondWithJSONWritesPayload(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithJSON(w, http.StatusCreated, map[string]string{"id": "abc"})

	if w.Code != http.StatusCreated {
		t.Errorf("Expected 201, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Unexpected content type: %q", w.Header().Get("Content-Type"))
	}

	var payload map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Payload is not valid JSON: %v", err)
	}
	if payload["id"] != "abc" {
		t.Errorf("Payload round trip failed: %+v", payload)
	}
}

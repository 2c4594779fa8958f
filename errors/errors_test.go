package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found", http.StatusNotFound)
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "not found" {
		t.Errorf("expected message 'not found', got %q", err.Message)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeConstructionFailed, "factory failed", http.StatusInternalServerError)
	if !err.Retryable {
		t.Error("CONSTRUCTION_FAILED should be retryable")
	}
}

func TestAppError_NotFound_EmptyID(t *testing.T) {
	err := NotFound("registration", "")
	if _, ok := err.Details["id"]; ok {
		t.Error("expected no 'id' key in details when id is empty")
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := NotRegistered("db").WithCause(cause)
	if err.Cause != cause {
		t.Error("expected cause to be set via WithCause")
	}
	if !strings.Contains(err.Error(), "root cause") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
}

func TestAppError_WithDetails_Merge(t *testing.T) {
	err := DuplicateRegistration("cache").WithDetails(map[string]any{
		"lifetime": "singleton",
	})
	if err.Details["lifetime"] != "singleton" {
		t.Errorf("expected lifetime=singleton in details")
	}
	if err.Details["key"] != "cache" {
		t.Error("expected original details to be preserved")
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{}
	err.WithDetail("key", "value")
	if err.Details == nil {
		t.Fatal("expected Details map to be initialized")
	}
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details["key"])
	}
}

func TestAppError_Is_MatchesOnCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotRegistered("db"))
	if !stderrors.Is(err, New(ErrCodeNotRegistered, "", 0)) {
		t.Error("expected errors.Is to match on code")
	}
	if stderrors.Is(err, New(ErrCodeDuplicateRegistration, "", 0)) {
		t.Error("expected errors.Is not to match a different code")
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		status    int
		retryable bool
	}{
		{"DuplicateRegistration", DuplicateRegistration("a"), ErrCodeDuplicateRegistration, http.StatusConflict, false},
		{"NotRegistered", NotRegistered("a"), ErrCodeNotRegistered, http.StatusNotFound, false},
		{"MissingFactory", MissingFactory("a", "interface"), ErrCodeMissingFactory, http.StatusInternalServerError, false},
		{"InvalidRegistration", InvalidRegistration("a", "empty"), ErrCodeInvalidRegistration, http.StatusInternalServerError, false},
		{"TypeMismatch", TypeMismatch("a", "int", "string"), ErrCodeTypeMismatch, http.StatusInternalServerError, false},
		{"ContainerFrozen", ContainerFrozen("a"), ErrCodeContainerFrozen, http.StatusConflict, false},
		{"ConstructionFailed", ConstructionFailed("a", nil), ErrCodeConstructionFailed, http.StatusInternalServerError, true},
		{"AlreadyInitialized", AlreadyInitialized("container"), ErrCodeAlreadyInitialized, http.StatusConflict, false},
		{"NotInitialized", NotInitialized("container"), ErrCodeNotInitialized, http.StatusServiceUnavailable, false},
		{"AlreadyExists", AlreadyExists("user"), ErrCodeAlreadyExists, http.StatusConflict, false},
		{"MissingField", MissingField("name"), ErrCodeMissingField, http.StatusBadRequest, false},
		{"Validation", Validation("bad input"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"InvalidInput", InvalidInput("level", "unknown"), ErrCodeInvalidInput, http.StatusBadRequest, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.HTTPStatus)
			}
			if tc.err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, tc.err.Retryable)
			}
		})
	}
}

func TestAppError_ToResponse_Success(t *testing.T) {
	err := NotRegistered("db")
	resp := err.ToResponse()
	if resp.Error.Code != ErrCodeNotRegistered {
		t.Errorf("expected code NOT_REGISTERED in response, got %s", resp.Error.Code)
	}
	if resp.Error.Details["key"] != "db" {
		t.Error("expected key=db in response details")
	}
}

func TestAppError_AsAppError_Success(t *testing.T) {
	appErr := Internal(nil)
	wrapped := fmt.Errorf("wrap: %w", appErr)

	got, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed for wrapped AppError")
	}
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}

	_, ok = AsAppError(fmt.Errorf("not an app error"))
	if ok {
		t.Error("expected AsAppError to return false for non-AppError")
	}
	if IsAppError(fmt.Errorf("plain")) {
		t.Error("expected IsAppError to return false for plain error")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("ctx: %w", MissingFactory("svc", "interface type"))
	if !HasCode(err, ErrCodeMissingFactory) {
		t.Error("expected HasCode to find MISSING_FACTORY")
	}
	if HasCode(err, ErrCodeNotRegistered) {
		t.Error("expected HasCode to reject other codes")
	}
	if HasCode(nil, ErrCodeMissingFactory) {
		t.Error("expected HasCode(nil) to be false")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}

	orig := NotRegistered("x")
	if got := Wrap(fmt.Errorf("outer: %w", orig)); got != orig {
		t.Error("Wrap should return the wrapped AppError unchanged")
	}

	plain := fmt.Errorf("something broke")
	got := Wrap(plain)
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
	if got.Cause != plain {
		t.Error("expected cause to be the original error")
	}
}

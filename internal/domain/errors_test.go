package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewInvalidArgument(t *testing.T) {
	err := NewInvalidArgument("element")

	if err.Code != ErrCodeInvalidArgument {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeInvalidArgument)
	}
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("HTTPStatus = %d, want %d", err.HTTPStatus, http.StatusBadRequest)
	}
	if err.Message != `required argument "element" is missing` {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestAppError_Is(t *testing.T) {
	err := NewNotFound("inspection")
	if !errors.Is(err, &AppError{Code: ErrCodeNotFound}) {
		t.Error("errors.Is should match by code")
	}
	if errors.Is(err, &AppError{Code: ErrCodeInternal}) {
		t.Error("errors.Is should not match different code")
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDatabase("insert inspection", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause should be reachable via errors.Is")
	}
}

func TestAsAppError(t *testing.T) {
	app := NewValidation("bad selector")
	if got := AsAppError(fmt.Errorf("wrapped: %w", app)); got.Code != ErrCodeValidation {
		t.Errorf("Code = %q, want %q", got.Code, ErrCodeValidation)
	}

	plain := errors.New("boom")
	got := AsAppError(plain)
	if got.Code != ErrCodeInternal {
		t.Errorf("Code = %q, want %q", got.Code, ErrCodeInternal)
	}
	if !errors.Is(got, plain) {
		t.Error("original error should be preserved as cause")
	}
}

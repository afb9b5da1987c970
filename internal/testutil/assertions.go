package testutil

import (
	"errors"
	"testing"

	apperrors "fintrack/internal/errors"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertValidationField checks that err is a validation error on field.
func AssertValidationField(t *testing.T, err error, field string) {
	t.Helper()

	AssertAppError(t, err, apperrors.ErrValidation.Code)

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Field != field {
		t.Errorf("expected validation error on %q, got %q (message: %s)", field, appErr.Field, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

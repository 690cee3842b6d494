package domain

import (
	"errors"
	"testing"
)

func TestValidationError_SingleField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("title", "required")

	if got := err.Error(); got != "validation: title — required" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestValidationError_MultipleFields(t *testing.T) {
	t.Parallel()

	err := NewValidationErrors([]FieldError{
		{Field: "title", Message: "required"},
		{Field: "kind", Message: "max 50 characters"},
	})

	if got := err.Error(); got != "validation: 2 errors" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestNewFieldError_MatchesCauseAndValidation(t *testing.T) {
	t.Parallel()

	err := NewFieldError(ErrInvalidTimeZone, "scheduled_timezone", "unknown zone")

	if !errors.Is(err, ErrInvalidTimeZone) {
		t.Fatal("errors.Is(err, ErrInvalidTimeZone) = false")
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
	if errors.Is(err, ErrInvalidDateTime) {
		t.Fatal("errors.Is(err, ErrInvalidDateTime) = true, want false")
	}
}

func TestInputSentinels_AreValidationErrors(t *testing.T) {
	t.Parallel()

	for _, err := range []error{ErrInvalidTimeZone, ErrInvalidDateTime, ErrMissingScheduleFields, ErrInvalidStatus} {
		if !errors.Is(err, ErrValidation) {
			t.Errorf("%v should wrap ErrValidation", err)
		}
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrValidation, ErrConflict, ErrTransientStore,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel errors %d and %d should not match", i, j)
			}
		}
	}
}

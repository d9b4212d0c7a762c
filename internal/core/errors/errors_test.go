package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "class not found")
		if err.Error() != "[NOT_FOUND] class not found" {
			t.Errorf("expected [NOT_FOUND] class not found, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("unexpected EOF")
		err := Wrap(original, CodeInternal, "parse failed")
		expected := "[INTERNAL_ERROR] parse failed: unexpected EOF"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
		if !errors.Is(err, original) {
			t.Error("expected wrapped error to unwrap to the original")
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "unknown builtin type")
		if !IsCode(err, CodeValidationError) {
			t.Error("expected IsCode to return true for CodeValidationError")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
		if IsCode(errors.New("plain"), CodeValidationError) {
			t.Error("expected IsCode to return false for non-domain errors")
		}
	})

	t.Run("IsCodeThroughFmtWrap", func(t *testing.T) {
		err := fmt.Errorf("load: %w", New(CodeConflict, "duplicate class"))
		if !IsCode(err, CodeConflict) {
			t.Error("expected IsCode to see through fmt.Errorf wrapping")
		}
	})
}

func TestAddContext(t *testing.T) {
	err := AddContext(New(CodeNotFound, "schema missing"), CtxClass, "Pet")
	var de *DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected DomainError, got %T", err)
	}
	if de.Code != CodeNotFound || de.Context[CtxClass] != "Pet" {
		t.Fatalf("unexpected error: %+v", de)
	}

	plain := AddContext(errors.New("boom"), CtxPath, "a.go")
	if !IsCode(plain, CodeInternal) {
		t.Fatalf("expected plain errors to become internal, got %v", plain)
	}
}

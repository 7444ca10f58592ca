package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Validation("bad", nil), http.StatusBadRequest},
		{Conflict("dup"), http.StatusBadRequest},
		{Unauthenticated("who"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.err.Status(); got != tt.want {
			t.Errorf("%s: Status() = %d, want %d", tt.err.Kind, got, tt.want)
		}
	}
}

func TestFromClassifiesWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("loading task: %w", NotFound("Task not found"))
	got := From(wrapped)
	if got.Kind != KindNotFound || got.Message != "Task not found" {
		t.Fatalf("From() = %+v, want not found", got)
	}

	plain := From(errors.New("db down"))
	if plain.Kind != KindInternal {
		t.Fatalf("From(plain) kind = %s, want internal", plain.Kind)
	}
	if plain.Message != "Internal Server Error" {
		t.Errorf("internal message leaked cause: %q", plain.Message)
	}
	if From(nil) != nil {
		t.Error("From(nil) should be nil")
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("ctx: %w", Conflict("x"))
	if !Is(err, KindConflict) {
		t.Error("expected conflict")
	}
	if Is(err, KindNotFound) {
		t.Error("did not expect not found")
	}
}

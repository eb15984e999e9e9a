package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("name is required"), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("create client: %w", Validation("bad")), http.StatusBadRequest},
		{"not found", NotFound("client"), http.StatusNotFound},
		{"conflict", Conflict("alert already reviewed"), http.StatusConflict},
		{"forbidden", Forbidden("wrong agency"), http.StatusForbidden},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestHTTP_KeepsMessage(t *testing.T) {
	he := HTTP(Validation("display_name is required"))
	if he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", he.Code)
	}
	if he.Message != "display_name is required" {
		t.Errorf("unexpected message: %v", he.Message)
	}
}

func TestHTTP_HidesInternalErrors(t *testing.T) {
	cause := errors.New("connection reset")
	he := HTTP(cause)
	if he.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", he.Code)
	}
	if he.Message != "internal server error" {
		t.Errorf("unexpected message: %v", he.Message)
	}
	if !errors.Is(he.Internal, cause) {
		t.Error("expected internal error to be preserved")
	}
}

func TestNotFound_Message(t *testing.T) {
	err := NotFound("visit entry")
	if err.Error() != "visit entry not found" {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected ErrNotFound")
	}
}

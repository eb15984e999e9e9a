package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carewatch/carewatch/internal/platform/apperr"
)

func TestMapError(t *testing.T) {
	if MapError(nil, "client") != nil {
		t.Error("expected nil for nil error")
	}

	err := MapError(fmt.Errorf("scan: %w", pgx.ErrNoRows), "client")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err.Error() != "client not found" {
		t.Errorf("unexpected message: %s", err.Error())
	}

	err = MapError(&pgconn.PgError{Code: "23505"}, "carer")
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	plain := errors.New("connection refused")
	if got := MapError(plain, "client"); got != plain {
		t.Errorf("expected error to pass through, got %v", got)
	}
}

func TestTxFromContext_Empty(t *testing.T) {
	if TxFromContext(context.Background()) != nil {
		t.Error("expected nil transaction on empty context")
	}
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/domain"
)

// MapError converts pgx/pgconn errors to domain errors.
// context.DeadlineExceeded and context.Canceled are NOT mapped, they pass through.
// Connection-level failures and serialization conflicts become
// domain.ErrTransientStore so callers know a retry is safe. Anything else,
// such as a scan or decode error, is wrapped as-is.
// A uuid.Nil id is left out of the message.
func MapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	prefix := entity
	if id != uuid.Nil {
		prefix = entity + " " + id.String()
	}

	// context errors pass through as-is
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", prefix, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", prefix, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w", prefix, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w", prefix, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s: %w", prefix, domain.ErrValidation)
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%s: %w: %w", prefix, domain.ErrTransientStore, err)
		}
		// Server-reported statement errors are bugs, not outages.
		return fmt.Errorf("%s: %w", prefix, err)
	}

	if isConnectionFailure(err) {
		return fmt.Errorf("%s: %w: %w", prefix, domain.ErrTransientStore, err)
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

// isConnectionFailure reports whether err means the server was never reached
// or the connection dropped mid-statement.
func isConnectionFailure(err error) bool {
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kevinaaaquil/book-inventory/backend/apperr"
)

const (
	msgBookNotFound  = "Book not found"
	msgUserNotFound  = "User not found"
	msgDuplicateISBN = "A book with this ISBN already exists"
	msgDuplicateUser = "Username already exists"
)

// classify maps a driver error onto the apperr taxonomy. conflictMsg is used
// for unique index violations.
func classify(err error, op, conflictMsg string) error {
	switch {
	case err == nil:
		return nil
	case mongo.IsDuplicateKeyError(err):
		return apperr.Wrap(apperr.Conflict, conflictMsg, err)
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err), mongo.IsNetworkError(err),
		errors.Is(err, mongo.ErrClientDisconnected):
		return apperr.Wrap(apperr.Unavailable, "store unavailable during "+op, err)
	default:
		return apperr.Wrap(apperr.Internal, op+" failed", err)
	}
}

package service

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shared error taxonomy for the service layer. Handlers map these onto HTTP
// status codes; anything else that escapes a service is treated as ErrStorage.
var (
	// ErrAccessDenied means the caller is authenticated but does not own the
	// resource.
	ErrAccessDenied = errors.New("access denied")
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation means malformed or out-of-range input. Wrap it with a
	// field-specific message: fmt.Errorf("%w: name must not be empty", ErrValidation).
	ErrValidation = errors.New("validation failed")
	// ErrInvalidState means the operation is not legal for the entity's
	// current status.
	ErrInvalidState = errors.New("invalid state for operation")
	// ErrStorage is the opaque wrapper around persistence failures. The
	// original error is logged, never returned to the caller.
	ErrStorage = errors.New("storage failure")
)

// validationErrorf builds a field-specific validation error.
func validationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// authorizeOwner is the single ownership gate used by every owner-scoped
// operation: callers must match the resource owner exactly. Checked
// immediately after the first read, before any write.
func authorizeOwner(callerID, resourceOwnerID primitive.ObjectID) error {
	if callerID == primitive.NilObjectID || callerID != resourceOwnerID {
		return ErrAccessDenied
	}
	return nil
}

// storageFailure logs the underlying persistence error with context and
// converts it to the generic ErrStorage. Detail must not cross the boundary.
func storageFailure(op string, err error) error {
	logrus.WithError(err).WithField("op", op).Error("storage operation failed")
	return ErrStorage
}

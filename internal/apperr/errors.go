// Package apperr defines the error kinds shared by the services and the
// HTTP layer. Services return these; adminapi maps them to status codes.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     interface{}
}

func (e *NotFoundError) Error() string {
	if e.ID == nil {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

func NotFound(entity string, id interface{}) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError reports a business rule violation such as a duplicate name.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func Conflict(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ForbiddenError reports an operation on a resource the caller does not own.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func Forbidden(format string, args ...interface{}) error {
	return &ForbiddenError{Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError is returned when a product cannot cover a requested
// quantity, either by the checkout pre-check or by the conditional decrement.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s. Available: %d, Requested: %d",
		e.ProductName, e.Available, e.Requested)
}

// EmptyBucketError is returned by checkout when the user has nothing to order.
type EmptyBucketError struct {
	UserID int64
}

func (e *EmptyBucketError) Error() string {
	return "Bucket is empty or does not exist."
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsClientError reports whether err is one of the kinds caused by the
// request itself rather than by the server.
func IsClientError(err error) bool {
	var (
		v  *ValidationError
		nf *NotFoundError
		c  *ConflictError
		is *InsufficientStockError
		eb *EmptyBucketError
		f  *ForbiddenError
	)
	return errors.As(err, &v) || errors.As(err, &nf) || errors.As(err, &c) ||
		errors.As(err, &is) || errors.As(err, &eb) || errors.As(err, &f)
}

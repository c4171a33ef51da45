package models

import (
	"errors"
	"fmt"
)

// Error categories. Every failure returned by the services matches exactly one
// of these through errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrInvalidState      = errors.New("invalid order state")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyCancelled  = errors.New("order already cancelled")
	ErrConflict          = errors.New("conflict")
)

// ValidationError reports malformed input
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError builds a ValidationError
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StateError reports an operation attempted against an order in the wrong status
type StateError struct {
	OrderNumber string
	Status      OrderStatus
	Operation   string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s order %s in status %s", e.Operation, e.OrderNumber, e.Status)
}

func (e *StateError) Is(target error) bool { return target == ErrInvalidState }

// InsufficientStockError names the first product that cannot cover the request
type InsufficientStockError struct {
	ProductID int64
	SKU       string
	Name      string
	Available int
	Required  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (%s): available=%d, required=%d",
		e.Name, e.SKU, e.Available, e.Required)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// NotFoundError reports a missing order, item, product or customer
type NotFoundError struct {
	Entity string
	ID     interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFound builds a NotFoundError
func NewNotFound(entity string, id interface{}) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError reports a uniqueness or reference violation
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return "conflict: " + e.Reason }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// NewConflict builds a ConflictError
func NewConflict(reason string) error {
	return &ConflictError{Reason: reason}
}

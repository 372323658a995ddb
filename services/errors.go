package services

import (
	"errors"
	"fmt"
)

// Domain errors. Storage failures are wrapped separately and never match these.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrAlreadyActive     = fmt.Errorf("%w: table is already active", ErrConflict)
	ErrInvalidState      = errors.New("invalid state")
	ErrNoActiveSession   = fmt.Errorf("%w: no active session found", ErrInvalidState)
	ErrNotCountdownMode  = fmt.Errorf("%w: time extensions only allowed for countdown mode", ErrInvalidState)
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrValidation        = errors.New("validation failed")
)

// Shortfall describes one item that cannot cover the requested quantity.
type Shortfall struct {
	ProductID         uint   `json:"product_id"`
	ProductName       string `json:"product_name"`
	RequiredQuantity  int    `json:"required_quantity"`
	AvailableQuantity int    `json:"available_quantity"`
}

// InsufficientStockError carries every shortfall found before any stock was touched.
type InsufficientStockError struct {
	Shortfalls []Shortfall
}

func (e *InsufficientStockError) Error() string {
	if len(e.Shortfalls) == 1 {
		s := e.Shortfalls[0]
		return fmt.Sprintf("insufficient stock for %s: required %d, available %d",
			s.ProductName, s.RequiredQuantity, s.AvailableQuantity)
	}
	return fmt.Sprintf("insufficient stock for %d items", len(e.Shortfalls))
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// ValidationError represents malformed input on a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func notFound(what string, id any) error {
	return fmt.Errorf("%s %v: %w", what, id, ErrNotFound)
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict returns true for duplicate or already-active errors.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// ShortfallsOf extracts the shortfall list from an insufficient stock error.
func ShortfallsOf(err error) []Shortfall {
	var stockErr *InsufficientStockError
	if errors.As(err, &stockErr) {
		return stockErr.Shortfalls
	}
	return nil
}

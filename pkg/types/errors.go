package types

import "errors"

// Domain errors shared across packages
var (
	// Lookup errors
	ErrNotFound  = errors.New("not found")
	ErrEmptyName = errors.New("name cannot be empty")

	// Cache errors
	ErrOversizedEntry = errors.New("entry exceeds cache memory budget")
	ErrInvalidTTL     = errors.New("ttl must be positive")

	// Document validation errors
	ErrMissingDocumentID = errors.New("document ID is required")
	ErrMissingTitle      = errors.New("document title is required")
	ErrInvalidCategory   = errors.New("invalid document category")
)

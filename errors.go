package citetrack

import (
	"errors"

	"github.com/helixml/citetrack/internal/domain"
)

// Exported errors for library consumers. Service errors match these with
// errors.Is.
var (
	// ErrValidation indicates the request was malformed.
	ErrValidation = domain.ErrValidation

	// ErrNotFound indicates a requested resource was not found or belongs to
	// another tenant.
	ErrNotFound = domain.ErrNotFound

	// ErrConflict indicates a conflict with existing data.
	ErrConflict = domain.ErrConflict

	// ErrUpstream indicates a store or transport failure.
	ErrUpstream = domain.ErrUpstream

	// ErrNoDatabase indicates no database was configured.
	ErrNoDatabase = errors.New("citetrack: no database configured")

	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("citetrack: client is closed")
)

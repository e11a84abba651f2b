package core

import (
	"errors"
	"fmt"

	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/schema"
)

// Error kinds returned by the Store. Each returned error wraps one of these
// together with the underlying cause, so errors.Is matches both.
var (
	ErrLoad     = errors.New("could not load contacts")
	ErrNotFound = errors.New("contact not found")
	ErrFetch    = errors.New("could not fetch contact")
	ErrCreate   = errors.New("could not create contact")
	ErrUpdate   = errors.New("could not update contact")
	ErrDelete   = errors.New("could not delete contact")
)

// kindFor maps an operation to its error kind.
func kindFor(op schema.Operation) error {
	switch op {
	case schema.LoadOp:
		return ErrLoad
	case schema.GetOp:
		return ErrFetch
	case schema.CreateOp:
		return ErrCreate
	case schema.UpdateOp:
		return ErrUpdate
	case schema.DeleteOp:
		return ErrDelete
	default:
		return ErrFetch
	}
}

// wrapRemote classifies a remote failure for op. A remote 404 also matches ErrNotFound.
func wrapRemote(op schema.Operation, err error) error {
	kind := kindFor(op)
	if errors.Is(err, contract.ErrNotFound) {
		if op == schema.GetOp {
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return fmt.Errorf("%w: %w: %w", kind, ErrNotFound, err)
	}
	return fmt.Errorf("%w: %w", kind, err)
}

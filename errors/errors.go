// Package errors provides error handling for duet.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "check the expression for unbalanced parentheses")
//
//	// Check errors
//	if errors.Is(err, errors.ErrSyncTimeout) {
//	    // handle timeout
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Common sentinel errors for use across duet.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrUnknownNodeKind indicates a visual node kind with no conversion rule.
	// Conversion degrades the subtree to a placeholder instead of failing.
	ErrUnknownNodeKind = New("unknown node kind")

	// ErrUnknownOperator indicates an AST operator with no rendering rule
	ErrUnknownOperator = New("unknown operator")

	// ErrSyncTimeout indicates an in-flight sync exceeded its deadline
	ErrSyncTimeout = New("sync timed out")

	// ErrEditRejected indicates an edit arrived on a side that is read-only
	// in the current sync state
	ErrEditRejected = New("edit rejected")

	// ErrDestroyed indicates use of a timing controller after Destroy
	ErrDestroyed = New("controller destroyed")
)

// IsUnknownNodeKind checks if an error is or wraps ErrUnknownNodeKind
func IsUnknownNodeKind(err error) bool {
	return err != nil && Is(err, ErrUnknownNodeKind)
}

// IsSyncTimeout checks if an error is or wraps ErrSyncTimeout
func IsSyncTimeout(err error) bool {
	return err != nil && Is(err, ErrSyncTimeout)
}

// WrapUnknownNodeKind wraps a kind name as an unknown-node-kind error
func WrapUnknownNodeKind(kind string) error {
	return Wrapf(ErrUnknownNodeKind, "kind %q", kind)
}

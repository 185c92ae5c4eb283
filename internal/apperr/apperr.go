// Package apperr defines the error kinds shared by the deferred-result primitive,
// the repository adapters and the sync orchestrator.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error condition. Kinds are strings so they log and serialize naturally.
type Kind string

const (
	// KindNotImplemented marks a collaborator that intentionally provides no behavior for an operation.
	KindNotImplemented Kind = "NOT_IMPLEMENTED"

	// KindCollaboratorFailure marks a failed network or storage call. The cause is kept in Err.
	KindCollaboratorFailure Kind = "COLLABORATOR_FAILURE"

	// KindContractViolation marks a programming defect: settling a future twice,
	// or a collaborator returning fewer entities than it was given.
	KindContractViolation Kind = "CONTRACT_VIOLATION"

	// KindNotFound indicates the addressed entity does not exist.
	KindNotFound Kind = "NOT_FOUND"

	// KindInvalidInput indicates the caller supplied malformed input.
	KindInvalidInput Kind = "INVALID_INPUT"
)

// Error is the concrete error type carrying a Kind.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotImplemented returns an error for an operation a placeholder collaborator does not support.
func NotImplemented(op string) *Error {
	return &Error{Kind: KindNotImplemented, Op: op}
}

// CollaboratorFailure wraps the cause of a failed repository call.
// A nil cause yields nil so adapters can wrap unconditionally.
func CollaboratorFailure(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: KindCollaboratorFailure, Op: op, Err: cause}
}

// ContractViolation reports misuse of the primitive or a broken collaborator.
func ContractViolation(op, format string, args ...any) *Error {
	return &Error{Kind: KindContractViolation, Op: op, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing entity.
func NotFound(op, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf(format, args...)}
}

// InvalidInput reports malformed caller input.
func InvalidInput(op, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Op: op, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err's chain contains an *Error of the given kind.
func IsKind(err error, k Kind) bool {
	var e *Error
	for err != nil {
		if errors.As(err, &e) {
			if e.Kind == k {
				return true
			}
			err = e.Err
			continue
		}
		return false
	}
	return false
}

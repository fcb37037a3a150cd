// Package domainerrors carries coded errors across layers. Services return
// *Error values; transports translate codes into status codes and bodies.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code is a stable, client-visible error identifier.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeNotFound           Code = "not_found"
	CodeUnauthorized       Code = "unauthorized"
	CodeConflict           Code = "conflict"
	CodeInternal           Code = "internal_error"
	CodeTimeout            Code = "timeout"
	CodeOverflow           Code = "overflow"
	CodeInvariantViolation Code = "invariant_violation"

	// Registry codes.
	CodeDuplicateID           Code = "duplicate_id"
	CodeAlreadyExists         Code = "already_exists"
	CodeAlreadyVerified       Code = "already_verified"
	CodeOwnerAlreadySet       Code = "owner_already_set"
	CodeEscrowHeld            Code = "escrow_held"
	CodeInsufficientDeposit   Code = "insufficient_deposit"
	CodeNoPendingMint         Code = "no_pending_mint"
	CodeIdentityMismatch      Code = "identity_mismatch"
	CodeRemoteResolutionFault Code = "remote_resolution_fault"
)

// Error is a coded domain error. Err, when set, is the underlying cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a coded error.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// As extracts the outermost *Error from err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// CodeOf returns the outermost code in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	if de, ok := As(err); ok {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries code anywhere in its chain.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// Is is shorthand for HasCode.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// HTTPStatus maps a code to its HTTP status.
func HTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInvalidInput, CodeInsufficientDeposit, CodeOverflow:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeIdentityMismatch:
		return http.StatusUnauthorized
	case CodeNotFound, CodeNoPendingMint:
		return http.StatusNotFound
	case CodeConflict, CodeDuplicateID, CodeAlreadyExists, CodeAlreadyVerified, CodeOwnerAlreadySet, CodeEscrowHeld:
		return http.StatusConflict
	case CodeRemoteResolutionFault:
		return http.StatusBadGateway
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

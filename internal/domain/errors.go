package domain

import (
	"errors"
	"fmt"
)

// Kind classifies failures surfaced to the poll loop.
type Kind string

const (
	KindUnknown          Kind = "unknown"
	KindInvalidWatermark Kind = "invalid_watermark"
	KindTransport        Kind = "transport"
	KindDecode           Kind = "decode"
	KindMalformedRecord  Kind = "malformed_record"
	KindUnknownStatus    Kind = "unknown_status"
	KindDelivery         Kind = "delivery"
)

// Error carries a failure kind together with the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// NewError wraps err with a kind and an operation name.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds an Error from a formatted cause.
func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UnknownStatusError is returned for a submission whose status is outside the known set.
type UnknownStatusError struct {
	Name   string
	Status Status
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("homework %q has unknown status %q", e.Name, e.Status)
}

// KindOf extracts the failure kind from an error chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var unknown *UnknownStatusError
	if errors.As(err, &unknown) {
		return KindUnknownStatus
	}

	var derr *Error
	if errors.As(err, &derr) {
		return derr.Kind
	}

	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

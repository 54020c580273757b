// Package apperr defines the error taxonomy shared by every usecase:
// caller errors (validation, conflict, not-found) and collaborator errors
// (store, asset provider). Handlers map kinds to transport status codes;
// usecases never branch on message text.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindUnknown is an unclassified internal error.
	KindUnknown Kind = iota
	// KindValidation is malformed, missing or contradictory input. Never retried.
	KindValidation
	// KindConflict is a uniqueness violation; the caller must pick another value.
	KindConflict
	// KindNotFound means no live entity matches the id, slug or category.
	KindNotFound
	// KindStoreUnavailable is a transient store failure, retryable with backoff.
	KindStoreUnavailable
	// KindAssetProvider is an upload or release failure at the asset provider.
	KindAssetProvider
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindStoreUnavailable:
		return "store_unavailable"
	case KindAssetProvider:
		return "asset_provider"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error without losing its chain.
func Wrap(kind Kind, err error, message string) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindUnknown if err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the human-readable message of err, falling back to
// err.Error() for unclassified errors.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func IsValidation(err error) bool       { return KindOf(err) == KindValidation }
func IsConflict(err error) bool         { return KindOf(err) == KindConflict }
func IsNotFound(err error) bool         { return KindOf(err) == KindNotFound }
func IsStoreUnavailable(err error) bool { return KindOf(err) == KindStoreUnavailable }
func IsAssetProvider(err error) bool    { return KindOf(err) == KindAssetProvider }

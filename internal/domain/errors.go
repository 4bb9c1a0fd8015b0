package domain

import (
	"errors"
	"fmt"
)

// Validation sentinels. Raised where the offending value is constructed.
var (
	// ErrInvalidField signals a field name outside the FieldName syntax.
	ErrInvalidField = errors.New("invalid field name")
	// ErrInvalidType signals a type outside the supported type set.
	ErrInvalidType = errors.New("invalid field type")
	// ErrInvalidGetter signals a getter that is not a valid identifier.
	ErrInvalidGetter = errors.New("invalid getter")
	// ErrInvalidClass signals a malformed class identifier.
	ErrInvalidClass = errors.New("invalid class")
	// ErrMissingKey signals a mandatory metadata key that was not provided.
	ErrMissingKey = errors.New("missing mandatory key")
	// ErrUnknownKey signals a metadata key that is not understood.
	ErrUnknownKey = errors.New("unknown key")
)

var (
	// ErrNotObject signals a non-object argument where an object is required.
	ErrNotObject = errors.New("expected an object")
	// ErrCacheMiss signals a cache read when nothing is cached.
	ErrCacheMiss = errors.New("catalog cache miss")
	// ErrCacheCorrupt signals a persisted catalog that cannot be decoded.
	ErrCacheCorrupt = errors.New("catalog cache corrupt")
	// ErrUnknownClass signals a class identifier that is not registered.
	ErrUnknownClass = errors.New("unknown class")
	// ErrUnknownGetter signals a getter the object does not expose.
	ErrUnknownGetter = errors.New("unknown getter")
	// ErrAlreadyRegistered signals a duplicate class registration.
	ErrAlreadyRegistered = errors.New("class already registered")
)

var (
	// ErrEmbeddingProviderError signals a failed call to the embedding API.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingQuotaExceeded signals an exhausted embedding token budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
)

var validationSentinels = []error{
	ErrInvalidField,
	ErrInvalidType,
	ErrInvalidGetter,
	ErrInvalidClass,
	ErrMissingKey,
	ErrUnknownKey,
}

// ValidationError wraps a validation sentinel with the rejected value.
type ValidationError struct {
	Kind   error
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s %q", e.Kind.Error(), e.Value)
	}
	return fmt.Sprintf("%s %q: %s", e.Kind.Error(), e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Kind }

// NewValidationError creates a validation error for kind (one of the validation sentinels).
func NewValidationError(kind error, value, reason string) error {
	return &ValidationError{Kind: kind, Value: value, Reason: reason}
}

// IsValidation reports whether err carries any validation sentinel.
func IsValidation(err error) bool {
	for _, s := range validationSentinels {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}

package dataextract

import "github.com/kailas-cloud/dataextract/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidField           = domain.ErrInvalidField
	ErrInvalidType            = domain.ErrInvalidType
	ErrInvalidGetter          = domain.ErrInvalidGetter
	ErrInvalidClass           = domain.ErrInvalidClass
	ErrMissingKey             = domain.ErrMissingKey
	ErrUnknownKey             = domain.ErrUnknownKey
	ErrNotObject              = domain.ErrNotObject
	ErrCacheMiss              = domain.ErrCacheMiss
	ErrCacheCorrupt           = domain.ErrCacheCorrupt
	ErrUnknownClass           = domain.ErrUnknownClass
	ErrUnknownGetter          = domain.ErrUnknownGetter
	ErrAlreadyRegistered      = domain.ErrAlreadyRegistered
	ErrEmbeddingQuotaExceeded = domain.ErrEmbeddingQuotaExceeded
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
)

// IsValidation reports whether err was caused by malformed metadata or input.
func IsValidation(err error) bool { return domain.IsValidation(err) }

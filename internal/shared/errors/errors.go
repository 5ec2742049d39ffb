package errors

import "errors"

// Domain errors
var (
	// Acquisition errors
	ErrInvalidURL          = errors.New("url must be absolute with a scheme and host")
	ErrHeadersUnavailable  = errors.New("response headers are not enumerable")
	ErrNoHeaderSources     = errors.New("no header sources configured")
	ErrHeaderBlockTooLarge = errors.New("header block exceeds size limit")
	ErrEmptyHeaderBlock    = errors.New("header block contains no parseable lines")
	ErrMalformedStatusLine = errors.New("malformed HTTP status line")
	ErrTooManyRedirects    = errors.New("too many redirects")

	// Catalog errors
	ErrEmptyCatalog      = errors.New("catalog has no entries")
	ErrZeroTotalWeight   = errors.New("catalog total weight must be positive")
	ErrInvalidWeight     = errors.New("header weight must be positive")
	ErrEmptyHeaderKey    = errors.New("header key cannot be empty")
	ErrDuplicateHeader   = errors.New("duplicate header key in catalog")
	ErrCatalogUnreadable = errors.New("catalog file could not be decoded")

	// Validation errors
	ErrUnsupportedScheme = errors.New("only http and https targets are supported")
	ErrEmptyTarget       = errors.New("target cannot be empty")
)

package headers

import (
	"fmt"

	serrors "github.com/khanhnv2901/secheaders/internal/shared/errors"
)

// FetchError reports that no header source could reach the target.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch headers for %s failed", e.URL)
	}
	return fmt.Sprintf("fetch headers for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a raw header block with no parseable content.
type ParseError struct {
	Reason string
	Block  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse header block: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return serrors.ErrEmptyHeaderBlock }

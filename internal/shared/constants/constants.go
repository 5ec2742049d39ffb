package constants

import "time"

const (
	// DefaultTimeout bounds a single analysis (both acquisition attempts).
	DefaultTimeout = 10 * time.Second
	// DefaultDisplayLimit is how many characters of a header value a report shows.
	DefaultDisplayLimit = 60
	// DisplayContinuation is appended to truncated header values.
	DisplayContinuation = "..."
)

const (
	// MaxHeaderBlockBytes caps the raw header section read by the fallback transport.
	MaxHeaderBlockBytes = 64 << 10
	// MaxRedirects is how many Location hops the fallback follows, matching net/http.
	MaxRedirects = 10
	// UserAgent is sent on every outbound request.
	UserAgent = "secheaders/1.0 (+https://github.com/khanhnv2901/secheaders)"
)

const (
	// DefaultConcurrency is the number of targets analyzed in parallel.
	DefaultConcurrency = 4
	// DefaultRateLimit is the global requests-per-second budget for batch runs.
	DefaultRateLimit = 5
)

package checker

import (
	"net/url"
	"strings"

	serrors "github.com/khanhnv2901/secheaders/internal/shared/errors"
)

// TargetInfo contains parsed target information
type TargetInfo struct {
	Original string // Original target string
	Scheme   string // http or https after normalization
	Host     string // Hostname (without protocol, path, port)
	Port     string // Port if specified
	Path     string // Path if specified
	FullURL  string // Full normalized URL
}

// ParseTarget parses a target string into structured components.
// This handles various input formats:
//   - example.com
//   - http://example.com
//   - https://example.com:443/path
//   - example.com:8080
//
// Targets without a scheme default to https.
func ParseTarget(target string) *TargetInfo {
	target = strings.TrimSpace(target)
	info := &TargetInfo{
		Original: target,
	}

	parsed, err := url.Parse(target)

	// If parsing fails OR scheme is empty OR scheme doesn't look like a real scheme
	// (contains dots, or is really a host:port pair) then prepend https:// and parse again
	if err != nil || parsed.Scheme == "" || strings.Contains(parsed.Scheme, ".") || looksLikeHostPort(parsed) {
		parsed, err = url.Parse("https://" + target)
		if err != nil {
			parsed = nil
		}
	}

	if parsed != nil {
		info.Scheme = strings.ToLower(parsed.Scheme)
		info.Host = parsed.Hostname()
		info.Port = parsed.Port()
		info.Path = parsed.Path
		info.FullURL = parsed.String()
	}

	return info
}

// looksLikeHostPort catches "example.com:8080" and "localhost:8080", which
// url.Parse reads as scheme "localhost" with opaque "8080".
func looksLikeHostPort(u *url.URL) bool {
	if u.Opaque == "" {
		return false
	}
	for _, r := range u.Opaque {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsWebURL reports whether the scheme is http or https.
func (t *TargetInfo) IsWebURL() bool {
	return t.Scheme == "http" || t.Scheme == "https"
}

// NormalizeTarget returns the absolute http(s) URL for target, or an error
// when the target is empty or uses another scheme.
func NormalizeTarget(target string) (string, error) {
	if strings.TrimSpace(target) == "" {
		return "", serrors.ErrEmptyTarget
	}
	info := ParseTarget(target)
	if info.Host == "" || !info.IsWebURL() {
		return "", serrors.ErrUnsupportedScheme
	}
	return info.FullURL, nil
}

// ExtractHost extracts just the hostname from a target.
func ExtractHost(target string) string {
	return ParseTarget(target).Host
}

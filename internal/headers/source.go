package headers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/khanhnv2901/secheaders/internal/shared/constants"
	serrors "github.com/khanhnv2901/secheaders/internal/shared/errors"
)

// HeaderSource is one strategy for obtaining the response headers of a URL.
type HeaderSource interface {
	Headers(ctx context.Context, rawURL string) (HeaderMap, error)
}

// HeaderSourceFunc adapts a function to HeaderSource.
type HeaderSourceFunc func(ctx context.Context, rawURL string) (HeaderMap, error)

// Headers calls f.
func (f HeaderSourceFunc) Headers(ctx context.Context, rawURL string) (HeaderMap, error) {
	return f(ctx, rawURL)
}

// DirectSource reads structured headers from a HEAD response.
type DirectSource struct {
	Client *http.Client
}

// Headers issues a HEAD request and returns the enumerable response headers.
// It returns ErrHeadersUnavailable when the response exposes none.
func (d *DirectSource) Headers(ctx context.Context, rawURL string) (HeaderMap, error) {
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", constants.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	// HEAD responses carry no body; drain anything a misbehaving server sends
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if len(resp.Header) == 0 {
		return nil, serrors.ErrHeadersUnavailable
	}
	return FromHTTPHeader(resp.Header), nil
}

// RawTransport opens header-only exchanges that expose the raw header block.
type RawTransport interface {
	Open(ctx context.Context, rawURL string) (RawExchange, error)
}

// RawExchange is an in-flight request. AwaitHeaders blocks until the
// headers-received milestone and returns the raw block; Status reports the
// final status code after that. Abort cancels the transfer so no body is
// downloaded.
type RawExchange interface {
	AwaitHeaders(ctx context.Context) (string, error)
	Status() int
	Abort() error
}

// RawSource parses the raw header block produced by a RawTransport.
// Redirects are followed like net/http does, so both sources score the
// same final resource.
type RawSource struct {
	Transport RawTransport
	// MaxRedirects caps Location hops. Zero means constants.MaxRedirects;
	// a negative value disables following.
	MaxRedirects int
}

// Headers waits for the header block, aborts the exchange and parses it.
func (r *RawSource) Headers(ctx context.Context, rawURL string) (HeaderMap, error) {
	if r.Transport == nil {
		return nil, fmt.Errorf("raw source: %w", serrors.ErrNoHeaderSources)
	}

	maxHops := r.MaxRedirects
	if maxHops == 0 {
		maxHops = constants.MaxRedirects
	}

	current := rawURL
	for hops := 0; ; hops++ {
		status, hdrs, err := r.fetch(ctx, current)
		if err != nil {
			return nil, err
		}

		next, ok := redirectTarget(status, hdrs, current)
		if !ok || maxHops < 0 {
			return hdrs, nil
		}
		if hops >= maxHops {
			return nil, fmt.Errorf("%s: %w", rawURL, serrors.ErrTooManyRedirects)
		}
		current = next
	}
}

func (r *RawSource) fetch(ctx context.Context, rawURL string) (int, HeaderMap, error) {
	exchange, err := r.Transport.Open(ctx, rawURL)
	if err != nil {
		return 0, nil, err
	}

	block, err := exchange.AwaitHeaders(ctx)
	_ = exchange.Abort()
	if err != nil {
		return 0, nil, err
	}

	hdrs, err := ParseBlock(block)
	if err != nil {
		return 0, nil, err
	}
	return exchange.Status(), hdrs, nil
}

// redirectTarget resolves the Location of a redirect response against base.
// Only http and https targets are followed.
func redirectTarget(status int, hdrs HeaderMap, base string) (string, bool) {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
	default:
		return "", false
	}

	location := strings.TrimSpace(hdrs.Get("location"))
	if location == "" {
		return "", false
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	next, err := baseURL.Parse(location)
	if err != nil || (next.Scheme != "http" && next.Scheme != "https") {
		return "", false
	}
	return next.String(), true
}

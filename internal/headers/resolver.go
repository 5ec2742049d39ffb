package headers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/khanhnv2901/secheaders/internal/shared/constants"
	serrors "github.com/khanhnv2901/secheaders/internal/shared/errors"
	"go.uber.org/zap"
)

// Resolver obtains a HeaderMap by trying its sources in order.
type Resolver struct {
	sources []HeaderSource
	logger  *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger attaches a logger used for fallback diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver returns a resolver over the given sources, tried in order.
func NewResolver(sources []HeaderSource, opts ...Option) *Resolver {
	r := &Resolver{
		sources: append([]HeaderSource(nil), sources...),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewDefaultResolver builds the standard two-strategy resolver: a direct HEAD
// read followed by the raw header-block fallback. timeout bounds each source
// attempt; zero means constants.DefaultTimeout.
func NewDefaultResolver(timeout time.Duration, opts ...Option) *Resolver {
	if timeout <= 0 {
		timeout = constants.DefaultTimeout
	}
	client := &http.Client{
		Timeout: timeout,
	}
	return NewResolver([]HeaderSource{
		&DirectSource{Client: client},
		&RawSource{Transport: &DialTransport{Timeout: timeout}},
	}, opts...)
}

// Resolve returns the normalized headers for rawURL. It fails with
// *FetchError when no source can reach the target and with *ParseError when
// the last source produced an unparseable header block.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (HeaderMap, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("%w: %v", serrors.ErrInvalidURL, err)}
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, &FetchError{URL: rawURL, Err: serrors.ErrInvalidURL}
	}
	if len(r.sources) == 0 {
		return nil, &FetchError{URL: rawURL, Err: serrors.ErrNoHeaderSources}
	}

	var lastErr error
	for i, src := range r.sources {
		if err := ctx.Err(); err != nil {
			return nil, &FetchError{URL: rawURL, Err: err}
		}

		headers, err := src.Headers(ctx, rawURL)
		if err == nil {
			r.logger.Debug("headers resolved",
				zap.String("url", rawURL),
				zap.Int("source", i),
				zap.Int("count", len(headers)),
			)
			return headers, nil
		}

		lastErr = err
		r.logger.Debug("header source failed",
			zap.String("url", rawURL),
			zap.Int("source", i),
			zap.Error(err),
		)
	}

	var parseErr *ParseError
	if errors.As(lastErr, &parseErr) {
		return nil, parseErr
	}
	return nil, &FetchError{URL: rawURL, Err: lastErr}
}

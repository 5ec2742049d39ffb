package headers

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/khanhnv2901/secheaders/internal/shared/constants"
	serrors "github.com/khanhnv2901/secheaders/internal/shared/errors"
)

// DialTransport is a RawTransport that speaks HTTP/1.1 over a plain or TLS
// connection and stops reading at the end of the header section.
type DialTransport struct {
	Dialer         *net.Dialer
	TLSConfig      *tls.Config
	MaxHeaderBytes int
	// Timeout bounds the whole exchange from dial to the end of the header
	// section. Zero means constants.DefaultTimeout.
	Timeout time.Duration
}

// Open dials the target and sends a HEAD request. The returned exchange owns
// the connection until Abort is called.
func (t *DialTransport) Open(ctx context.Context, rawURL string) (RawExchange, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	scheme := strings.ToLower(u.Scheme)
	port := u.Port()
	switch scheme {
	case "http":
		if port == "" {
			port = "80"
		}
	case "https":
		if port == "" {
			port = "443"
		}
	default:
		return nil, fmt.Errorf("raw transport %q: %w", u.Scheme, serrors.ErrUnsupportedScheme)
	}

	timeout := t.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultTimeout
	}
	deadline := time.Now().Add(timeout)

	dialer := t.Dialer
	if dialer == nil {
		dialer = &net.Dialer{}
	}
	dialCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	conn, err := dialer.DialContext(dialCtx, "tcp", net.JoinHostPort(u.Hostname(), port))
	if err != nil {
		return nil, err
	}
	// covers the handshake, the request write and every header read
	if err := conn.SetDeadline(deadline); err != nil {
		_ = conn.Close()
		return nil, err
	}

	if scheme == "https" {
		cfg := &tls.Config{MinVersion: tls.VersionTLS12}
		if t.TLSConfig != nil {
			cfg = t.TLSConfig.Clone()
		}
		if cfg.ServerName == "" {
			cfg.ServerName = u.Hostname()
		}
		tlsConn := tls.Client(conn, cfg)
		if err := tlsConn.HandshakeContext(dialCtx); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("tls handshake: %w", err)
		}
		conn = tlsConn
	}

	if _, err := io.WriteString(conn, headRequest(u)); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("write request: %w", err)
	}

	limit := t.MaxHeaderBytes
	if limit <= 0 {
		limit = constants.MaxHeaderBlockBytes
	}

	return &dialExchange{
		conn: conn,
		// one byte past the limit is enough to tell an oversized block apart
		reader:   bufio.NewReader(io.LimitReader(conn, int64(limit)+1)),
		limit:    limit,
		deadline: deadline,
	}, nil
}

func headRequest(u *url.URL) string {
	var b strings.Builder
	fmt.Fprintf(&b, "HEAD %s HTTP/1.1\r\n", u.RequestURI())
	fmt.Fprintf(&b, "Host: %s\r\n", u.Host)
	fmt.Fprintf(&b, "User-Agent: %s\r\n", constants.UserAgent)
	b.WriteString("Accept: */*\r\n")
	b.WriteString("Cache-Control: no-cache\r\n")
	b.WriteString("Connection: close\r\n\r\n")
	return b.String()
}

type dialExchange struct {
	conn      net.Conn
	reader    *bufio.Reader
	limit     int
	deadline  time.Time
	status    int
	abortOnce sync.Once
	abortErr  error
}

// AwaitHeaders reads the status line and header section. Informational 1xx
// responses are skipped. The status line is not part of the returned block.
func (e *dialExchange) AwaitHeaders(ctx context.Context) (string, error) {
	if deadline, ok := ctx.Deadline(); ok && deadline.Before(e.deadline) {
		_ = e.conn.SetReadDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = e.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	read := 0
	for {
		status, err := e.readLine(&read)
		if err != nil {
			return "", e.wrap(ctx, err)
		}
		code, err := parseStatusLine(status)
		if err != nil {
			return "", err
		}

		var lines []string
		for {
			line, err := e.readLine(&read)
			if err != nil {
				return "", e.wrap(ctx, err)
			}
			if line == "" {
				break
			}
			lines = append(lines, line)
		}

		if code < 200 {
			continue
		}
		e.status = code
		return strings.Join(lines, "\r\n") + "\r\n", nil
	}
}

func (e *dialExchange) readLine(read *int) (string, error) {
	line, err := e.reader.ReadString('\n')
	*read += len(line)
	if *read > e.limit {
		return "", serrors.ErrHeaderBlockTooLarge
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Status returns the final status code once AwaitHeaders has succeeded.
func (e *dialExchange) Status() int {
	return e.status
}

func (e *dialExchange) wrap(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("read headers: %w", err)
}

// Abort closes the connection. It is safe to call more than once.
func (e *dialExchange) Abort() error {
	e.abortOnce.Do(func() {
		e.abortErr = e.conn.Close()
	})
	return e.abortErr
}

func parseStatusLine(line string) (int, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || !strings.HasPrefix(fields[0], "HTTP/") || len(fields[1]) != 3 {
		return 0, fmt.Errorf("%w: %q", serrors.ErrMalformedStatusLine, line)
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil || code < 100 {
		return 0, fmt.Errorf("%w: %q", serrors.ErrMalformedStatusLine, line)
	}
	return code, nil
}

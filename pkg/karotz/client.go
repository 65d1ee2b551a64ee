// Package karotz is a client for the OpenKarotz CGI control API.
//
// Every method issues a single GET against http://<host>/cgi-bin/<command>,
// decodes the JSON answer and returns a typed result. Device-reported failures
// come back as false or -1; errors are reserved for invalid arguments,
// unsupported commands and transport problems.
package karotz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openkarotz-hq/karotz-go/pkg/httpclient"
)

const (
	cgiPrefix      = "/cgi-bin"
	defaultTimeout = 10 * time.Second
	maxSnippetLen  = 512
)

// Client talks to a single device. It is safe for concurrent use.
type Client struct {
	transport httpclient.Client
	host      Hostname
	log       Logger
}

type options struct {
	log       Logger
	timeout   time.Duration
	userAgent string
}

// Option configures a Client.
type Option func(*options)

// WithLogger sets the diagnostic sink. The caller owns its lifecycle.
func WithLogger(log Logger) Option {
	return func(o *options) { o.log = log }
}

// WithTimeout sets the request timeout of the transport built by New.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithUserAgent sets the User-Agent of the transport built by New.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = strings.TrimSpace(ua) }
}

func buildOptions(opts []Option) options {
	o := options{timeout: defaultTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	o.log = ensureLogger(o.log)
	if o.timeout <= 0 {
		o.timeout = defaultTimeout
	}
	return o
}

// New validates hostname and returns a client whose transport accepts the
// device's self-signed certificate.
func New(hostname string, opts ...Option) (*Client, error) {
	host, err := ParseHostname(hostname)
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	tlsCfg, err := selfSignedTLSConfig(host.Host())
	if err != nil {
		return nil, err
	}
	transport := httpclient.NewRestyClient(o.timeout,
		httpclient.WithTLSConfig(tlsCfg),
		httpclient.WithUserAgent(o.userAgent),
	)
	return &Client{transport: transport, host: host, log: o.log}, nil
}

// NewWithTransport binds an externally built transport to host.
func NewWithTransport(transport httpclient.Client, host Hostname, opts ...Option) (*Client, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: transport", ErrNilArgument)
	}
	if host.IsZero() {
		return nil, fmt.Errorf("%w: hostname", ErrNilArgument)
	}
	o := buildOptions(opts)
	return &Client{transport: transport, host: host, log: o.log}, nil
}

// Hostname returns the device address the client is bound to.
func (c *Client) Hostname() Hostname { return c.host }

// executeGet sends GET /cgi-bin/<pathAndQuery> and returns the raw body.
func (c *Client) executeGet(ctx context.Context, pathAndQuery string) ([]byte, error) {
	sanitized, err := SanitizePath(pathAndQuery)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	target := "http://" + c.host.String() + cgiPrefix + sanitized
	c.log.DebugObj("karotz request", "karotz_request", map[string]any{
		"host": c.host.String(),
		"path": sanitized,
	})

	resp, err := c.transport.Get(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", sanitized, err)
	}

	body := resp.Body()
	if status := resp.StatusCode(); status != http.StatusOK {
		c.log.WarnObj("karotz returned non-200 status", "karotz_status", map[string]any{
			"host":   c.host.String(),
			"path":   sanitized,
			"status": status,
			"body":   responseSnippet(body),
		})
		if status == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: %s (possibly a command from a newer api version)", ErrUnsupportedOperation, sanitized)
		}
	}

	c.log.DebugObj("karotz response", "karotz_response", map[string]any{
		"path": sanitized,
		"body": responseSnippet(body),
	})
	return body, nil
}

// call executes req, decodes the answer into out and applies the command's success rule.
func (c *Client) call(ctx context.Context, req request, out outcome) (bool, error) {
	body, err := c.executeGet(ctx, req.pathAndQuery())
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, req.cmd.name, err)
	}
	return out.succeeded(req.cmd.rule), nil
}

// result runs a status-convention command.
func (c *Client) result(ctx context.Context, req request) (*Result, bool, error) {
	var res Result
	ok, err := c.call(ctx, req, &res)
	if err != nil {
		return nil, false, err
	}
	return &res, ok, nil
}

// succeeded runs a command whose only output is the success flag.
func (c *Client) succeeded(ctx context.Context, req request) (bool, error) {
	_, ok, err := c.result(ctx, req)
	return ok, err
}

func responseSnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "<empty>"
	}
	if len(s) > maxSnippetLen {
		return s[:maxSnippetLen] + "..."
	}
	return s
}

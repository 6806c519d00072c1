package httpclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/contre95/lyricsolid/src/features/config"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

const defaultTimeout = 10 * time.Second

// retryStatuses are the responses worth another attempt.
var retryStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// Client is the outbound HTTP client shared by the lyrics providers.
// It retries idempotent GETs with exponential backoff and optionally rate limits calls.
type Client struct {
	client    *retryablehttp.Client
	limiter   *rate.Limiter
	userAgent string
}

// Response is a fully read response body plus its status and headers.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// Truncated is set when the body was larger than the requested limit.
	Truncated bool
}

// OK reports a 200 response.
func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

type requestOptions struct {
	timeout  time.Duration
	maxBytes int64
	headers  map[string]string
}

// RequestOption customizes a single Get call.
type RequestOption func(*requestOptions)

// WithTimeout bounds the whole call, retries included.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) { o.timeout = d }
}

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) { o.headers[key] = value }
}

// WithMaxBytes stops reading the body after n bytes and flags the response as truncated.
func WithMaxBytes(n int64) RequestOption {
	return func(o *requestOptions) { o.maxBytes = n }
}

// New creates a Client from the http configuration section.
func New(cfg config.HTTP) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		rc.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		rc.RetryWaitMax = cfg.RetryWaitMax
	}
	rc.CheckRetry = retryPolicy
	rc.Logger = slog.Default().With("component", "httpclient")

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(cfg.Burst, 1))
	}

	return &Client{client: rc, limiter: limiter, userAgent: cfg.UserAgent}
}

// retryPolicy retries transport failures and the transient statuses of GET requests.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	if resp.Request != nil && resp.Request.Method != http.MethodGet {
		return false, nil
	}
	return slices.Contains(retryStatuses, resp.StatusCode), nil
}

// Get fetches rawURL and reads the whole body. Non-2xx statuses are returned, not errors.
func (c *Client) Get(ctx context.Context, rawURL string, opts ...RequestOption) (*Response, error) {
	o := requestOptions{timeout: defaultTimeout, headers: map[string]string{}}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range o.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if o.maxBytes > 0 {
		body = io.LimitReader(resp.Body, o.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}
	if o.maxBytes > 0 && int64(len(data)) > o.maxBytes {
		out.Body = data[:o.maxBytes]
		out.Truncated = true
	}
	return out, nil
}

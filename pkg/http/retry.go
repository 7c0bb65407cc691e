package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

const (
	DefaultMaxRetries  = 3
	DefaultBaseBackoff = time.Millisecond * 500
	DefaultMaxBackoff  = time.Second * 30
)

var ErrRetriesExhausted = errors.New("retries exhausted")

// RetryClient retries requests answered with 429 or a 5xx status using
// exponential backoff, honoring Retry-After when the server sends one.
// Transport errors are returned immediately.
type RetryClient struct {
	client      HTTPClient
	baseBackoff time.Duration
	maxBackoff  time.Duration
	maxRetries  int
}

// ClientOption is a function that can be used to configure a RetryClient
type ClientOption func(*RetryClient)

// NewRetryClient creates a RetryClient. The client can be used concurrently.
func NewRetryClient(opts ...ClientOption) *RetryClient {
	c := &RetryClient{
		client:      http.DefaultClient,
		maxRetries:  DefaultMaxRetries,
		baseBackoff: DefaultBaseBackoff,
		maxBackoff:  DefaultMaxBackoff,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithMaxRetries sets the maximum number of retries after the first attempt
func WithMaxRetries(maxRetries int) ClientOption {
	return func(c *RetryClient) {
		c.maxRetries = maxRetries
	}
}

// WithBaseBackoff sets the first backoff interval
func WithBaseBackoff(baseBackoff time.Duration) ClientOption {
	return func(c *RetryClient) {
		c.baseBackoff = baseBackoff
	}
}

// WithMaxBackoff caps a single backoff interval
func WithMaxBackoff(maxBackoff time.Duration) ClientOption {
	return func(c *RetryClient) {
		c.maxBackoff = maxBackoff
	}
}

// WithHTTPClient sets the http client to use for the client
func WithHTTPClient(client HTTPClient) ClientOption {
	return func(c *RetryClient) {
		c.client = client
	}
}

// Do executes the request until it gets a non retryable response, retries run out
// or the request context is done. A retried response body is always closed.
func (c *RetryClient) Do(req *http.Request) (*http.Response, error) {
	policy := &retryAfterBackOff{BackOff: c.newBackOff()}
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(max(c.maxRetries, 0))), req.Context())

	var resp *http.Response
	var lastStatus int
	operation := func() error {
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return backoff.Permanent(err)
			}
			req.Body = body
		}

		r, err := c.client.Do(req)
		if err != nil {
			return backoff.Permanent(err)
		}

		if !retryable(r.StatusCode) {
			resp = r
			return nil
		}

		lastStatus = r.StatusCode
		policy.hint = retryAfter(r)
		r.Body.Close()
		return fmt.Errorf("retryable status %d", r.StatusCode)
	}

	err := backoff.Retry(operation, b)
	if err != nil {
		if lastStatus != 0 && req.Context().Err() == nil {
			return nil, fmt.Errorf("%w after %d retries: last status %d", ErrRetriesExhausted, c.maxRetries, lastStatus)
		}
		return nil, err
	}

	return resp, nil
}

func (c *RetryClient) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.baseBackoff
	b.MaxInterval = c.maxBackoff
	// retries are bounded by count
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// retryAfter parses a Retry-After header given in seconds
func retryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}

	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}

	return time.Duration(seconds) * time.Second
}

// retryAfterBackOff waits at least as long as the server asked for
type retryAfterBackOff struct {
	backoff.BackOff
	hint time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}

	if b.hint > next {
		next = b.hint
	}
	b.hint = 0
	return next
}

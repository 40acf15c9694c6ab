package downloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type GetOptions struct {
	MaxSize  int
	Timeout  time.Duration
	Cache    bool
	CacheTTL time.Duration

	// Number of extra attempts made after a transport error or a
	// 5xx response. Other statuses are never retried.
	Retries int
}

// A thing capable of downloading a file, optionally with caching, and
// of posting to an endpoint.
type Downloader interface {
	Get(ctx context.Context, url string, headers map[string]string, options GetOptions) ([]byte, error)

	// Posts are never cached or retried.
	Post(ctx context.Context, url string, headers map[string]string, contentType string, body []byte, options GetOptions) ([]byte, error)
}

// Returned when the server responds with anything but a 2xx status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d", e.Code)
}

// Gets a file. Doesn't cache. Provided as convenience for
// implementing custom Downloaders.
func HTTPGet(ctx context.Context, url string, headers map[string]string, options GetOptions) ([]byte, error) {
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(options.Retries)),
		ctx,
	)

	return backoff.RetryWithData(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		body, err := do(req, headers, options)
		if err != nil {
			var statusErr *StatusError
			if errors.As(err, &statusErr) && statusErr.Code < 500 {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return body, nil
	}, b)
}

// Posts body to url and returns the response body.
func HTTPPost(ctx context.Context, url string, headers map[string]string, contentType string, body []byte, options GetOptions) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	return do(req, headers, options)
}

func do(req *http.Request, headers map[string]string, options GetOptions) ([]byte, error) {
	client := &http.Client{
		Timeout: options.Timeout,
	}

	for k, v := range headers {
		req.Header.Add(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var reader io.Reader = resp.Body
	if options.MaxSize > 0 {
		reader = io.LimitReader(resp.Body, int64(options.MaxSize))
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	return body, nil
}

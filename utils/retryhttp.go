package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"mime/multipart"
	"net/http"
	"time"
)

// RetryOptions configures the retry behaviour of a RetryClient.
type RetryOptions struct {
	MaxRetries int           // additional attempts after the first; 0 takes the default of 3, negative disables retries
	BaseDelay  time.Duration // first backoff step (default 500ms)
	MaxDelay   time.Duration // backoff cap (default 10s)
	MaxJitter  time.Duration // random jitter added to each backoff (default 100ms)
	Silent     bool          // suppress failure logging; caller surfaces errors
}

// RetryClient performs HTTP requests with bounded retries and exponential
// backoff. Requests are rebuilt per attempt so bodies (JSON, multipart)
// can be safely re-sent. At most MaxRetries+1 network attempts are made.
// The client guarantees nothing about idempotency; callers that must not
// duplicate work consult their own checkpoint before re-issuing.
type RetryClient struct {
	client *http.Client
	opts   RetryOptions
}

// NewRetryClient creates a retrying client, filling unset options with
// defaults.
func NewRetryClient(opts RetryOptions) *RetryClient {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	} else if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.BaseDelay == 0 {
		opts.BaseDelay = 500 * time.Millisecond
	}
	if opts.MaxDelay == 0 {
		opts.MaxDelay = 10 * time.Second
	}
	if opts.MaxJitter == 0 {
		opts.MaxJitter = 100 * time.Millisecond
	}
	return &RetryClient{
		client: &http.Client{},
		opts:   opts,
	}
}

// Options returns the client's effective options.
func (c *RetryClient) Options() RetryOptions {
	return c.opts
}

// isRetryable reports whether a failed attempt is worth repeating.
func (c *RetryClient) isRetryable(resp *http.Response, err error) bool {
	if err != nil {
		// Network errors are always retried.
		return true
	}
	if resp == nil {
		return false
	}
	code := resp.StatusCode
	return (code >= 500 && code <= 599) ||
		code == http.StatusTooManyRequests ||
		code == http.StatusRequestTimeout
}

// backoffDelay computes the wait before attempt+1, growing exponentially
// from BaseDelay and capped at MaxDelay, plus jitter.
func (c *RetryClient) backoffDelay(attempt int) time.Duration {
	backoff := time.Duration(1<<uint(attempt)) * c.opts.BaseDelay
	if backoff > c.opts.MaxDelay {
		backoff = c.opts.MaxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(c.opts.MaxJitter)))
	return backoff + jitter
}

// Do runs the request returned by build, retrying retryable failures.
// build is invoked once per attempt so request bodies are fresh each time.
func (c *RetryClient) Do(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	var resp *http.Response
	var err error

	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var req *http.Request
		req, err = build()
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req = req.WithContext(ctx)

		resp, err = c.client.Do(req)
		if err == nil && !c.isRetryable(resp, nil) {
			return resp, nil
		}

		// Drain and close the body before retrying.
		if resp != nil && resp.Body != nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		if attempt == c.opts.MaxRetries {
			if err == nil {
				err = fmt.Errorf("request failed with status %s", resp.Status)
			} else {
				err = fmt.Errorf("request failed: %w", err)
			}
			if !c.opts.Silent {
				log.Printf("retryhttp: giving up on %s %s after %d attempts: %v",
					req.Method, req.URL.Path, attempt+1, err)
			}
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.backoffDelay(attempt)):
		}
	}

	return nil, fmt.Errorf("unexpected retry loop exit")
}

// DoJSON posts a JSON body and decodes the JSON response into out (when
// out is non-nil). Non-2xx responses count as failures.
func (c *RetryClient) DoJSON(ctx context.Context, method, url string, body interface{}, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	resp, err := c.Do(ctx, func() (*http.Request, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequest(method, url, reader)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request failed with status %s", resp.Status)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// DoMultipart posts form fields plus one file part and decodes the JSON
// response into out (when out is non-nil). The multipart body is rebuilt
// on every attempt.
func (c *RetryClient) DoMultipart(ctx context.Context, url string, fields map[string]string, fileField, fileName string, file []byte, out interface{}) error {
	resp, err := c.Do(ctx, func() (*http.Request, error) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		for k, v := range fields {
			if err := writer.WriteField(k, v); err != nil {
				return nil, err
			}
		}
		part, err := writer.CreateFormFile(fileField, fileName)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(file); err != nil {
			return nil, err
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}

		req, err := http.NewRequest(http.MethodPost, url, &buf)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload failed with status %s", resp.Status)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

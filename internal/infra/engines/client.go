// Package engines holds HTTP adapters for the external model engines
// (OCR, ASR, captioning, narrative generation, speech synthesis). Every
// call runs under a per-call timeout and a bounded retry-with-backoff
// policy; request bodies are rebuilt per attempt.
package engines

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// APIError is a non-success engine response. It survives wrapping, so
// callers can tell an engine saying "no" apart from transport trouble.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("engine returned HTTP %d: %s", e.StatusCode, e.Body)
}

type ClientConfig struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
}

type Client struct {
	httpc      *http.Client
	baseURL    string
	timeout    time.Duration
	maxRetries int
	baseDelay  time.Duration
	logger     *zap.Logger
}

func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	return &Client{
		httpc:      &http.Client{},
		baseURL:    cfg.BaseURL,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.RetryBaseDelay,
		logger:     logger,
	}
}

// do runs one engine call with retries. Network errors and 5xx responses
// are retried with exponential backoff; other non-200 responses fail
// immediately as *APIError.
func (c *Client) do(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay << (attempt - 1)
			if delay > 30*time.Second {
				delay = 30 * time.Second
			}
			c.logger.Debug("retrying engine call",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, retryable, err := c.attempt(ctx, build)
		if err == nil {
			return body, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("engine call failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *Client) attempt(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (body []byte, retryable bool, err error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := build(callCtx)
	if err != nil {
		return nil, false, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: truncate(string(data), 512)}
		return nil, resp.StatusCode >= 500, apiErr
	}
	return data, false, nil
}

func (c *Client) postJSON(ctx context.Context, path string, headers map[string]string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	body, err := c.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// postMultipart posts a form with one file part plus string fields. The
// body is rebuilt for every attempt.
func (c *Client) postMultipart(ctx context.Context, path, fileField, filePath string, fields map[string]string, out any) error {
	body, err := c.do(ctx, func(ctx context.Context) (*http.Request, error) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)

		part, err := mw.CreateFormFile(fileField, filepath.Base(filePath))
		if err != nil {
			return nil, err
		}
		f, err := os.Open(filePath)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, f); err != nil {
			f.Close()
			return nil, err
		}
		f.Close()

		for k, v := range fields {
			if err := mw.WriteField(k, v); err != nil {
				return nil, err
			}
		}
		if err := mw.Close(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req, nil
	})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// postRawFile is postMultipart for in-memory content.
func (c *Client) postRawFile(ctx context.Context, path, fileField, fileName string, content []byte, out any) error {
	body, err := c.do(ctx, func(ctx context.Context) (*http.Request, error) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile(fileField, fileName)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(content); err != nil {
			return nil, err
		}
		if err := mw.Close(); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req, nil
	})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

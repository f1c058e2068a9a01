package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

// retryableError marks transport failures worth another attempt.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// doRequest makes an HTTP request to OpenRouter with retry on transient
// failures. Returns the parsed response and the number of attempts made.
func (c *OpenRouterClient) doRequest(ctx context.Context, path string, orReq *openRouterRequest) (*openRouterResponse, int, error) {
	bodyBytes, err := marshalRequest(orReq)
	if err != nil {
		return nil, 0, err
	}

	var orResp *openRouterResponse
	attempts := 0

	err = retry.Do(
		func() error {
			attempts++

			req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(bodyBytes))
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
			req.Header.Set("HTTP-Referer", "https://github.com/neicedai/translate")
			req.Header.Set("X-Title", "translate")

			resp, err := c.client.Do(req)
			if err != nil {
				return &retryableError{fmt.Errorf("request failed: %w", err)}
			}

			respBody, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return &retryableError{fmt.Errorf("failed to read response: %w", err)}
			}

			if c.shouldRetry(resp.StatusCode) {
				return &retryableError{fmt.Errorf("OpenRouter error (status %d): %s", resp.StatusCode, string(respBody))}
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("OpenRouter error (status %d): %s", resp.StatusCode, string(respBody))
			}

			var parsed openRouterResponse
			if err := json.Unmarshal(respBody, &parsed); err != nil {
				return fmt.Errorf("failed to unmarshal response: %w", err)
			}

			// API returned 200 but with an error body or no choices.
			if retryable, err := c.shouldRetryResponse(&parsed); retryable {
				return &retryableError{err}
			}
			if parsed.Error != nil {
				return fmt.Errorf("OpenRouter API error: %s", parsed.Error.Message)
			}

			orResp = &parsed
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.MaxDelay(10*time.Second),
		retry.RetryIf(func(err error) bool {
			var re *retryableError
			return errors.As(err, &re)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, attempts, err
	}
	return orResp, attempts, nil
}

// shouldRetry returns true for status codes that should be retried.
func (c *OpenRouterClient) shouldRetry(statusCode int) bool {
	switch statusCode {
	case 408: // Request Timeout
		return true
	case 429: // Rate Limited
		return true
	case 520, 521, 522, 523, 524: // Cloudflare errors
		return true
	default:
		// Retry on server errors (500+)
		return statusCode >= 500
	}
}

// shouldRetryResponse checks if a 200 OK response has retryable content issues.
// Returns (true, error) if retryable, (false, nil) if not.
func (c *OpenRouterClient) shouldRetryResponse(resp *openRouterResponse) (bool, error) {
	if resp.Error != nil {
		// Check for retryable error codes
		code := fmt.Sprintf("%v", resp.Error.Code)
		switch code {
		case "overloaded", "rate_limit_exceeded", "503", "502", "500":
			return true, fmt.Errorf("OpenRouter API error (retryable): %s", resp.Error.Message)
		}
		// Non-retryable API errors (content_filter, invalid_request, etc.)
		return false, nil
	}

	// Empty choices - likely transient, worth retrying
	if len(resp.Choices) == 0 {
		return true, fmt.Errorf("empty choices in response (model=%s, id=%s)", resp.Model, resp.ID)
	}

	return false, nil
}

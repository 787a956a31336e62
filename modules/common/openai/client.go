// Package openai talks to an Azure OpenAI chat-completions deployment with
// bounded retries: exponential backoff on 429, a short fixed delay on
// transient network failures, and no retry at all on other upstream errors.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/a-elhaag/canvas-smith/modules/common/apperr"
	"github.com/a-elhaag/canvas-smith/modules/common/config"
)

// transientRetryDelay is the wait after a timeout or connection failure;
// these are assumed to be brief network blips, unlike 429s.
const transientRetryDelay = time.Second

// SleepFunc waits for d or until ctx is cancelled. Injectable so retry
// timing tests never touch the wall clock.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Client issues chat-completion requests against one deployment. Exactly one
// logical request is in flight per call; concurrent calls are independent.
type Client struct {
	endpoint   string
	apiKey     string
	deployment string
	apiVersion string
	userAgent  string
	timeout    time.Duration
	maxRetries int
	httpClient *http.Client
	sleep      SleepFunc
}

// NewClient builds a client from configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		endpoint:   cfg.AzureOpenAIEndpoint,
		apiKey:     cfg.AzureOpenAIKey,
		deployment: cfg.AzureOpenAIDeployment,
		apiVersion: cfg.AzureOpenAIAPIVersion,
		userAgent:  fmt.Sprintf("%s/%s", cfg.AppName, cfg.AppVersion),
		timeout:    cfg.AITimeout,
		maxRetries: cfg.AIMaxRetries,
		httpClient: &http.Client{},
		sleep:      sleepContext,
	}
}

// ChatEndpoint returns the deployment's chat completions URL.
func (c *Client) ChatEndpoint() string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.endpoint, c.deployment, c.apiVersion)
}

// Deployment returns the configured deployment name.
func (c *Client) Deployment() string {
	return c.deployment
}

// CreateChatCompletion performs the request with up to maxRetries additional
// attempts after the first. Each attempt gets its own timeout; the caller's
// context cancels both attempts and backoff waits, so a disconnected caller
// never leaves the retry loop running.
func (c *Client) CreateChatCompletion(ctx context.Context, payload *ChatRequest) (*ChatResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to marshal AI request")
	}

	endpoint := c.ChatEndpoint()
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		resp, err := c.attempt(ctx, endpoint, body)
		if err == nil {
			return resp, nil
		}
		if cerr := callerCancelled(ctx); cerr != nil {
			return nil, cerr
		}

		switch apperr.KindOf(err) {
		case apperr.KindRateLimited:
			if attempt < c.maxRetries {
				wait := backoffDelay(attempt)
				log.Printf("⚠️  Rate limited, retrying in %s (attempt %d/%d)", wait, attempt+1, c.maxRetries+1)
				if serr := c.sleep(ctx, wait); serr != nil {
					return nil, callerCancelled(ctx)
				}
				continue
			}
			lastErr = err

		case apperr.KindTimeout, apperr.KindConnectionFailure:
			if attempt < c.maxRetries {
				log.Printf("⚠️  AI request failed (%v), retrying in %s (attempt %d/%d)",
					apperr.KindOf(err), transientRetryDelay, attempt+1, c.maxRetries+1)
				if serr := c.sleep(ctx, transientRetryDelay); serr != nil {
					return nil, callerCancelled(ctx)
				}
				continue
			}
			lastErr = err

		default:
			// Upstream semantic errors are never retried.
			return nil, err
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, apperr.New(apperr.KindServiceUnavailable, "AI service unavailable after multiple attempts")
}

// Ping sends a minimal probe request with a single attempt and a short
// timeout. Used by the health endpoint only.
func (c *Client) Ping(ctx context.Context) (status int, elapsed time.Duration, err error) {
	payload := &ChatRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "You are a helpful assistant."},
			{Role: RoleUser, Content: "Hello, this is a health check. Please respond with 'OK'."},
		},
		MaxCompletionTokens: 10,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, 0, apperr.Wrap(apperr.KindInternal, err, "failed to marshal health check request")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(pingCtx, http.MethodPost, c.ChatEndpoint(), bytes.NewReader(body))
	if err != nil {
		return 0, 0, apperr.Wrap(apperr.KindInternal, err, "failed to build health check request")
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed = time.Since(start)
	if err != nil {
		return 0, elapsed, c.classifyTransport(pingCtx, ctx, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, elapsed, nil
}

// attempt performs one bounded request and classifies the outcome.
func (c *Client) attempt(ctx context.Context, endpoint string, body []byte) (*ChatResponse, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to build AI request")
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classifyTransport(attemptCtx, ctx, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConnectionFailure, err, "failed to read AI response")
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var parsed ChatResponse
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return nil, apperr.Wrap(apperr.KindUpstream, err, "AI service returned malformed response")
		}
		return &parsed, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperr.New(apperr.KindRateLimited, "AI service rate limited the request")

	default:
		log.Printf("❌ AI API error: %d - %s", resp.StatusCode, truncateForLog(respBody))
		return nil, apperr.Upstream(resp.StatusCode, string(respBody))
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
}

// classifyTransport separates per-attempt timeouts from connection failures.
// A cancellation originating from the caller is passed through untyped.
func (c *Client) classifyTransport(attemptCtx, callerCtx context.Context, err error) error {
	if cerr := callerCancelled(callerCtx); cerr != nil {
		return cerr
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindTimeout, err, "AI service timeout")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperr.Wrap(apperr.KindTimeout, err, "AI service timeout")
	}
	return apperr.Wrap(apperr.KindConnectionFailure, err, "unable to connect to AI service")
}

// callerCancelled maps a caller-level deadline to a Timeout failure and a
// plain cancellation to the raw context error.
func callerCancelled(ctx context.Context) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperr.Wrap(apperr.KindTimeout, ctx.Err(), "AI request deadline exceeded")
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return nil
	}
}

// backoffDelay is the pure 429 backoff schedule: 2^attempt seconds.
func backoffDelay(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncateForLog(body []byte) string {
	const limit = 500
	if len(body) > limit {
		return fmt.Sprintf("[%d bytes] %s...", len(body), body[:limit])
	}
	return string(body)
}

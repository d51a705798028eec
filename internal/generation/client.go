package generation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/studykit/internal/platform/logger"
	"github.com/phrazzld/studykit/internal/redact"
)

// Retry defaults: five attempts, waiting 1s, 2s, 4s and 8s in between.
const (
	DefaultMaxAttempts    = 5
	DefaultInitialBackoff = time.Second
)

// SleepFunc waits for d or until ctx is done, returning ctx.Err() in the
// latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Client retries an Endpoint with exponential backoff. It is safe for
// concurrent use.
type Client struct {
	endpoint       Endpoint
	logger         *slog.Logger
	maxAttempts    int
	initialBackoff time.Duration
	sleep          SleepFunc
}

// Option configures a Client.
type Option func(*Client)

// WithMaxAttempts overrides the attempt budget.
func WithMaxAttempts(n int) Option {
	return func(c *Client) { c.maxAttempts = n }
}

// WithInitialBackoff overrides the first backoff delay. Each following delay
// doubles.
func WithInitialBackoff(d time.Duration) Option {
	return func(c *Client) { c.initialBackoff = d }
}

// WithSleep replaces the wait between attempts, mainly for tests.
func WithSleep(fn SleepFunc) Option {
	return func(c *Client) { c.sleep = fn }
}

// NewClient creates a retrying client around endpoint.
//
// Parameters:
//   - endpoint: performs one attempt per call
//   - log: structured logger, narrowed to the generation component
//   - opts: retry overrides
//
// Returns:
//   - A ready Client, or ErrInvalidConfig when an argument is unusable
func NewClient(endpoint Endpoint, log *slog.Logger, opts ...Option) (*Client, error) {
	if endpoint == nil {
		return nil, fmt.Errorf("%w: endpoint cannot be nil", ErrInvalidConfig)
	}
	if log == nil {
		log = slog.Default()
	}
	c := &Client{
		endpoint:       endpoint,
		logger:         log.With("component", "generation_client"),
		maxAttempts:    DefaultMaxAttempts,
		initialBackoff: DefaultInitialBackoff,
		sleep:          sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxAttempts < 1 {
		return nil, fmt.Errorf("%w: max attempts must be at least 1, got %d", ErrInvalidConfig, c.maxAttempts)
	}
	if c.initialBackoff < 0 {
		return nil, fmt.Errorf("%w: initial backoff cannot be negative", ErrInvalidConfig)
	}
	if c.sleep == nil {
		return nil, fmt.Errorf("%w: sleep function cannot be nil", ErrInvalidConfig)
	}
	return c, nil
}

// Generate sends prompt (and the optional image) to the endpoint, retrying
// failed attempts with exponential backoff.
//
// Empty completions and safety blocks are returned immediately as a
// GenerationError wrapping ErrEmptyCompletion or ErrContentBlocked. When every attempt fails the GenerationError wraps the
// last attempt's error. A context cancelled during a backoff wait ends the
// loop with a GenerationError wrapping the context error.
func (c *Client) Generate(ctx context.Context, prompt string, expectJSON bool, image *Image) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	log := logger.FromContextOrDefault(ctx, c.logger)
	req := Request{Prompt: prompt, ExpectJSON: expectJSON, Image: image}
	delay := c.initialBackoff

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		log.DebugContext(ctx, "calling generation endpoint",
			"attempt", attempt,
			"max_attempts", c.maxAttempts,
			"expect_json", expectJSON,
			"has_image", image != nil)

		text, err := c.endpoint.Complete(ctx, req)
		if err == nil {
			if strings.TrimSpace(text) == "" {
				log.WarnContext(ctx, "generation endpoint returned empty completion", "attempt", attempt)
				return "", &GenerationError{Attempts: attempt, Cause: ErrEmptyCompletion}
			}
			return text, nil
		}
		if isTerminal(err) {
			log.WarnContext(ctx, "generation attempt failed without retry",
				"attempt", attempt,
				"error", redact.Error(err))
			return "", &GenerationError{Attempts: attempt, Cause: err}
		}

		lastErr = err
		log.WarnContext(ctx, "generation attempt failed",
			"attempt", attempt,
			"error", redact.Error(err))

		if attempt == c.maxAttempts {
			break
		}

		if err := c.sleep(ctx, delay); err != nil {
			log.WarnContext(ctx, "generation cancelled during backoff",
				"attempt", attempt,
				"ctx_err", err)
			return "", &GenerationError{Attempts: attempt, Cause: err}
		}
		delay *= 2
	}

	log.ErrorContext(ctx, "generation retries exhausted",
		"attempts", c.maxAttempts,
		"error", redact.Error(lastErr))
	return "", &GenerationError{Attempts: c.maxAttempts, Cause: lastErr}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

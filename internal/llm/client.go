// Package llm implements the Claude-backed pipeline collaborators: industry
// classification, business summarization and prompt generation.
package llm

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/geo-intel/internal/config"
	"github.com/sells-group/geo-intel/internal/resilience"
	"github.com/sells-group/geo-intel/pkg/anthropic"
)

const service = "anthropic"

// Client sends structured-output requests to Claude. Calls are rate limited,
// retried on transient failures and guarded by a circuit breaker.
type Client struct {
	api       anthropic.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
	breaker   *resilience.CircuitBreaker
	retry     resilience.RetryConfig
}

// New creates a Client from Anthropic settings.
func New(api anthropic.Client, cfg config.AnthropicConfig) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	retry := resilience.DefaultRetryConfig()
	if cfg.MaxAttempts > 0 {
		retry.MaxAttempts = cfg.MaxAttempts
	}
	retry.ShouldRetry = retryable
	retry.OnRetry = resilience.RetryLogger(service, "create_message")

	breaker := resilience.DefaultCircuitBreakerConfig()
	if cfg.CircuitThreshold > 0 {
		breaker.FailureThreshold = cfg.CircuitThreshold
	}
	if cfg.CircuitResetSecs > 0 {
		breaker.ResetTimeout = time.Duration(cfg.CircuitResetSecs) * time.Second
	}
	breaker.OnStateChange = func(from, to resilience.CircuitState) {
		zap.L().Warn("llm: circuit state change",
			zap.String("service", service),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}

	return &Client{
		api:       api,
		model:     cfg.Model,
		maxTokens: maxTokens,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		breaker:   resilience.NewCircuitBreaker(breaker),
		retry:     retry,
	}
}

func retryable(err error) bool {
	return resilience.IsTransient(err) || resilience.IsTransientHTTPStatus(anthropic.StatusCode(err))
}

// complete sends one request and decodes the JSON answer into out.
func (c *Client) complete(ctx context.Context, stage, system, user string, out any) error {
	resp, err := resilience.ExecuteVal(ctx, c.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, eris.Wrap(err, "llm: rate limiter")
			}
			return c.api.CreateMessage(ctx, anthropic.MessageRequest{
				Model:     c.model,
				MaxTokens: c.maxTokens,
				System:    []anthropic.SystemBlock{{Text: system, Cached: true}},
				Messages:  []anthropic.Message{{Role: "user", Content: user}},
			})
		})
	})
	if err != nil {
		return eris.Wrapf(err, "llm: %s", stage)
	}
	resp.Usage.LogUsage(c.model, stage)
	if err := resp.DecodeJSON(out); err != nil {
		return eris.Wrapf(err, "llm: %s", stage)
	}
	return nil
}

// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dogwalk-workers/internal/common/config"
	"dogwalk-workers/internal/common/errors"
	"dogwalk-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client wraps the Zeebe gRPC client with connection retry and error mapping.
type Client struct {
	client zbc.Client
	config *ClientConfig
}

type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RequestTimeout         time.Duration
	RetryConfig            *RetryConfig
}

// RetryConfig defines retry behavior for transient failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 3,
	BaseDelay:  1 * time.Second,
	MaxDelay:   10 * time.Second,
}

// ConfigFromApp builds a ClientConfig from the camunda section. The broker
// may take a while to come up alongside the workers, so connecting retries
// for longer than individual commands do.
func ConfigFromApp(cfg config.CamundaConfig) *ClientConfig {
	requestTimeout := config.GetDuration(cfg.RequestTimeout)
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	return &ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      10 * time.Second,
		RequestTimeout:         requestTimeout,
		RetryConfig: &RetryConfig{
			MaxRetries: 10,
			BaseDelay:  2 * time.Second,
			MaxDelay:   30 * time.Second,
		},
	}
}

// NewClientWithConfig creates the Zeebe client and waits until the broker
// answers a topology request.
func NewClientWithConfig(ctx context.Context, cfg *ClientConfig, log logger.Logger) (*Client, error) {
	if cfg.RetryConfig == nil {
		cfg.RetryConfig = DefaultRetryConfig
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.GatewayAddress,
		UsePlaintextConnection: cfg.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{client: zeebeClient, config: cfg}

	err = retry(ctx, cfg.RetryConfig, "zeebe topology", log, func(ctx context.Context) error {
		return c.HealthCheck(ctx)
	})
	if err != nil {
		zeebeClient.Close()
		return nil, c.mapZeebeError(err, "connect", cfg.RetryConfig.MaxRetries)
	}

	return c, nil
}

// GetClient returns the raw Zeebe client for opening job workers.
func (c *Client) GetClient() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck sends a topology request to the broker.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// ExecuteWithRetry runs a Zeebe command with exponential backoff. Only
// transient errors are retried; the final error is mapped to a StandardError.
func (c *Client) ExecuteWithRetry(
	ctx context.Context,
	commandFunc func(context.Context) error,
	operationName string,
) error {
	err := retry(ctx, c.config.RetryConfig, operationName, nil, commandFunc)
	if err != nil {
		return c.mapZeebeError(err, operationName, c.config.RetryConfig.MaxRetries)
	}
	return nil
}

// CommandRetrier is satisfied by *Client. Job handlers send their complete
// commands through it so a briefly unavailable gateway does not drop a result.
type CommandRetrier interface {
	ExecuteWithRetry(ctx context.Context, commandFunc func(context.Context) error, operationName string) error
}

// SendWithRetry runs send through r, or once when r is nil.
func SendWithRetry(ctx context.Context, r CommandRetrier, operationName string, send func(context.Context) error) error {
	if r == nil {
		return send(ctx)
	}
	return r.ExecuteWithRetry(ctx, send, operationName)
}

func retry(ctx context.Context, rc *RetryConfig, operationName string, log logger.Logger, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= rc.MaxRetries; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryableZeebeError(err) || attempt == rc.MaxRetries {
			return err
		}

		delay := backoff(rc, attempt)
		if log != nil {
			log.Warn(operationName+" failed, retrying", map[string]interface{}{
				"attempt":     attempt + 1,
				"maxRetries":  rc.MaxRetries,
				"nextRetryIn": delay.String(),
				"error":       err.Error(),
			})
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("operation %s cancelled after %d attempts: %w", operationName, attempt+1, ctx.Err())
		}
	}

	return lastErr
}

func backoff(rc *RetryConfig, attempt int) time.Duration {
	delay := rc.BaseDelay * time.Duration(1<<attempt)
	if delay > rc.MaxDelay || delay <= 0 {
		delay = rc.MaxDelay
	}
	return delay
}

func isRetryableZeebeError(err error) bool {
	msg := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// mapZeebeError converts Zeebe errors into standardized application errors.
func (c *Client) mapZeebeError(err error, operation string, attempts int) error {
	msg := err.Error()
	lowerMsg := strings.ToLower(msg)

	enhancedMsg := fmt.Sprintf("Zeebe operation '%s' failed", operation)
	if attempts > 0 {
		enhancedMsg += fmt.Sprintf(" (up to %d retries)", attempts)
	}

	switch {
	case strings.Contains(lowerMsg, "timeout") ||
		strings.Contains(lowerMsg, "deadline exceeded"):
		return errors.NewTimeoutError("zeebe", fmt.Errorf("%s: %w", enhancedMsg, err))

	case strings.Contains(lowerMsg, "not found"):
		return errors.NewResourceNotFoundError("zeebe", fmt.Sprintf("%s: %s", enhancedMsg, msg))

	case strings.Contains(lowerMsg, "already exists"):
		return errors.NewBusinessRuleError(fmt.Sprintf("%s: %s", enhancedMsg, msg), "Resource already exists")

	case strings.Contains(lowerMsg, "permission denied") ||
		strings.Contains(lowerMsg, "unauthorized"):
		return errors.NewAuthenticationError(fmt.Sprintf("%s: %s", enhancedMsg, msg))

	default:
		return errors.NewExternalServiceError("zeebe", fmt.Errorf("%s: %w", enhancedMsg, err))
	}
}

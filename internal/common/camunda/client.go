// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"adinsight-workers/internal/common/errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client wraps the Zeebe gRPC client with connect-time retry and error
// translation for the worker fleet.
type Client struct {
	client zbc.Client
	config *ClientConfig
}

// ClientConfig holds configuration for the Camunda/Zeebe client.
type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RequestTimeout         time.Duration
	RetryConfig            *RetryConfig
}

// RetryConfig bounds the connect retry loop.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryConfig rides out a broker that is still electing a
// leader when the fleet starts.
var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 5,
	BaseDelay:  1 * time.Second,
	MaxDelay:   15 * time.Second,
}

// NewClientWithConfig creates a Camunda client and verifies the broker
// topology before returning. Transient failures are retried with
// exponential backoff, anything else fails fast.
func NewClientWithConfig(config *ClientConfig) (*Client, error) {
	if config.RetryConfig == nil {
		config.RetryConfig = DefaultRetryConfig
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         config.GatewayAddress,
		UsePlaintextConnection: config.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	retry := config.RetryConfig
	var lastErr error
	for attempt := 0; attempt <= retry.MaxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), config.ConnectionTimeout)
		_, err := zeebeClient.NewTopologyCommand().Send(ctx)
		cancel()
		if err == nil {
			return &Client{client: zeebeClient, config: config}, nil
		}
		lastErr = err

		if !isRetryableZeebeError(err) || attempt == retry.MaxRetries {
			break
		}

		delay := retry.BaseDelay * time.Duration(1<<attempt)
		if delay > retry.MaxDelay {
			delay = retry.MaxDelay
		}
		time.Sleep(delay)
	}

	zeebeClient.Close()
	return nil, mapConnectError(lastErr, config.GatewayAddress)
}

// GetClient returns the raw Zeebe client for job polling and deploys.
func (c *Client) GetClient() zbc.Client {
	return c.client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck verifies the broker still answers topology requests.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	_, err := c.client.NewTopologyCommand().Send(ctx)
	if err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// isRetryableZeebeError reports whether the error is transient. Auth
// and TLS misconfiguration never heal on their own, so those fall
// through to a fast failure.
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

// mapConnectError turns the terminal connect failure into a
// standardized application error.
func mapConnectError(err error, gateway string) error {
	if err == nil {
		return errors.NewExternalServiceError("zeebe", fmt.Errorf("connect to %s failed", gateway))
	}
	msg := fmt.Sprintf("connect to Zeebe broker at %s: %s", gateway, err.Error())
	lowerMsg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lowerMsg, "timeout") ||
		strings.Contains(lowerMsg, "deadline exceeded"):
		return errors.NewTimeoutError("zeebe", fmt.Errorf("%s", msg))

	case strings.Contains(lowerMsg, "permission denied") ||
		strings.Contains(lowerMsg, "unauthorized"):
		return errors.NewAuthenticationError(msg)

	default:
		return errors.NewExternalServiceError("zeebe", fmt.Errorf("%s", msg))
	}
}

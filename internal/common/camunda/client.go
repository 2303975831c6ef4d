// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"caab-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// RetryConfig bounds the exponential backoff used while the gateway comes up.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = RetryConfig{
	MaxRetries: 5,
	BaseDelay:  time.Second,
	MaxDelay:   10 * time.Second,
}

type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	Retry                  RetryConfig
}

// Connect creates a Zeebe client and waits until the topology call succeeds.
func Connect(ctx context.Context, cfg ClientConfig, log logger.Logger) (zbc.Client, error) {
	client, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.GatewayAddress,
		UsePlaintextConnection: cfg.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create zeebe client: %w", err)
	}

	err = Retry(ctx, cfg.Retry, "zeebe topology", log, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, cfg.ConnectionTimeout)
		defer cancel()
		_, err := client.NewTopologyCommand().Send(ctx)
		return err
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach zeebe gateway at %s: %w", cfg.GatewayAddress, err)
	}
	return client, nil
}

// Retry runs op with exponential backoff while it fails with a transient error.
func Retry(ctx context.Context, rc RetryConfig, name string, log logger.Logger, op func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= rc.MaxRetries; attempt++ {
		if lastErr = op(ctx); lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) || attempt == rc.MaxRetries {
			break
		}

		delay := rc.BaseDelay * time.Duration(1<<attempt)
		if delay > rc.MaxDelay {
			delay = rc.MaxDelay
		}
		log.Warn("retrying "+name, map[string]interface{}{
			"attempt": attempt + 1,
			"delay":   delay.String(),
			"error":   lastErr.Error(),
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled after %d attempts: %w", name, attempt+1, ctx.Err())
		}
	}
	return lastErr
}

// IsTransient reports connection-level failures worth retrying.
func IsTransient(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

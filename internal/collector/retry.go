package collector

import (
	"context"
	"fmt"
	"log"
	"time"
)

// retryBase is the first backoff delay; it doubles on each attempt.
var retryBase = 500 * time.Millisecond

// withRetry runs fn up to attempts times with exponential backoff.
func withRetry(ctx context.Context, attempts int, label string, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		backoff := retryBase * time.Duration(1<<uint(i))
		log.Printf("[WARN] %s failed (attempt %d/%d): %v, retrying in %v", label, i+1, attempts, lastErr, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("%s: %d attempts exhausted: %w", label, attempts, lastErr)
}

package kafka

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

// CheckBrokers dials each broker and succeeds as soon as one answers.
func CheckBrokers(ctx context.Context, brokers string, timeout time.Duration) error {
	var lastErr error
	for _, broker := range strings.Split(brokers, ",") {
		broker = strings.TrimSpace(broker)
		if broker == "" {
			continue
		}
		dialer := net.Dialer{Timeout: timeout}
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		conn.Close() //nolint:errcheck // probe connection
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("no kafka brokers reachable: %w", lastErr)
	}
	return fmt.Errorf("no kafka brokers configured")
}

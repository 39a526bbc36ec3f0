// Package notify delivers alert messages. Delivery is best-effort: callers
// log failures and move on, a notification outage never fails a sync.
package notify

import "context"

// Notifier sends one message. Implementations must be safe for concurrent
// use and bound their own network timeouts.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Nop is a Notifier that silently drops everything. Used when alerting is
// unconfigured and in tests.
type Nop struct{}

// Send implements Notifier.
func (Nop) Send(context.Context, string) error { return nil }

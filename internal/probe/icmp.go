package probe

import (
	"context"
	"fmt"
	"net"
	"runtime"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// Pinger checks whether a host answers ICMP echo requests.
type Pinger interface {
	Ping(ctx context.Context, host string) (bool, time.Duration, error)
}

// ICMPPinger pings targets via pro-bing.
type ICMPPinger struct {
	timeout time.Duration
	count   int
}

// NewICMPPinger creates an ICMP pinger with the given timeout and echo count.
func NewICMPPinger(timeout time.Duration, count int) *ICMPPinger {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if count <= 0 {
		count = 2
	}
	return &ICMPPinger{timeout: timeout, count: count}
}

// Ping sends echo requests and reports reachability and average latency.
// Device hosts may carry a ":port" suffix for the scraper; it is stripped
// before pinging.
func (p *ICMPPinger) Ping(ctx context.Context, host string) (bool, time.Duration, error) {
	target := stripPort(host)

	pinger, err := probing.NewPinger(target)
	if err != nil {
		return false, 0, fmt.Errorf("create pinger: %w", err)
	}

	pinger.Count = p.count
	pinger.Timeout = p.timeout
	pinger.SetPrivileged(runtime.GOOS == "windows")

	// Run pinger in a goroutine for context cancellation.
	done := make(chan error, 1)
	go func() {
		done <- pinger.Run()
	}()

	select {
	case runErr := <-done:
		if runErr != nil {
			return false, 0, runErr
		}
		stats := pinger.Statistics()
		return stats.PacketsRecv > 0, stats.AvgRtt, nil
	case <-ctx.Done():
		pinger.Stop()
		return false, 0, ctx.Err()
	}
}

// stripPort removes a trailing ":port" from a host if present.
func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

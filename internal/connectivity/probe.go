// Package connectivity answers whether the remote authority is plausibly
// reachable right now. Answers are advisory: a write may still fail after
// a positive probe.
package connectivity

import (
	"context"
	"net"
	"time"
)

const (
	// DefaultAddress is a highly available public resolver.
	DefaultAddress = "1.1.1.1:53"
	// DefaultTimeout bounds a single probe.
	DefaultTimeout = 2 * time.Second
)

// Probe reports point-in-time reachability.
type Probe interface {
	Reachable(ctx context.Context) bool
}

// TCPProbe dials a well-known endpoint; any error or timeout means offline.
type TCPProbe struct {
	Address string
	Timeout time.Duration

	dialer *net.Dialer
}

// NewTCPProbe creates a TCPProbe, filling in defaults for empty values.
func NewTCPProbe(address string, timeout time.Duration) *TCPProbe {
	if address == "" {
		address = DefaultAddress
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &TCPProbe{
		Address: address,
		Timeout: timeout,
		dialer:  &net.Dialer{},
	}
}

// Reachable implements Probe.
func (p *TCPProbe) Reachable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	d := p.dialer
	if d == nil {
		d = &net.Dialer{}
	}
	conn, err := d.DialContext(ctx, "tcp", p.Address)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Static is a Probe with a fixed answer. Static(false) is used when no
// remote store is configured.
type Static bool

// Reachable implements Probe.
func (s Static) Reachable(context.Context) bool {
	return bool(s)
}

// Func adapts a function to Probe.
type Func func(ctx context.Context) bool

// Reachable implements Probe.
func (f Func) Reachable(ctx context.Context) bool {
	return f(ctx)
}

// All reports reachable only when every probe does. It short-circuits on
// the first negative answer.
func All(probes ...Probe) Probe {
	return Func(func(ctx context.Context) bool {
		for _, p := range probes {
			if !p.Reachable(ctx) {
				return false
			}
		}
		return true
	})
}

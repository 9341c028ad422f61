package server

import (
	"context"
	"time"
)

// Pinger calls ping on a regular interval until ctx is done. It keeps idle
// signaling connections alive through proxies that reap quiet ones.
type Pinger struct {
	ticker *time.Ticker
	ping   func()
}

// NewPinger creates a new Pinger and starts its ticker with the given
// interval.
func NewPinger(ctx context.Context, interval time.Duration, ping func()) *Pinger {
	p := &Pinger{
		ticker: time.NewTicker(interval),
		ping:   ping,
	}

	go p.run(ctx)

	return p
}

func (p *Pinger) run(ctx context.Context) {
	defer p.ticker.Stop()

	for {
		select {
		case <-p.ticker.C:
			p.ping()
		case <-ctx.Done():
			return
		}
	}
}

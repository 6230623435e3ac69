package stampclient

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

const defaultPollInterval = 2 * time.Second

// Poller periodically fetches the board and hands each snapshot to a
// callback. Its lifetime is bounded by the context passed to Run, so no
// updates are delivered after cancellation.
type Poller struct {
	client   *Client
	interval time.Duration
	clock    clockwork.Clock
	onUpdate func([]Stamp)
	onError  func(error)
}

// NewPoller wires a Poller to client. interval <= 0 means the default 2s.
// onError may be nil; fetch failures are then dropped and polling continues.
func NewPoller(client *Client, interval time.Duration, onUpdate func([]Stamp), onError func(error)) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Poller{
		client:   client,
		interval: interval,
		clock:    client.clock,
		onUpdate: onUpdate,
		onError:  onError,
	}
}

// Run fetches immediately, then on every tick until ctx is cancelled. It
// returns ctx.Err().
func (p *Poller) Run(ctx context.Context) error {
	p.poll(ctx)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	stamps, err := p.client.Stamps(ctx)
	if err != nil {
		if p.onError != nil && ctx.Err() == nil {
			p.onError(err)
		}
		return
	}
	if ctx.Err() != nil {
		return
	}
	p.onUpdate(stamps)
}

package kickchat

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/Guliveer/kick-watcher-go/pkg/events"
)

// viewerPoller publishes viewer counts for the connection's channel. One
// cycle runs immediately on start and the next one interval after the
// previous cycle completed.
type viewerPoller struct {
	conn     *Connection
	clock    Clock
	interval time.Duration

	mu      sync.Mutex
	running bool
	gen     uint64
	cancel  context.CancelFunc
}

func newViewerPoller(c *Connection) *viewerPoller {
	return &viewerPoller{
		conn:     c,
		clock:    c.clock,
		interval: c.pollInterval,
	}
}

// start launches the loop. It is a no-op while a loop is running.
func (p *viewerPoller) start() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return false
	}
	p.running = true
	p.gen++

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	go p.loop(ctx, p.gen)
	return true
}

// stop ends the loop and cancels a cycle in flight. Whatever that cycle
// returns is dropped.
func (p *viewerPoller) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	p.running = false
	p.cancel()
	p.cancel = nil
}

func (p *viewerPoller) isRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *viewerPoller) active(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running && p.gen == gen
}

func (p *viewerPoller) loop(ctx context.Context, gen uint64) {
	c := p.conn
	c.log.Debug("Viewer poller started", "interval", p.interval)
	defer c.log.Debug("Viewer poller stopped")

	for {
		if !p.active(gen) {
			return
		}

		p.cycle(ctx, gen)

		if !p.active(gen) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-p.clock.After(p.interval):
		}
	}
}

// cycle fetches the current viewer count once. Results arriving after the
// loop went inactive are dropped.
func (p *viewerPoller) cycle(ctx context.Context, gen uint64) {
	c := p.conn

	live, err := c.resolver.LiveStreamDetails(ctx, c.channel)
	if err != nil {
		p.fail(gen, &ResolutionError{Channel: c.channel, Step: StepLiveStream, Err: err})
		return
	}
	if !live.IsLive() {
		c.log.Debug("Channel offline, skipping viewer count")
		return
	}

	viewers, err := c.resolver.CurrentViewers(ctx, strconv.FormatInt(live.Data.ID, 10))
	if err != nil {
		p.fail(gen, &ResolutionError{Channel: c.channel, Step: StepViewers, Err: err})
		return
	}
	if len(viewers) == 0 {
		c.log.Debug("Empty viewer count response", "livestream_id", live.Data.ID)
		return
	}

	if !p.active(gen) {
		return
	}
	events.Publish(c.bus, events.TopicViewerCount, events.ViewerCount{
		LivestreamID: viewers[0].LivestreamID,
		Viewers:      viewers[0].Viewers,
	})
}

func (p *viewerPoller) fail(gen uint64, err error) {
	if !p.active(gen) {
		return
	}
	p.conn.log.Warn("Viewer count poll failed", "error", err)
	p.conn.publishError(err)
}

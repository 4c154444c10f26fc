package kickapi

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Snapshot is a point-in-time view of a channel.
type Snapshot struct {
	Channel    *Channel
	ChatRoom   *ChatRoom
	LiveStream *LiveStream
	Viewers    *CurrentViewers
}

// IsLive reports whether the channel was live when the snapshot was taken.
func (s *Snapshot) IsLive() bool { return s.LiveStream != nil }

// TakeSnapshot fetches channel, chatroom and livestream concurrently, then
// the current viewer count if the channel is live.
func TakeSnapshot(ctx context.Context, r Resolver, channel string) (*Snapshot, error) {
	var (
		snap Snapshot
		live *LiveStreamResponse
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ch, err := r.Channel(gctx, channel)
		if err != nil {
			return fmt.Errorf("fetching channel %s: %w", channel, err)
		}
		snap.Channel = ch
		return nil
	})

	g.Go(func() error {
		room, err := r.ChatRoom(gctx, channel)
		if err != nil {
			return fmt.Errorf("fetching chatroom of %s: %w", channel, err)
		}
		snap.ChatRoom = room
		return nil
	})

	g.Go(func() error {
		resp, err := r.LiveStreamDetails(gctx, channel)
		if err != nil {
			return fmt.Errorf("fetching livestream of %s: %w", channel, err)
		}
		live = resp
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !live.IsLive() {
		return &snap, nil
	}
	snap.LiveStream = live.Data

	viewers, err := r.CurrentViewers(ctx, fmt.Sprint(live.Data.ID))
	if err != nil {
		return nil, fmt.Errorf("fetching viewers of %s: %w", channel, err)
	}
	if len(viewers) > 0 {
		snap.Viewers = &viewers[0]
	}

	return &snap, nil
}

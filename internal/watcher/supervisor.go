// Package watcher keeps a chat connection alive across stream restarts and
// transport failures.
package watcher

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"time"

	"github.com/Guliveer/kick-watcher-go/internal/config"
	"github.com/Guliveer/kick-watcher-go/internal/constants"
	"github.com/Guliveer/kick-watcher-go/internal/logger"
	"github.com/Guliveer/kick-watcher-go/pkg/kickchat"
)

// Supervisor runs a kickchat.Connection and reconnects it with exponential
// backoff when the channel is offline or the session drops.
type Supervisor struct {
	conn       *kickchat.Connection
	log        *logger.Logger
	reconnect  bool
	minBackoff time.Duration
	maxBackoff time.Duration

	sessions atomic.Int32
}

// NewSupervisor creates a Supervisor for conn.
func NewSupervisor(conn *kickchat.Connection, cfg config.ReconnectConfig, log *logger.Logger) *Supervisor {
	minB := cfg.MinBackoff
	if minB <= 0 {
		minB = constants.DefaultReconnectMinBackoff
	}
	maxB := cfg.MaxBackoff
	if maxB < minB {
		maxB = max(minB, constants.DefaultReconnectMaxBackoff)
	}

	return &Supervisor{
		conn:       conn,
		log:        log,
		reconnect:  cfg.IsEnabled(),
		minBackoff: minB,
		maxBackoff: maxB,
	}
}

// Sessions returns how many sessions were established so far.
func (s *Supervisor) Sessions() int { return int(s.sessions.Load()) }

// Run connects and blocks until ctx is cancelled, then disconnects. With
// reconnecting disabled it returns the first Connect error, or nil once the
// first session ends.
func (s *Supervisor) Run(ctx context.Context) error {
	backoff := s.minBackoff

	for {
		_, err := s.conn.Connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if !s.reconnect {
				return err
			}

			var offline *kickchat.OfflineError
			if errors.As(err, &offline) {
				s.log.Info("Channel is offline, waiting for stream", "backoff", backoff.Round(time.Second))
			} else {
				s.log.Warn("Connect failed, retrying", "error", err, "backoff", backoff.Round(time.Second))
			}

			if !sleep(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, s.maxBackoff)
			continue
		}

		s.sessions.Add(1)
		backoff = s.minBackoff

		if done := s.conn.Done(); done != nil {
			select {
			case <-ctx.Done():
				s.conn.Disconnect()
				return nil
			case <-done:
			}
		}

		if ctx.Err() != nil {
			return nil
		}
		if !s.reconnect {
			return nil
		}

		s.log.Warn("Chat session ended, reconnecting", "backoff", backoff.Round(time.Second))
		if !sleep(ctx, backoff) {
			return nil
		}
		backoff = nextBackoff(backoff, s.maxBackoff)
	}
}

func nextBackoff(cur, limit time.Duration) time.Duration {
	return time.Duration(math.Min(float64(cur*2), float64(limit)))
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

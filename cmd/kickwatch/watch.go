package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Guliveer/kick-watcher-go/internal/config"
	"github.com/Guliveer/kick-watcher-go/internal/logger"
	"github.com/Guliveer/kick-watcher-go/internal/notify"
	"github.com/Guliveer/kick-watcher-go/internal/server"
	"github.com/Guliveer/kick-watcher-go/internal/watcher"
	"github.com/Guliveer/kick-watcher-go/pkg/events"
	"github.com/Guliveer/kick-watcher-go/pkg/kickchat"
)

var bannerStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(lipgloss.Color("#53FC18")).
	Padding(0, 4)

func newWatchCmd(a *app) *cobra.Command {
	var (
		viewers bool
		serve   bool
	)

	cmd := &cobra.Command{
		Use:   "watch [channel]",
		Short: "Follow a channel's chat and stream events",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := a.channelArg(args)
			if err != nil {
				return err
			}
			a.cfg.Channel = ch
			if viewers {
				a.cfg.ViewerCount = true
			}
			if serve {
				a.cfg.Server.Enabled = true
			}
			if err := config.Validate(a.cfg); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			return a.watch(cmd.Context(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&viewers, "viewers", false, "Poll and print the viewer count")
	cmd.Flags().BoolVar(&serve, "serve", false, "Start the status server")
	return cmd
}

func (a *app) watch(ctx context.Context, out io.Writer) error {
	cfg := a.cfg
	log := a.log.WithPrefix(cfg.Channel)

	fmt.Fprintln(out, bannerStyle.Render("Kick Watcher · "+cfg.Channel))

	dispatcher := notify.NewDispatcher(cfg.Notifications, cfg.Channel, log)
	log.SetNotifyFunc(dispatcher.NotifyFunc())
	defer dispatcher.Wait()
	if dispatcher.HasNotifiers() {
		log.Info("🔔 Notifications enabled")
	}

	conn := kickchat.New(cfg.Channel,
		kickchat.WithLogger(log.Logger),
		kickchat.WithUserAgent(cfg.UserAgent),
		kickchat.WithViewerPollInterval(cfg.ViewerPollInterval),
	)

	printer := &chatPrinter{out: out, colored: a.colored}
	conn.Bus().SubscribeAll(eventSink(ctx, log, printer, dispatcher))
	if cfg.ViewerCount {
		kickchat.On(conn, events.TopicViewerCount, func(v events.ViewerCount) {
			msg, args, _ := describe(events.Event{Kind: events.KindViewerCount, Payload: v})
			log.Event(ctx, events.KindViewerCount, msg, args...)
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(gctx)
	defer stop()

	if cfg.Server.Enabled {
		tracker := server.NewTracker(cfg.Channel)
		tracker.Attach(conn.Bus())
		srv := server.NewStatusServer(cfg.Server.Addr, tracker, log)
		g.Go(func() error { return srv.Run(runCtx) })
	}

	sup := watcher.NewSupervisor(conn, cfg.Reconnect, log)
	g.Go(func() error {
		defer stop()
		return sup.Run(runCtx)
	})

	err := g.Wait()
	if ctx.Err() != nil {
		log.Info("🛑 Shutdown complete", "sessions", sup.Sessions())
	}
	return err
}

// eventSink prints chat lines and logs every other event except viewer
// counts, which have their own listener so the poller only runs on request.
func eventSink(ctx context.Context, log *logger.Logger, printer *chatPrinter, d *notify.Dispatcher) events.Handler {
	return func(ev events.Event) {
		switch ev.Kind {
		case events.KindViewerCount:
			return
		case events.KindChatMessage:
			m, ok := ev.Payload.(*events.ChatMessage)
			if !ok {
				return
			}
			printer.print(ev.Time, m)
			if d.Wants(events.KindChatMessage) {
				d.Dispatch(ctx, events.KindChatMessage, m.Sender.Username+": "+m.Content)
			}
			return
		}

		if msg, args, ok := describe(ev); ok {
			log.Event(ctx, ev.Kind, msg, args...)
		}
	}
}

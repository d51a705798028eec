package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/phrazzld/studykit/internal/config"
	"github.com/phrazzld/studykit/internal/events"
	"github.com/phrazzld/studykit/internal/platform/redis"
	"github.com/spf13/cobra"
)

// listener streams events published by a running server.
type listener interface {
	Listen(ctx context.Context, onEvent func(*events.Event)) error
	Close() error
}

func newRedisListener(ctx context.Context, cfg config.RedisConfig, log *slog.Logger) (listener, error) {
	return redis.NewNotifier(ctx, cfg, log)
}

func newWatchCmd(d deps, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print events from a running server's Redis channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(d, opts)
			if err != nil {
				return err
			}
			if cfg.Redis.Addr == "" {
				return errors.New("redis.addr is not configured")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			l, err := d.newListener(ctx, cfg.Redis, log)
			if err != nil {
				return err
			}
			defer func() { _ = l.Close() }()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching %s on %s\n", cfg.Redis.Channel, cfg.Redis.Addr)
			return l.Listen(ctx, func(e *events.Event) {
				fmt.Fprintf(out, "%s  %-20s %s\n", e.CreatedAt.Format(time.TimeOnly), e.Type, e.Payload)
			})
		},
	}
}

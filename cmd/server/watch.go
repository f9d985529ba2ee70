package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/bus"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/notification"
)

func newWatchCommand(opts *rootOptions) *cobra.Command {
	var eventID string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream check-in activity published on NATS",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			if cfg.NATS.URL == "" {
				return errors.New("nats.url is not configured")
			}
			b, err := bus.New(cfg.NATS.URL, cfg.NATS.SubjectPrefix, nats.Name("invitopia-watch"))
			if err != nil {
				return err
			}
			defer b.Close()

			target := "*"
			if eventID != "" {
				target = eventID
			}
			subj := notification.ActivitySubject(b, target)
			out := cmd.OutOrStdout()
			sub, err := b.Subscribe(ctx, subj, func(_ context.Context, subject string, data []byte) error {
				var act models.Activity
				if err := json.Unmarshal(data, &act); err != nil {
					logger.Warn().Err(err).Str("subject", subject).Msg("skipping undecodable activity")
					return err
				}
				guest := "-"
				if act.GuestID != nil {
					guest = *act.GuestID
				}
				fmt.Fprintf(out, "%s  %-8s %-7s %-22s guest=%s  %s\n",
					act.CreatedAt.Local().Format("15:04:05"), act.EventID, act.Severity, act.Kind, guest, act.Message)
				return nil
			})
			if err != nil {
				return err
			}
			defer sub.Close()

			logger.Info().Str("subject", subj).Msg("watching activity")
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&eventID, "event", "", "Only show activity of this event")
	return cmd
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/checkin"
)

func newCodeCommand() *cobra.Command {
	var (
		eventID string
		guestID string
		pngPath string
		size    int
	)

	cmd := &cobra.Command{
		Use:   "code",
		Short: "Print a guest's check-in code, optionally writing its QR image",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := checkin.Encode(eventID, guestID)
			if _, err := checkin.Decode(text); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)

			if pngPath == "" {
				return nil
			}
			png, err := checkin.RenderPNG(text, size)
			if err != nil {
				return fmt.Errorf("render qr: %w", err)
			}
			return os.WriteFile(pngPath, png, 0o644)
		},
	}

	cmd.Flags().StringVar(&eventID, "event", "", "Event id")
	cmd.Flags().StringVar(&guestID, "guest", "", "Guest id")
	cmd.Flags().StringVar(&pngPath, "png", "", "Write the QR code PNG to this file")
	cmd.Flags().IntVar(&size, "size", checkin.DefaultQRSize, "QR image size in pixels")
	_ = cmd.MarkFlagRequired("event")
	_ = cmd.MarkFlagRequired("guest")
	return cmd
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/choplin/medialedger/internal/config"
	"github.com/choplin/medialedger/internal/httpapi"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc, closeDB, err := openMedia()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return httpapi.Serve(ctx, cfg.HTTPAddr, httpapi.Router(uc))
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default 127.0.0.1:8080)")
	_ = settings.BindPFlag(config.KeyHTTPAddr, cmd.Flags().Lookup("addr"))

	return cmd
}

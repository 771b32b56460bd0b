package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"notes-api/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the gRPC health server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		log.Info().
			Str("environment", cfg.App.Environment).
			Int("port_http", cfg.Server.PortHTTP).
			Int("port_grpc", cfg.Server.PortGRPC).
			Msg("Starting Notes API")

		srv, err := server.NewServer(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}

		// Канал для graceful shutdown
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		errChan := srv.Start()

		// Ожидание сигнала или ошибки
		select {
		case err := <-errChan:
			log.Error().Err(err).Msg("Server error")
			_ = srv.Shutdown()
			return err
		case sig := <-sigChan:
			log.Info().Str("signal", sig.String()).Msg("Received signal")
		}

		if err := srv.Shutdown(); err != nil {
			return err
		}
		log.Info().Msg("Notes API stopped")
		return nil
	},
}

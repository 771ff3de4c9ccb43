package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medichat/config"
	"medichat/controllers"
	"medichat/models"
	"medichat/services"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat server",
	Long: `Serve starts the HTTP server with the SSE and WebSocket chat endpoints,
the card API and the embedded web client. Flags override environment
variables and .env files.

Examples:
  medichat serve
  medichat serve --port 3000 --mode word
  medichat serve --delay-scale 0 --discord`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("port", "p", 0, "Port to listen on (env PORT)")
	cmd.Flags().StringP("mode", "m", "", "Default streaming mode: chunk or word (env STREAMING_MODE)")
	cmd.Flags().Int("chunk-size", 0, "Pieces per frame in chunk mode (env CHUNK_SIZE)")
	cmd.Flags().Float64("delay-scale", 1, "Multiplier for streaming delays, 0 disables pacing (env STREAM_DELAY_SCALE)")
	cmd.Flags().Bool("discord", false, "Start the Discord bot (env ENABLE_DISCORD)")
}

// applyServeFlags copies explicitly set flags over the loaded config.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("mode") {
		mode, _ := flags.GetString("mode")
		cfg.Stream.Mode = models.StreamMode(mode)
	}
	if flags.Changed("chunk-size") {
		cfg.Stream.ChunkSize, _ = flags.GetInt("chunk-size")
	}
	if flags.Changed("delay-scale") {
		cfg.Stream.DelayScale, _ = flags.GetFloat64("delay-scale")
	}
	if flags.Changed("discord") {
		cfg.Discord.Enabled, _ = flags.GetBool("discord")
	}
	return cfg.Validate()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := applyServeFlags(cmd, cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Cancelled on shutdown so in-flight streams stop.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	a, err := newApp(baseCtx, cfg)
	if err != nil {
		return err
	}

	var discord *services.DiscordService
	if cfg.Discord.Enabled {
		discord = services.NewDiscordService(a.chatbot, cfg.Discord.Token, cfg.Discord.CommandPrefix)
	}

	ctrl, err := controllers.NewController(cfg, a.chatbot, a.index, discord)
	if err != nil {
		return fmt.Errorf("failed to create controller: %w", err)
	}
	if err := ctrl.StartServices(); err != nil {
		log.Printf("[main] failed to start Discord service: %v", err)
	}
	go ctrl.Limiter().Run(baseCtx, time.Minute)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           ctrl.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("[main] server listening on %s (mode=%s, chunk_size=%d, delay_scale=%.2f)",
			cfg.Server.Addr(), cfg.Stream.Mode, cfg.Stream.ChunkSize, cfg.Stream.DelayScale)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-done:
		log.Println("[main] shutting down...")
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	}

	cancelBase()
	if err := ctrl.StopServices(); err != nil {
		log.Printf("[main] error stopping services: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Printf("[main] server stopped gracefully (streams: %+v)", a.chatbot.Stats())
	return nil
}

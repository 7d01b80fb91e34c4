package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ASHISH26940/booksdb/internal/config"
	"github.com/ASHISH26940/booksdb/internal/logging"
	internal_raft "github.com/ASHISH26940/booksdb/internal/raft"
	"github.com/ASHISH26940/booksdb/internal/server"
	"github.com/ASHISH26940/booksdb/internal/store"
	"github.com/spf13/cobra"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	ConfigFile string
	Port       int
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the book store HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "path to TOML config file")
	cmd.Flags().IntVarP(&opts.Port, "port", "p", 0, "override the configured HTTP port")

	return cmd
}

func loadConfig(opts *ServeOptions) (*config.Config, error) {
	cfg := config.New()
	if opts.ConfigFile != "" {
		if err := cfg.Load(opts.ConfigFile); err != nil {
			return nil, fmt.Errorf("load config %s: %w", opts.ConfigFile, err)
		}
	}
	if opts.Port != 0 {
		cfg.Port = opts.Port
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})

	var storeOpts []store.Option
	if cfg.Seed {
		storeOpts = append(storeOpts, store.WithSeed(store.DefaultSeed(time.Now())...))
	}
	if cfg.AllowBlank {
		storeOpts = append(storeOpts, store.WithAllowBlank())
	}
	st, err := store.NewStore(storeOpts...)
	if err != nil {
		return err
	}

	node, err := internal_raft.NewNode(cfg, internal_raft.NewFSM(st, logger), logger)
	if err != nil {
		return err
	}
	defer node.Close()

	waitCtx, cancel := context.WithTimeout(ctx, 10*cfg.Raft.ElectionTimeout+time.Second)
	err = node.WaitForLeader(waitCtx)
	cancel()
	if err != nil {
		return err
	}
	logger.Info("raft node is leader", "node_id", cfg.NodeID, "books", st.Len())

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.New(st, node, cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", cfg.Addr())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

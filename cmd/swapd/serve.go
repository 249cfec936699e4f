package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/egaotan/solana-swap/api"
	"github.com/egaotan/solana-swap/backend"
	"github.com/egaotan/solana-swap/config"
	"github.com/egaotan/solana-swap/dingsdk"
	"github.com/egaotan/solana-swap/env"
	"github.com/egaotan/solana-swap/networkdetect"
	"github.com/egaotan/solana-swap/notify"
	"github.com/egaotan/solana-swap/program"
	"github.com/egaotan/solana-swap/store"
	"github.com/egaotan/solana-swap/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Run the swap host and its HTTP API",
		SilenceUsage: true,
		RunE:         runServe,
	}

	cmd.Flags().String("listen", ":8080", "HTTP listen address")
	cmd.Flags().String("program-id", "", "swap program id, defaults to the deployed program")
	cmd.Flags().String("tokens-file", "", "token registry JSON file")
	cmd.Flags().String("db-url", "", "MySQL host:port for swap history")
	cmd.Flags().String("db-scheme", "swap", "MySQL database")
	cmd.Flags().String("db-user", "", "MySQL user")
	cmd.Flags().String("db-passwd", "", "MySQL password")
	cmd.Flags().String("ding-url", "", "DingTalk robot webhook")
	cmd.Flags().Int("notify-buffer", 1024, "buffered swap notifications")
	cmd.Flags().Bool("net-status", false, "watch rpc node latency")
	cmd.Flags().String("rpc", "https://api.mainnet-beta.solana.com", "Solana RPC URL")
	cmd.Flags().StringSlice("rpc-nodes", nil, "candidate RPC URLs (comma-separated)")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().String("log-path", "", "rotated log file")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := utils.NewLogger(cfg.LogLevel, cfg.LogPath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	programID, err := program.ID(cfg.ProgramID)
	if err != nil {
		return fmt.Errorf("program-id: %w", err)
	}

	e := env.NewEnv(logger)
	if cfg.TokensFile != "" {
		if err := e.LoadTokens(cfg.TokensFile); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks := make([]notify.Sink, 0, 2)
	var dsdk *dingsdk.DingSdk
	if cfg.DingUrl != "" {
		dsdk = dingsdk.NewDingSdk(cfg.DingUrl)
		sinks = append(sinks, notify.NewDingSink(dsdk, e))
	}
	var history api.History
	if cfg.DBUrl != "" {
		dao, err := store.NewDao(cfg.DBUrl, cfg.DBScheme, cfg.DBUser, cfg.DBPasswd)
		if err != nil {
			return err
		}
		if err := dao.Migrate(); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		s := store.NewStore(dao)
		sinks = append(sinks, s)
		history = s
	}

	notifier := notify.NewNotify(ctx, cfg.NotifyBuffer, logger, sinks...)
	notifier.Start()
	defer notifier.Stop()

	if cfg.NetStatus {
		nd, err := networkdetect.NewNetworkDetector(cfg.Endpoint(), dsdk, logger)
		if err != nil {
			return err
		}
		if err := nd.Start(); err != nil {
			logger.Warn("network detector", zap.Error(err))
		} else {
			defer nd.Stop()
		}
	}

	b := backend.NewBackend(programID, backend.SystemClock{}, notifier, logger)
	server := api.NewServer(cfg.Listen, b, e, history, logger)
	serveErr := server.Start()
	logger.Info("swapd started",
		zap.Stringer("program", programID),
		zap.String("listen", cfg.Listen),
		zap.Int("sinks", len(sinks)),
	)

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return fmt.Errorf("rpc server: %w", err)
	}
	if err := server.Stop(); err != nil {
		logger.Error("stop rpc server", zap.Error(err))
	}
	logger.Info("swapd stopped")
	return nil
}

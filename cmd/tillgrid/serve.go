package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tillgrid/tillgrid"
	"github.com/tillgrid/tillgrid/internal/config"
	"github.com/tillgrid/tillgrid/internal/logging"
	"github.com/tillgrid/tillgrid/internal/presentation/tui"
	adminhttp "github.com/tillgrid/tillgrid/pkg/adapters/http"
	"github.com/tillgrid/tillgrid/pkg/adapters/mqtt"
	redisstore "github.com/tillgrid/tillgrid/pkg/adapters/redis"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the fleet session server",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		logger := logging.New(level, cfg.LogJSON)

		tui.PrintBanner()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		transport := mqtt.New(mqtt.Config{
			BrokerURL:   cfg.MQTT.BrokerURL,
			ClientID:    cfg.MQTT.ClientID,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			TopicPrefix: cfg.MQTT.TopicPrefix,
			QoS:         cfg.MQTT.QoS,
		}, mqtt.WithLogger(logger))
		if err := transport.Connect(ctx); err != nil {
			return fmt.Errorf("connect transport: %w", err)
		}
		defer transport.Close()

		opts := []tillgrid.Option{
			tillgrid.WithLogger(logger),
			tillgrid.WithErrorSounds(cfg.ErrorSounds...),
		}
		if cfg.StrictTransform {
			opts = append(opts, tillgrid.WithStrictTransform())
		}
		if cfg.Redis.Enabled {
			store := redisstore.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB,
				redisstore.WithTTL(cfg.Redis.TTL.Std()))
			defer store.Close()
			opts = append(opts, tillgrid.WithStatusStore(store))
		}
		server := tillgrid.New(transport, opts...)

		admin := adminhttp.NewServer(server.Registry(), server.StatusCache(), server.Metrics(),
			adminhttp.WithLogger(logger))
		go func() {
			if err := admin.ListenAndServe(ctx, cfg.AdminAddr); err != nil {
				logger.Error("admin server stopped", "error", err)
			}
		}()
		logger.Info("serving", "admin", cfg.AdminAddr, "broker", cfg.MQTT.BrokerURL, "version", tillgrid.Version)

		server.Run(ctx)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/thoukydides/heatmiser-wifi/internal/pkg/config"
	"github.com/thoukydides/heatmiser-wifi/internal/pkg/database"
	"github.com/thoukydides/heatmiser-wifi/internal/pkg/database/migration"
	"github.com/thoukydides/heatmiser-wifi/internal/pkg/heatmiser"
	"github.com/thoukydides/heatmiser-wifi/internal/pkg/mqtt"
	"github.com/thoukydides/heatmiser-wifi/internal/pkg/poller"
	"github.com/thoukydides/heatmiser-wifi/internal/pkg/publisher"
)

// Temperature log rows older than this are trimmed nightly.
const logRetention = 8 * 24 * time.Hour

func HeatmiserCommand(ctx *cli.Context) error {
	devices, err := config.LoadDevices(ctx.String("devices-file"))
	if err != nil {
		return err
	}

	cfg := &config.Config{
		Devices:          devices,
		DatabaseURL:      ctx.String("database-url"),
		MigrationsFolder: ctx.String("migrations-folder"),
		PollInterval:     ctx.Duration("poll-interval"),
		LogLevel:         ctx.String("log-level"),
		Verbose:          ctx.Bool("verbose"),
	}
	if host := ctx.String("mqtt-host"); host != "" {
		cfg.Mqtt = &config.MqttConfig{
			Host:     host,
			Username: ctx.String("mqtt-user"),
			Password: ctx.String("mqtt-pass"),
		}
	}

	return run(ctx.Context, cfg)
}

func run(ctx context.Context, cfg *config.Config) error {
	logCfg := zap.NewProductionConfig()

	var err error
	logCfg.Level, err = zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	logger := zap.Must(logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)))
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()
	zap.ReplaceGlobals(logger)

	if err := migration.Migrate(cfg.DatabaseURL, cfg.MigrationsFolder); err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	db := database.NewDatabase(pool)
	if err := db.Ping(ctx); err != nil {
		return err
	}

	pub := publisher.New()
	if err := pub.RegisterStore("postgres", db); err != nil {
		return err
	}

	if cfg.Mqtt != nil {
		sink := mqtt.New(cfg.Mqtt)
		if err := sink.Connect(); err != nil {
			return err
		}
		defer sink.Disconnect()
		if err := pub.RegisterSink("mqtt", sink); err != nil {
			return err
		}
	}

	devs := make([]poller.Device, 0, len(cfg.Devices))
	for _, d := range cfg.Devices {
		devs = append(devs, poller.Device{
			Name:   d.Name,
			Reader: heatmiser.NewClient(d.Host, d.Port, d.Pin, d.Timeout),
		})
	}
	daemon := poller.New(pub, cfg.PollInterval, cfg.Verbose, devs...)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return daemon.Run(ctx)
	})

	eg.Go(func() error {
		return cronDbCleanup(ctx, db)
	})

	return eg.Wait()
}

func cronDbCleanup(ctx context.Context, db *database.Database) error {
	if err := db.Cleanup(ctx, logRetention); err != nil {
		return err
	}

	c := cron.New()
	if _, err := c.AddFunc("0 3 * * *", func() {
		if err := db.Cleanup(context.Background(), logRetention); err != nil {
			zap.L().Error("error cleaning up database", zap.Error(err))
			return
		}
		zap.L().Info("trimmed temperature log")
	}); err != nil {
		return err
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

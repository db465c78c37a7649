// Package poller runs the unattended polling loop: read a status snapshot per
// device, classify why heating and hot water are in their current state,
// detect changes against the previous cycle and hand the results to storage.
package poller

import (
	"context"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/thoukydides/heatmiser-wifi/internal/pkg/heatmiser"
)

// Store receives per-cycle results. Implementations are called once per
// device per cycle with no transactional coupling across devices.
type Store interface {
	SettingsUpdate(ctx context.Context, device string, product heatmiser.Product, mode heatmiser.RunMode,
		units heatmiser.TempUnits, holiday heatmiser.Holiday, schedule heatmiser.ScheduleMode) error
	ComfortUpdate(ctx context.Context, device string, prog *heatmiser.ComfortProgram) error
	TimerUpdate(ctx context.Context, device string, prog *heatmiser.TimerProgram) error
	LogInsert(ctx context.Context, device string, t time.Time, indoor *float64, heatTarget, comfortTarget int) error
	EventInsert(ctx context.Context, device string, t time.Time, class, state string, temperature *float64) error
}

// StatusReader is the protocol client surface the daemon needs.
type StatusReader interface {
	ReadStatus(ctx context.Context) (*heatmiser.Status, error)
}

// Device pairs a configured name with its protocol client.
type Device struct {
	Name   string
	Reader StatusReader
}

// Daemon polls each device on its own goroutine. Cycles for distinct devices
// share no mutable state; within one device everything is sequential.
type Daemon struct {
	devices  []Device
	store    Store
	interval time.Duration
	verbose  bool
	logger   *zap.Logger
	now      func() time.Time
}

func New(store Store, interval time.Duration, verbose bool, devices ...Device) *Daemon {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Daemon{
		devices:  devices,
		store:    store,
		interval: interval,
		verbose:  verbose,
		logger:   zap.L(),
		now:      time.Now,
	}
}

// Run polls until the context is cancelled. Transport and protocol errors
// abort only the affected device's cycle; validation errors and context
// cancellation end the loop.
func (d *Daemon) Run(ctx context.Context) error {
	eg, gctx := errgroup.WithContext(ctx)
	for _, dev := range d.devices {
		dev := dev
		eg.Go(func() error {
			return d.runDevice(gctx, dev)
		})
	}
	err := eg.Wait()
	if ctx.Err() != nil {
		// Cancellation of the parent context is a clean shutdown.
		return nil
	}
	return err
}

func (d *Daemon) runDevice(ctx context.Context, dev Device) error {
	logger := d.logger.With(zap.String("device", dev.Name))
	var prev *Observation
	var prevStatus *heatmiser.Status

	for {
		status, err := dev.Reader.ReadStatus(ctx)
		switch {
		case err == nil:
			obs := d.processCycle(ctx, dev.Name, logger, status, prev, prevStatus)
			prev = &obs
			prevStatus = status
		case heatmiser.IsRecoverable(err):
			logger.Error("poll cycle failed", zap.Error(err))
		default:
			return err
		}

		// Shutdown is only observed between cycles, never mid-command.
		timer := time.NewTimer(alignedDelay(d.now(), d.interval))
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info("poll loop stopped")
			return nil
		case <-timer.C:
		}
	}
}

func (d *Daemon) processCycle(ctx context.Context, device string, logger *zap.Logger,
	status *heatmiser.Status, prev *Observation, prevStatus *heatmiser.Status,
) Observation {
	now := d.now()
	obs := Classify(status, now)
	comfortTarget, _ := status.ComfortAt(now)

	d.updateSettings(ctx, device, logger, status, prevStatus)

	indoor := status.Temperatures.Internal
	if indoor == nil {
		indoor = status.Temperatures.Remote
	}
	heatTarget := 0
	if status.Heating != nil {
		heatTarget = status.Heating.Target
	}
	if err := d.store.LogInsert(ctx, device, now, indoor, heatTarget, comfortTarget); err != nil {
		logger.Error("log insert failed", zap.Error(err))
	}

	for _, ev := range DetectChanges(device, prev, obs) {
		if err := d.store.EventInsert(ctx, ev.Device, ev.Time, ev.Class, ev.State, ev.Temperature); err != nil {
			logger.Error("event insert failed", zap.Error(err), zap.String("class", ev.Class))
		}
	}

	if d.verbose {
		logger.Info("poll cycle",
			zap.Float64("indoor", lo.FromPtr(indoor)),
			zap.Bool("heating_on", obs.HeatingOn),
			zap.String("heating_cause", string(obs.HeatingCause)),
			zap.Int("heating_target", obs.HeatingTarget),
			zap.Bool("hotwater_on", obs.HotWaterOn),
			zap.String("hotwater_cause", string(obs.HotWaterCause)))
	}
	return obs
}

// updateSettings pushes settings and program rows only when they differ from
// the previous snapshot, or on the first cycle.
func (d *Daemon) updateSettings(ctx context.Context, device string, logger *zap.Logger,
	status, prevStatus *heatmiser.Status,
) {
	if prevStatus == nil || settingsChanged(status, prevStatus) {
		if err := d.store.SettingsUpdate(ctx, device, status.Product, status.RunMode,
			status.Config.Units, status.Holiday, status.Config.ScheduleMode); err != nil {
			logger.Error("settings update failed", zap.Error(err))
		}
	}
	if status.Comfort != nil && (prevStatus == nil || !status.Comfort.Equal(prevStatus.Comfort)) {
		if err := d.store.ComfortUpdate(ctx, device, status.Comfort); err != nil {
			logger.Error("comfort update failed", zap.Error(err))
		}
	}
	if status.Timer != nil && (prevStatus == nil || !status.Timer.Equal(prevStatus.Timer)) {
		if err := d.store.TimerUpdate(ctx, device, status.Timer); err != nil {
			logger.Error("timer update failed", zap.Error(err))
		}
	}
}

func settingsChanged(cur, prev *heatmiser.Status) bool {
	return cur.Product != prev.Product ||
		cur.RunMode != prev.RunMode ||
		cur.Config.Units != prev.Config.Units ||
		cur.Config.ScheduleMode != prev.Config.ScheduleMode ||
		cur.Holiday != prev.Holiday
}

// alignedDelay returns the time to sleep before the next cycle. When the
// interval divides 24 hours evenly the wake times are aligned to multiples of
// the interval since local midnight; otherwise the plain interval is used.
func alignedDelay(now time.Time, interval time.Duration) time.Duration {
	if interval <= 0 {
		return time.Minute
	}
	if (24*time.Hour)%interval != 0 {
		return interval
	}
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return interval - now.Sub(midnight)%interval
}

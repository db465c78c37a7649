// Package publisher fans the poll daemon's output out to named sinks: the
// postgres store plus any number of lighter event consumers (MQTT). Sink
// failures are logged and do not affect the other sinks or the poll cycle.
package publisher

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/thoukydides/heatmiser-wifi/internal/pkg/heatmiser"
	"github.com/thoukydides/heatmiser-wifi/internal/pkg/poller"
)

var errAlreadyRegistered = errors.New("publisher already registered")

// EventSink receives events and log lines but not settings or programs.
type EventSink interface {
	EventInsert(ctx context.Context, device string, t time.Time, class, state string, temperature *float64) error
	LogInsert(ctx context.Context, device string, t time.Time, indoor *float64, heatTarget, comfortTarget int) error
}

// Publisher implements poller.Store by fanning each call out to every
// registered store and sink.
type Publisher struct {
	stores map[string]poller.Store
	sinks  map[string]EventSink
	logger *zap.Logger
}

func New() *Publisher {
	return &Publisher{
		stores: make(map[string]poller.Store),
		sinks:  make(map[string]EventSink),
		logger: zap.L(),
	}
}

// RegisterStore adds a full store (settings, programs, log, events).
func (p *Publisher) RegisterStore(name string, store poller.Store) error {
	if _, ok := p.stores[name]; ok {
		return errAlreadyRegistered
	}
	p.stores[name] = store
	return nil
}

// RegisterSink adds an event/log-only consumer.
func (p *Publisher) RegisterSink(name string, sink EventSink) error {
	if _, ok := p.sinks[name]; ok {
		return errAlreadyRegistered
	}
	p.sinks[name] = sink
	return nil
}

func (p *Publisher) SettingsUpdate(ctx context.Context, device string, product heatmiser.Product,
	mode heatmiser.RunMode, units heatmiser.TempUnits, holiday heatmiser.Holiday, schedule heatmiser.ScheduleMode,
) error {
	for name, store := range p.stores {
		if err := store.SettingsUpdate(ctx, device, product, mode, units, holiday, schedule); err != nil {
			p.logger.Error("settings update failed", zap.Error(err), zap.String("publisher", name))
		}
	}
	return nil
}

func (p *Publisher) ComfortUpdate(ctx context.Context, device string, prog *heatmiser.ComfortProgram) error {
	for name, store := range p.stores {
		if err := store.ComfortUpdate(ctx, device, prog); err != nil {
			p.logger.Error("comfort update failed", zap.Error(err), zap.String("publisher", name))
		}
	}
	return nil
}

func (p *Publisher) TimerUpdate(ctx context.Context, device string, prog *heatmiser.TimerProgram) error {
	for name, store := range p.stores {
		if err := store.TimerUpdate(ctx, device, prog); err != nil {
			p.logger.Error("timer update failed", zap.Error(err), zap.String("publisher", name))
		}
	}
	return nil
}

func (p *Publisher) LogInsert(ctx context.Context, device string, t time.Time, indoor *float64, heatTarget, comfortTarget int) error {
	for name, store := range p.stores {
		if err := store.LogInsert(ctx, device, t, indoor, heatTarget, comfortTarget); err != nil {
			p.logger.Error("log insert failed", zap.Error(err), zap.String("publisher", name))
		}
	}
	for name, sink := range p.sinks {
		if err := sink.LogInsert(ctx, device, t, indoor, heatTarget, comfortTarget); err != nil {
			p.logger.Error("log insert failed", zap.Error(err), zap.String("publisher", name))
		}
	}
	return nil
}

func (p *Publisher) EventInsert(ctx context.Context, device string, t time.Time, class, state string, temperature *float64) error {
	for name, store := range p.stores {
		if err := store.EventInsert(ctx, device, t, class, state, temperature); err != nil {
			p.logger.Error("event insert failed", zap.Error(err), zap.String("publisher", name))
		}
	}
	for name, sink := range p.sinks {
		if err := sink.EventInsert(ctx, device, t, class, state, temperature); err != nil {
			p.logger.Error("event insert failed", zap.Error(err), zap.String("publisher", name))
		}
	}
	return nil
}

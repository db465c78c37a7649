package poller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/thoukydides/heatmiser-wifi/internal/pkg/heatmiser"
)

type storedEvent struct {
	Device      string
	Class       string
	State       string
	Temperature *float64
}

// fakeStore records every call; it stands in for the postgres publisher.
type fakeStore struct {
	settings int
	comfort  int
	timer    int
	logs     int
	events   []storedEvent
}

func (f *fakeStore) SettingsUpdate(_ context.Context, _ string, _ heatmiser.Product, _ heatmiser.RunMode,
	_ heatmiser.TempUnits, _ heatmiser.Holiday, _ heatmiser.ScheduleMode,
) error {
	f.settings++
	return nil
}

func (f *fakeStore) ComfortUpdate(_ context.Context, _ string, _ *heatmiser.ComfortProgram) error {
	f.comfort++
	return nil
}

func (f *fakeStore) TimerUpdate(_ context.Context, _ string, _ *heatmiser.TimerProgram) error {
	f.timer++
	return nil
}

func (f *fakeStore) LogInsert(_ context.Context, _ string, _ time.Time, _ *float64, _, _ int) error {
	f.logs++
	return nil
}

func (f *fakeStore) EventInsert(_ context.Context, device string, _ time.Time, class, state string, temperature *float64) error {
	f.events = append(f.events, storedEvent{Device: device, Class: class, State: state, Temperature: temperature})
	return nil
}

func newTestDaemon(t *testing.T, store Store, at time.Time) *Daemon {
	t.Helper()
	d := New(store, time.Minute, false)
	d.logger = zaptest.NewLogger(t)
	d.now = func() time.Time { return at }
	return d
}

func TestProcessCycleFirstCycleEmitsEverything(t *testing.T) {
	store := &fakeStore{}
	d := newTestDaemon(t, store, noon)

	status := prtStatus()
	obs := d.processCycle(context.Background(), "lounge", d.logger, status, nil, nil)

	assert.Equal(t, 1, store.settings)
	assert.Equal(t, 1, store.comfort)
	assert.Equal(t, 1, store.timer)
	assert.Equal(t, 1, store.logs)
	assert.Len(t, store.events, 3, "first cycle emits every applicable facet")
	assert.Equal(t, HeatingComfort, obs.HeatingCause)
}

func TestProcessCycleStableSnapshotOnlyLogs(t *testing.T) {
	store := &fakeStore{}
	d := newTestDaemon(t, store, noon)

	status := prtStatus()
	obs := d.processCycle(context.Background(), "lounge", d.logger, status, nil, nil)

	again := prtStatus()
	d.now = func() time.Time { return noon.Add(time.Minute) }
	d.processCycle(context.Background(), "lounge", d.logger, again, &obs, status)

	assert.Equal(t, 1, store.settings, "unchanged settings are not rewritten")
	assert.Equal(t, 1, store.comfort)
	assert.Equal(t, 1, store.timer)
	assert.Equal(t, 2, store.logs, "the temperature log grows every cycle")
	assert.Len(t, store.events, 3, "no new events for an unchanged snapshot")
}

func TestProcessCycleHotWaterOverrideEndToEnd(t *testing.T) {
	at := time.Date(2024, 1, 8, 7, 0, 0, 0, time.Local)
	store := &fakeStore{}
	d := newTestDaemon(t, store, at)

	first := prtStatus()
	first.HotWater.On = true
	obs := d.processCycle(context.Background(), "lounge", d.logger, first, nil, nil)
	baseline := len(store.events)

	second := prtStatus()
	second.HotWater.On = false
	d.now = func() time.Time { return at.Add(time.Minute) }
	d.processCycle(context.Background(), "lounge", d.logger, second, &obs, first)

	emitted := store.events[baseline:]
	require.Len(t, emitted, 1, "exactly one event for the hot water facet")
	assert.Equal(t, EventHotWater, emitted[0].Class)
	assert.Equal(t, string(HotWaterOverride), emitted[0].State)
}

func TestProcessCycleSettingsChangeRewrites(t *testing.T) {
	store := &fakeStore{}
	d := newTestDaemon(t, store, noon)

	first := prtStatus()
	obs := d.processCycle(context.Background(), "lounge", d.logger, first, nil, nil)

	second := prtStatus()
	second.Holiday = heatmiser.Holiday{Enabled: true, Until: noon.AddDate(0, 0, 3)}
	d.processCycle(context.Background(), "lounge", d.logger, second, &obs, first)

	assert.Equal(t, 2, store.settings)
}

type fakeReader struct {
	statuses []*heatmiser.Status
	errs     []error
	calls    int
}

func (f *fakeReader) ReadStatus(context.Context) (*heatmiser.Status, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.statuses) {
		return f.statuses[i], nil
	}
	return prtStatus(), nil
}

func TestRunRecoversFromTransportErrors(t *testing.T) {
	store := &fakeStore{}
	d := New(store, 10*time.Millisecond, false, Device{
		Name: "lounge",
		Reader: &fakeReader{
			errs:     []error{&heatmiser.TransportError{Addr: "x", Op: "connect"}, nil},
			statuses: []*heatmiser.Status{nil, prtStatus()},
		},
	})
	d.logger = zaptest.NewLogger(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, d.Run(ctx))

	assert.GreaterOrEqual(t, store.logs, 1, "a failed cycle does not stop later cycles")
}

func TestRunStopsOnValidationError(t *testing.T) {
	d := New(&fakeStore{}, 10*time.Millisecond, false, Device{
		Name:   "lounge",
		Reader: &fakeReader{errs: []error{&heatmiser.ValidationError{Reason: "bug"}}},
	})
	d.logger = zaptest.NewLogger(t)

	err := d.Run(context.Background())
	var verr *heatmiser.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestAlignedDelay(t *testing.T) {
	// 10 minutes divides 24h: wake times align to multiples since midnight.
	at := time.Date(2024, 1, 8, 12, 3, 20, 0, time.Local)
	assert.Equal(t, 6*time.Minute+40*time.Second, alignedDelay(at, 10*time.Minute))

	// Exactly on a boundary: sleep a full interval, not zero.
	at = time.Date(2024, 1, 8, 12, 10, 0, 0, time.Local)
	assert.Equal(t, 10*time.Minute, alignedDelay(at, 10*time.Minute))

	// 7 minutes does not divide 24h: plain interval.
	assert.Equal(t, 7*time.Minute, alignedDelay(at, 7*time.Minute))
}

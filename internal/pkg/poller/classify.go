package poller

import (
	"time"

	"github.com/thoukydides/heatmiser-wifi/internal/pkg/heatmiser"
)

// HeatingCause explains why the heating target is what it is.
type HeatingCause string

const (
	HeatingNone         HeatingCause = "none"         // model has no heating control
	HeatingOff          HeatingCause = "off"          // device disabled
	HeatingHoliday      HeatingCause = "holiday"      // frost/holiday/away override
	HeatingHold         HeatingCause = "hold"         // temporary manual override with countdown
	HeatingComfort      HeatingCause = "comfort"      // target matches the schedule
	HeatingOptimumStart HeatingCause = "optimumstart" // pre-heating ahead of a scheduled rise
	HeatingManual       HeatingCause = "manual"       // none of the above
)

// HotWaterCause explains the hot water state.
type HotWaterCause string

const (
	HotWaterNone     HotWaterCause = "none"     // model has no hot water control
	HotWaterOff      HotWaterCause = "off"      // device disabled
	HotWaterTimer    HotWaterCause = "timer"    // state matches the timer program
	HotWaterOverride HotWaterCause = "override" // state differs from the timer program
)

// Observation is the classified view of one snapshot, carried explicitly
// across polling cycles so change detection always compares against the
// immediately preceding cycle for the same device.
type Observation struct {
	At            time.Time
	HeatingOn     bool
	HeatingCause  HeatingCause
	HeatingTarget int
	HotWaterOn    bool
	HotWaterCause HotWaterCause
}

// Classify attributes the snapshot's heating and hot water state to causes,
// evaluated in precedence order.
func Classify(s *heatmiser.Status, at time.Time) Observation {
	obs := Observation{At: at}
	obs.HeatingCause, obs.HeatingTarget, obs.HeatingOn = classifyHeating(s, at)
	obs.HotWaterCause, obs.HotWaterOn = classifyHotWater(s, at)
	return obs
}

func classifyHeating(s *heatmiser.Status, at time.Time) (HeatingCause, int, bool) {
	if s.Heating == nil {
		return HeatingNone, 0, false
	}
	on := s.Heating.On
	if !s.Enabled {
		return HeatingOff, 0, on
	}
	if s.RunMode == heatmiser.RunModeFrost || s.Holiday.Enabled || s.Away {
		target := 0
		if s.FrostProtect.Enabled {
			target = s.FrostProtect.Target
		}
		return HeatingHoliday, target, on
	}
	if s.Heating.HoldMinutes > 0 {
		return HeatingHold, s.Heating.Target, on
	}
	current, next := s.ComfortAt(at)
	if s.Heating.Target == current {
		return HeatingComfort, s.Heating.Target, on
	}
	if !next.At.IsZero() && s.Heating.Target == next.Target && next.Target > current {
		return HeatingOptimumStart, s.Heating.Target, on
	}
	return HeatingManual, s.Heating.Target, on
}

func classifyHotWater(s *heatmiser.Status, at time.Time) (HotWaterCause, bool) {
	if s.HotWater == nil {
		return HotWaterNone, false
	}
	if !s.Enabled {
		return HotWaterOff, s.HotWater.On
	}
	if s.HotWater.On == s.TimerStateAt(at) {
		return HotWaterTimer, s.HotWater.On
	}
	return HotWaterOverride, s.HotWater.On
}

// Event classes recorded by change detection.
const (
	EventHeating  = "heating"  // heating output changed; state on/off
	EventTarget   = "target"   // heating cause or target changed; state is the cause
	EventHotWater = "hotwater" // hot water cause or state changed; state is the cause
)

// Event is one semantic state change ready for storage.
type Event struct {
	Device string
	Time   time.Time
	Class  string
	State  string
	// Temperature carries the heating target for target events and the hot
	// water on/off state (1/0) for hotwater events.
	Temperature *float64
}

// DetectChanges compares an observation against its predecessor and emits one
// event per changed facet. A nil previous observation is the device's first
// cycle and every applicable facet is emitted.
func DetectChanges(device string, prev *Observation, cur Observation) []Event {
	var events []Event

	if cur.HeatingCause != HeatingNone && (prev == nil || prev.HeatingOn != cur.HeatingOn) {
		events = append(events, Event{
			Device: device, Time: cur.At, Class: EventHeating, State: onOff(cur.HeatingOn),
		})
	}
	if cur.HeatingCause != HeatingNone &&
		(prev == nil || prev.HeatingCause != cur.HeatingCause || prev.HeatingTarget != cur.HeatingTarget) {
		target := float64(cur.HeatingTarget)
		events = append(events, Event{
			Device: device, Time: cur.At, Class: EventTarget, State: string(cur.HeatingCause), Temperature: &target,
		})
	}
	if cur.HotWaterCause != HotWaterNone &&
		(prev == nil || prev.HotWaterCause != cur.HotWaterCause || prev.HotWaterOn != cur.HotWaterOn) {
		state := 0.0
		if cur.HotWaterOn {
			state = 1.0
		}
		events = append(events, Event{
			Device: device, Time: cur.At, Class: EventHotWater, State: string(cur.HotWaterCause), Temperature: &state,
		})
	}
	return events
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

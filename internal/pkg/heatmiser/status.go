package heatmiser

import (
	"slices"
	"time"
)

// TempUnits is the display unit configured on the device.
type TempUnits uint8

const (
	Celsius    TempUnits = 0
	Fahrenheit TempUnits = 1
)

func (u TempUnits) String() string {
	if u == Fahrenheit {
		return "F"
	}
	return "C"
}

// ScheduleMode selects how many distinct program days the device keeps.
type ScheduleMode uint8

const (
	// ScheduleWeekdayWeekend keeps one entry set for Mon-Fri and one for
	// Sat-Sun ("5/2 mode").
	ScheduleWeekdayWeekend ScheduleMode = 0
	// ScheduleSevenDay keeps a distinct entry set per weekday.
	ScheduleSevenDay ScheduleMode = 1
)

// Days returns the number of program days the mode carries.
func (m ScheduleMode) Days() int {
	if m == ScheduleSevenDay {
		return 7
	}
	return 2
}

func (m ScheduleMode) String() string {
	if m == ScheduleSevenDay {
		return "7day"
	}
	return "5/2"
}

// RunMode is the device operating mode.
type RunMode uint8

const (
	RunModeHeating RunMode = 0
	RunModeFrost   RunMode = 1
)

func (m RunMode) String() string {
	if m == RunModeFrost {
		return "frost"
	}
	return "heating"
}

// SensorSource selects which temperature sensors drive the thermostat. The
// table covers every wire value; anything else fails decoding.
type SensorSource uint8

var sensorNames = map[SensorSource]string{
	0: "internal",
	1: "remote",
	2: "floor",
	3: "internal+floor",
	4: "remote+floor",
}

func (s SensorSource) String() string {
	if name, ok := sensorNames[s]; ok {
		return name
	}
	return "invalid"
}

var vendorNames = map[uint8]string{
	0: "heatmiser",
	1: "oem",
}

// Product identifies the device hardware and firmware.
type Product struct {
	Vendor  string
	Model   Model
	Version float64
}

// Config is the device's basic configuration. Decoded for every model; all
// of it is read-only over the wire.
type Config struct {
	Units                 TempUnits
	SwitchingDifferential int
	CalibrationOffset     int
	OutputDelay           int
	Address               int
	KeyLimit              int
	Sensor                SensorSource
	ScheduleMode          ScheduleMode
	OptimumStart          int
	RateOfChange          int
}

// Holiday is the away override: suppress normal scheduling until the return
// time.
type Holiday struct {
	Enabled bool
	Until   time.Time
}

// FrostProtect is the frost protection setting.
type FrostProtect struct {
	Enabled bool
	Target  int
}

// FloorLimit is present only on floor-limiting models.
type FloorLimit struct {
	Limiting bool
	Maximum  int
}

// Temperatures holds the sensor readings; a nil reading means the sensor is
// not fitted.
type Temperatures struct {
	Remote   *float64
	Floor    *float64
	Internal *float64
}

// Heating is the heating section: absent on hot-water-only models.
type Heating struct {
	On          bool
	Target      int
	HoldMinutes int
}

// HotWater is the hot water section: present on PRT-HW and TM1 only.
type HotWater struct {
	On           bool
	BoostMinutes int
}

// ComfortEntry is one scheduled target temperature change.
type ComfortEntry struct {
	Hour   int
	Minute int
	Target int
}

// TimerEntry is one scheduled hot water interval. The on time is inclusive,
// the off time exclusive.
type TimerEntry struct {
	OnHour    int
	OnMinute  int
	OffHour   int
	OffMinute int
}

// ComfortProgram is the weekly heating program: 2 or 7 days, each holding up
// to 4 entries ordered by time of day.
type ComfortProgram struct {
	Mode ScheduleMode
	Days [][]ComfortEntry
}

// Equal reports whether both programs hold the same mode and entries. Two nil
// programs are equal.
func (p *ComfortProgram) Equal(o *ComfortProgram) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.Mode != o.Mode || len(p.Days) != len(o.Days) {
		return false
	}
	for i := range p.Days {
		if !slices.Equal(p.Days[i], o.Days[i]) {
			return false
		}
	}
	return true
}

// TimerProgram is the weekly hot water program, same shape as the comfort
// program with on/off pairs.
type TimerProgram struct {
	Mode ScheduleMode
	Days [][]TimerEntry
}

// Equal reports whether both programs hold the same mode and intervals.
func (p *TimerProgram) Equal(o *TimerProgram) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.Mode != o.Mode || len(p.Days) != len(o.Days) {
		return false
	}
	for i := range p.Days {
		if !slices.Equal(p.Days[i], o.Days[i]) {
			return false
		}
	}
	return true
}

// Status is one decoded snapshot of the device state. Decoding produces a
// fresh value every time and nothing mutates it afterwards; the poll daemon
// compares two immutable snapshots. Optional sections are nil when the model
// does not carry them.
type Status struct {
	Product   Product
	Time      time.Time
	Enabled   bool
	KeyLock   bool
	Away      bool
	Holiday   Holiday
	ErrorCode uint8

	Config       Config
	RunMode      RunMode
	FrostProtect FrostProtect
	FloorLimit   *FloorLimit
	Temperatures Temperatures
	Heating      *Heating
	HotWater     *HotWater
	Comfort      *ComfortProgram
	Timer        *TimerProgram
}

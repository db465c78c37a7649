package heatmiser

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/samber/lo"
)

// Writable field names accepted by EncodeWrites. Values are validated against
// the reference Status's model: fields a model does not carry are rejected,
// not ignored.
const (
	FieldEnabled      = "enabled"       // bool
	FieldKeyLock      = "keylock"       // bool
	FieldRunMode      = "runmode"       // RunMode
	FieldAway         = "away"          // bool
	FieldHoliday      = "holiday"       // Holiday, return time truncated to minutes
	FieldTime         = "time"          // time.Time, seconds not writable
	FieldFrostEnabled = "frost_enabled" // bool
	FieldFrostTarget  = "frost_target"  // int, 7-17
	FieldHeatTarget   = "heat_target"   // int, 5-35
	FieldHoldMinutes  = "hold_minutes"  // int, 0-5985
	FieldBoostMinutes = "boost_minutes" // int
	FieldHotWaterOn   = "hotwater_on"   // bool
	FieldComfort      = "comfort"       // [][]ComfortEntry, one slice per program day
	FieldTimer        = "timer"         // [][]TimerEntry, one slice per program day
)

// fieldOrder fixes the order write items are produced in, so the same update
// always yields the same command frame.
var fieldOrder = []string{
	FieldEnabled, FieldKeyLock, FieldRunMode, FieldAway,
	FieldHoliday, FieldTime,
	FieldFrostEnabled, FieldFrostTarget,
	FieldHeatTarget, FieldHoldMinutes,
	FieldBoostMinutes, FieldHotWaterOn,
	FieldComfort, FieldTimer,
}

// readOnlyFields is the basic configuration the device never accepts writes
// for. Attempts are rejected loudly rather than dropped.
var readOnlyFields = []string{
	"units", "switching_differential", "calibration_offset", "output_delay",
	"address", "key_limit", "sensor", "schedule_mode", "optimum_start",
	"rate_of_change",
}

// EncodeWrites converts a sparse field-name to value mapping into the ordered
// write items for the 0xA3 command. The reference Status supplies the model
// and current schedule mode; it is not modified.
func EncodeWrites(ref *Status, fields map[string]any) ([]WriteItem, error) {
	if len(fields) == 0 {
		return nil, &ValidationError{Reason: "no fields to write"}
	}
	l, ok := layouts[ref.Product.Model]
	if !ok {
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown model %d", ref.Product.Model)}
	}

	for name := range fields {
		if lo.Contains(readOnlyFields, name) {
			return nil, &ValidationError{Field: name, Reason: "field is read-only"}
		}
		if !lo.Contains(fieldOrder, name) {
			return nil, &ValidationError{Field: name, Reason: "unknown field"}
		}
	}

	var items []WriteItem
	for _, name := range fieldOrder {
		value, present := fields[name]
		if !present {
			continue
		}
		item, err := encodeField(ref, l, name, value)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func encodeField(ref *Status, l layout, name string, value any) (WriteItem, error) {
	switch name {
	case FieldEnabled:
		return encodeBool(name, ofsEnabled, value)
	case FieldKeyLock:
		return encodeBool(name, ofsKeyLock, value)
	case FieldAway:
		return encodeBool(name, ofsAway, value)
	case FieldFrostEnabled:
		return encodeBool(name, ofsFrostEnabled, value)

	case FieldRunMode:
		if !l.heating {
			return WriteItem{}, &ValidationError{Field: name, Reason: "model has no heating control"}
		}
		mode, ok := value.(RunMode)
		if !ok || mode > RunModeFrost {
			return WriteItem{}, &ValidationError{Field: name, Reason: "want RunMode"}
		}
		return WriteItem{Offset: ofsRunMode, Data: []byte{byte(mode)}}, nil

	case FieldFrostTarget:
		return encodeRange(name, ofsFrostTarget, value, 7, 17)

	case FieldHeatTarget:
		if !l.heating {
			return WriteItem{}, &ValidationError{Field: name, Reason: "model has no heating control"}
		}
		return encodeRange(name, ofsHeatTarget, value, 5, 35)

	case FieldHoldMinutes:
		if !l.heating {
			return WriteItem{}, &ValidationError{Field: name, Reason: "model has no heating control"}
		}
		return encodeWord(name, ofsHoldMinutes, value, 5985)

	case FieldBoostMinutes:
		if !l.hotWater {
			return WriteItem{}, &ValidationError{Field: name, Reason: "model has no hot water control"}
		}
		return encodeWord(name, ofsBoost, value, 5985)

	case FieldHotWaterOn:
		if !l.hotWater {
			return WriteItem{}, &ValidationError{Field: name, Reason: "model has no hot water control"}
		}
		return encodeBool(name, ofsHotWaterOn, value)

	case FieldHoliday:
		hol, ok := value.(Holiday)
		if !ok {
			return WriteItem{}, &ValidationError{Field: name, Reason: "want Holiday"}
		}
		until := hol.Until.Truncate(time.Minute)
		data := []byte{
			byte(until.Day()),
			byte(until.Month()),
			byte(until.Year() - 2000),
			byte(until.Hour()),
			byte(until.Minute()),
			boolByte(hol.Enabled),
		}
		return WriteItem{Offset: ofsHoliday, Data: data}, nil

	case FieldTime:
		t, ok := value.(time.Time)
		if !ok {
			return WriteItem{}, &ValidationError{Field: name, Reason: "want time.Time"}
		}
		data := make([]byte, 0, timeLen)
		data = binary.LittleEndian.AppendUint16(data, uint16(t.Year()))
		data = append(data, byte(t.Month()), byte(t.Day()), byte(t.Hour()), byte(t.Minute()), 0)
		return WriteItem{Offset: ofsTime, Data: data}, nil

	case FieldComfort:
		if !l.comfort {
			return WriteItem{}, &ValidationError{Field: name, Reason: "model has no comfort program"}
		}
		days, ok := value.([][]ComfortEntry)
		if !ok {
			return WriteItem{}, &ValidationError{Field: name, Reason: "want [][]ComfortEntry"}
		}
		return encodeComfortProgram(ref, l, days)

	case FieldTimer:
		if !l.hotWater {
			return WriteItem{}, &ValidationError{Field: name, Reason: "model has no hot water control"}
		}
		days, ok := value.([][]TimerEntry)
		if !ok {
			return WriteItem{}, &ValidationError{Field: name, Reason: "want [][]TimerEntry"}
		}
		return encodeTimerProgram(ref, l, days)
	}
	return WriteItem{}, &ValidationError{Field: name, Reason: "unknown field"}
}

func encodeComfortProgram(ref *Status, l layout, days [][]ComfortEntry) (WriteItem, error) {
	mode := ref.Config.ScheduleMode
	if len(days) != mode.Days() {
		return WriteItem{}, &ValidationError{
			Field:  FieldComfort,
			Reason: fmt.Sprintf("want %d program days in %s mode, got %d", mode.Days(), mode, len(days)),
		}
	}
	data := make([]byte, 0, comfortProgramLen(mode.Days()))
	for day, entries := range days {
		if len(entries) > entriesPerDay {
			return WriteItem{}, &ValidationError{Field: FieldComfort, Reason: fmt.Sprintf("day %d has %d entries, max %d", day, len(entries), entriesPerDay)}
		}
		last := -1
		for _, e := range entries {
			if e.Hour < 0 || e.Hour > 23 || e.Minute < 0 || e.Minute > 59 {
				return WriteItem{}, &ValidationError{Field: FieldComfort, Reason: fmt.Sprintf("day %d entry time %02d:%02d out of range", day, e.Hour, e.Minute)}
			}
			if e.Target < 5 || e.Target > 35 {
				return WriteItem{}, &ValidationError{Field: FieldComfort, Reason: fmt.Sprintf("day %d target %d out of range", day, e.Target)}
			}
			tod := e.Hour*60 + e.Minute
			if tod <= last {
				return WriteItem{}, &ValidationError{Field: FieldComfort, Reason: fmt.Sprintf("day %d entries not ordered by time", day)}
			}
			last = tod
			data = append(data, byte(e.Hour), byte(e.Minute), byte(e.Target))
		}
		for slot := len(entries); slot < entriesPerDay; slot++ {
			data = append(data, sentinelHour, 0, 0)
		}
	}
	return WriteItem{Offset: uint16(l.comfortBase(mode.Days())), Data: data}, nil
}

func encodeTimerProgram(ref *Status, l layout, days [][]TimerEntry) (WriteItem, error) {
	mode := ref.Config.ScheduleMode
	if len(days) != mode.Days() {
		return WriteItem{}, &ValidationError{
			Field:  FieldTimer,
			Reason: fmt.Sprintf("want %d program days in %s mode, got %d", mode.Days(), mode, len(days)),
		}
	}
	data := make([]byte, 0, timerProgramLen(mode.Days()))
	for day, entries := range days {
		if len(entries) > entriesPerDay {
			return WriteItem{}, &ValidationError{Field: FieldTimer, Reason: fmt.Sprintf("day %d has %d entries, max %d", day, len(entries), entriesPerDay)}
		}
		last := -1
		for _, e := range entries {
			on := e.OnHour*60 + e.OnMinute
			off := e.OffHour*60 + e.OffMinute
			if e.OnHour < 0 || e.OnHour > 23 || e.OffHour < 0 || e.OffHour > 24 ||
				e.OnMinute < 0 || e.OnMinute > 59 || e.OffMinute < 0 || e.OffMinute > 59 {
				return WriteItem{}, &ValidationError{Field: FieldTimer, Reason: fmt.Sprintf("day %d interval time out of range", day)}
			}
			if off <= on {
				return WriteItem{}, &ValidationError{Field: FieldTimer, Reason: fmt.Sprintf("day %d off time not after on time", day)}
			}
			if on <= last {
				return WriteItem{}, &ValidationError{Field: FieldTimer, Reason: fmt.Sprintf("day %d intervals not ordered by time", day)}
			}
			last = off
			data = append(data, byte(e.OnHour), byte(e.OnMinute), byte(e.OffHour), byte(e.OffMinute))
		}
		for slot := len(entries); slot < entriesPerDay; slot++ {
			data = append(data, sentinelHour, 0, sentinelHour, 0)
		}
	}
	return WriteItem{Offset: uint16(l.timerBase(mode.Days())), Data: data}, nil
}

func encodeBool(name string, offset uint16, value any) (WriteItem, error) {
	b, ok := value.(bool)
	if !ok {
		return WriteItem{}, &ValidationError{Field: name, Reason: "want bool"}
	}
	return WriteItem{Offset: offset, Data: []byte{boolByte(b)}}, nil
}

func encodeRange(name string, offset uint16, value any, min, max int) (WriteItem, error) {
	n, ok := value.(int)
	if !ok {
		return WriteItem{}, &ValidationError{Field: name, Reason: "want int"}
	}
	if n < min || n > max {
		return WriteItem{}, &ValidationError{Field: name, Reason: fmt.Sprintf("value %d outside %d-%d", n, min, max)}
	}
	return WriteItem{Offset: offset, Data: []byte{byte(n)}}, nil
}

func encodeWord(name string, offset uint16, value any, max int) (WriteItem, error) {
	n, ok := value.(int)
	if !ok {
		return WriteItem{}, &ValidationError{Field: name, Reason: "want int"}
	}
	if n < 0 || n > max {
		return WriteItem{}, &ValidationError{Field: name, Reason: fmt.Sprintf("value %d outside 0-%d", n, max)}
	}
	return WriteItem{Offset: offset, Data: binary.LittleEndian.AppendUint16(nil, uint16(n))}, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

package heatmiser

import (
	"encoding/binary"
	"time"

	"go.uber.org/zap"
)

// DecodeDCB converts a raw DCB into a Status. The model byte inside the block
// selects the layout; nothing else about the device is needed. A block whose
// declared length disagrees with its actual size, or which is too short for
// its model's layout, is rejected outright. Trailing bytes beyond the layout
// are a non-fatal diagnostic: they usually mean the layout table has drifted
// from the firmware.
func DecodeDCB(raw []byte) (*Status, error) {
	if len(raw) < programBasePRT {
		return nil, &ProtocolError{Reason: "DCB too short for fixed region", Expected: programBasePRT, Got: len(raw), Raw: raw}
	}
	if declared := int(binary.LittleEndian.Uint16(raw[ofsLength:])); declared != len(raw) {
		return nil, &ProtocolError{Reason: "DCB declared length mismatch", Expected: declared, Got: len(raw), Raw: raw}
	}

	model := Model(raw[ofsModel])
	l, ok := layouts[model]
	if !ok {
		return nil, &ProtocolError{Reason: "unknown model code", Got: int(raw[ofsModel]), Raw: raw}
	}

	vendor, ok := vendorNames[raw[ofsVendor]]
	if !ok {
		return nil, &ProtocolError{Reason: "unknown vendor code", Got: int(raw[ofsVendor]), Raw: raw}
	}

	s := &Status{
		Product: Product{
			Vendor:  vendor,
			Model:   model,
			Version: float64(raw[ofsVersion]&0x7F) / 10,
		},
		Enabled:   raw[ofsEnabled] != 0,
		KeyLock:   raw[ofsKeyLock] != 0,
		Away:      raw[ofsAway] != 0,
		ErrorCode: raw[ofsErrorCode],
	}

	cfg, err := decodeConfig(raw)
	if err != nil {
		return nil, err
	}
	s.Config = *cfg

	if raw[ofsRunMode] > 1 {
		return nil, &ProtocolError{Reason: "invalid run mode", Got: int(raw[ofsRunMode]), Raw: raw}
	}
	s.RunMode = RunMode(raw[ofsRunMode])

	s.FrostProtect = FrostProtect{
		Enabled: raw[ofsFrostEnabled] != 0,
		Target:  int(raw[ofsFrostTarget]),
	}

	s.Holiday = decodeHoliday(raw[ofsHoliday : ofsHoliday+holidayLen])
	s.Time = decodeTime(raw[ofsTime : ofsTime+timeLen])

	if l.floorLimit {
		s.FloorLimit = &FloorLimit{
			Limiting: raw[ofsFloorLimitOn] != 0,
			Maximum:  int(raw[ofsFloorLimit]),
		}
	}

	s.Temperatures = Temperatures{
		Remote:   decodeTemp(raw[ofsRemoteTemp:]),
		Internal: decodeTemp(raw[ofsAirTemp:]),
	}
	if l.floorLimit {
		s.Temperatures.Floor = decodeTemp(raw[ofsFloorTemp:])
	}

	if l.heating {
		s.Heating = &Heating{
			On:          raw[ofsHeatingOn] != 0,
			Target:      int(raw[ofsHeatTarget]),
			HoldMinutes: int(binary.LittleEndian.Uint16(raw[ofsHoldMinutes:])),
		}
	}

	days := s.Config.ScheduleMode.Days()
	expected := l.expectedLen(days)
	if len(raw) < expected {
		return nil, &ProtocolError{Reason: "DCB too short for model layout", Expected: expected, Got: len(raw), Raw: raw}
	}

	if l.hotWater {
		if len(raw) < programBaseHW {
			return nil, &ProtocolError{Reason: "DCB too short for hot water section", Expected: programBaseHW, Got: len(raw), Raw: raw}
		}
		s.HotWater = &HotWater{
			On:           raw[ofsHotWaterOn] != 0,
			BoostMinutes: int(binary.LittleEndian.Uint16(raw[ofsBoost:])),
		}
	}

	if l.comfort {
		s.Comfort = decodeComfortProgram(raw[l.comfortBase(days):], s.Config.ScheduleMode)
	}
	if l.hotWater {
		s.Timer = decodeTimerProgram(raw[l.timerBase(days):], s.Config.ScheduleMode)
	}

	if len(raw) > expected {
		zap.L().Warn("unconsumed DCB bytes after program region; layout table may be stale",
			zap.String("model", model.String()),
			zap.Int("expected_length", expected),
			zap.Int("actual_length", len(raw)))
	}

	return s, nil
}

func decodeConfig(raw []byte) (*Config, error) {
	if raw[ofsUnits] > 1 {
		return nil, &ProtocolError{Reason: "invalid temperature units", Got: int(raw[ofsUnits]), Raw: raw}
	}
	if raw[ofsProgramMode] > 1 {
		return nil, &ProtocolError{Reason: "invalid program mode", Got: int(raw[ofsProgramMode]), Raw: raw}
	}
	sensor := SensorSource(raw[ofsSensor])
	if _, ok := sensorNames[sensor]; !ok {
		return nil, &ProtocolError{Reason: "invalid sensor selection", Got: int(raw[ofsSensor]), Raw: raw}
	}
	return &Config{
		Units:                 TempUnits(raw[ofsUnits]),
		SwitchingDifferential: int(raw[ofsSwitchDiff]),
		CalibrationOffset:     int(binary.LittleEndian.Uint16(raw[ofsCalOffset:])),
		OutputDelay:           int(raw[ofsOutputDelay]),
		Address:               int(raw[ofsAddress]),
		KeyLimit:              int(raw[ofsKeyLimit]),
		Sensor:                sensor,
		ScheduleMode:          ScheduleMode(raw[ofsProgramMode]),
		OptimumStart:          int(raw[ofsOptimumStart]),
		RateOfChange:          int(raw[ofsRateOfChange]),
	}, nil
}

// decodeHoliday reads the 6-byte holiday block: day, month, year-2000, hour,
// minute, enabled. Two firmware generations disagreed on this block; this is
// the later layout (see DESIGN.md).
func decodeHoliday(b []byte) Holiday {
	return Holiday{
		Enabled: b[5] != 0,
		Until:   time.Date(2000+int(b[2]), time.Month(b[1]), int(b[0]), int(b[3]), int(b[4]), 0, 0, time.Local),
	}
}

// decodeTime reads the 7-byte device clock: year u16 LE, month, day, hour,
// minute, second.
func decodeTime(b []byte) time.Time {
	year := int(binary.LittleEndian.Uint16(b))
	return time.Date(year, time.Month(b[2]), int(b[3]), int(b[4]), int(b[5]), int(b[6]), 0, time.Local)
}

// decodeTemp reads a two-byte tenths-of-a-degree reading; the all-ones word
// means the sensor is not fitted.
func decodeTemp(b []byte) *float64 {
	word := binary.LittleEndian.Uint16(b)
	if word == tempAbsent {
		return nil
	}
	v := float64(word) / 10
	return &v
}

// decodeComfortProgram walks the fixed program grid day by day. Each day owns
// four 3-byte slots; the first slot with an hour of 24 or more ends that
// day's real entries.
func decodeComfortProgram(b []byte, mode ScheduleMode) *ComfortProgram {
	prog := &ComfortProgram{Mode: mode, Days: make([][]ComfortEntry, mode.Days())}
	for day := range prog.Days {
		entries := []ComfortEntry{}
		base := day * entriesPerDay * comfortEntryLen
		for slot := 0; slot < entriesPerDay; slot++ {
			e := b[base+slot*comfortEntryLen:]
			if e[0] >= sentinelHour {
				break
			}
			entries = append(entries, ComfortEntry{
				Hour:   int(e[0]),
				Minute: int(e[1]),
				Target: int(e[2]),
			})
		}
		prog.Days[day] = entries
	}
	return prog
}

func decodeTimerProgram(b []byte, mode ScheduleMode) *TimerProgram {
	prog := &TimerProgram{Mode: mode, Days: make([][]TimerEntry, mode.Days())}
	for day := range prog.Days {
		entries := []TimerEntry{}
		base := day * entriesPerDay * timerEntryLen
		for slot := 0; slot < entriesPerDay; slot++ {
			e := b[base+slot*timerEntryLen:]
			if e[0] >= sentinelHour {
				break
			}
			entries = append(entries, TimerEntry{
				OnHour:    int(e[0]),
				OnMinute:  int(e[1]),
				OffHour:   int(e[2]),
				OffMinute: int(e[3]),
			})
		}
		prog.Days[day] = entries
	}
	return prog
}

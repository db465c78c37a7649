package heatmiser

// Model identifies the thermostat variant. The model byte lives at a fixed
// DCB offset and selects the layout descriptor for everything after it.
type Model uint8

const (
	ModelDT    Model = 0 // non-programmable room stat
	ModelDTE   Model = 1 // non-programmable, floor limiting
	ModelPRT   Model = 2 // programmable room stat
	ModelPRTE  Model = 3 // programmable, floor limiting
	ModelPRTHW Model = 4 // programmable with hot water
	ModelTM1   Model = 5 // hot water timer, no heating control
)

func (m Model) String() string {
	if l, ok := layouts[m]; ok {
		return l.name
	}
	return "unknown"
}

// layout describes which optional DCB sections a model carries and where its
// weekly program region starts. Selected once at decode start and threaded
// through as data; never re-derived per field.
type layout struct {
	name        string
	heating     bool // heating control and target
	hotWater    bool // hot water state, boost and timer program
	floorLimit  bool // floor limit settings and floor sensor
	comfort     bool // weekly comfort program
	programBase int  // offset of the program region, 0 if none
}

var layouts = map[Model]layout{
	ModelDT:    {name: "DT", heating: true},
	ModelDTE:   {name: "DT-E", heating: true, floorLimit: true},
	ModelPRT:   {name: "PRT", heating: true, comfort: true, programBase: programBasePRT},
	ModelPRTE:  {name: "PRT-E", heating: true, floorLimit: true, comfort: true, programBase: programBasePRT},
	ModelPRTHW: {name: "PRT-HW", heating: true, hotWater: true, comfort: true, programBase: programBaseHW},
	ModelTM1:   {name: "TM1", hotWater: true, programBase: programBaseHW},
}

// Fixed-region byte offsets, common to every model. Bytes 19-20 are reserved
// on models without floor limiting and 48-50 exist only on hot water models.
const (
	ofsLength       = 0 // u16 LE, declared DCB length
	ofsVendor       = 2
	ofsVersion      = 3 // low 7 bits, tenths
	ofsModel        = 4
	ofsUnits        = 5
	ofsSwitchDiff   = 6
	ofsFrostEnabled = 7
	ofsCalOffset    = 8 // u16 LE
	ofsOutputDelay  = 10
	ofsAddress      = 11
	ofsKeyLimit     = 12
	ofsSensor       = 13
	ofsOptimumStart = 14
	ofsRateOfChange = 15
	ofsProgramMode  = 16
	ofsFrostTarget  = 17
	ofsHeatTarget   = 18
	ofsFloorLimit   = 19
	ofsFloorLimitOn = 20
	ofsEnabled      = 21
	ofsKeyLock      = 22
	ofsRunMode      = 23
	ofsAway         = 24
	ofsHoliday      = 25 // 6 bytes: day, month, year-2000, hour, minute, enabled
	ofsErrorCode    = 31
	ofsHoldMinutes  = 32 // u16 LE
	ofsRemoteTemp   = 34 // u16 LE tenths, 0xFFFF absent
	ofsFloorTemp    = 36
	ofsAirTemp      = 38
	ofsHeatingOn    = 40
	ofsTime         = 41 // 7 bytes: year u16 LE, month, day, hour, minute, second

	programBasePRT = 48 // program region on heating-only models
	ofsBoost       = 48 // u16 LE, hot water models
	ofsHotWaterOn  = 50
	programBaseHW  = 51

	holidayLen = 6
	timeLen    = 7
)

// Program grid geometry: up to 4 entries per day, fixed slots; an entry whose
// hour is >= 24 ends that day's real entries.
const (
	entriesPerDay   = 4
	comfortEntryLen = 3 // hour, minute, target
	timerEntryLen   = 4 // on hour, on minute, off hour, off minute
	sentinelHour    = 24
)

// tempAbsent is the "sensor not present" sentinel for two-byte temperatures.
const tempAbsent = 0xFFFF

func comfortProgramLen(days int) int { return days * entriesPerDay * comfortEntryLen }
func timerProgramLen(days int) int   { return days * entriesPerDay * timerEntryLen }

// In 7-day mode the device keeps the 5/2 program blocks in place on the wire
// and appends the per-day data after them, so the active comfort region
// shifts by 24 bytes (the 5/2 comfort block) and the active timer region by a
// further 32 bytes (the 5/2 timer block).

// comfortBase returns the offset of the active comfort program for the given
// number of program days.
func (l layout) comfortBase(days int) int {
	base := l.programBase
	if days == 7 {
		base += comfortProgramLen(2)
	}
	return base
}

// timerBase returns the offset of the active hot water timer program, which
// follows the whole comfort region when the model has one.
func (l layout) timerBase(days int) int {
	if !l.hotWater {
		return 0
	}
	base := l.programBase
	if l.comfort {
		base += comfortProgramLen(2)
		if days == 7 {
			base += comfortProgramLen(7)
		}
	}
	if days == 7 {
		base += timerProgramLen(2)
	}
	return base
}

// expectedLen returns the DCB size the layout calls for under the given
// schedule mode.
func (l layout) expectedLen(days int) int {
	switch {
	case l.hotWater:
		return l.timerBase(days) + timerProgramLen(days)
	case l.comfort:
		return l.comfortBase(days) + comfortProgramLen(days)
	default:
		return programBasePRT // fixed region only
	}
}

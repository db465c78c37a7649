package heatmiser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Weekday: 07:00 -> 20, 22:00 -> 16. Weekend: 08:00 -> 19, 23:00 -> 16.
func twoDayStatus() *Status {
	return &Status{
		Enabled:      true,
		FrostProtect: FrostProtect{Enabled: true, Target: 12},
		Comfort: &ComfortProgram{
			Mode: ScheduleWeekdayWeekend,
			Days: [][]ComfortEntry{
				{{Hour: 7, Target: 20}, {Hour: 22, Target: 16}},
				{{Hour: 8, Target: 19}, {Hour: 23, Target: 16}},
			},
		},
	}
}

func localDate(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.Local)
}

func TestComfortEarlyMondayUsesSundayTarget(t *testing.T) {
	s := twoDayStatus()

	// Monday 06:00: no weekday entry yet, so the active target is the
	// weekend set's last entry; the next change is 07:00 -> 20.
	current, next := s.ComfortAt(localDate(2024, time.January, 8, 6, 0))
	assert.Equal(t, 16, current)
	assert.Equal(t, 20, next.Target)
	assert.Equal(t, localDate(2024, time.January, 8, 7, 0), next.At)
	assert.Equal(t, time.Hour, next.In)
}

func TestComfortLateSundayCrossesIntoWeekday(t *testing.T) {
	s := twoDayStatus()

	// Sunday 23:30: past the last weekend entry, next change is Monday's
	// 07:00 -> 20 in the weekday set.
	current, next := s.ComfortAt(localDate(2024, time.January, 7, 23, 30))
	assert.Equal(t, 16, current)
	assert.Equal(t, 20, next.Target)
	assert.Equal(t, localDate(2024, time.January, 8, 7, 0), next.At)
	assert.Equal(t, 7*time.Hour+30*time.Minute, next.In)
}

func TestComfortLateSaturdayCrossesIntoWeekday(t *testing.T) {
	s := twoDayStatus()

	// Saturday 23:30: the weekend set is exhausted for the whole weekend, so
	// the next change is Monday's 07:00 -> 20 in the weekday set; Sunday's
	// 08:00 entry belongs to the same set and is not revisited.
	current, next := s.ComfortAt(localDate(2024, time.January, 6, 23, 30))
	assert.Equal(t, 16, current)
	assert.Equal(t, 20, next.Target)
	assert.Equal(t, localDate(2024, time.January, 8, 7, 0), next.At)
	assert.Equal(t, 31*time.Hour+30*time.Minute, next.In)
}

func TestComfortMidSaturdayStaysInWeekendSet(t *testing.T) {
	s := twoDayStatus()

	// Saturday 12:00: the weekend set still has its own 23:00 entry ahead.
	current, next := s.ComfortAt(localDate(2024, time.January, 6, 12, 0))
	assert.Equal(t, 19, current)
	assert.Equal(t, 16, next.Target)
	assert.Equal(t, localDate(2024, time.January, 6, 23, 0), next.At)
}

func TestComfortMidDayEntry(t *testing.T) {
	s := twoDayStatus()

	// Wednesday 12:00: the 07:00 entry is active, next is 22:00 -> 16.
	current, next := s.ComfortAt(localDate(2024, time.January, 10, 12, 0))
	assert.Equal(t, 20, current)
	assert.Equal(t, 16, next.Target)
	assert.Equal(t, 10*time.Hour, next.In)
}

func TestComfortEmptyProgramFallsBackToFrost(t *testing.T) {
	s := twoDayStatus()
	s.Comfort.Days = [][]ComfortEntry{{}, {}}

	current, next := s.ComfortAt(localDate(2024, time.January, 8, 12, 0))
	assert.Equal(t, 12, current, "no entry at all falls back to frost protection")
	assert.Equal(t, 12, next.Target)
	assert.True(t, next.At.IsZero(), "no scheduled transition exists")
}

func TestComfortNoProgramSection(t *testing.T) {
	s := twoDayStatus()
	s.Comfort = nil

	current, next := s.ComfortAt(localDate(2024, time.January, 8, 12, 0))
	assert.Equal(t, 12, current)
	assert.Equal(t, 12, next.Target)
}

func TestComfortSevenDayMapping(t *testing.T) {
	days := make([][]ComfortEntry, 7)
	for i := range days {
		days[i] = []ComfortEntry{{Hour: 6, Target: 10 + i}}
	}
	s := &Status{
		FrostProtect: FrostProtect{Target: 5},
		Comfort:      &ComfortProgram{Mode: ScheduleSevenDay, Days: days},
	}

	// 2024-01-08 is a Monday, program day 0; Sunday is day 6.
	current, _ := s.ComfortAt(localDate(2024, time.January, 8, 12, 0))
	assert.Equal(t, 10, current)
	current, _ = s.ComfortAt(localDate(2024, time.January, 14, 12, 0))
	assert.Equal(t, 16, current)
}

func TestTimerInclusiveStartExclusiveEnd(t *testing.T) {
	s := &Status{
		Timer: &TimerProgram{
			Mode: ScheduleWeekdayWeekend,
			Days: [][]TimerEntry{
				{{OnHour: 6, OnMinute: 30, OffHour: 8, OffMinute: 0}},
				{},
			},
		},
	}

	monday := func(hh, mm int) time.Time { return localDate(2024, time.January, 8, hh, mm) }
	assert.False(t, s.TimerStateAt(monday(6, 29)))
	assert.True(t, s.TimerStateAt(monday(6, 30)), "on time is inclusive")
	assert.True(t, s.TimerStateAt(monday(7, 59)))
	assert.False(t, s.TimerStateAt(monday(8, 0)), "off time is exclusive")
	// Weekend day has no interval at all.
	assert.False(t, s.TimerStateAt(localDate(2024, time.January, 7, 7, 0)))
}

func TestTimerNoProgram(t *testing.T) {
	s := &Status{}
	assert.False(t, s.TimerStateAt(localDate(2024, time.January, 8, 7, 0)))
}

func TestProgramDayFolding(t *testing.T) {
	require.Equal(t, 0, programDay(ScheduleWeekdayWeekend, time.Monday))
	require.Equal(t, 0, programDay(ScheduleWeekdayWeekend, time.Friday))
	require.Equal(t, 1, programDay(ScheduleWeekdayWeekend, time.Saturday))
	require.Equal(t, 1, programDay(ScheduleWeekdayWeekend, time.Sunday))
	require.Equal(t, 0, programDay(ScheduleSevenDay, time.Monday))
	require.Equal(t, 6, programDay(ScheduleSevenDay, time.Sunday))
}

package heatmiser

import "time"

// ComfortChange is an upcoming scheduled target change. At is zero when the
// program has no further entries within the lookahead window and the target
// falls back to frost protection.
type ComfortChange struct {
	Target int
	At     time.Time
	In     time.Duration
}

// programDay folds a weekday onto a program day index: Mon-Fri onto day 0 and
// Sat/Sun onto day 1 in 5/2 mode, Monday=0 through Sunday=6 in 7-day mode.
func programDay(mode ScheduleMode, wd time.Weekday) int {
	// time.Weekday counts Sunday as 0; the device weeks start on Monday.
	idx := (int(wd) + 6) % 7
	if mode == ScheduleSevenDay {
		return idx
	}
	if idx >= 5 {
		return 1
	}
	return 0
}

// ComfortAt predicts the scheduled heating target at the given instant and
// the next scheduled change.
//
// The current target is the last entry of the day at or before the time of
// day; when the day has no earlier entry it falls back to the previous
// program day's last entry, and when no entry exists at all to the frost
// protection target. The next change walks the program day sets in calendar
// order, visiting each set at its first calendar day only: in 5/2 mode the
// whole weekend is a single set, so a late Saturday query crosses directly
// into Monday's weekday entries. After the remainder of today's set and the
// two sets that follow, the frost protection target is reported with no
// transition time.
func (s *Status) ComfortAt(at time.Time) (int, ComfortChange) {
	frost := s.FrostProtect.Target
	if s.Comfort == nil {
		return frost, ComfortChange{Target: frost}
	}

	tod := at.Hour()*60 + at.Minute()
	current := frost

	today := s.Comfort.Days[programDay(s.Comfort.Mode, at.Weekday())]
	found := false
	for _, e := range today {
		if e.Hour*60+e.Minute <= tod {
			current = e.Target
			found = true
		}
	}
	if !found {
		yesterday := s.Comfort.Days[programDay(s.Comfort.Mode, at.AddDate(0, 0, -1).Weekday())]
		if len(yesterday) > 0 {
			current = yesterday[len(yesterday)-1].Target
		}
	}

	prevDay := -1
	sets := 0
	for k := 0; k <= 7 && sets < 3; k++ {
		day := at.AddDate(0, 0, k)
		pd := programDay(s.Comfort.Mode, day.Weekday())
		if k > 0 && pd == prevDay {
			continue
		}
		prevDay = pd
		sets++
		for _, e := range s.Comfort.Days[pd] {
			if k == 0 && e.Hour*60+e.Minute <= tod {
				continue
			}
			next := time.Date(day.Year(), day.Month(), day.Day(), e.Hour, e.Minute, 0, 0, at.Location())
			return current, ComfortChange{Target: e.Target, At: next, In: next.Sub(at)}
		}
	}
	return current, ComfortChange{Target: frost}
}

// TimerStateAt predicts the scheduled hot water state at the given instant:
// on while within a programmed interval, where the on time is inclusive and
// the off time exclusive, and off otherwise.
func (s *Status) TimerStateAt(at time.Time) bool {
	if s.Timer == nil {
		return false
	}
	tod := at.Hour()*60 + at.Minute()
	for _, e := range s.Timer.Days[programDay(s.Timer.Mode, at.Weekday())] {
		on := e.OnHour*60 + e.OnMinute
		off := e.OffHour*60 + e.OffMinute
		if on <= tod && tod < off {
			return true
		}
	}
	return false
}

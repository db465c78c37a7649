package database

import (
	"context"
	"time"
)

// GetSettings returns the latest settings row per device, for external
// consumers such as the chart front end.
func (db *Database) GetSettings(ctx context.Context) ([]Settings, error) {
	const query = `
	SELECT device, vendor, model, version, mode, units, holiday_enabled, holiday_until, schedule_mode, updated_at
	FROM settings
	ORDER BY device;
	`
	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []Settings
	for rows.Next() {
		var s Settings
		if err := rows.Scan(&s.Device, &s.Vendor, &s.Model, &s.Version, &s.Mode, &s.Units,
			&s.HolidayEnabled, &s.HolidayUntil, &s.ScheduleMode, &s.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// GetLog returns the temperature log for one device over a time range.
func (db *Database) GetLog(ctx context.Context, device string, from, to time.Time) ([]LogEntry, error) {
	const query = `
	SELECT device, time, indoor, heat_target, comfort_target
	FROM templog
	WHERE device = $1 AND time >= $2 AND time < $3
	ORDER BY time;
	`
	rows, err := db.pool.Query(ctx, query, device, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.Device, &e.Time, &e.Indoor, &e.HeatTarget, &e.ComfortTarget); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetRecentEvents returns the newest events for one device.
func (db *Database) GetRecentEvents(ctx context.Context, device string, limit int) ([]EventEntry, error) {
	const query = `
	SELECT device, time, class, state, temperature
	FROM events
	WHERE device = $1
	ORDER BY time DESC
	LIMIT $2;
	`
	rows, err := db.pool.Query(ctx, query, device, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []EventEntry
	for rows.Next() {
		var e EventEntry
		if err := rows.Scan(&e.Device, &e.Time, &e.Class, &e.State, &e.Temperature); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

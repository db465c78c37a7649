// Package database persists settings, programs, temperature logs and events
// to postgres. One row set per device; writers for distinct devices may run
// concurrently, so the pool is shared rather than a single connection.
package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Database struct {
	pool *pgxpool.Pool
}

func NewDatabase(pool *pgxpool.Pool) *Database {
	return &Database{pool: pool}
}

func (db *Database) Close() {
	db.pool.Close()
}

// Settings is one device's most recent configuration row.
type Settings struct {
	Device         string    `json:"device"`
	Vendor         string    `json:"vendor"`
	Model          string    `json:"model"`
	Version        float64   `json:"version"`
	Mode           string    `json:"mode"`
	Units          string    `json:"units"`
	HolidayEnabled bool      `json:"holiday_enabled"`
	HolidayUntil   time.Time `json:"holiday_until"`
	ScheduleMode   string    `json:"schedule_mode"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LogEntry is one temperature log row.
type LogEntry struct {
	Device        string    `json:"device"`
	Time          time.Time `json:"time"`
	Indoor        *float64  `json:"indoor"`
	HeatTarget    int       `json:"heat_target"`
	ComfortTarget int       `json:"comfort_target"`
}

// EventEntry is one recorded state-change event.
type EventEntry struct {
	Device      string    `json:"device"`
	Time        time.Time `json:"time"`
	Class       string    `json:"class"`
	State       string    `json:"state"`
	Temperature *float64  `json:"temperature"`
}

// Ping verifies the pool is usable.
func (db *Database) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

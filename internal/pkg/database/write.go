package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/thoukydides/heatmiser-wifi/internal/pkg/heatmiser"
)

func (db *Database) SettingsUpdate(ctx context.Context, device string, product heatmiser.Product,
	mode heatmiser.RunMode, units heatmiser.TempUnits, holiday heatmiser.Holiday, schedule heatmiser.ScheduleMode,
) error {
	const upsertSQL = `
	INSERT INTO settings (device, vendor, model, version, mode, units, holiday_enabled, holiday_until, schedule_mode, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
	ON CONFLICT (device) DO UPDATE SET
		vendor = EXCLUDED.vendor,
		model = EXCLUDED.model,
		version = EXCLUDED.version,
		mode = EXCLUDED.mode,
		units = EXCLUDED.units,
		holiday_enabled = EXCLUDED.holiday_enabled,
		holiday_until = EXCLUDED.holiday_until,
		schedule_mode = EXCLUDED.schedule_mode,
		updated_at = now();
	`
	_, err := db.pool.Exec(ctx, upsertSQL, device, product.Vendor, product.Model.String(), product.Version,
		mode.String(), units.String(), holiday.Enabled, holiday.Until, schedule.String())
	return err
}

func (db *Database) ComfortUpdate(ctx context.Context, device string, prog *heatmiser.ComfortProgram) error {
	return db.programUpdate(ctx, device, "comfort", prog)
}

func (db *Database) TimerUpdate(ctx context.Context, device string, prog *heatmiser.TimerProgram) error {
	return db.programUpdate(ctx, device, "timer", prog)
}

func (db *Database) programUpdate(ctx context.Context, device, kind string, prog any) error {
	payload, err := json.Marshal(prog)
	if err != nil {
		return err
	}
	const upsertSQL = `
	INSERT INTO programs (device, kind, program, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (device, kind) DO UPDATE SET program = EXCLUDED.program, updated_at = now();
	`
	_, err = db.pool.Exec(ctx, upsertSQL, device, kind, payload)
	return err
}

func (db *Database) LogInsert(ctx context.Context, device string, t time.Time, indoor *float64, heatTarget, comfortTarget int) error {
	const insertSQL = `
	INSERT INTO templog (device, time, indoor, heat_target, comfort_target)
	VALUES ($1, $2, $3, $4, $5);
	`
	_, err := db.pool.Exec(ctx, insertSQL, device, t, indoor, heatTarget, comfortTarget)
	return err
}

func (db *Database) EventInsert(ctx context.Context, device string, t time.Time, class, state string, temperature *float64) error {
	const insertSQL = `
	INSERT INTO events (device, time, class, state, temperature)
	VALUES ($1, $2, $3, $4, $5);
	`
	_, err := db.pool.Exec(ctx, insertSQL, device, t, class, state, temperature)
	return err
}

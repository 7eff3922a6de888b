// Package store bootstraps the smart-home schema and sample data. Schema
// creation runs through embedded goose migrations; rooms, users and devices
// come from an embedded seed manifest, while usage logs and security events
// are generated.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pressly/goose/v3"
	"gopkg.in/yaml.v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

//go:embed seed.yaml
var seedManifest []byte

// EnumColumns lists the columns whose values come from a closed vocabulary.
// Catalog introspection cannot infer this from SQLite declared types.
func EnumColumns() []string {
	return []string{
		"device_type", "status", "action",
		"event_type", "severity", "feedback_type", "room_type",
	}
}

// Migrate creates the smart-home schema, applying any pending migrations.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("store: setting dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("store: running migrations: %w", err)
	}
	return nil
}

// seedData mirrors seed.yaml.
type seedData struct {
	Rooms []struct {
		Name    string  `yaml:"name"`
		Floor   int     `yaml:"floor"`
		AreaSqm float64 `yaml:"area_sqm"`
		Type    string  `yaml:"type"`
	} `yaml:"rooms"`
	Users []struct {
		Username string `yaml:"username"`
		Email    string `yaml:"email"`
		Phone    string `yaml:"phone"`
	} `yaml:"users"`
	Devices []struct {
		Name   string `yaml:"name"`
		Type   string `yaml:"type"`
		Room   string `yaml:"room"`
		Brand  string `yaml:"brand"`
		Model  string `yaml:"model"`
		Status string `yaml:"status"`
	} `yaml:"devices"`
}

const (
	usageLogCount      = 100
	securityEventCount = 50
)

// Seed populates the schema with sample data. Generated rows use a fixed
// random source so repeated bootstraps of a fresh store produce the same
// dataset, which keeps the console demos and tests stable.
func Seed(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var data seedData
	if err := yaml.Unmarshal(seedManifest, &data); err != nil {
		return fmt.Errorf("store: parsing seed manifest: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: starting seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range data.Rooms {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO rooms (room_name, floor, area_sqm, room_type) VALUES (?, ?, ?, ?)`,
			r.Name, r.Floor, r.AreaSqm, r.Type); err != nil {
			return fmt.Errorf("store: seeding rooms: %w", err)
		}
	}
	for _, u := range data.Users {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO users (username, email, phone) VALUES (?, ?, ?)`,
			u.Username, u.Email, u.Phone); err != nil {
			return fmt.Errorf("store: seeding users: %w", err)
		}
	}
	for _, d := range data.Devices {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO devices (device_name, device_type, room, brand, model, status) VALUES (?, ?, ?, ?, ?, ?)`,
			d.Name, d.Type, d.Room, d.Brand, d.Model, d.Status); err != nil {
			return fmt.Errorf("store: seeding devices: %w", err)
		}
	}

	rng := rand.New(rand.NewSource(2025))
	base := time.Now().AddDate(0, 0, -30)

	actions := []string{"turn_on", "turn_off", "adjust_temperature", "adjust_brightness", "unlock", "lock"}
	for i := 0; i < usageLogCount; i++ {
		action := actions[rng.Intn(len(actions))]
		value := fmt.Sprintf("%d", rng.Intn(100)+1)
		if action == "adjust_temperature" {
			value = fmt.Sprintf("%d", rng.Intn(15)+16)
		}
		ts := base.Add(time.Duration(rng.Intn(30*24)) * time.Hour)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO usage_logs (user_id, device_id, action, value, timestamp, duration_minutes) VALUES (?, ?, ?, ?, ?, ?)`,
			rng.Intn(len(data.Users))+1, rng.Intn(len(data.Devices))+1, action, value,
			ts.Format("2006-01-02 15:04:05"), rng.Intn(236)+5); err != nil {
			return fmt.Errorf("store: seeding usage logs: %w", err)
		}
	}

	eventTypes := []string{"motion_detected", "door_opened", "alarm_triggered", "smoke_detected"}
	severities := []string{"low", "medium", "high"}
	// Door lock, camera and smoke detector are the event-producing devices.
	sensorDevices := []int{6, 7, 8}
	for i := 0; i < securityEventCount; i++ {
		eventType := eventTypes[rng.Intn(len(eventTypes))]
		handled := rng.Intn(2) == 1
		var handledBy any
		if handled {
			handledBy = rng.Intn(len(data.Users)) + 1
		}
		ts := base.Add(time.Duration(rng.Intn(30*24)) * time.Hour)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO security_events (device_id, event_type, severity, description, timestamp, handled, handled_by) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sensorDevices[rng.Intn(len(sensorDevices))], eventType, severities[rng.Intn(len(severities))],
			fmt.Sprintf("检测到%s事件", eventType), ts.Format("2006-01-02 15:04:05"), handled, handledBy); err != nil {
			return fmt.Errorf("store: seeding security events: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: committing seed data: %w", err)
	}

	logger.Debug("seeded sample data",
		"rooms", len(data.Rooms),
		"users", len(data.Users),
		"devices", len(data.Devices),
		"usage_logs", usageLogCount,
		"security_events", securityEventCount)

	return nil
}

// Initialize migrates the schema and seeds sample data in one step.
func Initialize(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if err := Migrate(db); err != nil {
		return err
	}
	return Seed(ctx, db, logger)
}

package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Database is the sqlite-backed Store.
type Database struct {
	db *sql.DB
}

func New(dbPath string) (*Database, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL DEFAULT '',
		modified_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		modified_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS room_activity (
		room_id TEXT NOT NULL,
		day TEXT NOT NULL,
		PRIMARY KEY (room_id, day)
	);
	`

	_, err := db.Exec(schema)
	return err
}

func (d *Database) Close() error {
	return d.db.Close()
}

// Game operations

// CreateGame inserts the backing record rooms attach to. Games are normally
// created by the editor application; this exists for seeding and tests.
func (d *Database) CreateGame(ctx context.Context, id, content string) error {
	_, err := d.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO games (id, content) VALUES (?, ?)",
		id, content,
	)
	return err
}

func (d *Database) GameExists(ctx context.Context, id string) (bool, error) {
	var exists int
	err := d.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM games WHERE id = ?",
		id,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// Room content operations

func (d *Database) GetRoomContent(ctx context.Context, id string) (string, bool, error) {
	var content string
	err := d.db.QueryRowContext(ctx,
		"SELECT content FROM rooms WHERE id = ?",
		id,
	).Scan(&content)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return content, true, nil
}

func (d *Database) UpsertRoomContent(ctx context.Context, id, content, label string) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO rooms (id, content, label, modified_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			label = excluded.label,
			modified_at = CURRENT_TIMESTAMP
	`, id, content, label)
	return err
}

// Activity ledger

func (d *Database) TouchActivity(ctx context.Context, roomID, day string) error {
	_, err := d.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO room_activity (room_id, day) VALUES (?, ?)",
		roomID, day,
	)
	return err
}

// ActiveDays returns the ledger days recorded for a room, oldest first.
func (d *Database) ActiveDays(ctx context.Context, roomID string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT day FROM room_activity WHERE room_id = ? ORDER BY day ASC",
		roomID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

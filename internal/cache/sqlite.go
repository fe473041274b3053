// Package cache persists the recovery seed (room code + player id) so a
// restarted client can still re-attach to its room. A single sqlite file
// keeps this dependency-free on the server side: everything lives next to
// the client.
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/RCorazao/stopgame-client/internal/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS session (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	room_code TEXT NOT NULL,
	player_id TEXT NOT NULL,
	room_state INTEGER NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

// SQLite stores at most one session entry.
type SQLite struct {
	db *sql.DB
}

func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open session cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate session cache: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (c *SQLite) Close() error {
	return c.db.Close()
}

func (c *SQLite) Save(entry session.CacheEntry) error {
	_, err := c.db.Exec(`
		INSERT INTO session (id, room_code, player_id, room_state, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			room_code = excluded.room_code,
			player_id = excluded.player_id,
			room_state = excluded.room_state,
			updated_at = excluded.updated_at`,
		entry.RoomCode, entry.PlayerID, entry.RoomState, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save session cache: %w", err)
	}
	return nil
}

func (c *SQLite) Load() (*session.CacheEntry, error) {
	var entry session.CacheEntry
	err := c.db.QueryRow(`
		SELECT room_code, player_id, room_state FROM session WHERE id = 1`).
		Scan(&entry.RoomCode, &entry.PlayerID, &entry.RoomState)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session cache: %w", err)
	}
	return &entry, nil
}

func (c *SQLite) Drop() error {
	if _, err := c.db.Exec(`DELETE FROM session WHERE id = 1`); err != nil {
		return fmt.Errorf("drop session cache: %w", err)
	}
	return nil
}

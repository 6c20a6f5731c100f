package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Slot keys of the persisted store. Each slot holds the full JSON value.
const (
	SlotEntries      = "entries"
	SlotDarkMode     = "darkMode"
	SlotAchievements = "achievements"
)

type Repository struct {
	Db *Database
}

func NewRepository(db *Database) *Repository {
	return &Repository{Db: db}
}

// GetEntries returns the stored entries, newest first. A missing slot is not
// an error; malformed JSON is.
func (r *Repository) GetEntries() ([]Entry, error) {
	var entries []Entry
	if _, err := r.loadSlot(SlotEntries, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *Repository) SaveEntries(entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	return r.saveSlot(SlotEntries, entries)
}

func (r *Repository) GetAchievements() ([]string, error) {
	var ids []string
	if _, err := r.loadSlot(SlotAchievements, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *Repository) SaveAchievements(ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	return r.saveSlot(SlotAchievements, ids)
}

func (r *Repository) GetDarkMode() (bool, error) {
	var dark bool
	if _, err := r.loadSlot(SlotDarkMode, &dark); err != nil {
		return false, err
	}
	return dark, nil
}

func (r *Repository) SaveDarkMode(dark bool) error {
	return r.saveSlot(SlotDarkMode, dark)
}

func (r *Repository) loadSlot(key string, v any) (bool, error) {
	var raw string
	err := r.Db.db.QueryRow(`SELECT value FROM slots WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read slot %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return true, fmt.Errorf("decode slot %s: %w", key, err)
	}
	return true, nil
}

func (r *Repository) saveSlot(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", key, err)
	}

	_, err = r.Db.db.Exec(`
		INSERT INTO slots (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(raw))
	if err != nil {
		return fmt.Errorf("write slot %s: %w", key, err)
	}
	return nil
}

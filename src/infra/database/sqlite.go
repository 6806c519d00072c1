package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/contre95/lyricsolid/src/music"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SqliteHistory is a SQLite implementation of the lyrics HistoryRepository.
type SqliteHistory struct {
	db *sql.DB
}

// NewSqliteHistory opens the database at path and creates its tables.
func NewSqliteHistory(path string) (*SqliteHistory, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SqliteHistory{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS lyrics_history (
			id TEXT PRIMARY KEY,
			artist TEXT NOT NULL,
			title TEXT NOT NULL,
			output_path TEXT,
			source TEXT NOT NULL,
			synced BOOLEAN DEFAULT FALSE,
			success BOOLEAN DEFAULT FALSE,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_lyrics_history_created_at ON lyrics_history(created_at);
	`)
	return err
}

// AddHistoryEntry stores entry, assigning it an ID when it has none.
func (d *SqliteHistory) AddHistoryEntry(ctx context.Context, entry music.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO lyrics_history (id, artist, title, output_path, source, synced, success, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Artist, entry.Title, entry.OutputPath, entry.Source, entry.Synced, entry.Success,
		entry.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// GetHistory returns up to limit entries, newest first.
func (d *SqliteHistory) GetHistory(ctx context.Context, limit int) ([]music.HistoryEntry, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, artist, title, output_path, source, synced, success, created_at
		FROM lyrics_history
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []music.HistoryEntry{}
	for rows.Next() {
		var entry music.HistoryEntry
		var outputPath sql.NullString
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.Artist, &entry.Title, &outputPath, &entry.Source,
			&entry.Synced, &entry.Success, &createdAt); err != nil {
			return nil, err
		}
		entry.OutputPath = outputPath.String
		entry.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (d *SqliteHistory) Close() error {
	return d.db.Close()
}

// GetSourceCounts returns the number of history entries per source tag.
func (d *SqliteHistory) GetSourceCounts(ctx context.Context) (map[string]int, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT source, COUNT(*)
		FROM lyrics_history
		GROUP BY source
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, err
		}
		counts[source] = count
	}
	return counts, rows.Err()
}

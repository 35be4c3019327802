// Package history keeps a local ledger of completed downloads in an
// SQLite database.
package history

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite"
)

// Record represents a row in the downloads table.
type Record struct {
	ID       int64
	Input    string
	Title    string
	Artist   string
	Platform string
	Format   string
	FilePath string
	FileSize int64
	SavedAt  time.Time
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS downloads (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    input     TEXT NOT NULL DEFAULT '',
    title     TEXT NOT NULL DEFAULT '',
    artist    TEXT NOT NULL DEFAULT '',
    platform  TEXT NOT NULL DEFAULT '',
    format    TEXT NOT NULL DEFAULT '',
    file_path TEXT NOT NULL UNIQUE,
    file_size INTEGER NOT NULL DEFAULT 0,
    saved_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_downloads_saved_at ON downloads(saved_at);
CREATE INDEX IF NOT EXISTS idx_downloads_artist ON downloads(artist);
`

// DB wraps an SQLite connection for the download ledger.
type DB struct {
	db *sql.DB
	mu sync.Mutex
}

// DefaultPath returns the ledger location under the user data
// directory, creating parent directories as needed.
func DefaultPath() (string, error) {
	return xdg.DataFile("songreel/history.db")
}

// Open opens or creates the SQLite database at the given path.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	if _, err := sqlDB.Exec(createTableSQL); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: sqlDB}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Record inserts or updates a download record by file path and returns
// the row ID.
func (d *DB) Record(record Record) (int64, error) {
	if d == nil || d.db == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.db.Exec(`
		INSERT INTO downloads (input, title, artist, platform, format, file_path, file_size)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			input=excluded.input, title=excluded.title, artist=excluded.artist,
			platform=excluded.platform, format=excluded.format,
			file_size=excluded.file_size, saved_at=datetime('now')
	`,
		record.Input, record.Title, record.Artist, record.Platform,
		record.Format, record.FilePath, record.FileSize,
	)
	if err != nil {
		return 0, fmt.Errorf("recording download: %w", err)
	}

	// LastInsertId is unreliable for ON CONFLICT DO UPDATE; query the actual row ID.
	var id int64
	if err := d.db.QueryRow("SELECT id FROM downloads WHERE file_path = ?", record.FilePath).Scan(&id); err != nil {
		return 0, fmt.Errorf("querying recorded download id: %w", err)
	}
	return id, nil
}

// Recent returns download records ordered by save time descending.
func (d *DB) Recent(limit int) ([]Record, error) {
	if d == nil || d.db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	if limit <= 0 {
		limit = 50
	}

	rows, err := d.db.Query(`
		SELECT id, input, title, artist, platform, format, file_path, file_size, saved_at
		FROM downloads
		ORDER BY saved_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying downloads: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(
			&r.ID, &r.Input, &r.Title, &r.Artist, &r.Platform,
			&r.Format, &r.FilePath, &r.FileSize, &r.SavedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning download row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Count returns the total number of recorded downloads.
func (d *DB) Count() (int, error) {
	if d == nil || d.db == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	var count int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM downloads").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting downloads: %w", err)
	}
	return count, nil
}

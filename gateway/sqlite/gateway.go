// Package sqlite provides a gateway persisting tags in an embedded
// SQLite database, suitable for single-host setups where tags should
// survive remounts without external infrastructure.
package sqlite

import (
	"context"
	"database/sql"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (CGO_ENABLED=0 compatible)

	"github.com/tagsfs/tagsfs/data"
)

type SQLiteGateway struct {
	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteGateway creates a new SQLite-backed gateway.
// The dbPath can be ":memory:" for an in-memory database or a file path.
func NewSQLiteGateway(dbPath string) (*SQLiteGateway, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	gateway := &SQLiteGateway{db: db}
	if err := gateway.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return gateway, nil
}

func (sg *SQLiteGateway) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tagsfs_tags (
		file_id TEXT NOT NULL,
		name    TEXT NOT NULL,
		idx     INTEGER NOT NULL,
		value   TEXT NOT NULL,
		PRIMARY KEY (file_id, name, idx)
	);
	CREATE INDEX IF NOT EXISTS idx_tagsfs_tags_file ON tagsfs_tags(file_id);
	`
	_, err := sg.db.Exec(schema)
	return err
}

// Returns the identifier name defined for this gateway
func (*SQLiteGateway) Name() string {
	return "sqlite"
}

func (sg *SQLiteGateway) Open(ctx context.Context) error {
	return sg.db.PingContext(ctx)
}

func (sg *SQLiteGateway) Close(ctx context.Context) error {
	sg.mu.Lock()
	defer sg.mu.Unlock()

	return sg.db.Close()
}

func (sg *SQLiteGateway) ReadTags(ctx context.Context, fileID string) (data.TagSet, error) {
	sg.mu.RLock()
	defer sg.mu.RUnlock()

	rows, err := sg.db.QueryContext(ctx, `
		SELECT name, value FROM tagsfs_tags
		WHERE file_id = ? ORDER BY name, idx
	`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := data.TagSet{}
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		tags[name] = append(tags[name], value)
	}

	return tags, rows.Err()
}

func (sg *SQLiteGateway) WriteTags(ctx context.Context, fileID string, update data.TagUpdateSet) error {
	sg.mu.Lock()
	defer sg.mu.Unlock()

	tx, err := sg.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for name, values := range update {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM tagsfs_tags WHERE file_id = ? AND name = ?
		`, fileID, name); err != nil {
			return err
		}
		for idx, value := range values {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO tagsfs_tags (file_id, name, idx, value)
				VALUES (?, ?, ?, ?)
			`, fileID, name, idx, value); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func (sg *SQLiteGateway) DeleteTags(ctx context.Context, fileID string) error {
	sg.mu.Lock()
	defer sg.mu.Unlock()

	_, err := sg.db.ExecContext(ctx, `
		DELETE FROM tagsfs_tags WHERE file_id = ?
	`, fileID)
	return err
}

func (sg *SQLiteGateway) ListIDs(ctx context.Context) ([]string, error) {
	sg.mu.RLock()
	defer sg.mu.RUnlock()

	rows, err := sg.db.QueryContext(ctx, `
		SELECT DISTINCT file_id FROM tagsfs_tags ORDER BY file_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

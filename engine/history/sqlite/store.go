// Package sqlite provides a SQLite-backed combat history sink.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nathoo/shadowcore/engine/history"
	"github.com/nathoo/shadowcore/engine/history/sqlite/migrations"
)

const migrationTable = "schema_migrations"

// Store persists combat history in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite history store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// WriteCombat inserts one record.
func (s *Store) WriteCombat(ctx context.Context, rec history.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("record id is required")
	}
	payload, err := json.Marshal(rec.Summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	recordedAt := rec.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO combat_history (
		   id,
		   user_id,
		   recorded_at,
		   enemy_id,
		   enemy_name,
		   victory,
		   reason,
		   turns_taken,
		   player_level,
		   scene_index,
		   summary_json
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.UserID,
		toMillis(recordedAt),
		rec.Summary.EnemyID,
		rec.Summary.EnemyName,
		rec.Summary.Victory,
		string(rec.Summary.Reason),
		rec.Summary.TurnsTaken,
		rec.Summary.PlayerLevel,
		rec.Summary.SceneIndex,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert combat %s: %w", rec.ID, err)
	}
	return nil
}

// ListCombats returns up to limit records for userID, newest first.
func (s *Store) ListCombats(ctx context.Context, userID string, limit int) ([]history.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, user_id, recorded_at, summary_json
		 FROM combat_history
		 WHERE user_id = ?
		 ORDER BY recorded_at DESC, id DESC
		 LIMIT ?`,
		userID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query combats: %w", err)
	}
	defer rows.Close()

	var out []history.Record
	for rows.Next() {
		var (
			rec        history.Record
			recordedAt int64
			payload    string
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &recordedAt, &payload); err != nil {
			return nil, fmt.Errorf("scan combat: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &rec.Summary); err != nil {
			return nil, fmt.Errorf("decode combat %s: %w", rec.ID, err)
		}
		rec.RecordedAt = fromMillis(recordedAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate combats: %w", err)
	}
	return out, nil
}

// applyMigrations executes each embedded migration at most once.
func applyMigrations(sqlDB *sql.DB, migrationFS fs.FS) error {
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	createSQL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`, migrationTable)
	if _, err := sqlDB.Exec(createSQL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range files {
		var found int
		err := sqlDB.QueryRow("SELECT 1 FROM "+migrationTable+" WHERE name = ?", file).Scan(&found)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check migration %s: %w", file, err)
		}

		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		upSQL := extractUp(string(content))
		if strings.TrimSpace(upSQL) == "" {
			continue
		}

		tx, err := sqlDB.BeginTx(context.Background(), nil)
		if err != nil {
			return fmt.Errorf("begin migration transaction %s: %w", file, err)
		}
		if _, err := tx.Exec(upSQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO "+migrationTable+" (name, applied_at) VALUES (?, ?)",
			file,
			toMillis(time.Now()),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}
	return nil
}

// extractUp returns the SQL in the -- +migrate Up section.
func extractUp(content string) string {
	const up, down = "-- +migrate Up", "-- +migrate Down"
	upIdx := strings.Index(content, up)
	if upIdx == -1 {
		return content
	}
	downIdx := strings.Index(content, down)
	if downIdx == -1 {
		return content[upIdx+len(up):]
	}
	return content[upIdx+len(up) : downIdx]
}

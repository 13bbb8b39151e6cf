package storage

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/franzos/tku/internal/core"
)

// Bump when the table layout changes. This is a cache: an outdated schema
// is dropped and rebuilt from source files, never migrated in place.
const schemaVersion = 2

// sqliteStore persists entries in two tables: files carries the
// fingerprint per (provider, path), records carries the parsed rows keyed
// by file id. Writes commit per Insert/Prune transaction, so Flush has
// nothing left to do.
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the cache database at path.
func OpenSQLiteStore(path string) (Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("storage: creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("storage: opening cache db: %w", err)
	}

	s := &sqliteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *sqliteStore) init() error {
	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA synchronous = NORMAL;`,
		`PRAGMA busy_timeout = 5000;`,
	} {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("storage: %s: %w", pragma, err)
		}
	}

	var version int
	if err := s.db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("storage: reading schema version: %w", err)
	}
	if version < schemaVersion {
		if _, err := s.db.Exec(`DROP TABLE IF EXISTS records; DROP TABLE IF EXISTS files;`); err != nil {
			return fmt.Errorf("storage: dropping outdated schema: %w", err)
		}
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS files (
			file_id    INTEGER PRIMARY KEY,
			provider   TEXT NOT NULL,
			path       TEXT NOT NULL,
			mtime_secs INTEGER NOT NULL,
			size       INTEGER NOT NULL,
			UNIQUE (provider, path)
		);`,
		`CREATE TABLE IF NOT EXISTS records (
			file_id                      INTEGER NOT NULL REFERENCES files(file_id),
			session_id                   TEXT NOT NULL,
			timestamp                    TEXT NOT NULL,
			project                      TEXT NOT NULL,
			model                        TEXT NOT NULL,
			message_id                   TEXT NOT NULL,
			request_id                   TEXT NOT NULL,
			input_tokens                 INTEGER NOT NULL,
			output_tokens                INTEGER NOT NULL,
			cache_creation_input_tokens  INTEGER NOT NULL,
			cache_read_input_tokens      INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_records_file_id ON records(file_id);`,
		fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion),
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("storage: init schema: %w", err)
		}
	}
	return nil
}

func (s *sqliteStore) IsCached(provider, path string, mtime, size int64) bool {
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM files WHERE provider = ? AND path = ? AND mtime_secs = ? AND size = ?`,
		provider, path, mtime, size,
	).Scan(&one)
	return err == nil
}

func (s *sqliteStore) Insert(provider, path string, mtime, size int64, records []core.UsageRecord) {
	tx, err := s.db.Begin()
	if err != nil {
		log.Printf("tku: sqlite begin failed: %v", err)
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM records WHERE file_id IN
			(SELECT file_id FROM files WHERE provider = ? AND path = ?)`,
		provider, path,
	); err != nil {
		log.Printf("tku: sqlite delete records failed: %v", err)
		return
	}

	res, err := tx.Exec(
		`INSERT OR REPLACE INTO files (provider, path, mtime_secs, size) VALUES (?, ?, ?, ?)`,
		provider, path, mtime, size,
	)
	if err != nil {
		log.Printf("tku: sqlite insert file failed: %v", err)
		return
	}
	fileID, err := res.LastInsertId()
	if err != nil {
		log.Printf("tku: sqlite file id lookup failed: %v", err)
		return
	}

	for _, r := range records {
		if _, err := tx.Exec(
			`INSERT INTO records (
				file_id, session_id, timestamp, project, model,
				message_id, request_id, input_tokens, output_tokens,
				cache_creation_input_tokens, cache_read_input_tokens
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			fileID,
			r.SessionID,
			r.Timestamp.UTC().Format(time.RFC3339Nano),
			r.Project,
			r.Model,
			r.MessageID,
			r.RequestID,
			int64(r.InputTokens),
			int64(r.OutputTokens),
			int64(r.CacheCreationInputTokens),
			int64(r.CacheReadInputTokens),
		); err != nil {
			log.Printf("tku: sqlite insert record failed: %v", err)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("tku: sqlite commit failed: %v", err)
	}
}

func (s *sqliteStore) Prune(provider string, existing []string) {
	known := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		known[p] = struct{}{}
	}

	rows, err := s.db.Query(`SELECT path FROM files WHERE provider = ?`, provider)
	if err != nil {
		log.Printf("tku: sqlite prune query failed: %v", err)
		return
	}
	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			continue
		}
		if _, ok := known[path]; !ok {
			stale = append(stale, path)
		}
	}
	rows.Close()

	if len(stale) == 0 {
		return
	}

	tx, err := s.db.Begin()
	if err != nil {
		log.Printf("tku: sqlite prune begin failed: %v", err)
		return
	}
	defer tx.Rollback()

	for _, path := range stale {
		if _, err := tx.Exec(
			`DELETE FROM records WHERE file_id IN
				(SELECT file_id FROM files WHERE provider = ? AND path = ?)`,
			provider, path,
		); err != nil {
			log.Printf("tku: sqlite prune records failed: %v", err)
		}
		if _, err := tx.Exec(
			`DELETE FROM files WHERE provider = ? AND path = ?`,
			provider, path,
		); err != nil {
			log.Printf("tku: sqlite prune file failed: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("tku: sqlite prune commit failed: %v", err)
	}
}

// Flush is a no-op: every mutation already committed in its own
// transaction.
func (s *sqliteStore) Flush() {}

func (s *sqliteStore) DrainAll() []core.UsageRecord {
	rows, err := s.db.Query(
		`SELECT f.provider, r.session_id, r.timestamp, r.project, r.model,
		        r.message_id, r.request_id, r.input_tokens, r.output_tokens,
		        r.cache_creation_input_tokens, r.cache_read_input_tokens
		   FROM records r
		   JOIN files f ON r.file_id = f.file_id`,
	)
	if err != nil {
		log.Printf("tku: sqlite drain query failed: %v", err)
		return nil
	}
	defer rows.Close()

	var all []core.UsageRecord
	for rows.Next() {
		var r core.UsageRecord
		var ts string
		var input, output, cacheCreation, cacheRead int64
		if err := rows.Scan(
			&r.Provider, &r.SessionID, &ts, &r.Project, &r.Model,
			&r.MessageID, &r.RequestID, &input, &output,
			&cacheCreation, &cacheRead,
		); err != nil {
			log.Printf("tku: sqlite drain scan failed: %v", err)
			continue
		}
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			continue
		}
		r.Timestamp = parsed
		r.InputTokens = uint64(input)
		r.OutputTokens = uint64(output)
		r.CacheCreationInputTokens = uint64(cacheCreation)
		r.CacheReadInputTokens = uint64(cacheRead)
		all = append(all, r)
	}
	return all
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

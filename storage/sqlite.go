package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteConfig struct {
	OnDisk    bool
	Directory string
}

type SQLiteStorage struct {
	SQLiteConfig

	db *sql.DB
}

// Creates a SQLite backed journal. Unless configured to live on disk,
// the database is in memory and goes away with the process.
func NewSQLiteStorage(cfg ...SQLiteConfig) (*SQLiteStorage, error) {
	onDisk := false
	directory := ""
	if len(cfg) > 0 {
		onDisk = cfg[0].OnDisk
		directory = cfg[0].Directory
	}

	sourceName := ":memory:"
	if onDisk {
		sourceName = directory + "/tram.db"
	}

	db, err := sql.Open("sqlite3", sourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Each connection to :memory: gets its own database.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS delay (
    id TEXT NOT NULL,
    station TEXT NOT NULL,
    direction TEXT NOT NULL,
    minutes INTEGER NOT NULL,
    success BOOLEAN NOT NULL,
    message TEXT NOT NULL,
    arrivals TEXT NOT NULL,
    applied_at INTEGER NOT NULL,
PRIMARY KEY (id)
);

CREATE INDEX IF NOT EXISTS delay_applied_at ON delay (applied_at);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating delay table: %w", err)
	}

	return &SQLiteStorage{
		SQLiteConfig: SQLiteConfig{
			OnDisk:    onDisk,
			Directory: directory,
		},
		db: db,
	}, nil
}

func (s *SQLiteStorage) WriteDelay(record *DelayRecord) error {
	if record.ID == "" {
		return fmt.Errorf("empty id")
	}

	arrivals := record.Arrivals
	if arrivals == nil {
		arrivals = []DelayArrival{}
	}
	buf, err := json.Marshal(arrivals)
	if err != nil {
		return fmt.Errorf("marshaling arrivals: %w", err)
	}

	_, err = s.db.Exec(`
INSERT OR REPLACE INTO delay (
    id,
    station,
    direction,
    minutes,
    success,
    message,
    arrivals,
    applied_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Station,
		record.Direction,
		record.Minutes,
		record.Success,
		record.Message,
		string(buf),
		record.AppliedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("inserting delay: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) ListDelays(filter ListDelaysFilter) ([]*DelayRecord, error) {
	query := `
SELECT
    id,
    station,
    direction,
    minutes,
    success,
    message,
    arrivals,
    applied_at
FROM delay`

	conditions := []string{}
	params := []interface{}{}
	if filter.Station != "" {
		conditions = append(conditions, "station = ?")
		params = append(params, filter.Station)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "applied_at >= ?")
		params = append(params, filter.Since.UnixNano())
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY applied_at DESC, id ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		params = append(params, filter.Limit)
	}

	rows, err := s.db.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("listing delays: %w", err)
	}
	defer rows.Close()

	records := []*DelayRecord{}
	for rows.Next() {
		var record DelayRecord
		var arrivals string
		var appliedAt int64
		err := rows.Scan(
			&record.ID,
			&record.Station,
			&record.Direction,
			&record.Minutes,
			&record.Success,
			&record.Message,
			&arrivals,
			&appliedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning delay: %w", err)
		}

		record.Arrivals = []DelayArrival{}
		err = json.Unmarshal([]byte(arrivals), &record.Arrivals)
		if err != nil {
			return nil, fmt.Errorf("unmarshaling arrivals: %w", err)
		}
		record.AppliedAt = time.Unix(0, appliedAt).UTC()

		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating delays: %w", err)
	}

	return records, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

type PSQLStorage struct {
	db *sql.DB
}

// Creates a new Postgres Storage using the provided connection string.
//
// If clearDB is true, the database will be cleared on startup. You
// probably only want this for testing.
func NewPSQLStorage(connStr string, clearDB bool) (*PSQLStorage, error) {

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	if clearDB {
		_, err = db.Exec(`DROP TABLE IF EXISTS delay;`)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("clearing db: %w", err)
		}
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS delay (
    id TEXT NOT NULL,
    station TEXT NOT NULL,
    direction TEXT NOT NULL,
    minutes INTEGER NOT NULL,
    success BOOLEAN NOT NULL,
    message TEXT NOT NULL,
    arrival_times TEXT[] NOT NULL,
    remaining_times BIGINT[] NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (id)
);

CREATE INDEX IF NOT EXISTS delay_applied_at ON delay (applied_at);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating delay table: %w", err)
	}

	return &PSQLStorage{
		db: db,
	}, nil
}

func (s *PSQLStorage) Close() error {
	err := s.db.Close()
	if err != nil {
		return fmt.Errorf("failed to close db: %w", err)
	}
	return nil
}

func (s *PSQLStorage) WriteDelay(record *DelayRecord) error {
	if record.ID == "" {
		return fmt.Errorf("empty id")
	}

	times := make([]string, 0, len(record.Arrivals))
	remaining := make([]int64, 0, len(record.Arrivals))
	for _, a := range record.Arrivals {
		times = append(times, a.Time)
		remaining = append(remaining, int64(a.Remaining))
	}

	_, err := s.db.Exec(`
INSERT INTO delay (
    id,
    station,
    direction,
    minutes,
    success,
    message,
    arrival_times,
    remaining_times,
    applied_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
    station = EXCLUDED.station,
    direction = EXCLUDED.direction,
    minutes = EXCLUDED.minutes,
    success = EXCLUDED.success,
    message = EXCLUDED.message,
    arrival_times = EXCLUDED.arrival_times,
    remaining_times = EXCLUDED.remaining_times,
    applied_at = EXCLUDED.applied_at`,
		record.ID,
		record.Station,
		record.Direction,
		record.Minutes,
		record.Success,
		record.Message,
		pq.Array(times),
		pq.Array(remaining),
		record.AppliedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting delay: %w", err)
	}

	return nil
}

func (s *PSQLStorage) ListDelays(filter ListDelaysFilter) ([]*DelayRecord, error) {
	query := `
SELECT
    id,
    station,
    direction,
    minutes,
    success,
    message,
    arrival_times,
    remaining_times,
    applied_at
FROM delay`

	conditions := []string{}
	params := []interface{}{}
	if filter.Station != "" {
		params = append(params, filter.Station)
		conditions = append(conditions, fmt.Sprintf("station = $%d", len(params)))
	}
	if !filter.Since.IsZero() {
		params = append(params, filter.Since.UTC())
		conditions = append(conditions, fmt.Sprintf("applied_at >= $%d", len(params)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY applied_at DESC, id ASC"

	if filter.Limit > 0 {
		params = append(params, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(params))
	}

	rows, err := s.db.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("listing delays: %w", err)
	}
	defer rows.Close()

	records := []*DelayRecord{}
	for rows.Next() {
		var record DelayRecord
		var times []string
		var remaining []int64
		err := rows.Scan(
			&record.ID,
			&record.Station,
			&record.Direction,
			&record.Minutes,
			&record.Success,
			&record.Message,
			pq.Array(&times),
			pq.Array(&remaining),
			&record.AppliedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning delay: %w", err)
		}
		if len(times) != len(remaining) {
			return nil, fmt.Errorf("delay %s has %d times and %d remaining", record.ID, len(times), len(remaining))
		}

		record.Arrivals = make([]DelayArrival, 0, len(times))
		for i := range times {
			record.Arrivals = append(record.Arrivals, DelayArrival{
				Time:      times[i],
				Remaining: int(remaining[i]),
			})
		}
		record.AppliedAt = record.AppliedAt.UTC()

		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating delays: %w", err)
	}

	return records, nil
}

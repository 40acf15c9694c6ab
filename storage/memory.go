package storage

import (
	"fmt"
	"sort"
	"sync"
)

// In memory implementation of Storage below

type MemoryStorage struct {
	mutex  sync.Mutex
	Delays map[string]*DelayRecord
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		Delays: map[string]*DelayRecord{},
	}
}

func (s *MemoryStorage) WriteDelay(record *DelayRecord) error {
	if record.ID == "" {
		return fmt.Errorf("empty id")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	rec := *record
	rec.Arrivals = append([]DelayArrival{}, record.Arrivals...)
	rec.AppliedAt = record.AppliedAt.UTC()
	s.Delays[rec.ID] = &rec

	return nil
}

func (s *MemoryStorage) ListDelays(filter ListDelaysFilter) ([]*DelayRecord, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	records := []*DelayRecord{}
	for _, record := range s.Delays {
		if filter.Station != "" && record.Station != filter.Station {
			continue
		}
		if !filter.Since.IsZero() && record.AppliedAt.Before(filter.Since) {
			continue
		}
		rec := *record
		rec.Arrivals = append([]DelayArrival{}, record.Arrivals...)
		records = append(records, &rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].AppliedAt.Equal(records[j].AppliedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].AppliedAt.After(records[j].AppliedAt)
	})

	if filter.Limit > 0 && len(records) > filter.Limit {
		records = records[:filter.Limit]
	}

	return records, nil
}

func (s *MemoryStorage) Close() error {
	return nil
}

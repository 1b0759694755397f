package db

import (
	"context"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.etcd.io/bbolt"
)

// RunRecord is one executed command
type RunRecord struct {
	ID       uint64        `json:"id"`
	Raw      string        `json:"raw"`
	Command  string        `json:"command"`
	Note     string        `json:"note,omitempty"`
	Host     string        `json:"host,omitempty"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
	At       time.Time     `json:"at"`
}

// Failed reports whether the command exited non-zero
func (r RunRecord) Failed() bool {
	return r.ExitCode != 0
}

// CommandStat aggregates runs of one command
type CommandStat struct {
	Command  string    `json:"command"`
	Count    int       `json:"count"`
	Failures int       `json:"failures"`
	LastRun  time.Time `json:"last_run"`
}

// Stats summarises the run history
type Stats struct {
	TotalRuns      int
	Failures       int
	UniqueCommands int
	TopCommands    []CommandStat
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// commandKey keys aggregate stats by a hash of the executed command
func commandKey(command string) []byte {
	return itob(xxhash.Sum64String(command))
}

// AddRun stores a run and updates its command aggregate. ID and At are
// filled in when zero.
func (s *Storage) AddRun(ctx context.Context, rec RunRecord) (RunRecord, error) {
	if err := s.ready(); err != nil {
		return rec, err
	}
	rec.Command = strings.TrimSpace(rec.Command)
	if rec.Command == "" {
		return rec, fmt.Errorf("command cannot be empty")
	}
	if rec.At.IsZero() {
		rec.At = time.Now()
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		runs := tx.Bucket(runsBucket)
		id, err := runs.NextSequence()
		if err != nil {
			return err
		}
		rec.ID = id

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal run: %w", err)
		}
		if err := runs.Put(itob(id), data); err != nil {
			return err
		}

		commands := tx.Bucket(commandsBucket)
		key := commandKey(rec.Command)
		stat := CommandStat{Command: rec.Command}
		if existing := commands.Get(key); existing != nil {
			if err := json.Unmarshal(existing, &stat); err != nil {
				return err
			}
		}
		stat.Count++
		if rec.Failed() {
			stat.Failures++
		}
		stat.LastRun = rec.At

		data, err = json.Marshal(stat)
		if err != nil {
			return err
		}
		return commands.Put(key, data)
	})
	return rec, err
}

// Runs returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Storage) Runs(ctx context.Context, limit int) ([]RunRecord, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var records []RunRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(runsBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec RunRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			records = append(records, rec)
			if limit > 0 && len(records) >= limit {
				break
			}
		}
		return nil
	})
	return records, err
}

// SearchRuns fuzzy-matches query against executed commands, closest first.
// An empty query behaves like Runs.
func (s *Storage) SearchRuns(ctx context.Context, query string, limit int) ([]RunRecord, error) {
	all, err := s.Runs(ctx, 0)
	if err != nil || query == "" {
		if limit > 0 && len(all) > limit {
			all = all[:limit]
		}
		return all, err
	}

	commands := make([]string, len(all))
	for i, rec := range all {
		commands[i] = rec.Command
	}

	ranks := fuzzy.RankFindFold(query, commands)
	sort.Stable(ranks)

	results := make([]RunRecord, 0, len(ranks))
	for _, r := range ranks {
		results = append(results, all[r.OriginalIndex])
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}

// ClearRuns deletes all runs and aggregates
func (s *Storage) ClearRuns(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{runsBucket, commandsBucket} {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}

// Stats returns totals and the top commands by run count
func (s *Storage) Stats(ctx context.Context, top int) (*Stats, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	stats := &Stats{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(commandsBucket).ForEach(func(_, v []byte) error {
			var stat CommandStat
			if err := json.Unmarshal(v, &stat); err != nil {
				return err
			}
			stats.TotalRuns += stat.Count
			stats.Failures += stat.Failures
			stats.UniqueCommands++
			stats.TopCommands = append(stats.TopCommands, stat)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(stats.TopCommands, func(i, j int) bool {
		a, b := stats.TopCommands[i], stats.TopCommands[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Command < b.Command
	})
	if top > 0 && len(stats.TopCommands) > top {
		stats.TopCommands = stats.TopCommands[:top]
	}
	return stats, nil
}

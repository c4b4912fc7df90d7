// Package storage persists analysis results with revision history so
// score and violation trends survive across runs.
package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/btree"
	"go.etcd.io/bbolt"

	"github.com/vihrea/vihrea/types"
)

// Bucket names in bbolt
var (
	bucketResults = []byte("results")
	bucketMeta    = []byte("meta")
)

// ResultStore is a revisioned store of analysis results: every run
// appends under a new revision, the in-memory index tracks the latest
// state per function.
type ResultStore struct {
	mu sync.RWMutex

	// In-memory index for fast lookups
	index *btree.BTreeG[*FunctionState]

	// On-disk storage
	db *bbolt.DB

	// Current revision number
	currentRev int64

	dir string
}

// FunctionState tracks a function's latest analysis in the index.
type FunctionState struct {
	FunctionID   string
	File         string
	Score        float64
	Violations   int
	FirstSeenRev int64
	LastSeenRev  int64
}

// StoredResult is one persisted observation of a function.
type StoredResult struct {
	Revision  int64                `json:"revision"`
	Timestamp time.Time            `json:"timestamp"`
	Result    types.AnalysisResult `json:"result"`
}

// NewResultStore opens or creates a store in dir.
func NewResultStore(dir string) (*ResultStore, error) {
	dbPath := filepath.Join(dir, "vihrea.db")

	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{bucketResults, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &ResultStore{
		index: btree.NewG[*FunctionState](32, func(a, b *FunctionState) bool {
			return a.FunctionID < b.FunctionID
		}),
		db:  db,
		dir: dir,
	}

	store.loadRevision()
	if err := store.rebuildIndex(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the store.
func (s *ResultStore) Close() error {
	return s.db.Close()
}

// RecordRun persists a batch of results under one new revision.
func (s *ResultStore) RecordRun(results []types.AnalysisResult) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentRev++
	rev := s.currentRev
	now := time.Now()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketResults)

		for _, result := range results {
			stored := StoredResult{Revision: rev, Timestamp: now, Result: result}
			value, err := json.Marshal(stored)
			if err != nil {
				return err
			}
			if err := bucket.Put(makeResultKey(rev, result.FunctionID), value); err != nil {
				return err
			}
		}

		metaBucket := tx.Bucket(bucketMeta)
		return metaBucket.Put([]byte("current_revision"), int64ToBytes(rev))
	})
	if err != nil {
		return 0, err
	}

	for _, result := range results {
		s.updateIndex(result, rev)
	}

	return rev, nil
}

// GetFunctionState returns the latest indexed state for a function.
func (s *ResultStore) GetFunctionState(functionID string) (*FunctionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	existing, found := s.index.Get(&FunctionState{FunctionID: functionID})
	if !found {
		return nil, fmt.Errorf("function %s not found", functionID)
	}
	return existing, nil
}

// History returns all stored observations of one function, oldest first.
func (s *ResultStore) History(functionID string) ([]StoredResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var history []StoredResult
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketResults).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			_, id := parseResultKey(k)
			if id != functionID {
				continue
			}
			var stored StoredResult
			if err := json.Unmarshal(v, &stored); err != nil {
				continue
			}
			history = append(history, stored)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}

// WorstOffenders returns up to n functions with the lowest latest
// scores, worst first.
func (s *ResultStore) WorstOffenders(n int) []*FunctionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []*FunctionState
	s.index.Ascend(func(state *FunctionState) bool {
		all = append(all, state)
		return true
	})

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Score < all[j].Score
	})
	if n > 0 && len(all) > n {
		all = all[:n]
	}
	return all
}

// CurrentRevision returns the current revision number.
func (s *ResultStore) CurrentRevision() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRev
}

// Compact removes observations older than keepRevisions behind the
// current revision.
func (s *ResultStore) Compact(keepRevisions int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.currentRev - keepRevisions
	if cutoff <= 0 {
		return nil
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketResults)
		c := bucket.Cursor()

		var toDelete [][]byte
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			rev, _ := parseResultKey(k)
			if rev < cutoff {
				toDelete = append(toDelete, k)
			}
		}

		for _, key := range toDelete {
			if err := bucket.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// Helper functions

func (s *ResultStore) updateIndex(result types.AnalysisResult, rev int64) {
	existing, found := s.index.Get(&FunctionState{FunctionID: result.FunctionID})
	if !found {
		existing = &FunctionState{
			FunctionID:   result.FunctionID,
			FirstSeenRev: rev,
		}
	}
	existing.File = result.Location.File
	existing.Score = result.Score
	existing.Violations = len(result.Violations)
	existing.LastSeenRev = rev
	s.index.ReplaceOrInsert(existing)
}

func (s *ResultStore) loadRevision() {
	_ = s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMeta)
		if bucket == nil {
			return nil
		}
		if data := bucket.Get([]byte("current_revision")); data != nil {
			s.currentRev = bytesToInt64(data)
		}
		return nil
	})
}

// rebuildIndex restores the in-memory index from disk on open.
func (s *ResultStore) rebuildIndex() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketResults).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var stored StoredResult
			if err := json.Unmarshal(v, &stored); err != nil {
				continue
			}
			s.updateIndex(stored.Result, stored.Revision)
			// Keys iterate in revision order; preserve first-seen.
			if state, found := s.index.Get(&FunctionState{FunctionID: stored.Result.FunctionID}); found {
				if state.FirstSeenRev > stored.Revision {
					state.FirstSeenRev = stored.Revision
					s.index.ReplaceOrInsert(state)
				}
			}
		}
		return nil
	})
}

func makeResultKey(rev int64, functionID string) []byte {
	return []byte(fmt.Sprintf("%016d:%s", rev, functionID))
}

func parseResultKey(key []byte) (int64, string) {
	parts := strings.SplitN(string(key), ":", 2)
	if len(parts) != 2 {
		return 0, ""
	}
	var rev int64
	_, _ = fmt.Sscanf(parts[0], "%016d", &rev)
	return rev, parts[1]
}

func int64ToBytes(n int64) []byte {
	return []byte(fmt.Sprintf("%d", n))
}

func bytesToInt64(b []byte) int64 {
	var n int64
	_, _ = fmt.Sscanf(string(b), "%d", &n)
	return n
}

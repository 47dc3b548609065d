package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/phishguard/phishguard/pkg/jsonutil"
	"github.com/phishguard/phishguard/pkg/scan"
)

// Store is the local archive of completed scans, kept as a single JSON index
// file. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	basePath string
	index    *storeIndex
}

// storeIndex is the on-disk layout of the archive.
type storeIndex struct {
	Scans map[string]*scan.Result `json:"scans"`
}

// NewStore opens (or creates) an archive in basePath.
func NewStore(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, err
	}

	store := &Store{
		basePath: basePath,
		index:    &storeIndex{Scans: make(map[string]*scan.Result)},
	}

	if err := store.loadIndex(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return store, nil
}

// Path returns the archive directory.
func (s *Store) Path() string {
	return s.basePath
}

func (s *Store) indexPath() string {
	return filepath.Join(s.basePath, "index.json")
}

func (s *Store) loadIndex() error {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		return err
	}
	if err := jsonutil.Unmarshal(data, s.index); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	if s.index.Scans == nil {
		s.index.Scans = make(map[string]*scan.Result)
	}
	return nil
}

// saveIndex writes the index to a temp file and renames it into place so a
// crash never leaves a truncated index.
func (s *Store) saveIndex() error {
	data, err := jsonutil.MarshalIndent(s.index, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := s.indexPath() + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, s.indexPath()); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Save archives a result under its ID, replacing any previous entry.
func (s *Store) Save(res *scan.Result) error {
	if res == nil || res.ID == "" {
		return fmt.Errorf("history: result has no id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index.Scans[string(res.ID)] = copyResult(res)
	return s.saveIndex()
}

// Get returns the archived result with the given ID.
func (s *Store) Get(id string) (*scan.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.index.Scans[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return copyResult(res), nil
}

// List returns archived results, newest first. limit <= 0 returns all.
func (s *Store) List(limit int) []*scan.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*scan.Result, 0, len(s.index.Scans))
	for _, res := range s.index.Scans {
		out = append(out, copyResult(res))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScannedAt.Equal(out[j].ScannedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].ScannedAt.After(out[j].ScannedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Records returns the archive as history records, newest first.
func (s *Store) Records(limit int) []Record {
	results := s.List(limit)
	out := make([]Record, 0, len(results))
	for _, res := range results {
		out = append(out, RecordFromResult(res))
	}
	return out
}

// Len returns the number of archived scans.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index.Scans)
}

// Clear removes every archived scan.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index.Scans = make(map[string]*scan.Result)
	return s.saveIndex()
}

// RecordFromResult converts an archived result into a history record.
func RecordFromResult(res *scan.Result) Record {
	conf := res.ConfidenceScore
	return Record{
		ID:              string(res.ID),
		URL:             res.URL,
		Timestamp:       res.ScannedAt,
		RiskLabel:       res.RiskLabel,
		StatusLabel:     res.StatusLabel,
		ConfidenceScore: &conf,
		Insights:        append([]string(nil), res.Insights...),
	}
}

// copyResult returns a deep copy so callers never share archive memory.
func copyResult(r *scan.Result) *scan.Result {
	c := *r
	if r.DomainAgeDays != nil {
		age := *r.DomainAgeDays
		c.DomainAgeDays = &age
	}
	if r.Insights != nil {
		c.Insights = append([]string(nil), r.Insights...)
	}
	if r.Details != nil {
		c.Details = append(c.Details[:0:0], r.Details...)
	}
	return &c
}

// Package store persists discovery results as JSON snapshots, one per
// event type, upserted by normalized URL so a candidate's first-seen
// timestamp survives across runs.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/event-scout/internal/candidate"
)

// Record wraps a candidate with cross-run bookkeeping.
type Record struct {
	Candidate *candidate.Candidate `json:"candidate"`
	FirstSeen time.Time            `json:"first_seen"`
	LastSeen  time.Time            `json:"last_seen"`
}

// Snapshot is the on-disk shape: records keyed by normalized URL.
type Snapshot struct {
	UpdatedAt string             `json:"updated_at"`
	Records   map[string]*Record `json:"records"`
}

// NewSnapshot creates an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{Records: make(map[string]*Record)}
}

// Store handles persistence of discovery snapshots.
type Store struct {
	dataDir string
}

// New creates a Store rooted at dataDir, expanding a leading ~.
func New(dataDir string) (*Store, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Store{dataDir: dataDir}, nil
}

// snapshotPath returns the snapshot file for an event type
func (s *Store) snapshotPath(eventType string) string {
	return filepath.Join(s.dataDir, fmt.Sprintf("candidates_%s.json", strings.ToLower(eventType)))
}

// Load reads the snapshot for an event type, returning an empty one
// when none exists yet.
func (s *Store) Load(eventType string) (*Snapshot, error) {
	data, err := os.ReadFile(s.snapshotPath(eventType))
	if err != nil {
		if os.IsNotExist(err) {
			return NewSnapshot(), nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if snapshot.Records == nil {
		snapshot.Records = make(map[string]*Record)
	}

	return &snapshot, nil
}

// Upsert merges candidates into the event type's snapshot by normalized
// URL. Existing records keep their FirstSeen; everything else is
// refreshed from the new candidate.
func (s *Store) Upsert(eventType string, candidates []*candidate.Candidate) error {
	snapshot, err := s.Load(eventType)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, c := range candidates {
		key := candidate.NormalizeURL(c.URL)
		if key == "" {
			continue
		}

		if existing, ok := snapshot.Records[key]; ok {
			existing.Candidate = c
			existing.LastSeen = now
			continue
		}
		snapshot.Records[key] = &Record{
			Candidate: c,
			FirstSeen: now,
			LastSeen:  now,
		}
	}

	return s.save(eventType, snapshot)
}

// save writes a snapshot to disk
func (s *Store) save(eventType string, snapshot *Snapshot) error {
	snapshot.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := os.WriteFile(s.snapshotPath(eventType), data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	return nil
}

// Package fs provides the file-backed implementation of grimoire.Store.
//
// Layout under the cache directory:
//
//	official/<kind>.json   one file per content kind (official layer)
//	homebrew.json          all homebrew entries plus the revision counter
//	meta.json              sync timestamps and status
//
// Every write follows the same commit protocol: marshal to a temporary
// file in the target directory, fsync, then rename over the target. The
// rename is the commit point; a crash at any earlier moment leaves the
// previously committed state intact.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/archerdnd/grimoire"
)

// Compile-time interface verification.
var _ grimoire.Store = (*Store)(nil)

const (
	officialDir  = "official"
	homebrewFile = "homebrew.json"
	metaFile     = "meta.json"
)

// Store is a file-backed grimoire.Store. All state is held in memory
// after Open; files are rewritten whole on every mutation.
type Store struct {
	dir          string
	allowCorrupt bool

	mu       sync.RWMutex
	official map[grimoire.ContentID]*grimoire.Entry
	homebrew map[grimoire.ContentID]*grimoire.Entry
	digests  map[grimoire.Kind]uint64
	nextRev  int64
	meta     grimoire.Metadata
	corrupt  []string

	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithAllowCorrupt makes Open tolerate unparsable layer files: the file
// is left on disk, its layer loads empty, and the path is reported via
// Corrupt. Without it, Open fails with ECORRUPT on the first bad file.
func WithAllowCorrupt() Option {
	return func(s *Store) { s.allowCorrupt = true }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a Store rooted at dir. Call Open before use.
func NewStore(dir string, opts ...Option) *Store {
	s := &Store{
		dir:      dir,
		official: make(map[grimoire.ContentID]*grimoire.Entry),
		homebrew: make(map[grimoire.ContentID]*grimoire.Entry),
		digests:  make(map[grimoire.Kind]uint64),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads the persisted layers and metadata from disk, creating the
// directory structure if missing. Corrupt files are reported, never
// deleted or rewritten.
func (s *Store) Open() error {
	if err := os.MkdirAll(filepath.Join(s.dir, officialDir), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadOfficial(); err != nil {
		return err
	}
	if err := s.loadHomebrew(); err != nil {
		return err
	}
	return s.loadMeta()
}

// Corrupt returns the paths of files Open skipped as unparsable.
// Empty unless WithAllowCorrupt was set.
func (s *Store) Corrupt() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.corrupt...)
}

func (s *Store) loadOfficial() error {
	dir := filepath.Join(s.dir, officialDir)
	names, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read official dir: %w", err)
	}

	for _, de := range names {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, ".json") {
			continue // leftover temp files are ignored, not committed state
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		var entries []*grimoire.Entry
		if err := json.Unmarshal(data, &entries); err != nil {
			if !s.markCorrupt(path) {
				return grimoire.Errorf(grimoire.ECORRUPT, "official cache file %s is unreadable: %v", path, err)
			}
			continue
		}
		for _, e := range entries {
			s.official[e.ID] = e
		}
		s.digests[grimoire.Kind(strings.TrimSuffix(name, ".json"))] = digestEntries(entries)
	}
	return nil
}

// homebrewState is the on-disk shape of homebrew.json.
type homebrewState struct {
	NextRevision int64             `json:"nextRevision"`
	Entries      []*grimoire.Entry `json:"entries"`
}

func (s *Store) loadHomebrew() error {
	path := filepath.Join(s.dir, homebrewFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.nextRev = 1
		return nil
	} else if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var state homebrewState
	if err := json.Unmarshal(data, &state); err != nil {
		if s.markCorrupt(path) {
			s.nextRev = 1
			return nil
		}
		return grimoire.Errorf(grimoire.ECORRUPT, "homebrew file %s is unreadable: %v", path, err)
	}

	s.nextRev = state.NextRevision
	if s.nextRev < 1 {
		s.nextRev = 1
	}
	for _, e := range state.Entries {
		s.homebrew[e.ID] = e
	}
	return nil
}

func (s *Store) loadMeta() error {
	path := filepath.Join(s.dir, metaFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var meta grimoire.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		if s.markCorrupt(path) {
			return nil
		}
		return grimoire.Errorf(grimoire.ECORRUPT, "metadata file %s is unreadable: %v", path, err)
	}
	s.meta = meta
	return nil
}

// markCorrupt records a corrupt file when tolerated; reports false when
// the caller should fail instead.
func (s *Store) markCorrupt(path string) bool {
	if !s.allowCorrupt {
		return false
	}
	s.corrupt = append(s.corrupt, path)
	return true
}

// CommitOfficial atomically replaces the official entries of one kind.
func (s *Store) CommitOfficial(ctx context.Context, kind grimoire.Kind, entries []*grimoire.Entry) error {
	if kind == "" {
		return grimoire.Errorf(grimoire.EINVALID, "content kind required")
	}
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return err
		}
		if e.ID.Kind != kind {
			return grimoire.Errorf(grimoire.EINVALID, "entry %s does not belong to kind %s", e.ID, kind)
		}
		if e.Origin != grimoire.OriginOfficial {
			return grimoire.Errorf(grimoire.EINVALID, "official commit rejects %s entry %s", e.Origin, e.ID)
		}
	}

	sorted := make([]*grimoire.Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID.Slug < sorted[j].ID.Slug })

	data, err := json.MarshalIndent(sorted, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s entries: %w", kind, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// An unchanged kind skips the file write; only the metadata needs
	// refreshing.
	digest := digestEntries(sorted)
	if digest != s.digests[kind] {
		path := filepath.Join(s.dir, officialDir, string(kind)+".json")
		if err := writeFileAtomic(path, data); err != nil {
			return err
		}
		s.digests[kind] = digest
	}

	// The kind file rename above is the commit point. Metadata follows;
	// a crash in between under-reports freshness but never exposes a
	// partially replaced kind.
	s.meta.LastSyncAt = s.now().UTC()
	if err := s.writeMetaLocked(); err != nil {
		return err
	}

	for id := range s.official {
		if id.Kind == kind {
			delete(s.official, id)
		}
	}
	for _, e := range sorted {
		s.official[e.ID] = e.Clone()
	}
	return nil
}

// SetSyncStatus records the outcome of a sync in the metadata file.
func (s *Store) SetSyncStatus(ctx context.Context, at time.Time, status grimoire.SyncStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.meta
	s.meta.LastSyncAt = at.UTC()
	s.meta.LastSyncStatus = status
	if err := s.writeMetaLocked(); err != nil {
		s.meta = prev
		return err
	}
	return nil
}

// PutHomebrew durably writes a homebrew entry.
func (s *Store) PutHomebrew(ctx context.Context, entry *grimoire.Entry) error {
	e := entry.Clone()
	e.Origin = grimoire.OriginHomebrew
	e.Version = ""
	if err := e.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e.Revision = s.nextRev
	e.EditedAt = s.now().UTC()

	prev, existed := s.homebrew[e.ID]
	s.homebrew[e.ID] = e
	s.nextRev++

	if err := s.writeHomebrewLocked(); err != nil {
		// roll back the in-memory change so memory matches disk
		s.nextRev--
		if existed {
			s.homebrew[e.ID] = prev
		} else {
			delete(s.homebrew, e.ID)
		}
		return err
	}

	entry.Revision = e.Revision
	entry.EditedAt = e.EditedAt
	entry.Origin = e.Origin
	return nil
}

// DeleteHomebrew durably removes a homebrew entry.
func (s *Store) DeleteHomebrew(ctx context.Context, id grimoire.ContentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.homebrew[id]
	if !ok {
		return grimoire.Errorf(grimoire.ENOTFOUND, "homebrew entry %s not found", id)
	}
	delete(s.homebrew, id)

	if err := s.writeHomebrewLocked(); err != nil {
		s.homebrew[id] = prev
		return err
	}
	return nil
}

// ClearOfficial drops the committed official entries of one kind.
func (s *Store) ClearOfficial(ctx context.Context, kind grimoire.Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, officialDir, string(kind)+".json")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	delete(s.digests, kind)
	for id := range s.official {
		if id.Kind == kind {
			delete(s.official, id)
		}
	}
	return nil
}

// ClearAll drops the entire official layer, including kind files that
// hold no entries. Homebrew is untouched.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.dir, officialDir)
	names, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read official dir: %w", err)
	}
	for _, de := range names {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, de.Name())
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}

	s.official = make(map[grimoire.ContentID]*grimoire.Entry)
	s.digests = make(map[grimoire.Kind]uint64)
	return nil
}

// Size reports the total bytes the cache directory occupies on disk.
func (s *Store) Size() (int64, error) {
	var total int64
	err := filepath.WalkDir(s.dir, func(path string, de os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			return nil
		}
		info, err := de.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk cache dir: %w", err)
	}
	return total, nil
}

// Snapshot returns an immutable view of both layers and metadata.
func (s *Store) Snapshot() *grimoire.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &grimoire.Snapshot{
		Official: make(map[grimoire.ContentID]*grimoire.Entry, len(s.official)),
		Homebrew: make(map[grimoire.ContentID]*grimoire.Entry, len(s.homebrew)),
		Meta:     s.meta,
	}
	for id, e := range s.official {
		snap.Official[id] = e
	}
	for id, e := range s.homebrew {
		snap.Homebrew[id] = e
	}
	return snap
}

func (s *Store) writeHomebrewLocked() error {
	entries := make([]*grimoire.Entry, 0, len(s.homebrew))
	for _, e := range s.homebrew {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ID.String() < entries[j].ID.String()
	})

	data, err := json.MarshalIndent(homebrewState{NextRevision: s.nextRev, Entries: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal homebrew: %w", err)
	}
	return writeFileAtomic(filepath.Join(s.dir, homebrewFile), data)
}

func (s *Store) writeMetaLocked() error {
	data, err := json.MarshalIndent(s.meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	return writeFileAtomic(filepath.Join(s.dir, metaFile), data)
}

// digestEntries fingerprints the content of one kind. FetchedAt is
// excluded so refetching identical content does not force a rewrite.
func digestEntries(entries []*grimoire.Entry) uint64 {
	d := xxhash.New()
	for _, e := range entries {
		_, _ = d.WriteString(e.ID.String())
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(e.Name)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(e.Version)
		_, _ = d.Write([]byte{0})
		for _, tag := range e.Tags {
			_, _ = d.WriteString(tag)
			_, _ = d.Write([]byte{1})
		}
		_, _ = d.Write([]byte{0})
		_, _ = d.Write(e.Payload)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

// writeFileAtomic writes data to path via a temp file in the same
// directory, fsyncs it, then renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s to %s: %w", tmpName, path, err)
	}
	return nil
}

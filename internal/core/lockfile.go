package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	lockFileName       = "skills.lock.json"
	currentLockVersion = 1
)

// LockStore owns the skills.lock.json ledger under the install directory.
// It performs whole-file read-modify-write; callers issue writes serially.
// There is no cross-process lock: concurrent CLI invocations can race.
type LockStore struct {
	path string
	now  func() time.Time
}

// NewLockStore creates a LockStore for the lock file in dir.
func NewLockStore(dir string) *LockStore {
	return &LockStore{
		path: filepath.Join(dir, lockFileName),
		now:  time.Now,
	}
}

// Path returns the full path to the lock file.
func (ls *LockStore) Path() string {
	return ls.path
}

// Read loads the ledger. A missing file or a schema version other than the
// current one yields a fresh empty ledger, not an error: a version bump is a
// deliberate reset, never a partial migration.
func (ls *LockStore) Read() (*SkillLock, error) {
	data, err := os.ReadFile(ls.path)
	if err != nil {
		if os.IsNotExist(err) {
			return emptyLock(), nil
		}
		return nil, fmt.Errorf("reading lock file: %w", err)
	}

	var lock SkillLock
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, fmt.Errorf("parsing lock file: %w", err)
	}
	if lock.Version != currentLockVersion {
		return emptyLock(), nil
	}
	if lock.Skills == nil {
		lock.Skills = map[string]SkillLockEntry{}
	}
	return &lock, nil
}

// Write persists the whole ledger atomically: pretty-printed JSON written to
// a temp file, then renamed into place.
func (ls *LockStore) Write(lock *SkillLock) error {
	lock.Version = currentLockVersion
	if lock.Skills == nil {
		lock.Skills = map[string]SkillLockEntry{}
	}

	data, err := json.MarshalIndent(lock, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}
	// Ensure trailing newline.
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(ls.path), 0o755); err != nil {
		return fmt.Errorf("creating lock directory: %w", err)
	}

	tmpPath := ls.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing lock file: %w", err)
	}
	if err := os.Rename(tmpPath, ls.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving lock file: %w", err)
	}
	return nil
}

// Upsert inserts or replaces the entry for entry.Slug. The first-install
// timestamp is immutable: an existing InstalledAt is preserved. UpdatedAt is
// refreshed on every call.
func (ls *LockStore) Upsert(entry SkillLockEntry) error {
	lock, err := ls.Read()
	if err != nil {
		return err
	}

	now := ls.now()
	if existing, ok := lock.Skills[entry.Slug]; ok && !existing.InstalledAt.IsZero() {
		entry.InstalledAt = existing.InstalledAt
	} else if entry.InstalledAt.IsZero() {
		entry.InstalledAt = now
	}
	entry.UpdatedAt = now

	lock.Skills[entry.Slug] = entry
	return ls.Write(lock)
}

// Remove deletes the entry for slug and writes the ledger back.
// Returns false without writing when the slug is absent.
func (ls *LockStore) Remove(slug string) (bool, error) {
	lock, err := ls.Read()
	if err != nil {
		return false, err
	}
	if _, ok := lock.Skills[slug]; !ok {
		return false, nil
	}
	delete(lock.Skills, slug)
	if err := ls.Write(lock); err != nil {
		return false, err
	}
	return true, nil
}

// Get returns the entry for slug, if present.
func (ls *LockStore) Get(slug string) (SkillLockEntry, bool, error) {
	lock, err := ls.Read()
	if err != nil {
		return SkillLockEntry{}, false, err
	}
	entry, ok := lock.Skills[slug]
	return entry, ok, nil
}

// All returns every entry, sorted by slug for deterministic output.
func (ls *LockStore) All() ([]SkillLockEntry, error) {
	lock, err := ls.Read()
	if err != nil {
		return nil, err
	}
	slugs := make([]string, 0, len(lock.Skills))
	for slug := range lock.Skills {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	entries := make([]SkillLockEntry, 0, len(slugs))
	for _, slug := range slugs {
		entries = append(entries, lock.Skills[slug])
	}
	return entries, nil
}

// Count returns the number of locked skills.
func (ls *LockStore) Count() (int, error) {
	lock, err := ls.Read()
	if err != nil {
		return 0, err
	}
	return len(lock.Skills), nil
}

func emptyLock() *SkillLock {
	return &SkillLock{
		Version: currentLockVersion,
		Skills:  map[string]SkillLockEntry{},
	}
}

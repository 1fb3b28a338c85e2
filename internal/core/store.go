package core

import (
	"fmt"
	"path/filepath"

	"github.com/skillwire/skillwire/internal/core/fsys"
)

const (
	storeDirName     = "skills"
	skillContentFile = "SKILL.md"
)

// Store owns the canonical on-disk location of installed skills: one
// directory per sanitized slug under a root shared by all agents. Agent
// directories reference it via symlink; the store never writes content
// itself, that is the download step's job.
type Store struct {
	root string
	fs   fsys.FS
}

// NewStore creates a Store rooted under installDir.
func NewStore(installDir string, fs fsys.FS) *Store {
	return &Store{
		root: filepath.Join(installDir, storeDirName),
		fs:   fs,
	}
}

// Root returns the canonical store root directory.
func (s *Store) Root() string {
	return s.root
}

// SkillPath computes the canonical directory for slug. The slug is sanitized
// and the result checked against the store root; a traversal attempt fails
// with *PathTraversalError and creates nothing.
func (s *Store) SkillPath(slug string) (string, error) {
	dir := filepath.Join(s.root, SanitizeSlug(slug))
	if err := EnsureWithin(s.root, dir); err != nil {
		return "", err
	}
	return dir, nil
}

// ContentPath computes the path of the skill content file inside the
// canonical directory for slug.
func (s *Store) ContentPath(slug string) (string, error) {
	dir, err := s.SkillPath(slug)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, skillContentFile), nil
}

// EnsureSkillDir creates the canonical directory for slug if absent and
// returns its path. Safe to call repeatedly.
func (s *Store) EnsureSkillDir(slug string) (string, error) {
	dir, err := s.SkillPath(slug)
	if err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating canonical dir for %q: %w", slug, err)
	}
	return dir, nil
}

// RemoveSkill deletes the canonical directory for slug. Removing a slug that
// was never installed is not an error.
func (s *Store) RemoveSkill(slug string) error {
	dir, err := s.SkillPath(slug)
	if err != nil {
		return err
	}
	if err := s.fs.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing canonical dir for %q: %w", slug, err)
	}
	return nil
}

// InstalledSlugs lists the sanitized slugs currently present in the store.
func (s *Store) InstalledSlugs() ([]string, error) {
	entries, err := s.fs.ReadDir(s.root)
	if err != nil {
		return nil, nil // store not created yet
	}
	var slugs []string
	for _, e := range entries {
		if e.IsDir() {
			slugs = append(slugs, e.Name())
		}
	}
	return slugs, nil
}

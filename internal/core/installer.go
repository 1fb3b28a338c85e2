package core

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/skillwire/skillwire/internal/core/agent"
	"github.com/skillwire/skillwire/internal/core/fsys"
)

// InstallScope selects where each agent receives the skill: its global
// skill directory (the default) or its project-relative directory under Cwd.
type InstallScope struct {
	Global bool
	Cwd    string
}

// Installer reconciles agent skill paths to point at the canonical store.
type Installer struct {
	store *Store
	fs    fsys.FS
	log   *zap.SugaredLogger
}

// NewInstaller wires an Installer. log may be nil.
func NewInstaller(store *Store, fs fsys.FS, log *zap.SugaredLogger) *Installer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Installer{store: store, fs: fs, log: log}
}

// InstallToAgents fans one canonical skill out to every agent, sequentially,
// so result ordering is deterministic and errors attribute cleanly. One
// agent's failure never affects the others. The overall Success is true when
// at least one agent installed.
func (inst *Installer) InstallToAgents(slug string, agents []agent.Agent, scope InstallScope) MultiAgentInstallResult {
	result := MultiAgentInstallResult{Slug: slug}

	canonical, err := inst.store.SkillPath(slug)
	if err == nil && !fsys.DirExists(inst.fs, canonical) {
		// Linking a missing canonical dir would leave every agent with a
		// dangling symlink.
		err = fmt.Errorf("skill %q is not in the canonical store at %s", slug, canonical)
	}
	if err != nil {
		// Fails every agent identically.
		for _, a := range agents {
			result.Agents = append(result.Agents, InstallResult{AgentID: a.ID, Err: err})
			result.FailCount++
		}
		return result
	}
	result.CanonicalPath = canonical

	for _, a := range agents {
		r := inst.symlinkToAgent(slug, a, scope, canonical)
		result.Agents = append(result.Agents, r)
		if r.Success {
			result.SuccessCount++
		} else {
			result.FailCount++
		}
	}
	result.Success = result.SuccessCount > 0
	return result
}

// symlinkToAgent reconciles a single agent's skill path. Existing correct
// links are left untouched; wrong links and plain directories are replaced;
// circular links are force-removed. When symlink creation itself fails, the
// skill is copied instead and the result flagged SymlinkFailed so callers
// know the agent holds an independent copy.
func (inst *Installer) symlinkToAgent(slug string, a agent.Agent, scope InstallScope, canonical string) InstallResult {
	result := InstallResult{AgentID: a.ID, CanonicalPath: canonical, Mode: ModeSymlink}

	root := a.SkillRoot(scope.Global, scope.Cwd)
	target := filepath.Join(root, SanitizeSlug(slug))
	result.Path = target

	// Path safety relative to the agent's own base directory, checked before
	// any filesystem mutation.
	if err := EnsureWithin(root, target); err != nil {
		result.Err = err
		return result
	}

	absCanonical, err := filepath.Abs(canonical)
	if err != nil {
		result.Err = fmt.Errorf("resolving canonical path: %w", err)
		return result
	}

	if info, err := inst.fs.Lstat(target); err == nil {
		if info.Mode()&iofs.ModeSymlink != 0 {
			if inst.linkPointsTo(target, absCanonical) {
				// Already correct: idempotent success, no mutation.
				result.Success = true
				return result
			}
			if isCircularLink(inst.fs, target) {
				// Tolerate removal failure; symlink creation below
				// surfaces the real error if the entry is still there.
				_ = inst.fs.RemoveAll(target)
			} else if err := inst.fs.Remove(target); err != nil {
				result.Err = fmt.Errorf("removing stale symlink: %w", err)
				return result
			}
		} else {
			if err := inst.fs.RemoveAll(target); err != nil {
				result.Err = fmt.Errorf("removing existing entry: %w", err)
				return result
			}
		}
	}

	if err := inst.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		result.Err = fmt.Errorf("creating skill dir for %s: %w", a.Name, err)
		return result
	}

	// Relative link so the tree stays portable if moved.
	rel, err := filepath.Rel(filepath.Dir(target), absCanonical)
	if err != nil {
		result.Err = fmt.Errorf("computing relative path for %s: %w", a.Name, err)
		return result
	}

	if err := inst.fs.Symlink(rel, target); err != nil {
		// Soft degrade: copy the canonical content instead and flag it so
		// the caller knows this agent holds an independent copy.
		inst.log.Debugw("symlink failed, copying instead", "agent", a.ID, "error", err)
		if copyErr := copyDirectory(inst.fs, absCanonical, target); copyErr != nil {
			result.Err = fmt.Errorf("symlink and copy both failed for %s: symlink: %w, copy: %v",
				a.Name, err, copyErr)
			return result
		}
		result.Mode = ModeCopy
		result.SymlinkFailed = true
	}

	result.Success = true
	return result
}

// RemoveFromAgents deletes the agent-side entry for slug from every agent,
// then prunes emptied skill directories. Missing entries are not errors.
func (inst *Installer) RemoveFromAgents(slug string, agents []agent.Agent, scope InstallScope) []string {
	var removed []string
	for _, a := range agents {
		root := a.SkillRoot(scope.Global, scope.Cwd)
		target := filepath.Join(root, SanitizeSlug(slug))
		if err := EnsureWithin(root, target); err != nil {
			continue
		}
		if !fsys.Exists(inst.fs, target) {
			continue
		}
		if err := inst.fs.RemoveAll(target); err != nil {
			inst.log.Warnw("removing agent entry failed", "agent", a.ID, "path", target, "error", err)
			continue
		}
		removed = append(removed, target)
		cleanupEmptyDir(inst.fs, root)
	}
	return removed
}

// linkPointsTo reports whether the symlink at target resolves to absWant.
func (inst *Installer) linkPointsTo(target, absWant string) bool {
	dest, err := inst.fs.Readlink(target)
	if err != nil {
		return false
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(filepath.Dir(target), dest)
	}
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return false
	}
	return filepath.Clean(absDest) == filepath.Clean(absWant)
}

// isCircularLink detects the platform's "too many levels of symbolic links"
// condition by following the entry with Stat.
func isCircularLink(fs fsys.FS, path string) bool {
	_, err := fs.Stat(path)
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ELOOP) {
		return true
	}
	return strings.Contains(err.Error(), "too many levels of symbolic links")
}

// copyDirectory recursively copies src into dst, the fallback when symlinks
// are unavailable.
func copyDirectory(f fsys.FS, src, dst string) error {
	info, err := f.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		data, err := f.ReadFile(src)
		if err != nil {
			return err
		}
		return f.WriteFile(dst, data, info.Mode().Perm())
	}

	if err := f.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	entries, err := f.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := copyDirectory(f, filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// cleanupEmptyDir removes dir when it has no entries left.
func cleanupEmptyDir(f fsys.FS, dir string) {
	entries, err := f.ReadDir(dir)
	if err != nil {
		return
	}
	if len(entries) == 0 {
		_ = f.Remove(dir)
	}
}

// Package core provides the business logic for skillwire.
// It has zero UI dependencies and is independently testable.
package core

import "time"

// Config is the runtime configuration for one installer run. It is built once
// at the CLI boundary and passed down; core components never read environment
// state directly.
type Config struct {
	APIBaseURL    string        // registry API root, e.g. "https://registry.skillwire.dev/api/v1"
	InstallDir    string        // root of the canonical store and lock file
	Timeout       time.Duration // per-request network timeout
	MaxConcurrent int           // download batch size
	SkipVerify    bool          // disable the content-hash gate
	DryRun        bool          // no network writes, no disk writes
}

// PluginInfo identifies the plugin a manifest describes.
type PluginInfo struct {
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ManifestSkill is one skill version listed in a plugin manifest.
type ManifestSkill struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	ContentHash string `json:"contentHash"`
	DownloadURL string `json:"downloadUrl"`
}

// PluginManifest is the signed snapshot describing what to install for one
// plugin. It is produced by a registry fetch and discarded after the run.
type PluginManifest struct {
	Version     string          `json:"version"`
	Plugin      PluginInfo      `json:"plugin"`
	Skills      []ManifestSkill `json:"skills"`
	Signature   string          `json:"signature"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// SkillLockEntry records one installed skill in the lock file.
// InstalledAt is set on first install and never changes; UpdatedAt is
// refreshed on every write.
type SkillLockEntry struct {
	Slug        string    `json:"slug"`
	Version     string    `json:"version"`
	ZipHash     string    `json:"zipHash"`
	Source      string    `json:"source"`
	InstalledAt time.Time `json:"installedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SkillLock is the whole persisted ledger. A Version mismatch invalidates the
// entire structure; it is treated as empty, never partially migrated.
type SkillLock struct {
	Version int                       `json:"version"`
	Skills  map[string]SkillLockEntry `json:"skills"`
}

// InstallMode describes how a skill reached an agent directory.
type InstallMode string

const (
	ModeSymlink InstallMode = "symlink"
	ModeCopy    InstallMode = "copy"
)

// InstallResult is the outcome of installing one skill for one agent.
// Ephemeral; aggregated into a MultiAgentInstallResult, never persisted.
type InstallResult struct {
	Success       bool
	AgentID       string
	Path          string // agent-side path (symlink or copy)
	CanonicalPath string
	Mode          InstallMode
	SymlinkFailed bool // symlink creation failed and a copy was substituted
	Err           error
}

// MultiAgentInstallResult aggregates one skill's fan-out across agents.
// Success is true when at least one agent installed successfully.
type MultiAgentInstallResult struct {
	Slug          string
	CanonicalPath string
	Agents        []InstallResult
	Success       bool
	SuccessCount  int
	FailCount     int
}

// SkillDownloadResult is the outcome of downloading one skill.
type SkillDownloadResult struct {
	Slug    string
	Path    string
	Success bool
	Skipped bool
	Err     error
}

// DownloadSummary aggregates a whole download run.
type DownloadSummary struct {
	Total   int
	Success int
	Failed  int
	Skipped int
	Results []SkillDownloadResult
}

// ProgressSink receives one callback per completed skill download.
// The downloader invokes it sequentially, never from multiple goroutines.
type ProgressSink interface {
	SkillDone(result SkillDownloadResult, done, total int)
}

// NopProgress is a ProgressSink that discards all events.
type NopProgress struct{}

// SkillDone implements ProgressSink.
func (NopProgress) SkillDone(SkillDownloadResult, int, int) {}

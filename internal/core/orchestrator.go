package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"

	"github.com/skillwire/skillwire/internal/core/agent"
	"github.com/skillwire/skillwire/internal/core/fsys"
)

// installMethod is reported to the registry's best-effort install endpoint.
const installMethod = "cli"

// Options carries the injectable collaborators for an Orchestrator.
type Options struct {
	Progress         ProgressSink
	Log              *zap.SugaredLogger
	DisableTelemetry bool
	FS               fsys.FS
}

// Orchestrator drives the full acquisition pipeline: manifest fetch,
// bounded-concurrency verified downloads into the canonical store, symlink
// fan-out per agent, and lock file recording. A separate removal flow
// reverses the last two steps.
type Orchestrator struct {
	cfg        Config
	client     *Client
	store      *Store
	lock       *LockStore
	downloader *Downloader
	installer  *Installer
	telemetry  *Telemetry
	log        *zap.SugaredLogger
}

// NewOrchestrator wires the pipeline from one run configuration.
func NewOrchestrator(cfg Config, opts Options) *Orchestrator {
	if opts.FS == nil {
		opts.FS = fsys.OS{}
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop().Sugar()
	}
	client := NewClient(cfg)
	store := NewStore(cfg.InstallDir, opts.FS)
	return &Orchestrator{
		cfg:        cfg,
		client:     client,
		store:      store,
		lock:       NewLockStore(cfg.InstallDir),
		downloader: NewDownloader(cfg, client, store, opts.FS, opts.Progress, opts.Log),
		installer:  NewInstaller(store, opts.FS, opts.Log),
		telemetry:  NewTelemetry(cfg, opts.DisableTelemetry),
		log:        opts.Log,
	}
}

// Store exposes the canonical store for read-only consumers (list, info).
func (o *Orchestrator) Store() *Store { return o.store }

// Lock exposes the lock store for read-only consumers.
func (o *Orchestrator) Lock() *LockStore { return o.lock }

// InstallRunOptions configures one InstallPlugin run.
type InstallRunOptions struct {
	Overwrite bool
	// Only restricts the run to the named skill slugs. Empty means every
	// skill in the manifest.
	Only []string
}

// InstallRunReport aggregates everything one install run did.
type InstallRunReport struct {
	Manifest  *PluginManifest
	Download  DownloadSummary
	Installs  []MultiAgentInstallResult
	Telemetry TelemetryResult
}

// InstallPlugin fetches the plugin manifest and installs every skill it
// lists: verified download into the canonical store, then symlink fan-out to
// the given agents, then a lock entry per successfully installed skill.
// Per-skill failures are aggregated into the report; only a failed manifest
// fetch aborts the run.
func (o *Orchestrator) InstallPlugin(ctx context.Context, pluginSlug string, agents []agent.Agent, scope InstallScope, opts InstallRunOptions) (*InstallRunReport, error) {
	manifest, err := o.client.FetchManifest(ctx, pluginSlug)
	if err != nil {
		return nil, fmt.Errorf("fetching manifest for %q: %w", pluginSlug, err)
	}
	o.log.Infow("manifest fetched",
		"plugin", manifest.Plugin.Slug,
		"version", manifest.Plugin.Version,
		"skills", len(manifest.Skills))

	skills := manifest.Skills
	if len(opts.Only) > 0 {
		keep := make(map[string]bool, len(opts.Only))
		for _, slug := range opts.Only {
			keep[slug] = true
		}
		var filtered []ManifestSkill
		for _, s := range manifest.Skills {
			if keep[s.Slug] {
				filtered = append(filtered, s)
			}
		}
		skills = filtered
	}

	report := &InstallRunReport{Manifest: manifest}
	report.Download = o.downloader.DownloadAll(ctx, skills, DownloadOptions{
		Overwrite:  opts.Overwrite,
		VerifyHash: !o.cfg.SkipVerify,
	})

	if o.cfg.DryRun {
		return report, nil
	}

	hashes := make(map[string]string, len(manifest.Skills))
	for _, s := range manifest.Skills {
		hashes[s.Slug] = s.ContentHash
	}

	// Fan out every skill whose canonical content is present, including ones
	// skipped because they were already downloaded: an agent added since the
	// last run still needs its symlink.
	for _, dl := range report.Download.Results {
		if !dl.Success && !dl.Skipped {
			continue
		}
		fanOut := o.installer.InstallToAgents(dl.Slug, agents, scope)
		report.Installs = append(report.Installs, fanOut)
		if !fanOut.Success {
			continue
		}
		err := o.lock.Upsert(SkillLockEntry{
			Slug:    dl.Slug,
			Version: manifest.Plugin.Version,
			ZipHash: hashes[dl.Slug],
			Source:  manifest.Plugin.Slug,
		})
		if err != nil {
			o.log.Warnw("recording lock entry failed", "slug", dl.Slug, "error", err)
		}
	}

	if err := o.client.ReportInstall(ctx, pluginSlug, installMethod); err != nil {
		o.log.Debugw("install report failed", "error", err)
	}
	report.Telemetry = o.telemetry.ReportEffectiveness(ctx, TelemetryEvent{
		Plugin:  manifest.Plugin.Slug,
		Total:   report.Download.Total,
		Success: report.Download.Success,
		Failed:  report.Download.Failed,
		Skipped: report.Download.Skipped,
	})

	return report, nil
}

// RemoveReport describes what one skill removal deleted.
type RemoveReport struct {
	Slug         string
	RemovedPaths []string
	LockRemoved  bool
}

// RemoveSkill reverses an install: agent symlinks first, then the canonical
// directory, then the lock entry.
func (o *Orchestrator) RemoveSkill(slug string, agents []agent.Agent, scope InstallScope) (*RemoveReport, error) {
	report := &RemoveReport{Slug: slug}

	report.RemovedPaths = o.installer.RemoveFromAgents(slug, agents, scope)

	if err := o.store.RemoveSkill(slug); err != nil {
		return nil, err
	}

	removed, err := o.lock.Remove(slug)
	if err != nil {
		return nil, err
	}
	report.LockRemoved = removed
	return report, nil
}

// UpdateInfo reports the update status of one locked skill.
type UpdateInfo struct {
	Slug      string
	Installed string // installed plugin version
	Available string // manifest plugin version
	HasUpdate bool
}

// CheckUpdates compares the current manifest of pluginSlug against the lock
// file. A skill has an update when the manifest's plugin version is newer
// (semver) or its content hash changed.
func (o *Orchestrator) CheckUpdates(ctx context.Context, pluginSlug string) ([]UpdateInfo, error) {
	manifest, err := o.client.FetchManifest(ctx, pluginSlug)
	if err != nil {
		return nil, err
	}

	var infos []UpdateInfo
	for _, skill := range manifest.Skills {
		entry, ok, err := o.lock.Get(skill.Slug)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		info := UpdateInfo{
			Slug:      skill.Slug,
			Installed: entry.Version,
			Available: manifest.Plugin.Version,
		}
		switch {
		case versionNewer(manifest.Plugin.Version, entry.Version):
			info.HasUpdate = true
		case entry.ZipHash != "" && skill.ContentHash != "" && entry.ZipHash != skill.ContentHash:
			info.HasUpdate = true
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// versionNewer reports whether a is a strictly newer semver than b. Versions
// that do not parse fall back to string inequality.
func versionNewer(a, b string) bool {
	va, vb := normalizeSemver(a), normalizeSemver(b)
	if va == "" || vb == "" {
		return a != b
	}
	return semver.Compare(va, vb) > 0
}

func normalizeSemver(v string) string {
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}

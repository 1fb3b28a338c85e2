package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/skillwire/skillwire/internal/core/fsys"
)

// ErrContentIntegrity marks a downloaded payload whose hash does not match
// the manifest declaration. It is a distinct failure kind from network
// errors; nothing is written to disk when it occurs.
var ErrContentIntegrity = errors.New("content hash mismatch")

// DownloadOptions configures one DownloadAll run.
type DownloadOptions struct {
	Overwrite  bool // refetch skills whose content file already exists
	VerifyHash bool // enforce the content-hash gate when a hash is declared
}

// Downloader turns a manifest's skill list into a bounded-concurrency batch
// of verified downloads into the canonical store.
type Downloader struct {
	cfg      Config
	client   *Client
	store    *Store
	fs       fsys.FS
	progress ProgressSink
	log      *zap.SugaredLogger
}

// NewDownloader wires a Downloader. progress and log may be nil.
func NewDownloader(cfg Config, client *Client, store *Store, fs fsys.FS, progress ProgressSink, log *zap.SugaredLogger) *Downloader {
	if progress == nil {
		progress = NopProgress{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Downloader{
		cfg:      cfg,
		client:   client,
		store:    store,
		fs:       fs,
		progress: progress,
		log:      log,
	}
}

// DownloadAll downloads every skill, in sequential batches of
// cfg.MaxConcurrent. All downloads in a batch complete before the next batch
// starts, bounding in-flight requests. One skill's failure never aborts the
// batch or the run; each error is captured in its result. The progress sink
// is invoked once per completed skill, from a single goroutine.
func (d *Downloader) DownloadAll(ctx context.Context, skills []ManifestSkill, opts DownloadOptions) DownloadSummary {
	summary := DownloadSummary{Total: len(skills)}
	if len(skills) == 0 {
		return summary
	}

	batchSize := d.cfg.MaxConcurrent
	if batchSize < 1 {
		batchSize = 1
	}

	done := 0
	for start := 0; start < len(skills); start += batchSize {
		end := start + batchSize
		if end > len(skills) {
			end = len(skills)
		}
		batch := skills[start:end]

		results := make(chan SkillDownloadResult, len(batch))
		var wg sync.WaitGroup
		for _, skill := range batch {
			wg.Add(1)
			go func(skill ManifestSkill) {
				defer wg.Done()
				results <- d.downloadOne(ctx, skill, opts)
			}(skill)
		}
		go func() {
			wg.Wait()
			close(results)
		}()

		// Collect sequentially so the sink never sees concurrent calls.
		for result := range results {
			done++
			switch {
			case result.Skipped:
				summary.Skipped++
			case result.Success:
				summary.Success++
			default:
				summary.Failed++
				d.log.Warnw("skill download failed", "slug", result.Slug, "error", result.Err)
			}
			summary.Results = append(summary.Results, result)
			d.progress.SkillDone(result, done, summary.Total)
		}
	}
	return summary
}

// downloadOne fetches, verifies, and writes a single skill. Every error is
// converted into a failed result.
func (d *Downloader) downloadOne(ctx context.Context, skill ManifestSkill, opts DownloadOptions) SkillDownloadResult {
	result := SkillDownloadResult{Slug: skill.Slug}

	dest, err := d.store.ContentPath(skill.Slug)
	if err != nil {
		result.Err = err
		return result
	}
	result.Path = dest

	if !opts.Overwrite && fsys.Exists(d.fs, dest) {
		result.Skipped = true
		return result
	}
	if d.cfg.DryRun {
		d.log.Debugw("dry run, skipping download", "slug", skill.Slug)
		result.Skipped = true
		return result
	}

	content, err := d.client.DownloadSkillContent(ctx, skill.DownloadURL)
	if err != nil {
		result.Err = fmt.Errorf("downloading %q: %w", skill.Slug, err)
		return result
	}

	// Integrity gate: a mismatch writes nothing and leaves no partial file.
	if opts.VerifyHash && skill.ContentHash != "" {
		if !VerifyContent(content, skill.ContentHash) {
			result.Err = fmt.Errorf("%w for %q: want %s, got %s",
				ErrContentIntegrity, skill.Slug, skill.ContentHash, HashContent(content))
			return result
		}
	}

	if _, err := d.store.EnsureSkillDir(skill.Slug); err != nil {
		result.Err = err
		return result
	}
	if err := d.fs.WriteFile(dest, []byte(content), 0o644); err != nil {
		result.Err = fmt.Errorf("writing %q: %w", skill.Slug, err)
		return result
	}

	result.Success = true
	return result
}

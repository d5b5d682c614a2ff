// Package runner sequences the phases of one scraping run: pre-flight,
// cleanup, the online fan-out, the cache dedup pass, and the local
// gamelist rebuild. Each phase gets its own dispatch pool, fully drained
// before the next phase starts, so phases never overlap.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mfeller/skybatch/internal/config"
	"github.com/mfeller/skybatch/internal/ctxlog"
	"github.com/mfeller/skybatch/internal/fsutil"
	"github.com/mfeller/skybatch/internal/platform"
	"github.com/mfeller/skybatch/internal/pool"
	"github.com/mfeller/skybatch/internal/scraper"
)

// Options selects the run mode and reporting behavior.
type Options struct {
	// Debug logs every constructed command line before execution.
	Debug bool

	// DryRun logs every command that would run and executes nothing:
	// no pre-flight, no cleanup, no subprocesses, no log file.
	DryRun bool

	// Videos includes video assets in scraping and rebuild.
	Videos bool

	// LocalOnly runs only the rebuild phase. OnlineOnly runs only the
	// fan-out and dedup phases. They are mutually exclusive; the CLI
	// layer enforces that before a Runner is built.
	LocalOnly  bool
	OnlineOnly bool
}

// Summary is what a completed run reports back.
type Summary struct {
	// RunID correlates log lines and the log file with this run.
	RunID string

	// LogPath is the combined child-output log file, empty in dry runs.
	LogPath string

	// Cleaned lists the generated-artifact directories removed before
	// the phases ran.
	Cleaned []string

	// Results holds one entry per dispatched task, across all phases.
	Results []pool.Result
}

// Failures returns the results of tasks that did not exit zero.
func (s Summary) Failures() []pool.Result {
	var failed []pool.Result
	for _, r := range s.Results {
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	return failed
}

// Runner executes one run for one system. Build it with New and call Run
// once.
type Runner struct {
	cfg     *config.Config
	sys     platform.System
	romPath string
	opts    Options
	now     func() time.Time
}

// New assembles a Runner. romPath is the system's resolved ROM directory,
// after any -s/-p override.
func New(cfg *config.Config, sys platform.System, romPath string, opts Options) *Runner {
	return &Runner{
		cfg:     cfg,
		sys:     sys,
		romPath: romPath,
		opts:    opts,
		now:     time.Now,
	}
}

// Run executes the whole phase sequence. Task failures are observed,
// logged, and collected in the summary, but deliberately do not abort the
// run or change its error result; only pre-flight and setup problems do.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	runID := uuid.New().String()
	logger := ctxlog.FromContext(ctx).With("run_id", runID, "system", r.sys.Name)
	ctx = ctxlog.WithLogger(ctx, logger)

	summary := Summary{RunID: runID}

	if r.opts.DryRun {
		logger.Info("Dry run: printing commands without executing.")
		r.logPlannedCommands(ctx)
		return summary, nil
	}

	// Pre-flight: fail before any cleanup or dispatch if a binary is
	// missing from the search path.
	if err := fsutil.CheckExecutables(r.cfg.ScraperBin, r.cfg.DedupBin); err != nil {
		return summary, fmt.Errorf("pre-flight failed: %w", err)
	}
	logger.Debug("Pre-flight passed.", "scraper", r.cfg.ScraperBin, "dedup", r.cfg.DedupBin)

	sink, logPath, err := r.openSink(runID)
	if err != nil {
		return summary, err
	}
	defer sink.Close()
	summary.LogPath = logPath
	logger.Info("Logging child output.", "path", logPath)

	// Cleanup runs in every mode. Stale generated artifacts must never
	// mix with freshly regenerated ones, even in a partial run.
	cleaned, err := fsutil.RemoveGeneratedDirs(r.romPath, r.cfg.CleanupDirs)
	if err != nil {
		return summary, fmt.Errorf("cleanup failed: %w", err)
	}
	summary.Cleaned = cleaned
	logger.Info("Removed stale generated directories.", "count", len(cleaned), "dirs", cleaned)

	if !r.opts.LocalOnly {
		summary.Results = append(summary.Results, r.fanOutOnline(ctx, sink)...)
		summary.Results = append(summary.Results, r.dedup(ctx, sink)...)
	}
	if !r.opts.OnlineOnly {
		summary.Results = append(summary.Results, r.rebuildLocal(ctx, sink)...)
	}

	for _, f := range summary.Failures() {
		logger.Warn("Task exited unsuccessfully; continuing.",
			"label", f.Label, "exit_code", f.ExitCode, "error", f.Err)
	}
	logger.Info("Run complete.",
		"tasks", len(summary.Results), "failed", len(summary.Failures()))
	return summary, nil
}

// fanOutOnline dispatches one forced-refresh scrape per configured source
// against the same system, all through a single pool sized at the
// concurrency ceiling, and waits for every one of them.
func (r *Runner) fanOutOnline(ctx context.Context, sink io.Writer) []pool.Result {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Scraping online sources.",
		"sources", len(r.cfg.Sources), "workers", r.cfg.Workers)

	p := pool.New(ctx, r.cfg.Workers, len(r.cfg.Sources), sink)
	for _, source := range r.cfg.Sources {
		cmd := scraper.Build(r.cfg.ScraperBin, r.sys, r.cfg.CacheRoot, r.sourceOptions(source))
		r.submit(ctx, p, cmd, fmt.Sprintf("scrape %s from %s", r.sys.Name, source))
	}
	results := p.Drain()
	logger.Info("Online fan-out finished.", "tasks", len(results))
	return results
}

// dedup collapses byte-identical files across the whole shared cache, not
// just this system's slice of it. It runs only after the fan-out pool has
// fully drained.
func (r *Runner) dedup(ctx context.Context, sink io.Writer) []pool.Result {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Deduplicating cache.", "root", r.cfg.CacheRoot)

	p := pool.New(ctx, 1, 1, sink)
	r.submit(ctx, p, scraper.Dedup(r.cfg.DedupBin, r.cfg.CacheRoot), "dedup cache")
	results := p.Drain()
	logger.Info("Dedup finished.")
	return results
}

// rebuildLocal regenerates the gamelist and media layout from the local
// cache only: no source, no forced refresh.
func (r *Runner) rebuildLocal(ctx context.Context, sink io.Writer) []pool.Result {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Rebuilding gamelist from local cache.")

	opts := r.sourceOptions("")
	opts.ForceRefresh = false

	p := pool.New(ctx, 1, 1, sink)
	cmd := scraper.Build(r.cfg.ScraperBin, r.sys, r.cfg.CacheRoot, opts)
	r.submit(ctx, p, cmd, fmt.Sprintf("rebuild gamelist for %s", r.sys.Name))
	results := p.Drain()
	logger.Info("Rebuild finished.")
	return results
}

// sourceOptions is the option set shared by every scrape of this run,
// pointed at the given source. Online scrapes force a refresh so cached
// entries are re-fetched.
func (r *Runner) sourceOptions(source string) scraper.Options {
	opts := scraper.DefaultOptions()
	opts.Source = source
	opts.ForceRefresh = source != ""
	opts.FetchVideos = r.opts.Videos
	opts.InputOutputPath = r.romPath
	opts.ExtensionFilters = r.sys.Extensions
	opts.Verbose = r.opts.Debug
	return opts
}

// submit hands one command to the phase's pool, logging the constructed
// command line first when --debug is on.
func (r *Runner) submit(ctx context.Context, p *pool.Pool, cmd scraper.Command, label string) {
	if r.opts.Debug {
		ctxlog.FromContext(ctx).Info("Constructed command.", "label", label, "command", cmd.String())
	}
	p.Submit(cmd, label)
}

// logPlannedCommands emits every command the selected mode would run.
func (r *Runner) logPlannedCommands(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	if !r.opts.LocalOnly {
		for _, source := range r.cfg.Sources {
			cmd := scraper.Build(r.cfg.ScraperBin, r.sys, r.cfg.CacheRoot, r.sourceOptions(source))
			logger.Info("Would run.", "command", cmd.String())
		}
		logger.Info("Would run.", "command", scraper.Dedup(r.cfg.DedupBin, r.cfg.CacheRoot).String())
	}
	if !r.opts.OnlineOnly {
		opts := r.sourceOptions("")
		opts.ForceRefresh = false
		cmd := scraper.Build(r.cfg.ScraperBin, r.sys, r.cfg.CacheRoot, opts)
		logger.Info("Would run.", "command", cmd.String())
	}
}

// openSink creates the run's append-only combined log file, shared by all
// tasks of all phases, with a preamble identifying the run. Interleaving
// of lines from concurrent children is expected.
func (r *Runner) openSink(runID string) (*os.File, string, error) {
	name := fmt.Sprintf("skybatch-%s.log", r.now().Format("20060102-150405"))
	path := filepath.Join(r.cfg.LogDir, name)
	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create log sink: %w", err)
	}
	fmt.Fprintf(f, "skybatch run %s system=%s started=%s\n",
		runID, r.sys.Name, r.now().Format(time.RFC3339))
	return f, path, nil
}

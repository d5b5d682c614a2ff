package app

import (
	"context"
	"fmt"

	"github.com/mfeller/skybatch/internal/ctxlog"
	"github.com/mfeller/skybatch/internal/runner"
)

// Run executes the whole run and reports the outcome. Task failures are
// logged by the runner and surfaced in the completion summary, but the
// run still counts as complete; only startup and pre-flight problems make
// Run return an error.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Info("Starting run.",
		"system", a.sys.Name, "rom_path", a.romPath,
		"local_only", a.opts.LocalOnly, "online_only", a.opts.OnlineOnly)

	r := runner.New(a.cfg, a.sys, a.romPath, a.opts)
	summary, err := r.Run(ctx)
	if err != nil {
		return err
	}

	if failed := summary.Failures(); len(failed) > 0 {
		a.logger.Warn("Run finished with unsuccessful tasks.",
			"tasks", len(summary.Results), "failed", len(failed))
	} else {
		a.logger.Info("Run finished.", "tasks", len(summary.Results))
	}
	if summary.LogPath != "" {
		fmt.Fprintf(a.outW, "Combined scraper output: %s\n", summary.LogPath)
	}
	return nil
}

// Package pool runs external commands through a fixed-size worker pool.
// Each pool is scoped to one phase of a run: it is created, fed tasks,
// drained, and discarded, so no two phases ever share workers. Tasks are
// isolated child processes with stdout and stderr merged into a single
// shared sink.
package pool

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"sync"

	"github.com/mfeller/skybatch/internal/ctxlog"
	"github.com/mfeller/skybatch/internal/scraper"
)

// Result is the structured outcome of one task. The pool records it for
// every task regardless of exit status; acting on failures is the
// caller's decision.
type Result struct {
	// Label is the human-readable task name given at Submit.
	Label string

	// ExitCode is the child's exit status, or -1 when the process could
	// not be started or was terminated by a signal.
	ExitCode int

	// Err is set when the command failed for a reason other than a clean
	// non-zero exit, such as the binary being unrunnable.
	Err error
}

// Failed reports whether the task did anything other than exit zero.
func (r Result) Failed() bool {
	return r.ExitCode != 0 || r.Err != nil
}

type task struct {
	cmd   scraper.Command
	label string
}

// Pool is a bounded-concurrency dispatcher for external commands. Create
// one with New, feed it with Submit, and finish with Drain; a drained
// pool must not be reused.
type Pool struct {
	tasks chan task
	wg    sync.WaitGroup

	mu      sync.Mutex
	results []Result
}

// New starts a pool with the given number of workers. queueCap bounds how
// many tasks may wait for a free worker before Submit blocks; callers
// size it to the number of tasks the phase will submit. Child output goes
// to sink; a nil sink discards it.
func New(ctx context.Context, workers, queueCap int, sink io.Writer) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueCap < workers {
		queueCap = workers
	}
	if sink == nil {
		sink = io.Discard
	}

	p := &Pool{tasks: make(chan task, queueCap)}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting worker pool.", "workers", workers, "queue_cap", queueCap)

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(ctx, sink, i)
	}
	return p
}

// Submit queues one command for execution. It blocks only when the queue
// is full. Submitting after Drain panics on the closed channel, matching
// the one-pool-per-phase contract.
func (p *Pool) Submit(cmd scraper.Command, label string) {
	p.tasks <- task{cmd: cmd, label: label}
}

// Drain closes the queue, waits for every submitted task to finish, and
// returns all results. After Drain returns, no worker goroutine of this
// pool is left running.
func (p *Pool) Drain() []Result {
	close(p.tasks)
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Result, len(p.results))
	copy(out, p.results)
	return out
}

// worker is the processing loop for a single concurrent worker.
func (p *Pool) worker(ctx context.Context, sink io.Writer, workerID int) {
	defer p.wg.Done()
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for t := range p.tasks {
		workerLogger := logger.With("workerID", workerID, "label", t.label)
		workerLogger.Debug("Worker picked up task.")

		res := runTask(ctx, t, sink)
		if res.Err != nil {
			workerLogger.Warn("Task did not run cleanly.", "error", res.Err)
		}
		// The per-task progress line every run shows, success or not.
		workerLogger.Info("Finished.", "exit_code", res.ExitCode)

		p.mu.Lock()
		p.results = append(p.results, res)
		p.mu.Unlock()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// runTask executes one child process with merged stdout/stderr.
func runTask(ctx context.Context, t task, sink io.Writer) Result {
	cmd := exec.CommandContext(ctx, t.cmd.Program, t.cmd.Args...)
	cmd.Stdout = sink
	cmd.Stderr = sink

	err := cmd.Run()
	if err == nil {
		return Result{Label: t.label, ExitCode: 0}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		// A clean non-zero exit is an observed status, not a pool error.
		return Result{Label: t.label, ExitCode: exitErr.ExitCode()}
	}
	return Result{Label: t.label, ExitCode: -1, Err: err}
}

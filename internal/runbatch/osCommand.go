// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matt-FFFFFF/mpcli/internal/ctxlog"
	"github.com/matt-FFFFFF/mpcli/internal/progress"
	"github.com/matt-FFFFFF/mpcli/internal/signalbroker"
	"github.com/matt-FFFFFF/mpcli/internal/teereader"
)

const (
	maxBufferSize  = 8 * 1024 * 1024  // 8MB
	tickerInterval = 30 * time.Second // Interval for the still-running debug log
)

var _ Runnable = (*OSCommand)(nil)

var (
	// ErrBufferOverflow is returned when the output exceeds the max size.
	ErrBufferOverflow = fmt.Errorf("output exceeds max size of %d bytes", maxBufferSize)
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrTimeoutExceeded is returned when the command exceeds the context deadline or the context is cancelled.
	ErrTimeoutExceeded = errors.New("timeout exceeded")
	// ErrFailedToCreatePipe is returned when the operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrSignalReceived is returned when a operating system signal is received by the child process.
	ErrSignalReceived = errors.New("signal received")
	// ErrDuplicateSignalReceived is returned when a duplicate signal is received, forcing process termination.
	ErrDuplicateSignalReceived = errors.New("duplicate signal received, process forcefully terminated")
)

// OSCommand represents a single worker process.
// It only reports output events; lifecycle events are reported by the RetryCommand or batch around it.
type OSCommand struct {
	*BaseCommand
	Path             string         // The executable to run, looked up in PATH if it has no separator.
	Args             []string       // Arguments to the command, do not include the executable name itself.
	SuccessExitCodes []int          // Exit codes that indicate success, defaults to 0.
	SecretArgs       []string       // Argument values masked in logs and results, e.g. passwords.
	sigCh            chan os.Signal // Channel to receive signals, allows mocking in test.
}

// NewOSCommand creates an OSCommand.
func NewOSCommand(base *BaseCommand, path string, args []string) *OSCommand {
	if base == nil {
		base = NewBaseCommand(filepath.Base(path), "", nil)
	}

	return &OSCommand{
		BaseCommand: base,
		Path:        path,
		Args:        slices.Clone(args),
	}
}

// CommandLine returns the executable followed by its arguments, with secrets masked.
func (c *OSCommand) CommandLine() []string {
	line := slices.Concat([]string{c.Path}, c.Args)
	for i, a := range line {
		if slices.Contains(c.SecretArgs, a) {
			line[i] = "********"
		}
	}

	return line
}

// Run implements the Runnable interface for OSCommand.
func (c *OSCommand) Run(ctx context.Context) Results {
	logger := ctxlog.Logger(ctx).
		With("runnableType", "OSCommand").
		With("label", FullLabel(c))

	logger.Debug("command info", "cwd", c.Cwd, "commandLine", c.CommandLine())

	successCodes := c.SuccessExitCodes
	if len(successCodes) == 0 {
		successCodes = []int{0}
	}

	res := &Result{
		Label:  c.GetLabel(),
		Args:   c.CommandLine(),
		Status: ResultStatusError,
	}

	fail := func(err error) Results {
		res.Error = err
		res.ExitCode = -1

		return Results{res}
	}

	if err := ctx.Err(); err != nil {
		return fail(errors.Join(ErrTimeoutExceeded, err))
	}

	path := c.Path
	if !strings.ContainsRune(path, os.PathSeparator) {
		lp, err := exec.LookPath(path)
		if err != nil {
			return fail(errors.Join(ErrCouldNotStartProcess, err))
		}

		path = lp
	}

	sigCh := c.sigCh
	if sigCh == nil {
		sigCh = signalbroker.New(ctx)
		defer signalbroker.Stop(sigCh)
	}

	env := mergeEnv(os.Environ(), c.Env)

	rOut, wOut, err := os.Pipe()
	if err != nil {
		return fail(errors.Join(ErrFailedToCreatePipe, err))
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		_ = rOut.Close()
		_ = wOut.Close()

		return fail(errors.Join(ErrFailedToCreatePipe, err))
	}

	stdin, err := os.Open(os.DevNull)
	if err != nil {
		_ = rOut.Close()
		_ = wOut.Close()
		_ = rErr.Close()
		_ = wErr.Close()

		return fail(errors.Join(ErrCouldNotStartProcess, err))
	}

	args := slices.Concat([]string{filepath.Base(path)}, c.Args)

	logger.Debug("starting process", "resolvedPath", path)

	ps, err := os.StartProcess(path, args, &os.ProcAttr{
		Dir:   c.Cwd,
		Env:   env,
		Files: []*os.File{stdin, wOut, wErr},
	})

	// The child holds its own copies now.
	_ = stdin.Close()
	_ = wOut.Close()
	_ = wErr.Close()

	if err != nil {
		_ = rOut.Close()
		_ = rErr.Close()

		return fail(errors.Join(ErrCouldNotStartProcess, err))
	}

	logger.Debug("process started", "pid", ps.Pid)

	startTime := time.Now()
	outputPath := CommandPath(c)

	stdout := &cappedBuffer{max: maxBufferSize}
	stderr := &cappedBuffer{max: maxBufferSize}

	readers := &sync.WaitGroup{}
	readers.Add(2) //nolint:mnd

	go c.drain(ctx, readers, rOut, stdout, outputPath, false)
	go c.drain(ctx, readers, rErr, stderr, outputPath, true)

	// The watchdog forwards signals and kills the process when the context is done
	// or a signal is received twice.
	wd := &watchdogState{}
	done := make(chan struct{})
	watchdogDone := make(chan struct{})

	go func() {
		defer close(watchdogDone)

		signalCount := make(map[os.Signal]struct{})

		ticker := time.NewTicker(tickerInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				logger.Debug("process still running", "pid", ps.Pid, "elapsed", time.Since(startTime).Round(time.Second))

			case s := <-sigCh:
				if _, ok := signalCount[s]; ok {
					logger.Info("received duplicate signal, killing process", "signal", s.String())
					wd.record(ErrDuplicateSignalReceived, "received duplicate signal, killing process: "+s.String())
					killPs(ctx, ps)

					return
				}

				signalCount[s] = struct{}{}

				logger.Info("received signal", "signal", s.String())
				wd.record(ErrSignalReceived, "received signal: "+s.String())

				if err := ps.Signal(s); err != nil {
					logger.Info("failed to send signal", "signal", s.String(), "error", err)
				}

			case <-ctx.Done():
				logger.Info("context done, killing process")
				wd.record(errors.Join(ErrTimeoutExceeded, ctx.Err()), "context done, killing process")
				killPs(ctx, ps)

				return

			case <-done:
				return
			}
		}
	}()

	logger.Debug("waiting for process to finish")

	state, psErr := ps.Wait()

	close(done)
	<-watchdogDone
	readers.Wait()

	_ = rOut.Close()
	_ = rErr.Close()

	res.Error = psErr
	res.ExitCode = -1

	if state != nil {
		res.ExitCode = state.ExitCode()
	}

	logger.Debug("process finished", "exitCode", res.ExitCode, "duration", time.Since(startTime))

	res.StdOut = stdout.Bytes()
	res.StdErr = stderr.Bytes()

	if notes, wdErr := wd.result(); wdErr != nil {
		res.Error = errors.Join(res.Error, wdErr)

		for _, n := range notes {
			res.StdErr = append(res.StdErr, []byte(n+"\n")...)
		}
	}

	if stdout.overflow || stderr.overflow {
		logger.Debug("output truncated", "maxBytes", maxBufferSize)
		res.Error = errors.Join(res.Error, ErrBufferOverflow)
	}

	switch {
	case slices.Contains(successCodes, res.ExitCode) && res.Error == nil:
		logger.Debug("process exit code indicates success", "exitCode", res.ExitCode)
		res.Status = ResultStatusSuccess
	default:
		// A non-zero exit code does not generate an error, so this covers both.
		logger.Debug("process error", "error", res.Error, "exitCode", res.ExitCode)

		if res.ExitCode == 0 {
			res.ExitCode = -1
		}

		res.Status = ResultStatusError
	}

	return Results{res}
}

// drain copies a pipe into buf and reports each line as it arrives.
func (c *OSCommand) drain(
	ctx context.Context, wg *sync.WaitGroup, r io.Reader, buf *cappedBuffer, path []string, isStderr bool,
) {
	defer wg.Done()

	var onLine func(string)

	if reporter := c.GetProgressReporter(); reporter != nil {
		onLine = func(line string) {
			reportEvent(reporter, path, progress.EventOutput, "output", progress.EventData{
				OutputLine: line,
				IsStderr:   isStderr,
			})
		}
	}

	tee := teereader.NewLastLineTeeReader(r, onLine)
	if _, err := io.Copy(buf, tee); err != nil && !errors.Is(err, os.ErrClosed) {
		ctxlog.Logger(ctx).Debug("error reading process output", "stderr", isStderr, "error", err)
	}
}

// watchdogState records why the watchdog interfered with the process.
type watchdogState struct {
	mu    sync.Mutex
	err   error
	notes []string
}

func (w *watchdogState) record(err error, note string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.err = errors.Join(w.err, err)
	w.notes = append(w.notes, note)
}

func (w *watchdogState) result() ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	return slices.Clone(w.notes), w.err
}

// cappedBuffer keeps the first max bytes written to it and discards the rest,
// so the writing process is never blocked on a full pipe.
type cappedBuffer struct {
	buf      []byte
	max      int
	overflow bool
}

// Write implements io.Writer. It never returns an error.
func (b *cappedBuffer) Write(p []byte) (int, error) {
	room := b.max - len(b.buf)
	if room >= len(p) {
		b.buf = append(b.buf, p...)
		return len(p), nil
	}

	if room > 0 {
		b.buf = append(b.buf, p[:room]...)
	}

	b.overflow = true

	return len(p), nil
}

// Bytes returns the captured data.
func (b *cappedBuffer) Bytes() []byte {
	return b.buf
}

// killPs kills the process.
func killPs(ctx context.Context, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Logger(ctx).Debug("process already done", "pid", ps.Pid)
			return
		}

		ctxlog.Logger(ctx).Error("process kill error", "pid", ps.Pid, "error", err)

		return
	}

	ctxlog.Logger(ctx).Info("process killed", "pid", ps.Pid)
}

// mergeEnv returns base with every variable named in extra replaced by its value in extra.
func mergeEnv(base []string, extra map[string]string) []string {
	env := make([]string, 0, len(base)+len(extra))

	for _, kv := range base {
		k, _, _ := strings.Cut(kv, "=")
		if _, ok := extra[k]; ok {
			continue
		}

		env = append(env, kv)
	}

	for _, k := range slices.Sorted(maps.Keys(extra)) {
		env = append(env, k+"="+extra[k])
	}

	return env
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"opsdeck/internal/corrector"
	"opsdeck/internal/db"
	"opsdeck/internal/logger"
	"opsdeck/internal/remote"
	"opsdeck/internal/ui"
)

type runOptions struct {
	Raw    bool // skip correction
	DryRun bool // stop before connecting
}

// runner takes a typed command through correction, execution and history
type runner struct {
	corrector *corrector.Corrector
	correct   bool
	store     *db.Storage
	connect   func(ctx context.Context) (remote.Executor, error)
	host      string
	out       io.Writer
	width     int
	spin      bool

	exec remote.Executor
}

// prepare returns what would run for input
func (r *runner) prepare(input string, opts runOptions) corrector.Result {
	if opts.Raw || !r.correct {
		command := strings.TrimSpace(input)
		if command == "" {
			return corrector.Result{Note: corrector.NoteEmpty}
		}
		return corrector.Result{Command: command}
	}
	return r.corrector.Correct(input)
}

// run corrects input, executes it and records the outcome. A nil result
// with a nil error means nothing was executed.
func (r *runner) run(ctx context.Context, input string, opts runOptions) (*remote.Result, error) {
	log := logger.With("run")
	prepared := r.prepare(input, opts)

	if prepared.Note != "" {
		fmt.Fprintln(r.out, ui.Note(prepared.Note))
	}
	if prepared.Command == "" {
		return nil, nil
	}
	fmt.Fprintf(r.out, "%s %s\n", ui.Muted("$"), ui.Command(prepared.Command))
	if opts.DryRun {
		return nil, nil
	}

	exec, err := r.executor(ctx)
	if err != nil {
		return nil, err
	}

	var res *remote.Result
	runErr := func(ctx context.Context) error {
		var err error
		res, err = exec.Run(ctx, prepared.Command)
		return err
	}
	if r.spin {
		err = ui.RunWithSpinner(ctx, "Running on "+r.host, runErr)
	} else {
		err = runErr(ctx)
	}
	if err != nil {
		log.Error("execution failed", "command", prepared.Command, "error", err)
		return nil, fmt.Errorf("failed to run %q: %w", prepared.Command, err)
	}

	r.print(res)
	r.record(ctx, input, prepared, res)
	return res, nil
}

func (r *runner) executor(ctx context.Context) (remote.Executor, error) {
	if r.exec != nil {
		return r.exec, nil
	}
	if r.connect == nil {
		return nil, errors.New("no remote host configured")
	}
	exec, err := r.connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	r.exec = exec
	return exec, nil
}

func (r *runner) print(res *remote.Result) {
	width := r.width
	if width <= 0 {
		width = ui.Width()
	}
	if out := ui.Block(res.Stdout, width); out != "" {
		fmt.Fprintln(r.out, out)
	}
	if errOut := ui.Block(res.Stderr, width); errOut != "" {
		fmt.Fprintln(r.out, ui.Red(errOut))
	}

	status := fmt.Sprintf("exit %d (%s)", res.ExitCode, res.Duration.Round(time.Millisecond))
	if res.Success() {
		fmt.Fprintln(r.out, ui.Green("✓ "+status))
	} else {
		fmt.Fprintln(r.out, ui.Red("✗ "+status))
	}
}

func (r *runner) record(ctx context.Context, input string, prepared corrector.Result, res *remote.Result) {
	if r.store == nil {
		return
	}
	_, err := r.store.AddRun(ctx, db.RunRecord{
		Raw:      strings.TrimSpace(input),
		Command:  prepared.Command,
		Note:     prepared.Note,
		Host:     r.host,
		ExitCode: res.ExitCode,
		Duration: res.Duration,
	})
	if err != nil {
		logger.With("history").Warn("failed to record run", "error", err)
	}
}

// Close releases the connection and history store
func (r *runner) Close() error {
	var errs []error
	if r.exec != nil {
		errs = append(errs, r.exec.Close())
		r.exec = nil
	}
	if r.store != nil {
		errs = append(errs, r.store.Close())
	}
	return errors.Join(errs...)
}

package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"opsdeck/internal/catalog"
	"opsdeck/internal/corrector"
	"opsdeck/internal/db"
	"opsdeck/internal/remote"
)

type fakeExecutor struct {
	commands []string
	result   remote.Result
	err      error
	closed   int
}

func (f *fakeExecutor) Run(ctx context.Context, command string) (*remote.Result, error) {
	f.commands = append(f.commands, command)
	if f.err != nil {
		return nil, f.err
	}
	res := f.result
	res.Command = command
	return &res, nil
}

func (f *fakeExecutor) Close() error {
	f.closed++
	return nil
}

func newTestRunner(t *testing.T, exec *fakeExecutor) (*runner, *bytes.Buffer, *int) {
	t.Helper()
	store, err := db.NewStorage(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	dials := 0
	var out bytes.Buffer
	r := &runner{
		corrector: corrector.New(),
		correct:   true,
		store:     store,
		connect: func(context.Context) (remote.Executor, error) {
			dials++
			return exec, nil
		},
		host:  "10.0.0.5",
		out:   &out,
		width: 80,
	}
	t.Cleanup(func() { r.Close() })
	return r, &out, &dials
}

func TestRunnerCorrectsAndRecords(t *testing.T) {
	exec := &fakeExecutor{result: remote.Result{Stdout: "nginx pulled\n", Duration: time.Second}}
	r, out, _ := newTestRunner(t, exec)
	ctx := context.Background()

	res, err := r.run(ctx, "dcoker pul nginx", runOptions{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(exec.commands) != 1 || exec.commands[0] != "docker pull nginx" {
		t.Errorf("expected corrected command executed, got %v", exec.commands)
	}
	if !res.Success() {
		t.Errorf("expected success, got %+v", res)
	}
	if !strings.Contains(out.String(), "Auto-corrected 'dcoker'") || !strings.Contains(out.String(), "nginx pulled") {
		t.Errorf("unexpected output %q", out.String())
	}

	runs, err := r.store.Runs(ctx, 0)
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one recorded run, got %d (%v)", len(runs), err)
	}
	if runs[0].Raw != "dcoker pul nginx" || runs[0].Command != "docker pull nginx" || runs[0].Host != "10.0.0.5" {
		t.Errorf("unexpected record %+v", runs[0])
	}
}

func TestRunnerEmptyRunsNothing(t *testing.T) {
	exec := &fakeExecutor{}
	r, out, dials := newTestRunner(t, exec)

	res, err := r.run(context.Background(), "   ", runOptions{})
	if err != nil || res != nil {
		t.Fatalf("expected nothing to run, got %+v, %v", res, err)
	}
	if *dials != 0 || len(exec.commands) != 0 {
		t.Error("empty command must not connect or execute")
	}
	if !strings.Contains(out.String(), corrector.NoteEmpty) {
		t.Errorf("expected empty note, got %q", out.String())
	}
}

func TestRunnerUnparsableRunsVerbatim(t *testing.T) {
	exec := &fakeExecutor{}
	r, _, _ := newTestRunner(t, exec)

	input := `docker run "unterminated`
	if _, err := r.run(context.Background(), input, runOptions{}); err != nil {
		t.Fatal(err)
	}
	if len(exec.commands) != 1 || exec.commands[0] != input {
		t.Errorf("expected verbatim execution, got %v", exec.commands)
	}
}

func TestRunnerRawAndDryRun(t *testing.T) {
	exec := &fakeExecutor{}
	r, out, dials := newTestRunner(t, exec)
	ctx := context.Background()

	if _, err := r.run(ctx, "dcoker ps", runOptions{DryRun: true}); err != nil {
		t.Fatal(err)
	}
	if *dials != 0 {
		t.Error("dry run must not connect")
	}
	if !strings.Contains(out.String(), "docker ps") {
		t.Errorf("expected corrected command shown, got %q", out.String())
	}

	if _, err := r.run(ctx, "df -h | head", runOptions{Raw: true}); err != nil {
		t.Fatal(err)
	}
	if exec.commands[0] != "df -h | head" {
		t.Errorf("expected raw command, got %q", exec.commands[0])
	}
}

func TestRunnerReusesConnection(t *testing.T) {
	exec := &fakeExecutor{}
	r, _, dials := newTestRunner(t, exec)
	ctx := context.Background()

	for _, in := range []string{"docker ps", "docker images"} {
		if _, err := r.run(ctx, in, runOptions{}); err != nil {
			t.Fatal(err)
		}
	}
	if *dials != 1 {
		t.Errorf("expected one connection, got %d", *dials)
	}
	r.Close()
	if exec.closed != 1 {
		t.Errorf("expected executor closed once, got %d", exec.closed)
	}
}

func TestRunnerFailures(t *testing.T) {
	exec := &fakeExecutor{result: remote.Result{Stderr: "No such container: web\n", ExitCode: 1}}
	r, out, _ := newTestRunner(t, exec)
	ctx := context.Background()

	res, err := r.run(ctx, "docker stop web", runOptions{})
	if err != nil {
		t.Fatalf("non-zero exit must not be an error: %v", err)
	}
	if res.Success() || !strings.Contains(out.String(), "No such container") {
		t.Errorf("unexpected result %+v / %q", res, out.String())
	}
	stats, _ := r.store.Stats(ctx, 0)
	if stats.Failures != 1 {
		t.Errorf("expected failure recorded, got %+v", stats)
	}

	exec.err = errors.New("connection reset")
	if _, err := r.run(ctx, "docker ps", runOptions{}); err == nil {
		t.Error("expected transport error")
	}
}

func TestRunnerConnectError(t *testing.T) {
	r := &runner{
		corrector: corrector.New(),
		correct:   true,
		connect: func(context.Context) (remote.Executor, error) {
			return nil, remote.ErrNoAuth
		},
		out: &bytes.Buffer{},
	}
	if _, err := r.run(context.Background(), "docker ps", runOptions{}); !errors.Is(err, remote.ErrNoAuth) {
		t.Errorf("expected ErrNoAuth, got %v", err)
	}
}

func TestRenderPick(t *testing.T) {
	cat := catalog.Default()

	got, err := renderPick(cat, "Pull Image (name)", "alpine")
	if err != nil || got != "docker pull alpine" {
		t.Errorf("renderPick = %q, %v", got, err)
	}
	if _, err := renderPick(cat, "Pull Image (name)", ""); !errors.Is(err, catalog.ErrMissingArgument) {
		t.Errorf("expected ErrMissingArgument, got %v", err)
	}
	_, err = renderPick(cat, "Stop Contaner", "")
	if err == nil || !strings.Contains(err.Error(), "Stop Container") {
		t.Errorf("expected suggestion in error, got %v", err)
	}
}

func TestPrintExamples(t *testing.T) {
	var out bytes.Buffer
	printExamples(&out, corrector.New())
	for _, want := range []string{"docker ps -a", "docker pull nginx", "verb-renamed"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in examples output", want)
		}
	}
}

func TestExitErrorStatus(t *testing.T) {
	for code, want := range map[int]int{0: 1, -1: 1, 2: 2, 125: 125, 300: 1} {
		if got := (&exitError{code: code}).status(); got != want {
			t.Errorf("status(%d) = %d, want %d", code, got, want)
		}
	}
}

func TestCommandLineKeepsArgumentBoundaries(t *testing.T) {
	exec := &fakeExecutor{}
	r, _, _ := newTestRunner(t, exec)

	args := []string{"dcoker", "exec", "web", "sh", "-c", "echo hi"}
	if _, err := r.run(context.Background(), commandLine(args), runOptions{}); err != nil {
		t.Fatal(err)
	}
	want := `docker exec web sh -c 'echo hi'`
	if len(exec.commands) != 1 || exec.commands[0] != want {
		t.Errorf("expected %q, got %v", want, exec.commands)
	}

	if got := commandLine([]string{"docker ps | grep web"}); got != "docker ps | grep web" {
		t.Errorf("single argument must be kept as typed, got %q", got)
	}
}

func TestRunPickSkipsCorrection(t *testing.T) {
	exec := &fakeExecutor{}
	r, out, _ := newTestRunner(t, exec)

	if _, err := runPick(context.Background(), r, catalog.Default(), "Pull Image (name)", `it"s`, runOptions{}); err != nil {
		t.Fatal(err)
	}
	if len(exec.commands) != 1 || exec.commands[0] != `docker pull it"s` {
		t.Errorf("expected rendered command run as is, got %v", exec.commands)
	}
	if strings.Contains(out.String(), corrector.NoteUnparsable) {
		t.Errorf("catalog pick must not go through correction, got %q", out.String())
	}
}

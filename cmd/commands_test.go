package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"opsdeck/internal/config"
	"opsdeck/internal/corrector"
	"opsdeck/internal/db"
	"opsdeck/internal/files"
)

func newTestCommand() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&out)
	c.SetErr(&errOut)
	c.SetContext(context.Background())
	return c, &out, &errOut
}

func useMemoryBrowser(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	prev := browser
	browser = files.New(fs)
	t.Cleanup(func() { browser = prev })
	return fs
}

func TestFilesCommands(t *testing.T) {
	fs := useMemoryBrowser(t)
	for path, data := range map[string]string{
		"/home/me/app.yml": "services: {}",
		"/srv/b.log":       "bb",
	} {
		if err := afero.WriteFile(fs, path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := fs.MkdirAll("/tmp/out", 0755); err != nil {
		t.Fatal(err)
	}

	c, out, _ := newTestCommand()
	if err := runFilesPut(c, []string{"/home/me/app.yml", "/srv"}); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := runFilesGet(c, []string{"/srv", "b.log", "/tmp/out"}); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if data, _ := afero.ReadFile(fs, "/tmp/out/b.log"); string(data) != "bb" {
		t.Errorf("unexpected downloaded content %q", data)
	}

	filesTypes = true
	defer func() { filesTypes = false }()
	if err := runFilesList(c, []string{"/srv"}); err != nil {
		t.Fatalf("ls failed: %v", err)
	}
	for _, want := range []string{"uploaded /home/me/app.yml", "downloaded b.log", "app.yml", "b.log", "File types", ".yml"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in output %q", want, out.String())
		}
	}

	if err := runFilesPut(c, []string{"/home/me/app.yml", "/srv"}); err == nil {
		t.Error("expected second upload to fail")
	}
}

func TestFixLines(t *testing.T) {
	input := strings.Join([]string{
		"dcoker ps",
		"",
		"# cleanup",
		"docker pul nginx",
		"docker images",
	}, "\n")
	path := filepath.Join(t.TempDir(), "commands.txt")
	if err := os.WriteFile(path, []byte(input), 0644); err != nil {
		t.Fatal(err)
	}

	c, out, errOut := newTestCommand()
	if err := fixLines(c, mustCorrector(t), path); err != nil {
		t.Fatalf("fixLines failed: %v", err)
	}

	want := "docker ps\n\n# cleanup\ndocker pull nginx\ndocker images\n"
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
	for _, note := range []string{"line 1:", "line 4:"} {
		if !strings.Contains(errOut.String(), note) {
			t.Errorf("expected %q in notes %q", note, errOut.String())
		}
	}
	if strings.Contains(errOut.String(), "line 5:") {
		t.Error("unchanged line must not produce a note")
	}
}

func TestFixLinesFromStdin(t *testing.T) {
	c, out, _ := newTestCommand()
	c.SetIn(strings.NewReader("dokcer ps\n"))
	if err := fixLines(c, mustCorrector(t), "-"); err != nil {
		t.Fatal(err)
	}
	if out.String() != "docker ps\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestHistoryCommand(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "runs.db")
	config.Set(cfg)
	t.Cleanup(func() { config.Set(nil) })

	store, err := db.NewStorage(cfg.Database.Path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, rec := range []db.RunRecord{
		{Raw: "dcoker ps", Command: "docker ps", Host: "10.0.0.5", Duration: time.Second},
		{Raw: "docker stop web", Command: "docker stop web", Host: "10.0.0.5", ExitCode: 1},
	} {
		if _, err := store.AddRun(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}
	store.Close()

	c, out, _ := newTestCommand()
	if err := runHistory(c, nil); err != nil {
		t.Fatalf("history failed: %v", err)
	}
	for _, want := range []string{"docker ps", "typed: dcoker ps", "docker stop web", "exit 1"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in %q", want, out.String())
		}
	}

	historyStats = true
	out.Reset()
	err = runHistory(c, nil)
	historyStats = false
	if err != nil || !strings.Contains(out.String(), "Total runs:      2") || !strings.Contains(out.String(), "Failed runs:     1") {
		t.Errorf("unexpected stats %q (%v)", out.String(), err)
	}

	historyClear = true
	out.Reset()
	err = runHistory(c, nil)
	historyClear = false
	if err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := runHistory(c, nil); err != nil || !strings.Contains(out.String(), "no runs recorded") {
		t.Errorf("expected empty history, got %q (%v)", out.String(), err)
	}
}

func TestCheatsheetCommand(t *testing.T) {
	c, out, _ := newTestCommand()
	cheatGroup = "disk"
	defer func() { cheatGroup = "" }()
	if err := runCheatsheet(c, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Disk Management") || !strings.Contains(out.String(), "df -h") {
		t.Errorf("unexpected output %q", out.String())
	}
	if strings.Contains(out.String(), "Networking") {
		t.Error("group filter ignored")
	}

	cheatGroup = "nothing-like-this"
	if err := runCheatsheet(c, nil); err == nil {
		t.Error("expected error when nothing matches")
	}
}

func mustCorrector(t *testing.T) *corrector.Corrector {
	t.Helper()
	c, err := newCorrector(config.Default())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

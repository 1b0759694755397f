//go:build ignore
// +build ignore

// Build script for opsdeck
// Usage: go run build.go [flags]
//
// Examples:
//   go run build.go                          # Build for this machine into build/<os>/
//   go run build.go -targets linux/amd64,linux/arm64
//   go run build.go -o bin/opsdeck -v
//   go run build.go -install                 # Build and copy into ~/.local/bin

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const binary = "opsdeck"

type buildInfo struct {
	version   string
	commit    string
	buildTime string
}

func main() {
	output := flag.String("o", "", "output path (single target only)")
	targets := flag.String("targets", runtime.GOOS+"/"+runtime.GOARCH, "comma separated os/arch list")
	verbose := flag.Bool("v", false, "print build details")
	install := flag.Bool("install", false, "copy the native binary into ~/.local/bin")
	flag.Parse()

	info := gitInfo()
	ldflags := fmt.Sprintf("-s -w -X main.Version=%s -X main.BuildTime=%s -X main.Commit=%s",
		info.version, info.buildTime, info.commit)

	list := strings.Split(*targets, ",")
	if *output != "" && len(list) > 1 {
		fail("-o cannot be combined with several targets")
	}

	var native string
	for _, target := range list {
		goos, goarch, ok := strings.Cut(strings.TrimSpace(target), "/")
		if !ok {
			fail("bad target %q, want os/arch", target)
		}

		out := *output
		if out == "" {
			out = defaultOutput(goos, goarch, len(list) > 1)
		}
		if *verbose {
			fmt.Printf("Building %s %s (%s) -> %s\n", binary, info.version, target, out)
		}
		if err := build(goos, goarch, ldflags, out); err != nil {
			fail("build %s failed: %v", target, err)
		}
		if goos == runtime.GOOS && goarch == runtime.GOARCH {
			native = out
		}
	}

	if *install {
		if native == "" {
			fail("-install needs a %s/%s target", runtime.GOOS, runtime.GOARCH)
		}
		dest, err := installBinary(native)
		if err != nil {
			fail("install failed: %v", err)
		}
		fmt.Printf("✓ Installed to %s\n", dest)
	}
}

func build(goos, goarch, ldflags, out string) error {
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return err
	}
	cmd := exec.Command("go", "build", "-trimpath", "-ldflags", ldflags, "-o", out, ".")
	cmd.Env = append(os.Environ(), "GOOS="+goos, "GOARCH="+goarch, "CGO_ENABLED=0")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func defaultOutput(goos, goarch string, multi bool) string {
	name := binary
	if goos == "windows" {
		name += ".exe"
	}
	dir := filepath.Join("build", goos)
	if multi {
		dir = filepath.Join("build", goos+"_"+goarch)
	}
	return filepath.Join(dir, name)
}

func installBinary(src string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dest := filepath.Join(home, ".local", "bin", filepath.Base(src))
	data, err := os.ReadFile(src)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", err
	}
	return dest, os.WriteFile(dest, data, 0755)
}

func gitInfo() buildInfo {
	info := buildInfo{
		version:   "dev",
		commit:    "unknown",
		buildTime: time.Now().UTC().Format("2006-01-02_15:04:05"),
	}
	if out, err := exec.Command("git", "describe", "--tags", "--always", "--dirty").Output(); err == nil {
		info.version = strings.TrimSpace(string(out))
	}
	if out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output(); err == nil {
		info.commit = strings.TrimSpace(string(out))
	}
	return info
}

func fail(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", a...)
	os.Exit(1)
}

// Package files is a small local file browser: list, rename, delete,
// create directories, upload and download, and summarise file types.
package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
)

var (
	// ErrNotFound is returned when the named entry does not exist.
	ErrNotFound = errors.New("no such file or directory")
	// ErrInvalidName is returned for names that would escape the directory.
	ErrInvalidName = errors.New("invalid name")
	// ErrExists is returned when a rename, upload or download target is already taken.
	ErrExists = errors.New("target already exists")
	// ErrIsDir is returned when a file operation is given a directory.
	ErrIsDir = errors.New("is a directory")
)

// noExtension is the TypeDistribution key for files without an extension.
const noExtension = "(none)"

// Entry describes one directory entry.
type Entry struct {
	Name    string
	IsDir   bool
	Size    int64
	Ext     string
	ModTime time.Time
}

// Browser operates on a filesystem. Production code passes afero.NewOsFs.
type Browser struct {
	fs afero.Fs
}

// New returns a browser over fs.
func New(fs afero.Fs) *Browser {
	return &Browser{fs: fs}
}

// NewOS returns a browser over the real filesystem.
func NewOS() *Browser {
	return New(afero.NewOsFs())
}

func validName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	return nil
}

// List returns the entries of dir sorted by name.
func (b *Browser) List(dir string) ([]Entry, error) {
	infos, err := afero.ReadDir(b.fs, dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dir, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		e := Entry{
			Name:    info.Name(),
			IsDir:   info.IsDir(),
			ModTime: info.ModTime(),
		}
		if !e.IsDir {
			e.Size = info.Size()
			e.Ext = strings.ToLower(filepath.Ext(e.Name))
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// Rename renames oldName to newName inside dir.
func (b *Browser) Rename(dir, oldName, newName string) error {
	if err := validName(oldName); err != nil {
		return err
	}
	if err := validName(newName); err != nil {
		return err
	}

	from := filepath.Join(dir, oldName)
	to := filepath.Join(dir, newName)
	if ok, _ := afero.Exists(b.fs, from); !ok {
		return fmt.Errorf("%s: %w", oldName, ErrNotFound)
	}
	if ok, _ := afero.Exists(b.fs, to); ok {
		return fmt.Errorf("%s: %w", newName, ErrExists)
	}
	if err := b.fs.Rename(from, to); err != nil {
		return fmt.Errorf("failed to rename %s: %w", oldName, err)
	}
	return nil
}

// Remove deletes a file or a whole directory tree inside dir.
func (b *Browser) Remove(dir, name string) error {
	if err := validName(name); err != nil {
		return err
	}
	path := filepath.Join(dir, name)
	if ok, _ := afero.Exists(b.fs, path); !ok {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err := b.fs.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

// Mkdir creates a directory inside dir. An existing directory is not an error.
func (b *Browser) Mkdir(dir, name string) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := b.fs.MkdirAll(filepath.Join(dir, name), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	return nil
}

// Upload copies the file at src into dir under its base name and returns the
// new path. An existing file of that name is not replaced.
func (b *Browser) Upload(src, dir string) (string, error) {
	name := filepath.Base(src)
	if err := validName(name); err != nil {
		return "", err
	}
	info, err := b.fs.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%s: %w", dir, ErrNotFound)
	}
	dest := filepath.Join(dir, name)
	if err := b.copyFile(src, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// Download copies name from dir to dest and returns the written path. When
// dest is a directory the file keeps its name inside it.
func (b *Browser) Download(dir, name, dest string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	if info, err := b.fs.Stat(dest); err == nil && info.IsDir() {
		dest = filepath.Join(dest, name)
	}
	if err := b.copyFile(filepath.Join(dir, name), dest); err != nil {
		return "", err
	}
	return dest, nil
}

func (b *Browser) copyFile(src, dest string) error {
	info, err := b.fs.Stat(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", src, ErrNotFound)
		}
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s: %w", src, ErrIsDir)
	}
	if ok, _ := afero.Exists(b.fs, dest); ok {
		return fmt.Errorf("%s: %w", dest, ErrExists)
	}

	in, err := b.fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := b.fs.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		b.fs.Remove(dest)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}

// TypeDistribution counts files per lower-case extension. Directories are skipped.
func TypeDistribution(entries []Entry) map[string]int {
	dist := make(map[string]int)
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		ext := e.Ext
		if ext == "" {
			ext = noExtension
		}
		dist[ext]++
	}
	return dist
}

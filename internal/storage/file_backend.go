package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"
)

const (
	tasksDir       = "data"
	activityDir    = "logs"
	activitySuffix = "_log.json"
)

// FileBackend keeps one file per user and kind under root:
//
//	<root>/data/<user>.<ext>
//	<root>/logs/<user>_log.json
type FileBackend struct {
	fs       afero.Fs
	root     string
	taskExt  string
	useFlock bool
}

type FileOption func(*FileBackend)

// WithTaskExtension sets the file extension of task documents.
func WithTaskExtension(ext string) FileOption {
	return func(b *FileBackend) {
		if ext = strings.TrimPrefix(strings.TrimSpace(ext), "."); ext != "" {
			b.taskExt = ext
		}
	}
}

// NewFileBackend creates a backend rooted at root. Directories are created on
// first write. On the OS filesystem writes also hold a lock file so separate
// processes never interleave.
func NewFileBackend(fsys afero.Fs, root string, opts ...FileOption) (*FileBackend, error) {
	if fsys == nil {
		return nil, errors.New("storage: nil filesystem")
	}
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("storage: root directory is required")
	}
	_, isOS := fsys.(*afero.OsFs)
	b := &FileBackend{fs: fsys, root: root, taskExt: FormatJSON, useFlock: isOS}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *FileBackend) Close() error { return nil }

func (b *FileBackend) Read(ctx context.Context, kind Kind, key string) ([]byte, error) {
	if err := validateKey(kind, key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(b.fs, b.path(kind, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s document %q: %w", kind, key, err)
	}
	return data, nil
}

func (b *FileBackend) Write(ctx context.Context, kind Kind, key string, data []byte) error {
	if err := validateKey(kind, key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	target := b.path(kind, key)
	dir := filepath.Dir(target)
	if err := b.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	if b.useFlock {
		lock := flock.New(target + ".lock")
		if err := lock.Lock(); err != nil {
			return fmt.Errorf("lock %s: %w", target, err)
		}
		defer func() { _ = lock.Unlock() }()
	}

	tmp, err := afero.TempFile(b.fs, dir, filepath.Base(target)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", target, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = b.fs.Remove(tmpName)
		return fmt.Errorf("write temp file for %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		_ = b.fs.Remove(tmpName)
		return fmt.Errorf("close temp file for %s: %w", target, err)
	}
	if err := b.fs.Rename(tmpName, target); err != nil {
		_ = b.fs.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", target, err)
	}
	return nil
}

func (b *FileBackend) Keys(ctx context.Context, kind Kind) ([]string, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidKey, kind)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, suffix := b.layout(kind)
	entries, err := afero.ReadDir(b.fs, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, suffix) {
			continue
		}
		key := strings.TrimSuffix(name, suffix)
		if validateKey(kind, key) != nil {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// UpdatedAt returns the modification time of the document file.
func (b *FileBackend) UpdatedAt(ctx context.Context, kind Kind, key string) (time.Time, error) {
	if err := validateKey(kind, key); err != nil {
		return time.Time{}, err
	}
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	info, err := b.fs.Stat(b.path(kind, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, fmt.Errorf("stat %s document %q: %w", kind, key, err)
	}
	return info.ModTime().UTC(), nil
}

func (b *FileBackend) path(kind Kind, key string) string {
	dir, suffix := b.layout(kind)
	return filepath.Join(dir, key+suffix)
}

func (b *FileBackend) layout(kind Kind) (dir, suffix string) {
	if kind == KindActivity {
		return filepath.Join(b.root, activityDir), activitySuffix
	}
	return filepath.Join(b.root, tasksDir), "." + b.taskExt
}

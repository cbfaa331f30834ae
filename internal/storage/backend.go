package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound   = errors.New("storage: not found")
	ErrInvalidKey = errors.New("storage: invalid key")
	ErrCorrupt    = errors.New("storage: corrupt document")
)

// Kind separates the two per-user document families.
type Kind string

const (
	KindTasks    Kind = "tasks"
	KindActivity Kind = "activity"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindTasks, KindActivity:
		return true
	default:
		return false
	}
}

// Backend stores opaque documents keyed by kind and user id. Writes replace
// the whole document.
type Backend interface {
	Read(ctx context.Context, kind Kind, key string) ([]byte, error)
	Write(ctx context.Context, kind Kind, key string, data []byte) error
	Keys(ctx context.Context, kind Kind) ([]string, error)
	// UpdatedAt reports when a document was last written, or ErrNotFound.
	UpdatedAt(ctx context.Context, kind Kind, key string) (time.Time, error)
	Close() error
}

// CorruptionError reports a stored document that exists but cannot be decoded.
type CorruptionError struct {
	Kind Kind
	Key  string
	Err  error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("storage: corrupt %s document for %q: %v", e.Kind, e.Key, e.Err)
}

func (e *CorruptionError) Unwrap() error { return e.Err }

func (e *CorruptionError) Is(target error) bool { return target == ErrCorrupt }

func validateKey(kind Kind, key string) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidKey, kind)
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if strings.ContainsAny(key, `/\`+"\x00") || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// File permission constants.
const (
	// dirPermissions is the permission mode for the store directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for store files.
	filePermissions = 0600
)

// File is an encrypted JSON snapshot of a single value of type T,
// typically a map keyed by email or company name.
//
// Load and Save each read or replace the whole file. Save writes to a
// temporary file and renames it, so readers never observe a partial write.
//
// Thread Safety:
//   - Load and Save are serialised per File.
type File[T any] struct {
	path   string
	cipher *Cipher
	mu     sync.Mutex
}

// NewFile creates a store backed by path. The file is not touched until
// Load or Save is called.
func NewFile[T any](path string, c *Cipher) *File[T] {
	return &File[T]{path: path, cipher: c}
}

// Path returns the store file path.
func (f *File[T]) Path() string {
	return f.path
}

// Load reads and decrypts the snapshot.
//
// Returns:
//   - ErrAbsent if the file does not exist (callers start empty)
//   - a storage error if the file exists but cannot be read, authenticated,
//     decrypted or decoded
func (f *File[T]) Load(ctx context.Context) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, fmt.Errorf("%w: %w", ErrIO, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	payload, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return zero, ErrAbsent
		}
		return zero, fmt.Errorf("%w: reading %s: %w", ErrIO, f.path, err)
	}

	plain, err := f.cipher.Open(payload)
	if err != nil {
		return zero, fmt.Errorf("opening %s: %w", f.path, err)
	}

	var v T
	if err := json.Unmarshal(plain, &v); err != nil {
		return zero, fmt.Errorf("%w: %s: %w", ErrDecode, f.path, err)
	}
	return v, nil
}

// Save encrypts v and atomically replaces the store file.
func (f *File[T]) Save(ctx context.Context, v T) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	plain, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}

	payload, err := f.cipher.Seal(plain)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return writeAtomic(f.path, payload)
}

// writeAtomic writes data to a temp file in the target directory and
// renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("%w: creating %s: %w", ErrIO, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", ErrIO, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec // already failing
		return fmt.Errorf("%w: writing temp file: %w", ErrIO, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck,gosec // already failing
		return fmt.Errorf("%w: syncing temp file: %w", ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing temp file: %w", ErrIO, err)
	}
	if err := os.Chmod(tmpName, filePermissions); err != nil {
		return fmt.Errorf("%w: setting permissions: %w", ErrIO, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: replacing %s: %w", ErrIO, path, err)
	}
	return nil
}

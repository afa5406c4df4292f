package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DiskStorage implements Blob on the local filesystem rooted at a directory.
type DiskStorage struct {
	root string
}

// NewDiskStorage creates the root directory if needed and returns a store.
func NewDiskStorage(root string) (*DiskStorage, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("disk storage: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &DiskStorage{root: root}, nil
}

// Save writes the content to a file under the storage root.
func (d *DiskStorage) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	path, err := d.resolve(name)
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create blob %s: %w", name, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write blob %s: %w", name, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close blob %s: %w", name, err)
	}

	return name, nil
}

// Exists reports whether the named blob is present on disk.
func (d *DiskStorage) Exists(ctx context.Context, path string) (bool, error) {
	full, err := d.resolve(path)
	if err != nil {
		return false, err
	}

	if err := ctx.Err(); err != nil {
		return false, err
	}

	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat blob %s: %w", path, err)
	}
	return true, nil
}

// Open returns a reader over the named blob.
func (d *DiskStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	full, err := d.resolve(path)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open blob %s: %w", path, err)
	}
	return f, nil
}

// Delete removes the named blob.
func (d *DiskStorage) Delete(ctx context.Context, path string) error {
	full, err := d.resolve(path)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete blob %s: %w", path, err)
	}
	return nil
}

// resolve joins the name to the root and rejects names escaping it.
func (d *DiskStorage) resolve(name string) (string, error) {
	cleaned := filepath.Clean(strings.TrimSpace(name))
	if cleaned == "" || cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("disk storage: invalid blob name %q", name)
	}
	return filepath.Join(d.root, cleaned), nil
}

var _ Blob = (*DiskStorage)(nil)

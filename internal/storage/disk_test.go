package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestDiskStorageRoundTrip(t *testing.T) {
	store, err := NewDiskStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new disk storage: %v", err)
	}

	ctx := context.Background()

	path, err := store.Save(ctx, "clips/abc123.mp4", strings.NewReader("fake video bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if path != "clips/abc123.mp4" {
		t.Fatalf("unexpected stored path %q", path)
	}

	ok, err := store.Exists(ctx, path)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !ok {
		t.Fatal("expected stored blob to exist")
	}

	rc, err := store.Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	content, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(content) != "fake video bytes" {
		t.Fatalf("unexpected content %q", content)
	}

	if err := store.Delete(ctx, path); err != nil {
		t.Fatalf("delete: %v", err)
	}

	ok, err = store.Exists(ctx, path)
	if err != nil {
		t.Fatalf("exists after delete: %v", err)
	}
	if ok {
		t.Fatal("expected blob to be gone after delete")
	}
}

func TestDiskStorageMissingBlob(t *testing.T) {
	store, err := NewDiskStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new disk storage: %v", err)
	}

	ctx := context.Background()

	if _, err := store.Open(ctx, "nope.mp4"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound opening missing blob, got %v", err)
	}

	if err := store.Delete(ctx, "nope.mp4"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting missing blob, got %v", err)
	}
}

func TestDiskStorageRejectsEscapingNames(t *testing.T) {
	store, err := NewDiskStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new disk storage: %v", err)
	}

	ctx := context.Background()

	for _, name := range []string{"../outside.mp4", "/etc/passwd", "", "."} {
		if _, err := store.Save(ctx, name, strings.NewReader("x")); err == nil {
			t.Errorf("expected save %q to be rejected", name)
		}
	}
}

func TestDiskStorageRefusesOverwrite(t *testing.T) {
	store, err := NewDiskStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new disk storage: %v", err)
	}

	ctx := context.Background()

	if _, err := store.Save(ctx, "once.mp4", strings.NewReader("first")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.Save(ctx, "once.mp4", strings.NewReader("second")); err == nil {
		t.Fatal("expected second save under the same name to fail")
	}
}

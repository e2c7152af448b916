package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atacadao/guanabara-backend/internal/domain"
	"github.com/atacadao/guanabara-backend/internal/pkg/logger"
)

func testLogger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("failed to init logger: %v", err)
	}
	return log
}

func newTestStore(tb testing.TB) (EvidenceStore, string) {
	tb.Helper()
	root := tb.TempDir()
	store, err := NewLocalEvidenceStore(testLogger(tb), root, "/uploads/returns", 10*time.Second)
	if err != nil {
		tb.Fatalf("NewLocalEvidenceStore: %v", err)
	}
	return store, root
}

func evidence(name, content string) EvidenceFile {
	return EvidenceFile{
		OriginalName: name,
		Size:         int64(len(content)),
		Reader:       strings.NewReader(content),
	}
}

func TestLocalEvidenceStoreSave(t *testing.T) {
	store, root := newTestStore(t)
	ctx := context.Background()

	refs, err := store.Save(ctx, []EvidenceFile{
		evidence("front.jpg", "front bytes"),
		evidence("back.jpg", "back bytes"),
		evidence("label.png", "label bytes"),
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(refs) != 3 {
		t.Fatalf("want 3 refs, got %d", len(refs))
	}

	// Input order is preserved and every ref keeps the original basename.
	for i, suffix := range []string{"_front.jpg", "_back.jpg", "_label.png"} {
		if !strings.HasPrefix(refs[i], "/uploads/returns/") {
			t.Fatalf("ref %d missing public prefix: %q", i, refs[i])
		}
		if !strings.HasSuffix(refs[i], suffix) {
			t.Fatalf("ref %d does not keep original name: %q", i, refs[i])
		}
		onDisk := filepath.Join(root, filepath.Base(refs[i]))
		raw, err := os.ReadFile(onDisk)
		if err != nil {
			t.Fatalf("stored file %q unreadable: %v", onDisk, err)
		}
		if len(raw) == 0 {
			t.Fatalf("stored file %q is empty", onDisk)
		}
	}
}

func TestLocalEvidenceStoreUniqueNames(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	refs, err := store.Save(ctx, []EvidenceFile{
		evidence("photo.jpg", "first"),
		evidence("photo.jpg", "second"),
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("want 2 refs, got %d", len(refs))
	}
	if refs[0] == refs[1] {
		t.Fatalf("duplicate original names produced colliding refs: %q", refs[0])
	}
}

func TestLocalEvidenceStoreSkipsEmptyFiles(t *testing.T) {
	store, root := newTestStore(t)
	ctx := context.Background()

	refs, err := store.Save(ctx, []EvidenceFile{
		evidence("empty.jpg", ""),
		evidence("real.jpg", "content"),
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("want 1 ref (empty skipped), got %d: %v", len(refs), refs)
	}
	if !strings.HasSuffix(refs[0], "_real.jpg") {
		t.Fatalf("unexpected ref %q", refs[0])
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("want 1 file on disk, got %d", len(entries))
	}
}

func TestLocalEvidenceStoreSaveAllEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	refs, err := store.Save(context.Background(), []EvidenceFile{evidence("a.jpg", "")})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if refs == nil || len(refs) != 0 {
		t.Fatalf("want empty non-nil ref list, got %v", refs)
	}
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }

func TestLocalEvidenceStoreAllOrNothing(t *testing.T) {
	store, root := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, []EvidenceFile{
		evidence("good.jpg", "fine"),
		{OriginalName: "bad.jpg", Size: 10, Reader: brokenReader{}},
	})
	if err == nil {
		t.Fatal("expected Save to fail when one file cannot be read")
	}
	var storageErr *domain.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %T (%v)", err, err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("partial batch left %d files behind", len(entries))
	}
}

func TestLocalEvidenceStoreRemove(t *testing.T) {
	store, root := newTestStore(t)
	ctx := context.Background()

	refs, err := store.Save(ctx, []EvidenceFile{evidence("front.jpg", "bytes")})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Remove(ctx, refs[0]); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, filepath.Base(refs[0]))); !os.IsNotExist(err) {
		t.Fatalf("file still present after Remove: %v", err)
	}

	// Removing a path that is already gone is not an error.
	if err := store.Remove(ctx, refs[0]); err != nil {
		t.Fatalf("Remove of missing file: %v", err)
	}
}

package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/atacadao/guanabara-backend/internal/domain"
	"github.com/atacadao/guanabara-backend/internal/pkg/logger"
)

// EvidenceFile is one uploaded photo, decoupled from the transport's
// multipart types.
type EvidenceFile struct {
	OriginalName string
	Size         int64
	Reader       io.Reader
}

// EvidenceStore persists photo evidence and hands back stable public
// reference paths.
//
// Save is all-or-nothing: zero-length uploads are skipped silently, and
// if any remaining file fails to persist the whole batch fails with a
// *domain.StorageError and nothing is kept. The returned paths preserve
// the input order of the stored files.
type EvidenceStore interface {
	Save(ctx context.Context, files []EvidenceFile) ([]string, error)
	Remove(ctx context.Context, publicPath string) error
}

type localEvidenceStore struct {
	log          *logger.Logger
	root         string
	publicPrefix string
	writeTimeout time.Duration
}

// NewLocalEvidenceStore stores evidence on the local filesystem under
// root and serves it back under publicPrefix. The root is created up
// front; creation is idempotent so concurrent first use is safe.
func NewLocalEvidenceStore(log *logger.Logger, root, publicPrefix string, writeTimeout time.Duration) (EvidenceStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("evidence root directory required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create evidence root %q: %w", root, err)
	}
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	return &localEvidenceStore{
		log:          log.With("service", "EvidenceStore"),
		root:         root,
		publicPrefix: strings.TrimRight(publicPrefix, "/"),
		writeTimeout: writeTimeout,
	}, nil
}

// uniqueName prefixes a random token so two uploads sharing an original
// filename never collide, and strips any path components the client
// sent along.
func uniqueName(originalName string) string {
	base := filepath.Base(strings.TrimSpace(originalName))
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "photo"
	}
	return uuid.New().String() + "_" + base
}

func (s *localEvidenceStore) Save(ctx context.Context, files []EvidenceFile) ([]string, error) {
	kept := make([]EvidenceFile, 0, len(files))
	for _, f := range files {
		if f.Size == 0 {
			continue
		}
		kept = append(kept, f)
	}
	if len(kept) == 0 {
		return []string{}, nil
	}

	// The root may have been removed out-of-band since construction.
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return nil, &domain.StorageError{Op: "mkdir", Name: s.root, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	names := make([]string, len(kept))
	var mu sync.Mutex
	written := make([]string, 0, len(kept))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range kept {
		name := uniqueName(f.OriginalName)
		names[i] = name
		file := f
		g.Go(func() error {
			if err := s.writeFile(gctx, name, file.Reader); err != nil {
				return &domain.StorageError{Op: "write", Name: file.OriginalName, Err: err}
			}
			mu.Lock()
			written = append(written, name)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// No partial evidence set: drop whatever did land.
		for _, name := range written {
			if rmErr := os.Remove(filepath.Join(s.root, name)); rmErr != nil {
				s.log.Warn("could not remove partial evidence file", "name", name, "error", rmErr)
			}
		}
		return nil, err
	}

	refs := make([]string, len(names))
	for i, name := range names {
		refs[i] = s.publicPrefix + "/" + name
	}
	return refs, nil
}

func (s *localEvidenceStore) writeFile(ctx context.Context, name string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.root, name)
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, r); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

func (s *localEvidenceStore) Remove(ctx context.Context, publicPath string) error {
	name := path.Base(publicPath)
	if name == "." || name == "/" || name == "" {
		return fmt.Errorf("invalid evidence path %q", publicPath)
	}
	if err := os.Remove(filepath.Join(s.root, name)); err != nil && !os.IsNotExist(err) {
		return &domain.StorageError{Op: "remove", Name: name, Err: err}
	}
	return nil
}

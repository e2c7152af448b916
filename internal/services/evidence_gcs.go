package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/atacadao/guanabara-backend/internal/domain"
	"github.com/atacadao/guanabara-backend/internal/pkg/logger"
)

// gcsEvidenceStore keeps evidence in a GCS bucket for deployments where
// the service has no durable local disk. Same contract as the local
// store: all-or-nothing batches, input-ordered references.
type gcsEvidenceStore struct {
	log          *logger.Logger
	client       *storage.Client
	bucketName   string
	keyPrefix    string
	cdnDomain    string
	writeTimeout time.Duration
}

func NewGCSEvidenceStore(log *logger.Logger, writeTimeout time.Duration) (EvidenceStore, error) {
	serviceLog := log.With("service", "GCSEvidenceStore")
	bucket := os.Getenv("GCS_BUCKET_NAME")
	if bucket == "" {
		return nil, fmt.Errorf("missing env var GCS_BUCKET_NAME")
	}
	keyPrefix := strings.Trim(os.Getenv("GCS_KEY_PREFIX"), "/")
	if keyPrefix == "" {
		keyPrefix = "returns"
	}
	cdnDomain := os.Getenv("CDN_DOMAIN")
	saPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON")

	ctx := context.Background()
	var client *storage.Client
	var err error
	if saPath != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(saPath), option.WithScopes(storage.ScopeReadWrite))
	} else {
		client, err = storage.NewClient(ctx, option.WithScopes(storage.ScopeReadWrite))
	}
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	return &gcsEvidenceStore{
		log:          serviceLog,
		client:       client,
		bucketName:   bucket,
		keyPrefix:    keyPrefix,
		cdnDomain:    cdnDomain,
		writeTimeout: writeTimeout,
	}, nil
}

func (s *gcsEvidenceStore) Save(ctx context.Context, files []EvidenceFile) ([]string, error) {
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

	ctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	// Sequential uploads: each object write already streams, and a
	// failure must undo earlier writes before returning.
	keys := make([]string, 0, len(kept))
	for _, f := range kept {
		key := s.keyPrefix + "/" + uniqueName(f.OriginalName)
		if err := s.upload(ctx, key, f.Reader); err != nil {
			for _, k := range keys {
				if rmErr := s.client.Bucket(s.bucketName).Object(k).Delete(ctx); rmErr != nil {
					s.log.Warn("could not remove partial evidence object", "key", k, "error", rmErr)
				}
			}
			return nil, &domain.StorageError{Op: "write", Name: f.OriginalName, Err: err}
		}
		keys = append(keys, key)
	}

	refs := make([]string, len(keys))
	for i, k := range keys {
		refs[i] = s.publicURL(k)
	}
	return refs, nil
}

func (s *gcsEvidenceStore) upload(ctx context.Context, key string, r io.Reader) error {
	w := s.client.Bucket(s.bucketName).Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (s *gcsEvidenceStore) publicURL(key string) string {
	if s.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", s.cdnDomain, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, key)
}

func (s *gcsEvidenceStore) Remove(ctx context.Context, publicPath string) error {
	key := s.keyPrefix + "/" + path.Base(publicPath)
	if err := s.client.Bucket(s.bucketName).Object(key).Delete(ctx); err != nil && err != storage.ErrObjectNotExist {
		return &domain.StorageError{Op: "remove", Name: key, Err: err}
	}
	return nil
}

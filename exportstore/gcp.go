package exportstore

import (
	"context"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog"
)

type gcpStore struct {
	logger zerolog.Logger
	bucket string
	client *storage.Client
}

func NewGCPStore(logger zerolog.Logger, client *storage.Client, bucket string) *gcpStore {
	return &gcpStore{
		bucket: bucket,
		client: client,
		logger: logger,
	}
}

func (s *gcpStore) Put(ctx context.Context, name string, r io.Reader) (Resource, error) {
	s.logger.Debug().Str("file", name).Msgf("creating new file")
	wc := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	wc.ContentType = contentType(name)
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return nil, err
	}
	if err := wc.Close(); err != nil {
		return nil, err
	}
	s.logger.Debug().Str("file", name).Msgf("gcp file creation complete")
	return &gcpResource{store: s, key: name}, nil
}

func contentType(name string) string {
	switch path.Ext(name) {
	case ".csv":
		return "text/csv"
	case ".xml":
		return "application/xml"
	}
	return "application/octet-stream"
}

type gcpResource struct {
	store *gcpStore
	key   string
}

func (r *gcpResource) Location() string {
	return fmt.Sprintf("gs://%s/%s", r.store.bucket, r.key)
}

func (r *gcpResource) Reader(ctx context.Context) (io.ReadCloser, error) {
	return r.store.client.Bucket(r.store.bucket).Object(r.key).NewReader(ctx)
}

func (r *gcpResource) Delete(ctx context.Context) error {
	return r.store.client.Bucket(r.store.bucket).Object(r.key).Delete(ctx)
}

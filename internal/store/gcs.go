package store

import (
	"context"
	"encoding/json"
	"io"
	"path"
	"sync"
	"time"

	"cloud.google.com/go/storage"
)

const gcsTimeout = 30 * time.Second

// GCSStore is a Cloud Storage-backed implementation of Store.
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
	mu     sync.RWMutex
}

// NewGCS creates a new GCSStore writing below prefix in bucket.
func NewGCS(ctx context.Context, bucket, prefix string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GCSStore{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// Get retrieves a value by key. Returns the value and true if found,
// or nil and false if not found.
func (s *GCSStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), gcsTimeout)
	defer cancel()

	reader, err := s.client.Bucket(s.bucket).Object(s.objectName(key)).NewReader(ctx)
	if err != nil {
		return nil, false
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores a value under key exactly as named.
func (s *GCSStore) Set(key string, value []byte) error {
	return s.put(s.objectName(key), contentType(path.Ext(key)), value)
}

// SetJSON marshals v and stores it under key + ".json".
func (s *GCSStore) SetJSON(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.SetWithExtension(key, ".json", data)
}

// SetWithExtension stores raw bytes under key + ext.
func (s *GCSStore) SetWithExtension(key string, ext string, value []byte) error {
	return s.put(s.objectName(key+ext), contentType(ext), value)
}

func (s *GCSStore) put(name, ct string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), gcsTimeout)
	defer cancel()

	writer := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	writer.ContentType = ct

	if _, err := writer.Write(value); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

// Close closes the GCS client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) objectName(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

func contentType(ext string) string {
	switch ext {
	case ".html":
		return "text/html; charset=utf-8"
	case ".csv":
		return "text/csv; charset=utf-8"
	case ".json":
		return "application/json"
	case ".log":
		return "text/plain; charset=utf-8"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

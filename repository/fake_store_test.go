package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/tnqbao/gau-attachment-service/entity"
)

// fakeBlobStore is an in-memory BlobStore. Writes advance an internal clock by
// one second so listing order by LastModified is deterministic; tests that
// need explicit timestamps seed blobs directly with seed().
type fakeBlobStore struct {
	mu      sync.Mutex
	buckets map[string]map[string]*storedBlob
	now     time.Time

	failCopy   map[string]error // srcKey -> error
	failRemove map[string]error // key -> error
}

type storedBlob struct {
	data         []byte
	contentType  string
	cacheControl string
	metadata     map[string]string
	lastModified time.Time
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{
		buckets:    make(map[string]map[string]*storedBlob),
		now:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		failCopy:   make(map[string]error),
		failRemove: make(map[string]error),
	}
}

func (f *fakeBlobStore) seed(bucket, key string, data []byte, contentType string, lastModified time.Time, metadata map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.buckets[bucket] == nil {
		f.buckets[bucket] = make(map[string]*storedBlob)
	}
	f.buckets[bucket][key] = &storedBlob{
		data:         data,
		contentType:  contentType,
		metadata:     metadata,
		lastModified: lastModified,
	}
}

func (f *fakeBlobStore) PutObject(_ context.Context, bucket, key string, data io.Reader, _ int64, contentType, cacheControl string, metadata map[string]string) error {
	body, err := io.ReadAll(data)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.buckets[bucket] == nil {
		f.buckets[bucket] = make(map[string]*storedBlob)
	}
	f.now = f.now.Add(time.Second)
	f.buckets[bucket][key] = &storedBlob{
		data:         body,
		contentType:  contentType,
		cacheControl: cacheControl,
		metadata:     metadata,
		lastModified: f.now,
	}
	return nil
}

func (f *fakeBlobStore) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	blob, ok := f.buckets[bucket][key]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return bytes.Clone(blob.data), nil
}

func (f *fakeBlobStore) StatObject(_ context.Context, bucket, key string) (*entity.BlobInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	blob, ok := f.buckets[bucket][key]
	if !ok {
		return nil, entity.ErrNotFound
	}
	info := blobInfo(key, blob)
	return &info, nil
}

func (f *fakeBlobStore) ObjectExists(_ context.Context, bucket, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.buckets[bucket][key]
	return ok, nil
}

func (f *fakeBlobStore) RemoveObject(_ context.Context, bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failRemove[key]; ok {
		return err
	}
	delete(f.buckets[bucket], key)
	return nil
}

func (f *fakeBlobStore) ListObjects(_ context.Context, bucket, prefix string) ([]entity.BlobInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	keys := make([]string, 0, len(f.buckets[bucket]))
	for key := range f.buckets[bucket] {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	infos := make([]entity.BlobInfo, 0, len(keys))
	for _, key := range keys {
		infos = append(infos, blobInfo(key, f.buckets[bucket][key]))
	}
	return infos, nil
}

func (f *fakeBlobStore) CopyObject(_ context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failCopy[srcKey]; ok {
		return err
	}
	blob, ok := f.buckets[srcBucket][srcKey]
	if !ok {
		return entity.ErrNotFound
	}
	if f.buckets[dstBucket] == nil {
		f.buckets[dstBucket] = make(map[string]*storedBlob)
	}
	f.now = f.now.Add(time.Second)
	f.buckets[dstBucket][dstKey] = &storedBlob{
		data:         bytes.Clone(blob.data),
		contentType:  blob.contentType,
		cacheControl: blob.cacheControl,
		metadata:     blob.metadata,
		lastModified: f.now,
	}
	return nil
}

func (f *fakeBlobStore) PresignedGetURL(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	return fmt.Sprintf("https://signed.test/%s/%s", bucket, key), nil
}

func blobInfo(key string, blob *storedBlob) entity.BlobInfo {
	return entity.BlobInfo{
		Key:          key,
		ContentType:  blob.contentType,
		Size:         int64(len(blob.data)),
		LastModified: blob.lastModified,
		UserMetadata: blob.metadata,
	}
}

// fakeSessionRegistry mirrors the Redis-backed registry's state machine in a
// plain map.
type fakeSessionRegistry struct {
	mu     sync.Mutex
	states map[string]entity.SessionState
}

func newFakeSessionRegistry() *fakeSessionRegistry {
	return &fakeSessionRegistry{states: make(map[string]entity.SessionState)}
}

func (f *fakeSessionRegistry) Begin(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.states[sessionID].Terminal() {
		return entity.ErrSessionTerminated
	}
	f.states[sessionID] = entity.SessionStaging
	return nil
}

func (f *fakeSessionRegistry) Terminate(_ context.Context, sessionID string, state entity.SessionState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[sessionID] = state
	return nil
}

func (f *fakeSessionRegistry) State(_ context.Context, sessionID string) (entity.SessionState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.states[sessionID], nil
}

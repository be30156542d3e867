package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tnqbao/gau-attachment-service/config"
	"github.com/tnqbao/gau-attachment-service/entity"
)

// FileRepository owns per-object attachments in the blob store: listing,
// direct upload, deletion with its thumbnail cascade, and the staged upload
// lifecycle (stage, accept, reject). It keeps no state of its own; the blob
// store is the record.
type FileRepository struct {
	store         BlobStore
	sessions      SessionRegistry
	bucket        string
	stagingBucket string
	urlExpiry     time.Duration
	cacheControl  string
}

func NewFileRepository(store BlobStore, sessions SessionRegistry, cfg *config.EnvConfig) *FileRepository {
	return &FileRepository{
		store:         store,
		sessions:      sessions,
		bucket:        cfg.Storage.Bucket,
		stagingBucket: cfg.Storage.StagingBucket,
		urlExpiry:     time.Duration(cfg.Storage.SignedURLExpireMinutes) * time.Minute,
		cacheControl:  fmt.Sprintf("public, max-age=%d", cfg.Storage.CacheMaxAgeMinutes*60),
	}
}

// ListFiles enumerates the object's source files, applies the search options
// and sorts ascending by (lastModified, name), breaking timestamp ties with a
// case-insensitive collation of the name. Derived thumbnails live under a
// nested size segment and are excluded. No match yields an empty slice, not
// an error.
func (r *FileRepository) ListFiles(ctx context.Context, objectType, objectID string, opts entity.FileSearchOptions) ([]entity.File, error) {
	prefix := BlobPath(objectType, objectID)

	blobs, err := r.store.ListObjects(ctx, r.bucket, prefix)
	if err != nil {
		return nil, err
	}

	files := make([]entity.File, 0, len(blobs))
	for _, blob := range blobs {
		relative := strings.TrimPrefix(blob.Key, prefix)
		if strings.Contains(relative, "/") {
			continue // derived thumbnail, not a source file
		}
		if !opts.Matches(relative, blob.UserMetadata) {
			continue
		}

		url, err := r.store.PresignedGetURL(ctx, r.bucket, blob.Key, r.urlExpiry)
		if err != nil {
			return nil, err
		}
		files = append(files, entity.FileFromBlob(blob, url))
	}

	coll := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].LastModified.Equal(files[j].LastModified) {
			return files[i].LastModified.Before(files[j].LastModified)
		}
		return coll.CompareString(files[i].Name, files[j].Name) < 0
	})

	return files, nil
}

// GetFile fetches one blob's full content by key. Returns entity.ErrNotFound
// when the key is absent.
func (r *FileRepository) GetFile(ctx context.Context, fileID string) ([]byte, error) {
	return r.store.GetObject(ctx, r.bucket, fileID)
}

// GetFileInfo returns the File entity for one key, including a fresh
// presigned read URL. Returns entity.ErrNotFound when the key is absent.
func (r *FileRepository) GetFileInfo(ctx context.Context, fileID string) (*entity.File, error) {
	info, err := r.store.StatObject(ctx, r.bucket, fileID)
	if err != nil {
		return nil, err
	}

	url, err := r.store.PresignedGetURL(ctx, r.bucket, fileID, r.urlExpiry)
	if err != nil {
		return nil, err
	}

	file := entity.FileFromBlob(*info, url)
	return &file, nil
}

// UploadFile writes directly into the permanent bucket and returns the file
// id. An existing file at the same key is overwritten silently; there is no
// optimistic concurrency on attachments.
func (r *FileRepository) UploadFile(ctx context.Context, objectType, objectID, fileName, contentType string, data io.Reader, size int64, metadata map[string]string) (string, error) {
	fileID := FileKey(objectType, objectID, fileName)
	if err := r.store.PutObject(ctx, r.bucket, fileID, data, size, contentType, r.cacheControl, metadata); err != nil {
		return "", err
	}
	return fileID, nil
}

// DeleteFile removes a source file. For image files the deletion cascades to
// every derived thumbnail under the object's prefix whose trailing path
// segment matches the file name (case-insensitive). Deleting a non-existent
// key is a no-op.
func (r *FileRepository) DeleteFile(ctx context.Context, fileID string) error {
	name := NameFromKey(fileID)
	prefix := strings.TrimSuffix(fileID, name)

	info, err := r.store.StatObject(ctx, r.bucket, fileID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil
		}
		return err
	}

	if entity.FileFromBlob(*info, "").IsImage() {
		blobs, err := r.store.ListObjects(ctx, r.bucket, prefix)
		if err != nil {
			return err
		}
		suffix := "/" + strings.ToLower(name)
		for _, blob := range blobs {
			if blob.Key == fileID {
				continue
			}
			if strings.HasSuffix(strings.ToLower(blob.Key), suffix) {
				if err := r.store.RemoveObject(ctx, r.bucket, blob.Key); err != nil {
					return err
				}
			}
		}
	}

	return r.store.RemoveObject(ctx, r.bucket, fileID)
}

// UploadTemporaryFile stages a file under the session's private prefix in the
// staging bucket. The first upload moves the session into the Staging state;
// uploads into an accepted or rejected session are refused.
func (r *FileRepository) UploadTemporaryFile(ctx context.Context, sessionID, fileName, contentType string, data io.Reader, size int64) (string, error) {
	if err := r.sessions.Begin(ctx, sessionID); err != nil {
		return "", err
	}

	stagedID := sessionID + "/" + fileName
	if err := r.store.PutObject(ctx, r.stagingBucket, stagedID, data, size, contentType, r.cacheControl, nil); err != nil {
		return "", err
	}
	return stagedID, nil
}

// DeleteTemporaryFiles discards every staged file of a session without
// committing (the Reject path). A session with no staged files is a no-op.
func (r *FileRepository) DeleteTemporaryFiles(ctx context.Context, sessionID string) error {
	blobs, err := r.store.ListObjects(ctx, r.stagingBucket, sessionID+"/")
	if err != nil {
		return err
	}
	if len(blobs) == 0 {
		return nil
	}

	for _, blob := range blobs {
		if err := r.store.RemoveObject(ctx, r.stagingBucket, blob.Key); err != nil {
			return err
		}
	}

	return r.sessions.Terminate(ctx, sessionID, entity.SessionRejected)
}

// MoveTemporaryFiles commits a session's staged files into the permanent
// bucket (the Accept path). Each file is copied server-side, then its staging
// blob is deleted; the copy must fully succeed before the staging copy is
// removed. A failure mid-batch leaves already-copied files committed and the
// rest staged, so re-invoking Accept is safe: copy overwrites and staging
// deletion is idempotent. Returns the leaf names of the moved files.
func (r *FileRepository) MoveTemporaryFiles(ctx context.Context, sessionID, objectType, objectID string) ([]string, error) {
	blobs, err := r.store.ListObjects(ctx, r.stagingBucket, sessionID+"/")
	if err != nil {
		return nil, err
	}
	if len(blobs) == 0 {
		return nil, nil
	}

	moved := make([]string, 0, len(blobs))
	for _, blob := range blobs {
		name := NameFromKey(blob.Key)
		dstKey := FileKey(objectType, objectID, name)

		if err := r.store.CopyObject(ctx, r.stagingBucket, blob.Key, r.bucket, dstKey); err != nil {
			return moved, err
		}
		if err := r.store.RemoveObject(ctx, r.stagingBucket, blob.Key); err != nil {
			return moved, err
		}
		moved = append(moved, name)
	}

	if err := r.sessions.Terminate(ctx, sessionID, entity.SessionAccepted); err != nil {
		return moved, err
	}
	return moved, nil
}

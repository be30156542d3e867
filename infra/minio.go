package infra

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/madmin-go/v3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/tnqbao/gau-attachment-service/config"
	"github.com/tnqbao/gau-attachment-service/entity"
)

// StorageClient is the object-store adapter for the attachment service. It
// exposes the flat put/get/list/delete/copy/exists/presign surface the file
// and thumbnail repositories are built on, plus an admin handle used by the
// health check.
type StorageClient struct {
	Client   *minio.Client
	Admin    *madmin.AdminClient
	Endpoint string
}

func InitStorageClient(cfg *config.EnvConfig) *StorageClient {
	endpoint := cfg.Minio.Endpoint
	if endpoint == "" {
		panic("MinIO endpoint is not configured")
	}

	accessKey := cfg.Minio.AccessKey
	if accessKey == "" {
		panic("MinIO access key is not configured")
	}

	secretKey := cfg.Minio.SecretKey
	if secretKey == "" {
		panic("MinIO secret key is not configured")
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO client: %v", err))
	}

	madminClient, err := madmin.New(endpoint, accessKey, secretKey, cfg.Minio.UseSSL)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO admin client: %v", err))
	}

	return &StorageClient{
		Client:   minioClient,
		Admin:    madminClient,
		Endpoint: endpoint,
	}
}

// EnsureBucket creates a bucket if it doesn't exist
func (s *StorageClient) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.Client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = s.Client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// PutObject writes an object with its content type, cache-control header and
// optional user metadata. An existing object at the same key is overwritten
// (last writer wins).
func (s *StorageClient) PutObject(ctx context.Context, bucket, key string, data io.Reader, size int64, contentType, cacheControl string, metadata map[string]string) error {
	opts := minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: cacheControl,
		UserMetadata: metadata,
	}

	_, err := s.Client.PutObject(ctx, bucket, key, data, size, opts)
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

// GetObject retrieves an object's full content. Returns entity.ErrNotFound
// when the key is absent.
func (s *StorageClient) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := s.Client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer obj.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, obj); err != nil {
		if isNoSuchKey(err) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read object: %w", err)
	}

	return buf.Bytes(), nil
}

// StatObject returns an object's metadata, or entity.ErrNotFound.
func (s *StorageClient) StatObject(ctx context.Context, bucket, key string) (*entity.BlobInfo, error) {
	stat, err := s.Client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}

	info := blobInfoFromObject(stat)
	return &info, nil
}

// ObjectExists checks presence without fetching content.
func (s *StorageClient) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.Client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object: %w", err)
	}
	return true, nil
}

// RemoveObject deletes an object. Removing a non-existent key is a no-op.
func (s *StorageClient) RemoveObject(ctx context.Context, bucket, key string) error {
	err := s.Client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// ListObjects enumerates all objects under a prefix, with user metadata.
func (s *StorageClient) ListObjects(ctx context.Context, bucket, prefix string) ([]entity.BlobInfo, error) {
	objectsCh := s.Client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:       prefix,
		Recursive:    true,
		WithMetadata: true,
	})

	var objects []entity.BlobInfo
	for object := range objectsCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		objects = append(objects, blobInfoFromObject(object))
	}

	return objects, nil
}

// CopyObject issues a server-side copy between keys, possibly across buckets.
func (s *StorageClient) CopyObject(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	dst := minio.CopyDestOptions{
		Bucket: dstBucket,
		Object: dstKey,
	}
	src := minio.CopySrcOptions{
		Bucket: srcBucket,
		Object: srcKey,
	}

	_, err := s.Client.CopyObject(ctx, dst, src)
	if err != nil {
		return fmt.Errorf("failed to copy object: %w", err)
	}
	return nil
}

// PresignedGetURL issues a time-limited signed read URL for one key.
func (s *StorageClient) PresignedGetURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	signed, err := s.Client.PresignedGetObject(ctx, bucket, key, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign object url: %w", err)
	}
	return signed.String(), nil
}

func blobInfoFromObject(obj minio.ObjectInfo) entity.BlobInfo {
	return entity.BlobInfo{
		Key:          obj.Key,
		ContentType:  obj.ContentType,
		Size:         obj.Size,
		LastModified: obj.LastModified,
		UserMetadata: normalizeUserMetadata(obj.UserMetadata),
	}
}

// normalizeUserMetadata strips the S3 wire prefix so repository-level
// metadata filters see the keys the uploader set.
func normalizeUserMetadata(raw map[string]string) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if idx := strings.Index(strings.ToLower(k), "x-amz-meta-"); idx == 0 {
			k = k[len("x-amz-meta-"):]
		}
		out[k] = v
	}
	return out
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

package repository

import (
	"context"
	"io"
	"time"

	"github.com/tnqbao/gau-attachment-service/config"
	"github.com/tnqbao/gau-attachment-service/entity"
	"github.com/tnqbao/gau-attachment-service/infra"
	"github.com/tnqbao/gau-attachment-service/thumbnailer"
)

// BlobStore is the object-store surface the repositories are built on. It is
// implemented by infra.StorageClient; tests substitute an in-memory fake.
type BlobStore interface {
	PutObject(ctx context.Context, bucket, key string, data io.Reader, size int64, contentType, cacheControl string, metadata map[string]string) error
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	StatObject(ctx context.Context, bucket, key string) (*entity.BlobInfo, error)
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)
	RemoveObject(ctx context.Context, bucket, key string) error
	ListObjects(ctx context.Context, bucket, prefix string) ([]entity.BlobInfo, error)
	CopyObject(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error
	PresignedGetURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

type Repository struct {
	FileRepo      *FileRepository
	ThumbnailRepo *ThumbnailRepository
}

var repository *Repository

func InitRepository(inf *infra.Infra, cfg *config.Config) *Repository {
	sessions := NewRedisSessionRegistry(inf.Redis)
	repository = &Repository{
		FileRepo:      NewFileRepository(inf.Storage, sessions, cfg.EnvConfig),
		ThumbnailRepo: NewThumbnailRepository(inf.Storage, thumbnailer.New(), cfg.EnvConfig),
	}
	return repository
}

func GetRepository() *Repository {
	if repository == nil {
		panic("repository not initialized")
	}
	return repository
}

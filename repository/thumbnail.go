package repository

import (
	"bytes"
	"context"
	"fmt"

	"github.com/tnqbao/gau-attachment-service/config"
	"github.com/tnqbao/gau-attachment-service/entity"
	"github.com/tnqbao/gau-attachment-service/thumbnailer"
)

// ThumbnailEngine produces a derived image for a source byte stream.
// Satisfied by *thumbnailer.Engine.
type ThumbnailEngine interface {
	Create(src []byte, width, height, align int) ([]byte, error)
}

// ThumbnailRepository coordinates the derived-thumbnail cache: it serves a
// previously generated blob when one exists at the deterministic derived key
// and only generates (and persists) on a miss.
//
// There is deliberately no lock around generation. Two concurrent misses for
// the same key may both generate and both write; generation is a pure
// function of the immutable source, so last write wins and both callers get
// a correct result.
type ThumbnailRepository struct {
	store        BlobStore
	engine       ThumbnailEngine
	bucket       string
	cacheControl string
}

func NewThumbnailRepository(store BlobStore, engine ThumbnailEngine, cfg *config.EnvConfig) *ThumbnailRepository {
	return &ThumbnailRepository{
		store:        store,
		engine:       engine,
		bucket:       cfg.Storage.Bucket,
		cacheControl: fmt.Sprintf("public, max-age=%d", cfg.Storage.CacheMaxAgeMinutes*60),
	}
}

// GetThumbnail returns the derived image for (objectType, objectId, fileName)
// at the requested size. Returns entity.ErrNotFound when the source file does
// not exist; thumbnailer.ErrUnsupportedImageFormat when the source cannot be
// decoded.
func (r *ThumbnailRepository) GetThumbnail(ctx context.Context, objectType, objectID, fileName string, width, height, align int) ([]byte, string, error) {
	thumbKey := ThumbnailKey(objectType, objectID, width, height, align, fileName)

	exists, err := r.store.ObjectExists(ctx, r.bucket, thumbKey)
	if err != nil {
		return nil, "", err
	}
	if exists {
		data, err := r.store.GetObject(ctx, r.bucket, thumbKey)
		if err != nil {
			return nil, "", err
		}
		return data, thumbnailer.ContentType, nil
	}

	sourceKey := FileKey(objectType, objectID, fileName)
	exists, err = r.store.ObjectExists(ctx, r.bucket, sourceKey)
	if err != nil {
		return nil, "", err
	}
	if !exists {
		return nil, "", entity.ErrNotFound
	}

	src, err := r.store.GetObject(ctx, r.bucket, sourceKey)
	if err != nil {
		return nil, "", err
	}

	derived, err := r.engine.Create(src, width, height, align)
	if err != nil {
		return nil, "", err
	}

	if err := r.store.PutObject(ctx, r.bucket, thumbKey, bytes.NewReader(derived), int64(len(derived)), thumbnailer.ContentType, r.cacheControl, nil); err != nil {
		return nil, "", err
	}

	return derived, thumbnailer.ContentType, nil
}

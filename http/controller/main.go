package controller

import (
	"context"
	"path"
	"strings"

	"github.com/tnqbao/gau-attachment-service/config"
	"github.com/tnqbao/gau-attachment-service/entity"
	"github.com/tnqbao/gau-attachment-service/http/controller/dto"
	"github.com/tnqbao/gau-attachment-service/infra"
	"github.com/tnqbao/gau-attachment-service/infra/produce"
	"github.com/tnqbao/gau-attachment-service/repository"
)

type Controller struct {
	Config     *config.Config
	Infra      *infra.Infra
	Repository *repository.Repository
}

func NewController(cfg *config.Config, infra *infra.Infra, repo *repository.Repository) *Controller {
	return &Controller{
		Config:     cfg,
		Infra:      infra,
		Repository: repo,
	}
}

// publishThumbnailPrewarm queues background generation of the default
// thumbnail sizes for a committed image file. Best-effort: a publish failure
// is logged and never fails the upload that triggered it.
func (ctrl *Controller) publishThumbnailPrewarm(ctx context.Context, objectType, objectID, fileName string) {
	ext := strings.ToLower(path.Ext(fileName))
	if !isImageExt(ext) {
		return
	}

	sizes, err := entity.ParseThumbnailSizes(ctrl.Config.EnvConfig.Thumbnail.PrewarmSizes)
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Thumbnail] Invalid prewarm size configuration: %v", err)
		return
	}
	if len(sizes) == 0 {
		return
	}

	msg := produce.ThumbnailPrewarmMessage{
		ObjectType: objectType,
		ObjectID:   objectID,
		FileName:   fileName,
		Sizes:      sizes,
	}
	if err := ctrl.Infra.Produce.Thumbnail.PublishThumbnailPrewarm(ctx, msg); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Thumbnail] Failed to queue prewarm for %s: %v", fileName, err)
	}
}

func isImageExt(ext string) bool {
	for _, e := range entity.ImageExtensions() {
		if e == ext {
			return true
		}
	}
	return false
}

// searchOptionsFromQuery builds FileSearchOptions from the request query
// string: all, ext (comma-separated, accepts the "image"/"video" groups),
// negate, and meta_<key>=<value> pairs for exact metadata matching.
func searchOptionsFromQuery(query dto.FileSearchQuery, rawQuery map[string][]string) entity.FileSearchOptions {
	opts := entity.FileSearchOptions{
		AllFiles:               query.All,
		NegateExtensionsFilter: query.Negate,
	}

	if query.Extensions != "" {
		for _, ext := range strings.Split(query.Extensions, ",") {
			ext = strings.TrimSpace(ext)
			if ext != "" {
				opts.ExtensionsFilter = append(opts.ExtensionsFilter, ext)
			}
		}
	}

	for key, values := range rawQuery {
		if strings.HasPrefix(key, "meta_") && len(values) > 0 {
			if opts.MetadataFilter == nil {
				opts.MetadataFilter = make(map[string]string)
			}
			opts.MetadataFilter[strings.TrimPrefix(key, "meta_")] = values[0]
		}
	}

	return opts
}

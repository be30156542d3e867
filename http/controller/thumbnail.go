package controller

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-attachment-service/entity"
	"github.com/tnqbao/gau-attachment-service/http/controller/dto"
	"github.com/tnqbao/gau-attachment-service/thumbnailer"
	"github.com/tnqbao/gau-attachment-service/utils"
)

// GetThumbnail serves the derived image for one source file, generating and
// caching it on first request.
func (ctrl *Controller) GetThumbnail(c *gin.Context) {
	var query dto.ThumbnailQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.JSON400(c, "invalid thumbnail parameters")
		return
	}

	ctrl.serveThumbnail(c, c.Param("object_type"), c.Param("object_id"), c.Param("file_name"), query.Width, query.Height, query.Align)
}

// GetThumbnailByToken serves a thumbnail addressed by an opaque token issued
// through CreateThumbnailToken. The token pins the full parameter set, so the
// resulting URL stays valid across releases.
func (ctrl *Controller) GetThumbnailByToken(c *gin.Context) {
	token, err := utils.DecodeThumbnailToken(c.Param("token"))
	if err != nil {
		utils.JSON400(c, "invalid thumbnail token")
		return
	}

	ctrl.serveThumbnail(c, token.ObjectType, token.ObjectID, token.FileName, token.Width, token.Height, token.Align)
}

// CreateThumbnailToken issues a stable token (and absolute URL) for the
// requested thumbnail parameters.
func (ctrl *Controller) CreateThumbnailToken(c *gin.Context) {
	var query dto.ThumbnailQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.JSON400(c, "invalid thumbnail parameters")
		return
	}
	if !validThumbnailParams(query.Width, query.Height, query.Align) {
		utils.JSON400(c, "invalid thumbnail parameters")
		return
	}

	token, err := utils.EncodeThumbnailToken(utils.ThumbnailToken{
		ObjectType: c.Param("object_type"),
		ObjectID:   c.Param("object_id"),
		FileName:   c.Param("file_name"),
		Width:      query.Width,
		Height:     query.Height,
		Align:      query.Align,
	})
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(c.Request.Context(), err, "[Thumbnail] Failed to issue token")
		utils.JSON500(c, "failed to issue thumbnail token")
		return
	}

	utils.JSON200(c, dto.ThumbnailTokenResponse{
		Token: token,
		URL:   fmt.Sprintf("https://%s/api/v1/attachments/thumbnail/%s", ctrl.Config.EnvConfig.DomainName, token),
	})
}

func (ctrl *Controller) serveThumbnail(c *gin.Context, objectType, objectID, fileName string, width, height, align int) {
	ctx := c.Request.Context()

	if !validThumbnailParams(width, height, align) {
		utils.JSON400(c, "invalid thumbnail parameters")
		return
	}

	data, contentType, err := ctrl.Repository.ThumbnailRepo.GetThumbnail(ctx, objectType, objectID, fileName, width, height, align)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrNotFound):
			utils.JSON404(c, "source file not found")
		case errors.Is(err, thumbnailer.ErrUnsupportedImageFormat):
			utils.JSON415(c, "source file is not a supported image")
		default:
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Thumbnail] Failed to serve %dx%dx%d for %s/%s/%s", width, height, align, objectType, objectID, fileName)
			utils.JSON500(c, "failed to generate thumbnail")
		}
		return
	}

	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", ctrl.Config.EnvConfig.Storage.CacheMaxAgeMinutes*60))
	c.Data(200, contentType, data)
}

func validThumbnailParams(width, height, align int) bool {
	if width < 0 || height < 0 {
		return false
	}
	if width == 0 && height == 0 {
		return false
	}
	return align >= thumbnailer.AlignNone && align <= thumbnailer.AlignCenterLeft
}

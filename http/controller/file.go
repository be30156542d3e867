package controller

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-attachment-service/entity"
	"github.com/tnqbao/gau-attachment-service/http/controller/dto"
	"github.com/tnqbao/gau-attachment-service/repository"
	"github.com/tnqbao/gau-attachment-service/utils"
)

// ListFiles returns the object's source files, filtered and sorted.
func (ctrl *Controller) ListFiles(c *gin.Context) {
	ctx := c.Request.Context()
	objectType := c.Param("object_type")
	objectID := c.Param("object_id")

	var query dto.FileSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.JSON400(c, "invalid query parameters")
		return
	}
	opts := searchOptionsFromQuery(query, c.Request.URL.Query())

	files, err := ctrl.Repository.FileRepo.ListFiles(ctx, objectType, objectID, opts)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[File] Failed to list files for %s/%s", objectType, objectID)
		utils.JSON500(c, "failed to list files")
		return
	}

	utils.JSON200(c, gin.H{
		"files": files,
		"count": len(files),
	})
}

// GetFileInfo returns one file's metadata plus a fresh presigned URL.
func (ctrl *Controller) GetFileInfo(c *gin.Context) {
	ctx := c.Request.Context()
	fileID := repository.FileKey(c.Param("object_type"), c.Param("object_id"), c.Param("file_name"))

	file, err := ctrl.Repository.FileRepo.GetFileInfo(ctx, fileID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			utils.JSON404(c, "file not found")
			return
		}
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[File] Failed to stat %s", fileID)
		utils.JSON500(c, "failed to get file info")
		return
	}

	utils.JSON200(c, file)
}

// DownloadFile streams the file content through the service.
func (ctrl *Controller) DownloadFile(c *gin.Context) {
	ctx := c.Request.Context()
	fileID := repository.FileKey(c.Param("object_type"), c.Param("object_id"), c.Param("file_name"))

	info, err := ctrl.Repository.FileRepo.GetFileInfo(ctx, fileID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			utils.JSON404(c, "file not found")
			return
		}
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[File] Failed to stat %s", fileID)
		utils.JSON500(c, "failed to download file")
		return
	}

	data, err := ctrl.Repository.FileRepo.GetFile(ctx, fileID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			utils.JSON404(c, "file not found")
			return
		}
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[File] Failed to read %s", fileID)
		utils.JSON500(c, "failed to download file")
		return
	}

	c.Data(200, info.ContentType, data)
}

// UploadFile writes a multipart file directly into the permanent bucket and
// queues thumbnail prewarming when the file is an image.
func (ctrl *Controller) UploadFile(c *gin.Context) {
	ctx := c.Request.Context()
	objectType := c.Param("object_type")
	objectID := c.Param("object_id")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.JSON400(c, "missing file in request")
		return
	}
	if fileHeader.Size > ctrl.Config.EnvConfig.Storage.MaxUploadBytes {
		utils.JSON400(c, "file exceeds the maximum upload size")
		return
	}
	if strings.Contains(fileHeader.Filename, "/") {
		utils.JSON400(c, "file name must not contain a path separator")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[File] Failed to open multipart file %s", fileHeader.Filename)
		utils.JSON500(c, "failed to read upload")
		return
	}
	defer src.Close()

	metadata := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if strings.HasPrefix(key, "meta_") && len(values) > 0 {
			metadata[strings.TrimPrefix(key, "meta_")] = values[0]
		}
	}

	contentType := fileHeader.Header.Get("Content-Type")
	fileID, err := ctrl.Repository.FileRepo.UploadFile(ctx, objectType, objectID, fileHeader.Filename, contentType, src, fileHeader.Size, metadata)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[File] Failed to upload %s for %s/%s", fileHeader.Filename, objectType, objectID)
		utils.JSON500(c, "failed to upload file")
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[File] Uploaded %s (%d bytes)", fileID, fileHeader.Size)
	ctrl.publishThumbnailPrewarm(ctx, objectType, objectID, fileHeader.Filename)

	utils.JSON201(c, dto.UploadFileResponse{FileID: fileID})
}

// DeleteFile removes a source file and, for images, its derived thumbnails.
func (ctrl *Controller) DeleteFile(c *gin.Context) {
	ctx := c.Request.Context()
	fileID := repository.FileKey(c.Param("object_type"), c.Param("object_id"), c.Param("file_name"))

	if err := ctrl.Repository.FileRepo.DeleteFile(ctx, fileID); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[File] Failed to delete %s", fileID)
		utils.JSON500(c, "failed to delete file")
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[File] Deleted %s", fileID)
	utils.JSON200(c, gin.H{"message": "file deleted"})
}

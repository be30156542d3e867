package controller

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tnqbao/gau-attachment-service/entity"
	"github.com/tnqbao/gau-attachment-service/http/controller/dto"
	"github.com/tnqbao/gau-attachment-service/utils"
)

// CreateStagingSession issues a fresh session id for staged uploads against
// the target object. The session only materializes in the registry once the
// first file is staged into it.
func (ctrl *Controller) CreateStagingSession(c *gin.Context) {
	session := entity.StagingSession{
		ID:               uuid.New().String(),
		StagingBucket:    ctrl.Config.EnvConfig.Storage.StagingBucket,
		TargetObjectType: c.Param("object_type"),
		TargetObjectID:   c.Param("object_id"),
		TargetBucket:     ctrl.Config.EnvConfig.Storage.Bucket,
	}
	utils.JSON201(c, session)
}

// UploadTemporaryFile stages a multipart file into the session's private
// prefix. Staged files are invisible to the object's listings until Accept.
func (ctrl *Controller) UploadTemporaryFile(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := c.Param("session_id")

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
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Staging] Failed to open multipart file %s", fileHeader.Filename)
		utils.JSON500(c, "failed to read upload")
		return
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	stagedID, err := ctrl.Repository.FileRepo.UploadTemporaryFile(ctx, sessionID, fileHeader.Filename, contentType, src, fileHeader.Size)
	if err != nil {
		if errors.Is(err, entity.ErrSessionTerminated) {
			utils.JSON409(c, "staging session is already accepted or rejected")
			return
		}
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Staging] Failed to stage %s in session %s", fileHeader.Filename, sessionID)
		utils.JSON500(c, "failed to stage file")
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Staging] Staged %s (%d bytes)", stagedID, fileHeader.Size)
	utils.JSON201(c, dto.UploadTemporaryFileResponse{
		StagedID:  stagedID,
		SessionID: sessionID,
	})
}

// AcceptStagingSession commits the session's staged files to the target
// object and queues thumbnail prewarming for the committed images.
func (ctrl *Controller) AcceptStagingSession(c *gin.Context) {
	ctx := c.Request.Context()
	objectType := c.Param("object_type")
	objectID := c.Param("object_id")
	sessionID := c.Param("session_id")

	moved, err := ctrl.Repository.FileRepo.MoveTemporaryFiles(ctx, sessionID, objectType, objectID)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Staging] Failed to commit session %s to %s/%s (%d files moved before failure)", sessionID, objectType, objectID, len(moved))
		utils.JSON500(c, "failed to commit staging session")
		return
	}

	for _, name := range moved {
		ctrl.publishThumbnailPrewarm(ctx, objectType, objectID, name)
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Staging] Committed session %s to %s/%s (%d files)", sessionID, objectType, objectID, len(moved))
	utils.JSON200(c, dto.AcceptStagingResponse{
		SessionID:  sessionID,
		MovedFiles: moved,
		MovedCount: len(moved),
	})
}

// RejectStagingSession discards the session's staged files.
func (ctrl *Controller) RejectStagingSession(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := c.Param("session_id")

	if err := ctrl.Repository.FileRepo.DeleteTemporaryFiles(ctx, sessionID); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Staging] Failed to reject session %s", sessionID)
		utils.JSON500(c, "failed to reject staging session")
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Staging] Rejected session %s", sessionID)
	utils.JSON200(c, gin.H{"message": "staging session rejected"})
}

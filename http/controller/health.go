package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-attachment-service/utils"
)

// Healthz reports service liveness plus a deep check against the storage
// cluster through the admin API.
func (ctrl *Controller) Healthz(c *gin.Context) {
	ctx := c.Request.Context()

	info, err := ctrl.Infra.Storage.Admin.ServerInfo(ctx)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Health] Storage cluster unreachable")
		utils.JSON500(c, "storage cluster unreachable")
		return
	}

	utils.JSON200(c, gin.H{
		"status": "ok",
		"storage": gin.H{
			"mode":    info.Mode,
			"servers": len(info.Servers),
		},
	})
}

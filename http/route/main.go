package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-attachment-service/http/controller"
	middlewares "github.com/tnqbao/gau-attachment-service/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}
	r.Use(middles.CORSMiddleware)

	r.GET("/healthz", ctrl.Healthz)

	apiRoutes := r.Group("/api/v1/attachments")
	{
		// Token-addressed thumbnails are embeddable (img src) and carry their
		// full parameter set, so they bypass the auth middleware.
		apiRoutes.GET("/thumbnail/:token", ctrl.GetThumbnailByToken)

		objectRoutes := apiRoutes.Group("/:object_type/:object_id")
		{
			objectRoutes.Use(middles.AuthMiddleware)

			objectRoutes.GET("/files", ctrl.ListFiles)
			objectRoutes.POST("/files", ctrl.UploadFile)
			objectRoutes.GET("/files/:file_name", ctrl.DownloadFile)
			objectRoutes.DELETE("/files/:file_name", ctrl.DeleteFile)
			objectRoutes.GET("/files/:file_name/info", ctrl.GetFileInfo)
			objectRoutes.GET("/files/:file_name/thumbnail", ctrl.GetThumbnail)
			objectRoutes.GET("/files/:file_name/thumbnail-token", ctrl.CreateThumbnailToken)

			objectRoutes.POST("/staging", ctrl.CreateStagingSession)
			objectRoutes.POST("/staging/:session_id/files", ctrl.UploadTemporaryFile)
			objectRoutes.POST("/staging/:session_id/accept", ctrl.AcceptStagingSession)
			objectRoutes.DELETE("/staging/:session_id", ctrl.RejectStagingSession)
		}
	}

	return r
}

package router

import (
	"github.com/gin-gonic/gin"

	"storybook-media-api/internal/interfaces/http/handler"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(v1 *gin.RouterGroup, mediaHandler *handler.MediaHandler) {
	// 书籍级插图、朗读与发布
	books := v1.Group("/books")
	{
		books.POST("/:id/pictures", mediaHandler.GenerateAllPictures)
		books.POST("/:id/pictures/retry", mediaHandler.RetryFailedPictures)

		books.POST("/:id/publish", mediaHandler.Publish)
		books.POST("/:id/archive", mediaHandler.Archive)
		books.POST("/:id/unarchive", mediaHandler.Unarchive)

		books.POST("/:id/audio", mediaHandler.GenerateFullAudio)
		books.GET("/:id/audio", mediaHandler.DownloadBookAudio)
		books.GET("/:id/audio/playlist", mediaHandler.AudioPlaylist)
	}

	// 页面级资产
	pages := v1.Group("/pages")
	{
		pages.POST("/:id/picture", mediaHandler.GeneratePicture)
		pages.GET("/:id/picture", mediaHandler.DownloadPageImage)
		pages.GET("/:id/audio", mediaHandler.DownloadPageAudio)
	}
}

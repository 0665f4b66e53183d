package routes

import (
	"time"

	"threadmerge/internal/api"
	"threadmerge/internal/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func InitRoutes(corsOrigins []string, userHandler *api.UserHandler, threadHandler *api.ThreadHandler, postHandler *api.PostHandler, mergeHandler *api.MergeHandler) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", api.ActorHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	router.Use(cors.New(corsConfig))
	router.Use(metrics.Middleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	userGroup := router.Group("/user")
	{
		userGroup.POST("/:nickname/create", userHandler.CreateUser)
		userGroup.GET("/:nickname/profile", userHandler.GetUserProfile)
	}

	threadGroup := router.Group("/thread")
	{
		threadGroup.POST("/create", threadHandler.CreateThread)
		threadGroup.POST("/:id/create", threadHandler.CreatePosts)
		threadGroup.GET("/:id/details", threadHandler.GetThreadDetails)
		threadGroup.GET("/:id/posts", threadHandler.GetThreadPosts)
		threadGroup.GET("/:id/merge", mergeHandler.PreviewMerge)
		threadGroup.POST("/:id/merge", mergeHandler.MergeThreads)
	}

	postGroup := router.Group("/post")
	{
		postGroup.GET("/:id/details", postHandler.GetPostDetails)
	}

	serviceGroup := router.Group("/service")
	{
		serviceGroup.POST("/clear", postHandler.ClearDatabase)
		serviceGroup.GET("/status", postHandler.GetStatus)
	}

	return router
}

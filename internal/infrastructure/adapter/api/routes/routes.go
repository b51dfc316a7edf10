package routes

import (
	"github.com/gin-gonic/gin"

	coreport "github.com/littlehunt-studios/generation-processor/internal/domain/port/core"
	"github.com/littlehunt-studios/generation-processor/internal/infrastructure/adapter/api/handler"
	"github.com/littlehunt-studios/generation-processor/internal/infrastructure/adapter/api/middleware"
)

// SetupRoutes configures all the routes for the API
func SetupRoutes(
	router *gin.Engine,
	generationHandler *handler.GenerationHandler,
	accountHandler *handler.AccountHandler,
) {
	// Generation routes
	router.POST("/generate", generationHandler.Generate)
	router.GET("/status/:jobId", generationHandler.Status)
	router.POST("/image", generationHandler.GenerateImage)

	// Account routes
	router.POST("/account", accountHandler.Create)
	accountRoutes := router.Group("/account")
	{
		accountRoutes.GET("/:accountId/balance", accountHandler.GetBalance)
		accountRoutes.POST("/:accountId/credits", accountHandler.AddCredits)
		accountRoutes.GET("/:accountId/videos", generationHandler.ListVideos)
		accountRoutes.GET("/:accountId/transactions", accountHandler.ListTransactions)
		accountRoutes.GET("/:accountId/reconcile", accountHandler.Reconcile)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger) {
	// Apply middlewares in the correct order
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())
}

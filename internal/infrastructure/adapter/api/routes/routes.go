package routes

import (
	"net/http"

	coreport "github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/core"
	"github.com/oumasdelicacy/mpesa-bridge/internal/infrastructure/adapter/api/handler"
	"github.com/oumasdelicacy/mpesa-bridge/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all the routes for the API
func SetupRoutes(
	router *gin.Engine,
	paymentHandler *handler.PaymentHandler,
	callbackHandler *handler.CallbackHandler,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	payments := router.Group("/api/v1/payments")
	{
		// POST /api/v1/payments/stk-push
		payments.POST("/stk-push", paymentHandler.InitiatePush)

		// POST /api/v1/payments/query-status
		payments.POST("/query-status", paymentHandler.QueryStatus)

		// POST /api/v1/payments/mpesa/callback
		payments.POST("/mpesa/callback", callbackHandler.HandleCallback)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger) {
	// Apply middlewares in the correct order
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())
}

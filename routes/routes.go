package routes

import (
	"net/http"
	"time"

	"venuebook/handlers"
	"venuebook/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterFlowRoutes sets up the booking confirmation flow endpoints.
func RegisterFlowRoutes(r *gin.Engine, fh *handlers.FlowHandler) {
	flowGroup := r.Group("/api/flow")
	{
		flowGroup.Use(middleware.BearerToken())
		flowGroup.POST("", fh.EnterFlow)
		flowGroup.GET("/:flowID", fh.GetFlow)
		flowGroup.DELETE("/:flowID", fh.CancelFlow)
		flowGroup.POST("/:flowID/step", fh.Step)
		flowGroup.PUT("/:flowID/schedule", fh.EditSchedule)
		flowGroup.PUT("/:flowID/payment-method", fh.SelectPaymentMethod)
		flowGroup.POST("/:flowID/price/accept", fh.AcceptPrice)
		flowGroup.POST("/:flowID/price/reject", fh.RejectPrice)
		flowGroup.POST("/:flowID/confirm", fh.Confirm)
		flowGroup.GET("/:flowID/alternatives", fh.Alternatives)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "venuebook up"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, fh *handlers.FlowHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterFlowRoutes(r, fh)
}

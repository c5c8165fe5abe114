package routes

import (
	"time"

	"campflow/handlers"
	"campflow/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterCartRoutes registers the cart endpoints. Carts accept guests: the
// owner is resolved from the bearer token or the guest id header.
func RegisterCartRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/cart")
	{
		api.Use(middleware.RequireUser())
		api.POST("", hb.AddCartItemHandler)
		api.GET("", hb.ListCartItemsHandler)
		api.PATCH("/:itemId", hb.UpdateCartItemHandler)
		api.DELETE("/:itemId", hb.RemoveCartItemHandler)
	}
}

// RegisterFlowRoutes registers the guided checkout flow endpoints.
func RegisterFlowRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/flows")
	{
		api.Use(middleware.RequireUser())
		api.POST("", hb.StartFlowHandler)
		api.GET("/:flowId", hb.GetFlowHandler)
		api.POST("/:flowId/steps/validated", hb.StepValidatedHandler)
		api.POST("/:flowId/steps/completed", hb.StepCompletedHandler)
		api.POST("/:flowId/steps/goto", hb.GoToStepHandler)
		api.POST("/:flowId/next", hb.NextStepHandler)
		api.POST("/:flowId/previous", hb.PreviousStepHandler)
		api.POST("/:flowId/switch", hb.SwitchItemHandler)
		api.DELETE("/:flowId/items/:itemId", hb.RemoveFlowItemHandler)
		api.PUT("/:flowId/form", hb.ApplyFormHandler)
		api.POST("/:flowId/submit", hb.SubmitFlowHandler)
	}
}

// RegisterBookingRoutes registers the submitted-booking endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.RequireUser())
		api.GET("", hb.ListBookingsHandler)
		api.GET("/:globalId", hb.GetBookingHandler)
		api.DELETE("/:globalId", hb.CancelBookingHandler)
		api.POST("/:globalId/retry-payment", hb.RetryPaymentHandler)
	}
}

// RegisterCatalogueRoutes registers the static selection catalogues.
func RegisterCatalogueRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/access-points")
	{
		api.GET("/:activityId", hb.AccessPointsHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Guest-Id"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())
	r.Use(middleware.ResolveUser())

	RegisterHealthRoute(r, hb)
	RegisterCartRoutes(r, hb)
	RegisterFlowRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterCatalogueRoutes(r, hb)
}

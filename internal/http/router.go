package api

import (
	"log"
	stdhttp "net/http"

	intconfig "rentalapi/internal/config"
	h "rentalapi/internal/http/handlers"
	"rentalapi/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		bookings := api.Group("/bookings")
		bookings.POST("/calculate-price", h.CalculatePrice)
		bookings.POST("/check-availability", h.CheckAvailability)
		bookings.GET("", h.ListBookings)
		bookings.POST("", h.CreateBooking)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id", h.UpdateBooking)
		bookings.DELETE("/:id", h.DeleteBooking)
		bookings.GET("/:id/invoice", h.GetBookingInvoice)
		bookings.POST("/:id/invoice", h.GenerateBookingInvoice)
	}

	return r
}

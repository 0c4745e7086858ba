package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"pgfinder/internal/infra/config"
	"pgfinder/internal/infra/obs"
)

type Handlers struct {
	Auth           AuthHTTP
	Me             MeHTTP
	Listing        ListingHTTP
	Reviews        ReviewsHTTP
	Booking        BookingHTTP
	OwnerListing   OwnerListingHTTP
	OwnerBooking   OwnerBookingHTTP
	AuthMiddleware gin.HandlerFunc
	Metrics        http.Handler
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	if h.Metrics != nil {
		router.GET("/metrics", gin.WrapH(h.Metrics))
	}

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/signup", h.Auth.SignUp)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/owner/login", h.Auth.OwnerLogin)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Me != nil {
		meGroup := api.Group("/me")
		meGroup.GET("/profile", h.Me.Profile)
		meGroup.PUT("/profile", h.Me.UpdateProfile)
		meGroup.GET("/bookings", h.Me.ListBookings)
	}
	if h.Listing != nil {
		api.GET("/listings", h.Listing.Catalog)
		api.GET("/listings/:id", h.Listing.Get)
	}
	if h.Reviews != nil {
		api.GET("/listings/:id/reviews", h.Reviews.List)
		api.POST("/listings/:id/reviews", h.Reviews.Add)
	}
	if h.Booking != nil {
		api.POST("/listings/:id/bookings", h.Booking.Request)
		api.GET("/bookings/:id", h.Booking.Get)
	}
	if h.OwnerListing != nil {
		ownerListings := api.Group("/owner/listings")
		ownerListings.POST("", h.OwnerListing.Create)
		ownerListings.PUT("/:id", h.OwnerListing.Update)
		ownerListings.DELETE("/:id", h.OwnerListing.Delete)
		ownerListings.PATCH("/:id/status", h.OwnerListing.SetStatus)
		ownerListings.POST("/:id/images", h.OwnerListing.UploadImage)
	}
	if h.OwnerBooking != nil {
		ownerBookings := api.Group("/owner/bookings")
		ownerBookings.GET("", h.OwnerBooking.List)
		ownerBookings.POST("/:id/approve", h.OwnerBooking.Approve)
		ownerBookings.POST("/:id/reject", h.OwnerBooking.Reject)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}

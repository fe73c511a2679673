package routes

import (
	"github.com/alnet/mentorbridge/internal/app/controllers"
	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Controllers groups the handlers mounted under /api/v1
type Controllers struct {
	Auth       *controllers.AuthController
	Profile    *controllers.ProfileController
	Connection *controllers.ConnectionController
	Message    *controllers.MessageController
	Job        *controllers.JobController
	Startup    *controllers.StartupController
	Donation   *controllers.DonationController
	Event      *controllers.EventController
	Analytics  *controllers.AnalyticsController
}

// SetupRouter configures all application routes. Static segments are
// registered before their :id siblings so they are never parsed as IDs.
func SetupRouter(
	router *gin.Engine,
	c Controllers,
	authMiddleware *middleware.AuthMiddleware,
	authLimiter *middleware.RateLimiter,
) *gin.RouterGroup {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/refresh", c.Auth.RefreshToken)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth(), authMiddleware.ActiveAccountRequired())

	adminOnly := authMiddleware.RoleRequired(models.RoleAdmin)
	alumniOrAdmin := authMiddleware.RoleRequired(models.RoleAlumni, models.RoleAdmin)

	authenticated.POST("/auth/logout", c.Auth.Logout)
	authenticated.GET("/auth/me", c.Auth.Me)

	// Profile and directory routes
	profiles := authenticated.Group("/profiles")
	{
		profiles.GET("/alumni/search", c.Profile.SearchAlumni)
		profiles.GET("/alumni/directory", c.Profile.Directory)
		profiles.POST("/bulk-upload", adminOnly, c.Profile.BulkUpload)

		profiles.GET("/:userId", c.Profile.GetProfile)
		profiles.PATCH("/:userId", c.Profile.UpdateProfile)
		profiles.POST("/:userId/photo", c.Profile.UploadPhoto)
	}

	users := authenticated.Group("/users")
	users.Use(adminOnly)
	{
		users.PATCH("/:id/status", c.Profile.SetUserStatus)
	}

	// Connection routes
	connections := authenticated.Group("/connections")
	{
		connections.GET("", c.Connection.ListConnections)
		connections.POST("", c.Connection.SendRequest)
		connections.GET("/pending", c.Connection.ListPending)
		connections.GET("/sent", c.Connection.ListSent)
		connections.GET("/status/:userId", c.Connection.Status)

		connections.PATCH("/:id", c.Connection.Respond)
		connections.DELETE("/:id", c.Connection.Remove)
		connections.POST("/:id/block", c.Connection.Block)
	}

	// Messaging routes
	messages := authenticated.Group("/messages")
	{
		messages.GET("", c.Message.Conversations)
		messages.POST("", c.Message.Send)
		messages.GET("/unread-count", c.Message.UnreadCount)
		messages.GET("/stream", c.Message.Stream)

		messages.GET("/:userId", c.Message.Conversation)
		messages.PATCH("/:userId/read", c.Message.MarkRead)
	}

	// Job board routes
	jobs := authenticated.Group("/jobs")
	{
		jobs.GET("", c.Job.List)
		jobs.POST("", alumniOrAdmin, c.Job.Create)
		jobs.GET("/my-postings", c.Job.MyPostings)
		jobs.GET("/statistics", c.Job.Statistics)

		jobs.GET("/:id", c.Job.Get)
		jobs.PUT("/:id", c.Job.Update)
		jobs.DELETE("/:id", c.Job.Delete)
		jobs.PATCH("/:id/close", c.Job.Close)
		jobs.POST("/:id/apply", c.Job.Apply)
		jobs.GET("/:id/applications", c.Job.Applications)
	}

	// Startup showcase routes
	startups := authenticated.Group("/startups")
	{
		startups.GET("", c.Startup.List)
		startups.POST("", c.Startup.Create)
		startups.GET("/my-startup", c.Startup.MyStartup)
		startups.GET("/pending", adminOnly, c.Startup.Pending)
		startups.GET("/statistics", adminOnly, c.Startup.Statistics)

		startups.GET("/:id", c.Startup.Get)
		startups.PUT("/:id", c.Startup.Update)
		startups.DELETE("/:id", c.Startup.Delete)
		startups.PATCH("/:id/approve", adminOnly, c.Startup.Approve)
		startups.PATCH("/:id/reject", adminOnly, c.Startup.Reject)
	}

	// Donation routes
	donations := authenticated.Group("/donations")
	{
		donations.POST("", c.Donation.Create)
		donations.GET("/mine", c.Donation.Mine)
		donations.GET("", adminOnly, c.Donation.List)
		donations.GET("/summary", adminOnly, c.Donation.Summary)
	}

	// Event routes
	events := authenticated.Group("/events")
	{
		events.GET("", c.Event.List)
		events.POST("", alumniOrAdmin, c.Event.Create)

		events.GET("/:id", c.Event.Get)
		events.PUT("/:id", c.Event.Update)
		events.DELETE("/:id", c.Event.Delete)
		events.POST("/:id/register", c.Event.Register)
		events.DELETE("/:id/register", c.Event.Unregister)
	}

	// Admin analytics routes
	analytics := authenticated.Group("/analytics")
	analytics.Use(adminOnly)
	{
		analytics.GET("/users", c.Analytics.Users)
		analytics.GET("/engagement", c.Analytics.Engagement)
		analytics.GET("/platform", c.Analytics.Platform)
		analytics.GET("/dashboard", c.Analytics.Dashboard)
		analytics.GET("/report", c.Analytics.Report)
		analytics.POST("/export", c.Analytics.Export)
	}

	return v1
}

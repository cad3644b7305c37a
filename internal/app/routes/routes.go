package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/majlis/internal/app/controllers"
	"github.com/yigit/majlis/internal/app/models"
	"github.com/yigit/majlis/internal/middleware"
	"github.com/yigit/majlis/internal/pkg/websocket"
)

// Handlers groups every controller the router dispatches to
type Handlers struct {
	Auth      *controllers.AuthController
	User      *controllers.UserController
	Post      *controllers.PostController
	Feedback  *controllers.FeedbackController
	Admin     *controllers.AdminController
	MCQ       *controllers.MCQController
	System    *controllers.SystemController
	WebSocket *websocket.Handler
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	v1.GET("/health", h.System.Health)
	v1.GET("/i18n", h.System.Languages)
	v1.GET("/i18n/:lang", h.System.Translations)
	v1.POST("/auth/session", h.Auth.CreateSession)

	// --- Routes that use a session when one is presented ---
	optional := v1.Group("")
	optional.Use(authMiddleware.OptionalSession())
	{
		auth := optional.Group("/auth")
		{
			auth.POST("/signup", h.Auth.SignUp)
			auth.POST("/signin", h.Auth.SignIn)
			auth.POST("/forgot-password", h.Auth.ForgotPassword)
			auth.POST("/reset-password", h.Auth.ResetPassword)
		}

		optional.GET("/feed", h.Post.Feed)
		optional.GET("/posts/:id", h.Post.GetPost)
		optional.POST("/mcq/export", h.MCQ.Export)
	}

	// --- Session routes, anonymous sessions included ---
	session := v1.Group("")
	session.Use(authMiddleware.RequireSession())
	{
		session.POST("/auth/signout", h.Auth.SignOut)

		me := session.Group("/me")
		{
			me.GET("", h.Auth.GetSession)
			me.DELETE("", h.Auth.CloseSession)
			me.PUT("/language", h.Auth.SetLanguage)
			me.PUT("/view", h.Auth.SetView)
			me.GET("/toasts", h.Auth.Toasts)
			me.DELETE("/toasts/:id", h.Auth.DismissToast)
			me.GET("/ws", h.WebSocket.HandleConnection)
		}

		posts := session.Group("/posts/:id")
		{
			posts.POST("/star", h.Post.ToggleStar)
			posts.POST("/rating", h.Post.RateActivity)
		}

		feedback := session.Group("/feedback")
		{
			feedback.GET("", h.Feedback.ListFeedback)
			feedback.POST("", h.Feedback.CreateFeedback)
			feedback.GET("/:id", h.Feedback.GetFeedback)
			feedback.POST("/:id/reply", h.Feedback.ReplyFeedback)
			feedback.DELETE("/:id", h.Feedback.DeleteFeedback)
			feedback.POST("/:id/open",
				authMiddleware.RoleRequired(models.RoleMember, models.RoleAdmin),
				h.Feedback.OpenFeedback)
		}
	}

	// --- Signed in routes ---
	signedIn := session.Group("")
	signedIn.Use(authMiddleware.RequireSignedIn())
	{
		signedIn.PATCH("/me", h.User.UpdateProfile)
		signedIn.POST("/me/avatar", h.User.UploadAvatar)
		signedIn.POST("/me/cv", h.User.UploadCV)
		signedIn.POST("/posts", h.Post.CreatePost)
		signedIn.POST("/mcq/generate", h.MCQ.Generate)
		signedIn.POST("/chat", h.MCQ.Chat)

		signedIn.GET("/students",
			authMiddleware.RoleRequired(models.RoleMember, models.RoleAdmin),
			h.User.Students)
	}

	admin := session.Group("/admin")
	admin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/stats", h.Admin.WeeklyStats)
		admin.GET("/digest", h.Admin.BuildDigest)
		admin.POST("/digest", h.Admin.PublishDigest)
		admin.POST("/recap", h.Admin.RunRecap)
	}
}

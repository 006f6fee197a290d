// Package router provides DataSphere routing.
package router

import (
	"fmt"

	"github.com/kart-io/logger"
	"github.com/kart-io/datasphere/internal/datasphere/biz"
	"github.com/kart-io/datasphere/internal/datasphere/handler"
	"github.com/kart-io/datasphere/pkg/component/storage"
	"github.com/kart-io/datasphere/pkg/infra/middleware"
	"github.com/kart-io/datasphere/pkg/infra/middleware/auth"
	"github.com/kart-io/datasphere/pkg/infra/server"
	"github.com/kart-io/datasphere/pkg/security/auth/identity"
)

// Register registers the DataSphere routes on the HTTP server of mgr.
func Register(mgr *server.Manager, svc *biz.Services, verifier identity.Verifier, storages *storage.Manager) error {
	httpServer := mgr.HTTPServer()
	if httpServer == nil {
		return fmt.Errorf("http server is not configured")
	}
	logger.Info("Registering datasphere routes...")

	opts := httpServer.Options()
	engine := httpServer.Engine()

	// Probes live outside the API prefix.
	middleware.RegisterHealthRoutes(engine, storages)
	middleware.RegisterVersionRoutes(engine, true)

	datasetHandler := handler.NewDatasetHandler(svc.Datasets)
	likeHandler := handler.NewLikeHandler(svc.Likes)
	commentHandler := handler.NewCommentHandler(svc.Comments)
	notificationHandler := handler.NewNotificationHandler(svc.Notifications)
	userHandler := handler.NewUserHandler(svc.Users)
	adminHandler := handler.NewAdminHandler(svc.Admin)
	leaderboardHandler := handler.NewLeaderboardHandler(svc.Leaderboard)
	sessionHandler := handler.NewSessionHandler(opts.SecureCookie)

	authn := auth.Authenticate(verifier)
	api := engine.Group(opts.BasePath)

	// Public Routes
	public := api.Group("")
	public.Use(auth.Optional(verifier))
	{
		public.GET("/leaderboard", leaderboardHandler.Get)
		public.GET("/users", userHandler.List)
		public.POST("/logout", sessionHandler.Logout)
	}

	// Session and account routes. gin prefers the static /users/me over the
	// /users/:id wildcard.
	api.POST("/session", authn, sessionHandler.Create)
	api.POST("/users", authn, userHandler.SignUp)
	api.GET("/users/me", authn, userHandler.Me)
	api.PATCH("/users/me", authn, userHandler.UpdateMe)
	api.DELETE("/users/me", authn, userHandler.DeleteMe)
	public.GET("/users/:id", userHandler.Profile)

	// Dataset Routes
	datasets := api.Group("/datasets")
	datasets.Use(authn)
	{
		datasets.GET("", datasetHandler.List)
		datasets.POST("", datasetHandler.Create)
		datasets.GET("/stats", datasetHandler.Stats)
		datasets.GET("/:id", datasetHandler.Get)
		datasets.PATCH("/:id", datasetHandler.Update)
		datasets.DELETE("/:id", datasetHandler.Delete)
		datasets.POST("/:id/verify", datasetHandler.ToggleVerify)

		datasets.GET("/:id/likes", likeHandler.Status)
		datasets.POST("/:id/likes", likeHandler.Toggle)

		datasets.GET("/:id/comments", commentHandler.List)
		datasets.POST("/:id/comments", commentHandler.Add)
		datasets.DELETE("/:id/comments/:commentId", commentHandler.Delete)
	}

	// Notification Routes
	notifications := api.Group("/notifications")
	notifications.Use(authn)
	{
		notifications.GET("", notificationHandler.List)
		notifications.POST("/mark-read", notificationHandler.MarkAllRead)
		notifications.GET("/unread-count", notificationHandler.UnreadCount)
	}

	// Admin Routes
	admin := api.Group("/admin")
	admin.Use(authn)
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.PATCH("/users/:id", adminHandler.UpdateRole)
	}

	logger.Infow("HTTP routes registered", "base_path", opts.BasePath)
	return nil
}

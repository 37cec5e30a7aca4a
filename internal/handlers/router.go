package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"roomloop/internal/auth"
	"roomloop/internal/middleware"
	"roomloop/internal/observability"
	"roomloop/internal/repositories"
	"roomloop/internal/telemetry"
)

// Hub is the part of the socket hub the REST surface depends on.
type Hub interface {
	Notifier
	SocketStats
}

// RouterConfig carries everything NewRouter wires into the engine.
type RouterConfig struct {
	ServiceName    string
	Environment    string
	Version        string
	AllowedOrigins []string
	DebugRoutes    bool

	Verifier      *auth.Verifier
	Users         repositories.UserRepository
	Rooms         repositories.RoomRepository
	Invitations   repositories.InvitationRepository
	Messages      repositories.MessageRepository
	Reactions     repositories.ReactionRepository
	Notifications repositories.NotificationRepository
	Hub           Hub
	Socket        gin.HandlerFunc
	Audit         *telemetry.AuditEmitter
	Log           *slog.Logger
}

// NewRouter builds the HTTP surface: REST routes under /api, the socket
// endpoint and Prometheus metrics.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(observability.RequestIDMiddleware())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(observability.RequestLogger(cfg.Log))
	router.Use(observability.HTTPMetricsMiddleware())
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	health := NewHealthHandler(cfg.Environment, cfg.Version)
	authHandler := NewAuthHandler(cfg.Users, cfg.Verifier, cfg.Audit)
	userHandler := NewUserHandler(cfg.Users)
	roomHandler := NewRoomHandler(cfg.Rooms, cfg.Invitations, cfg.Audit)
	invitationHandler := NewInvitationHandler(cfg.Rooms, cfg.Users, cfg.Invitations, cfg.Notifications, cfg.Hub, cfg.Audit, cfg.Log)
	messageHandler := NewMessageHandler(cfg.Rooms, cfg.Messages)
	reactionHandler := NewReactionHandler(cfg.Rooms, cfg.Messages, cfg.Reactions, cfg.Audit)
	notificationHandler := NewNotificationHandler(cfg.Notifications)

	authMiddleware := middleware.AuthMiddleware(cfg.Verifier)

	router.GET("/", health.Banner)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Socket != nil {
		router.GET("/socket", cfg.Socket)
	}

	api := router.Group("/api")
	api.GET("/health", health.Health)

	authRoutes := api.Group("/auth")
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.GET("/me", authMiddleware, authHandler.Me)

	users := api.Group("/users", authMiddleware)
	users.GET("/search", userHandler.Search)
	users.GET("/:user_id", userHandler.GetUser)

	rooms := api.Group("/rooms", authMiddleware)
	rooms.POST("", roomHandler.CreateRoom)
	rooms.GET("", roomHandler.ListRooms)
	rooms.GET("/:room_id", roomHandler.GetRoom)
	rooms.POST("/:room_id/join", roomHandler.JoinRoom)
	rooms.POST("/:room_id/leave", roomHandler.LeaveRoom)
	rooms.DELETE("/:room_id", roomHandler.DeleteRoom)

	invitations := api.Group("/invitations", authMiddleware)
	invitations.POST("", invitationHandler.CreateInvitation)
	invitations.GET("", invitationHandler.ListInvitations)
	invitations.PUT("/:invitation_id", invitationHandler.RespondInvitation)

	messages := api.Group("/messages", authMiddleware)
	messages.GET("/:room_id", messageHandler.ListMessages)
	messages.POST("/:room_id", messageHandler.PostMessage)

	reactions := api.Group("/reactions", authMiddleware)
	reactions.POST("/messages/:message_id", reactionHandler.ToggleMessageReaction)
	reactions.POST("/:room_id", reactionHandler.CreateRoomReaction)
	reactions.GET("/:room_id", reactionHandler.ListRoomReactions)

	notifications := api.Group("/notifications", authMiddleware)
	notifications.GET("", notificationHandler.ListNotifications)
	notifications.PUT("/read-all", notificationHandler.MarkAllRead)
	notifications.PUT("/:notification_id/read", notificationHandler.MarkRead)

	RegisterDebugRoutes(api.Group("", authMiddleware), cfg.Audit, cfg.Hub, cfg.DebugRoutes)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}

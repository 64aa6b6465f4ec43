package pkg

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"AcademyNotify/internal/auth"
	"AcademyNotify/internal/config"
	"AcademyNotify/internal/notification"
	"AcademyNotify/pkg/middleware"

	"github.com/casbin/casbin/v2"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
)

var EchoModules = fx.Module("echo",
	fx.Provide(NewEchoServer),
	fx.Provide(config.NewMongoDBConfig),
	fx.Provide(config.NewMongoDBClient),
	fx.Provide(config.NewPushConfig),
	fx.Provide(config.NewPushService),
	fx.Provide(config.NewNotifyLocation),
	fx.Provide(middleware.NewEnforcer),
	fx.Provide(auth.NewUserRepository),
	fx.Provide(auth.NewUserService),
	fx.Provide(auth.NewAuthHandler),
	fx.Provide(notification.NewNotificationRepository),
	fx.Provide(NewNotificationService),
	fx.Provide(notification.NewNotificationHandler),
	fx.Provide(notification.NewSessionWatcher),
	fx.Invoke(RegisterIndexes),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(StartSessionWatcher))

// NewNotificationService assembles the dispatch engine from the concrete
// store and transport clients.
func NewNotificationService(users *auth.UserRepository, repo *notification.NotificationRepository, push *config.PushService, loc *time.Location) *notification.NotificationService {
	resolver := notification.NewAudienceResolver(users, repo)
	builder := notification.NewPayloadBuilder(users, loc)
	coordinator := notification.NewDeliveryCoordinator(repo, push)
	return notification.NewService(resolver, builder, coordinator, users, repo)
}

func NewEchoServer(lc fx.Lifecycle) *echo.Echo {
	e := echo.New()
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"http://localhost:5173"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomw.Recover())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Println("Server running on http://localhost:" + port)
			go func() {
				if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
					log.Fatal("Failed to start the server:", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("shutting down the server ...")
			return e.Shutdown(ctx)
		},
	})
	return e
}

func RegisterIndexes(db *mongo.Database) {
	config.UniqueEmailIndex(db.Collection("users"))
	config.NotificationHistoryIndex(db.Collection("notifications"))
}

func RegisterRoutes(e *echo.Echo, authHandler *auth.AuthHandler, notificationHandler *notification.NotificationHandler, enforcer *casbin.Enforcer) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)

	protected := e.Group("/api")
	protected.Use(middleware.JWTMiddleware)
	protected.Use(middleware.Casbin(enforcer))
	protected.POST("/notifications/broadcast", notificationHandler.SendBroadcast)
	protected.GET("/notifications", notificationHandler.ListNotifications)
	protected.PUT("/users/fcm-token", authHandler.SaveFCMToken)
}

func StartSessionWatcher(lc fx.Lifecycle, watcher *notification.SessionWatcher) {
	watcher.Start(lc)
}

package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"

	_ "github.com/danapixels/stampboard/docs" // swagger spec
	"github.com/danapixels/stampboard/internal/api/handler"
	"github.com/danapixels/stampboard/internal/api/middleware"
	"github.com/danapixels/stampboard/internal/core/ports"
	"github.com/danapixels/stampboard/internal/infrastructure/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// db and rdb may be nil when the corresponding backend is not configured;
// they are only used by the readiness probe.
func NewRouter(
	cfg *config.Config,
	log zerolog.Logger,
	stampService ports.StampService,
	authService ports.AuthService,
	db *mongo.Database,
	rdb *redis.Client,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("stampboard"))
	// Credentials must be allowed: the session rides in a cookie.
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{echo.GET, echo.POST, echo.DELETE, echo.OPTIONS},
		AllowCredentials: true,
	}))

	// --- Dependencies ---
	stampHandler := handler.NewStampHandler(stampService, cfg.AdminKey)
	authHandler := handler.NewAuthHandler(authService, cfg.SessionTTL, cfg.Env != "development")
	session := middleware.Session(cfg.JWTSecret)
	loginLimit := middleware.LoginRateLimit(rate.Every(2*time.Second), 5)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/login", authHandler.Login, loginLimit)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/verify", authHandler.Verify, session)

	// --- Stamp routes ---
	stamps := e.Group("/api/stamps")
	if cfg.PublicBoard {
		stamps.GET("", stampHandler.List)
	} else {
		stamps.GET("", stampHandler.List, session)
	}
	stamps.POST("", stampHandler.Create, session)
	stamps.POST("/clear", stampHandler.Clear, session)
	// Admin wipe authenticates with its own key, not a session.
	stamps.DELETE("", stampHandler.AdminWipe)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

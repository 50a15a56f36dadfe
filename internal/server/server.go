// Package server contains the HTTP and WebSocket handlers of the admin API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "adminhub/docs" // swagger docs
	"adminhub/internal/cache"
	"adminhub/internal/config"
	"adminhub/internal/database"
	"adminhub/internal/featureflags"
	"adminhub/internal/middleware"
	"adminhub/internal/models"
	"adminhub/internal/notifications"
	"adminhub/internal/repository"
	"adminhub/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// APIPrefix is the root of every admin route.
const APIPrefix = "/admin/v1"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	featureFlags   *featureflags.Manager

	notifier *notifications.Notifier
	presence *notifications.Presence
	hub      *notifications.Hub

	events        *service.EventService
	drafts        *service.DraftService
	categories    *service.CategoryService
	reports       *service.ReportService
	notifications *service.NotificationService
	sos           *service.SOSService
	users         *service.UserService
	activity      *service.ActivityLogService
	dashboard     *service.DashboardService
	attachments   *service.AttachmentService
}

// NewServer connects to the database and Redis and wires a server on top.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and optionally
// performs explicit seeding. redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires config and database")
	}

	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	draftRepo := repository.NewDraftRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	reportRepo := repository.NewReportRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	sosRepo := repository.NewSOSRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("adminhub-api"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		notifier:       notifications.NewNotifier(redisClient),
		presence:       notifications.NewPresence(redisClient),
	}
	s.hub = notifications.NewHub(s.presence, s.notifier)

	dispatcher := notifications.NewDispatcher(cfg.DispatchWorkers)
	var sender notifications.ContactSender = notifications.LogSender{}
	if cfg.SMSGatewayURL != "" {
		sender = notifications.NewGatewaySender(cfg.SMSGatewayURL, cfg.SMSGatewayToken)
	}

	s.activity = service.NewActivityLogService(activityRepo)
	s.users = service.NewUserService(userRepo, s.activity, s.notifier, cfg.JWTSecret)
	s.events = service.NewEventService(eventRepo, draftRepo, categoryRepo, s.activity, s.notifier, s.featureFlags)
	s.drafts = service.NewDraftService(draftRepo, categoryRepo, s.activity, s.notifier)
	s.categories = service.NewCategoryService(categoryRepo, s.activity)
	s.reports = service.NewReportService(reportRepo, eventRepo, commentRepo, userRepo, s.users, s.activity, s.notifier)
	s.notifications = service.NewNotificationService(notificationRepo, userRepo, s.notifier, dispatcher, s.activity, s.notifier)
	s.sos = service.NewSOSService(sosRepo, userRepo, sender, dispatcher, s.activity, s.notifier)
	s.dashboard = service.NewDashboardService(eventRepo, reportRepo, sosRepo, s.presence)
	s.attachments = service.NewAttachmentService(cfg)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Propagates request and user IDs into the request context for logging.
	app.Use(middleware.ContextMiddleware())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware(APIPrefix))
	}

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || strings.HasPrefix(c.Path(), "/health")
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
				Code:  "RATE_LIMITED",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Static(s.attachments.ServePath(), s.attachments.UploadDir(), fiber.Static{
		MaxAge: 3600,
	})

	api := app.Group(APIPrefix)
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Get("/me", s.AuthRequired(), s.AdminRequired(), s.Me)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	protected := api.Group("", s.AuthRequired())

	// Mobile app ingestion: any signed-in, unblocked user.
	protected.Post("/sos", middleware.RateLimit(s.redis, 5, time.Minute, "sos"), s.IngestSOS)
	protected.Post("/report", middleware.RateLimit(s.redis, 10, time.Minute, "report"), s.CreateReport)

	admin := protected.Group("", s.AdminRequired())

	events := admin.Group("/event-post")
	// Draft routes are registered before /:id so "drafts" is not parsed as an ID.
	events.Get("/drafts", s.ListDrafts)
	events.Post("/drafts", s.CreateDraft)
	events.Put("/drafts/:id", s.UpdateDraft)
	events.Delete("/drafts/:id", s.DeleteDraft)
	events.Post("/drafts/:id/publish", s.PublishDraft)
	events.Get("/", s.ListEventQueue)
	events.Post("/", s.CreateEvent)
	events.Patch("/:id/approve", s.ApproveEvent)
	events.Patch("/:id/reject", s.RejectEvent)
	events.Get("/:id", s.GetEvent)
	events.Delete("/:id", s.DeleteEvent)

	categories := admin.Group("/category")
	categories.Get("/", s.ListCategories)
	categories.Post("/", s.CreateCategory)
	categories.Delete("/:id", s.DeleteCategory)

	reports := admin.Group("/report")
	reports.Get("/", s.ListReports)
	reports.Patch("/:id/resolve", s.ResolveReport)
	reports.Get("/:id", s.GetReport)

	notes := admin.Group("/notification")
	notes.Get("/", s.ListNotifications)
	notes.Post("/", middleware.RateLimit(s.redis, 10, time.Minute, "broadcast"), s.CreateNotification)
	notes.Get("/:id", s.GetNotification)

	sos := admin.Group("/sos")
	sos.Get("/", s.ListSOS)
	sos.Patch("/:id/resolve", s.ResolveSOS)
	sos.Get("/:id", s.GetSOS)

	users := admin.Group("/users")
	users.Get("/", s.ListUsers)
	users.Patch("/:id/block", s.BlockUser)
	users.Patch("/:id/unblock", s.UnblockUser)

	admin.Get("/activity-log", s.ListActivityLogs)
	admin.Get("/dashboard/stats", s.GetDashboardStats)
	admin.Get("/feature-flags", s.GetFeatureFlags)

	admin.Get("/ws", s.feedUpgradeGuard(), s.AdminFeedHandler())
}

// LivenessCheck handles liveness checks
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness checks
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional: without it caches are bypassed and the feed is local.
	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired verifies the bearer token and stores the caller's ID in locals.
// WebSocket upgrades may pass the token as a query parameter.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowQuery := strings.HasSuffix(c.Path(), "/ws")
		raw, err := middleware.BearerToken(c, allowQuery)
		if err != nil {
			msg := "Authorization required"
			if errors.Is(err, middleware.ErrInvalidToken) {
				msg = "Invalid or expired token"
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(msg))
		}

		claims, err := middleware.ParseToken(s.config.JWTSecret, raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		if claims.JTI != "" && s.redis != nil {
			revoked, err := s.redis.Exists(c.UserContext(), revokedKey(claims.JTI)).Result()
			if err == nil && revoked > 0 {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
		}

		c.Locals("userID", claims.UserID)
		c.Locals("tokenClaims", claims)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, claims.UserID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// AdminRequired rejects callers that are not unblocked admins.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := s.currentUser(c)
		if err != nil {
			return nil
		}
		if !user.IsAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// currentUser loads the authenticated user and rejects blocked accounts.
// On failure the response is already written and errResponseWritten is returned.
func (s *Server) currentUser(c *fiber.Ctx) (*models.User, error) {
	if user, ok := c.Locals("user").(*models.User); ok {
		return user, nil
	}

	userID, _ := c.Locals("userID").(uint)
	user, err := s.users.GetUserByID(c.UserContext(), userID)
	if err != nil {
		if models.StatusForError(err) == fiber.StatusNotFound {
			_ = models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Account no longer exists"))
		} else {
			_ = models.RespondWithAppError(c, err)
		}
		return nil, errResponseWritten
	}
	if user.IsBlocked {
		_ = models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Account is blocked"))
		return nil, errResponseWritten
	}

	c.Locals("user", user)
	return user, nil
}

func revokedKey(jti string) string {
	return "blacklist:" + jti
}

// NewApp builds a Fiber app with the server's error handler, middleware and routes.
func (s *Server) NewApp() *fiber.App {
	maxBody := s.config.MaxUploadSizeMB
	if maxBody <= 0 {
		maxBody = service.DefaultMaxUploadSizeMB
	}

	app := fiber.New(fiber.Config{
		AppName:   "AdminHub API",
		BodyLimit: (maxBody + 1) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled request error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	go func() {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			middleware.Logger.Error("failed to start admin feed wiring", slog.String("error", err.Error()))
		}
	}()

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Stops the feed subscription goroutine.
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down admin feed", slog.String("error", err.Error()))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}

// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "aurelo/docs" // swagger docs
	"aurelo/internal/cache"
	"aurelo/internal/config"
	"aurelo/internal/database"
	"aurelo/internal/middleware"
	"aurelo/internal/models"
	"aurelo/internal/notifications"
	"aurelo/internal/repository"
	"aurelo/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// consumedTicketEntry records a WebSocket ticket that was already taken from
// Redis. The websocket upgrade can hit the auth middleware more than once, so
// the first GETDEL caches the result here for the remaining passes.
type consumedTicketEntry struct {
	userID    uint
	consumeAt time.Time
}

// consumedTicketGrace is how long a consumed ticket stays usable in-process.
const consumedTicketGrace = 30 * time.Second

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo      repository.UserRepository
	friendRepo    repository.FriendRepository
	shiftRepo     repository.ShiftRepository
	workplaceRepo repository.WorkplaceRepository
	swapRepo      repository.SwapRepository
	notifRepo     repository.NotificationRepository

	userService   *service.UserService
	friendService *service.FriendService
	swapService   *service.SwapService

	notifier *notifications.Notifier
	hub      *notifications.Hub

	consumedTicketsMu sync.Mutex
	consumedTickets   map[string]consumedTicketEntry
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// optionally performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	workplaceRepo := repository.NewWorkplaceRepository(db)
	swapRepo := repository.NewSwapRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	prom := middleware.InitMetrics("aurelo-api")

	server := &Server{
		config:          cfg,
		db:              db,
		redis:           redisClient,
		promMiddleware:  prom,
		userRepo:        userRepo,
		friendRepo:      friendRepo,
		shiftRepo:       shiftRepo,
		workplaceRepo:   workplaceRepo,
		swapRepo:        swapRepo,
		notifRepo:       notifRepo,
		consumedTickets: make(map[string]consumedTicketEntry),
	}
	server.userService = service.NewUserService(userRepo)
	server.friendService = service.NewFriendService(friendRepo, userRepo)
	server.swapService = service.NewSwapService(swapRepo, shiftRepo, friendRepo)

	// Notifier and hub only make sense with Redis for cross-instance fanout;
	// the hub alone still serves single-instance deployments.
	server.hub = notifications.NewHub()
	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
	}

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Aurelo Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/refresh", s.AuthRequired(), s.Refresh)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Post("/me/friend-code", s.GetMyFriendCode)
	users.Get("/search", middleware.RateLimit(
		s.redis, 10, time.Minute, "user_search"), s.SearchUsers)

	// WebSocket ticket issuance
	api.Post("/ws/ticket", s.AuthRequired(), s.IssueWSTicket)

	// Friend routes
	friends := protected.Group("/friends")
	friends.Get("/", s.GetFriends)
	// Specific /requests routes before generic /:userId
	friends.Post("/requests", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "friend_request"), s.SendFriendRequest)
	friends.Get("/requests", s.GetReceivedRequests)
	friends.Get("/requests/sent", s.GetSentRequests)
	friends.Post("/requests/:requestId/accept", s.AcceptFriendRequest)
	friends.Post("/requests/:requestId/reject", s.RejectFriendRequest)
	friends.Post("/redeem", s.RedeemInviteCode)
	// Specific /status routes before generic /:userId
	friends.Get("/status/:userId", s.GetFriendshipStatus)
	// Generic /:userId route must be last
	friends.Delete("/:userId", s.RemoveFriend)

	// Shift routes
	shifts := protected.Group("/shifts")
	shifts.Get("/", s.GetMyShifts)
	shifts.Post("/", s.CreateShift)
	shifts.Put("/:id", s.UpdateShift)
	shifts.Post("/:id/cancel", s.CancelShift)
	shifts.Get("/:id", s.GetShift)

	// Workplace routes
	workplaces := protected.Group("/workplaces")
	workplaces.Get("/", s.GetWorkplaces)
	workplaces.Post("/", s.CreateWorkplace)

	// Swap marketplace routes
	swaps := protected.Group("/swaps")
	swaps.Get("/", s.GetSwapPostings)
	swaps.Post("/", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_swap"), s.CreateSwapPosting)
	swaps.Get("/mine", s.GetMySwapPostings)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	swaps.Get("/:id/interests", s.GetSwapInterests)
	swaps.Post("/:id/interests", middleware.RateLimit(
		s.redis, 15, 5*time.Minute, "swap_interest"), s.CreateSwapInterest)
	swaps.Post("/:id/interests/:interestId/accept", s.AcceptSwapInterest)
	swaps.Post("/:id/interests/:interestId/reject", s.RejectSwapInterest)
	swaps.Post("/:id/cancel", s.CancelSwapPosting)
	swaps.Post("/:id/complete", s.CompleteSwapPosting)
	swaps.Get("/:id/matches", s.GetSwapMatches)
	swaps.Get("/:id", s.GetSwapPosting)

	// Notification routes
	notifs := protected.Group("/notifications")
	notifs.Get("/", s.GetNotifications)
	notifs.Get("/unread-count", s.GetUnreadNotificationCount)
	notifs.Post("/read-all", s.MarkAllNotificationsRead)
	notifs.Post("/:id/read", s.MarkNotificationRead)

	// Websocket endpoint - protected by AuthRequired (ticket or token)
	ws := api.Group("/ws", s.AuthRequired())
	ws.Get("/", s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
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

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis is considered required for full readiness in this app
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		isWSPath := strings.HasPrefix(path, "/api/ws")

		// 1. Try WebSocket ticket first (short-lived, single-use)
		ticket := c.Query("ticket")
		if ticket != "" {
			if userID, ok := s.redeemWSTicket(c.Context(), ticket); ok {
				c.Locals("userID", userID)
				c.Locals("wsTicket", ticket)
				ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
				c.SetUserContext(ctx)
				return c.Next()
			}
			// If ticket was provided but invalid/expired, fail on WS paths
			if isWSPath {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewNotAuthenticatedError("Invalid or expired WebSocket ticket"))
			}
		}

		// 2. Fall back to JWT (Bearer token or query param)
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// Reject token in query param for WS routes (must use ticket)
		if tokenString == "" && !isWSPath {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewNotAuthenticatedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewNotAuthenticatedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewNotAuthenticatedError("Invalid token claims"))
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "aurelo-api" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewNotAuthenticatedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "aurelo-client" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewNotAuthenticatedError("Invalid token audience"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewNotAuthenticatedError("Invalid subject claim"))
		}

		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewNotAuthenticatedError("Invalid user ID in token"))
		}

		// Check JTI for revocation
		if jti, exists := claims["jti"].(string); exists && jti != "" {
			if s.redis != nil {
				isBlacklisted, err := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
				if err == nil && isBlacklisted > 0 {
					return models.RespondWithError(c, fiber.StatusUnauthorized,
						models.NewNotAuthenticatedError("Token has been revoked"))
				}
			}
		}

		c.Locals("userID", uint(userID))
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// redeemWSTicket resolves a ticket to a user ID. The first hit consumes the
// ticket from Redis atomically (GETDEL); the result is cached in-process
// because the websocket upgrade traverses the middleware more than once.
func (s *Server) redeemWSTicket(ctx context.Context, ticket string) (uint, bool) {
	s.consumedTicketsMu.Lock()
	if entry, ok := s.consumedTickets[ticket]; ok {
		s.consumedTicketsMu.Unlock()
		if time.Since(entry.consumeAt) <= consumedTicketGrace {
			return entry.userID, true
		}
		s.consumeWSTicket(ctx, ticket)
		return 0, false
	}
	s.consumedTicketsMu.Unlock()

	if s.redis == nil {
		return 0, false
	}
	userIDStr, err := s.redis.GetDel(ctx, "ws_ticket:"+ticket).Result()
	if err != nil {
		return 0, false
	}
	userID, err := strconv.ParseUint(userIDStr, 10, 32)
	if err != nil {
		return 0, false
	}

	s.consumedTicketsMu.Lock()
	s.consumedTickets[ticket] = consumedTicketEntry{userID: uint(userID), consumeAt: time.Now()}
	s.consumedTicketsMu.Unlock()
	return uint(userID), true
}

// consumeWSTicket drops a ticket from the in-process cache. The value comes
// from fiber locals, hence the loose type.
func (s *Server) consumeWSTicket(_ context.Context, ticketVal any) {
	ticket, ok := ticketVal.(string)
	if !ok || ticket == "" {
		return
	}
	s.consumedTicketsMu.Lock()
	delete(s.consumedTickets, ticket)
	s.consumedTicketsMu.Unlock()
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Aurelo API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	// Wire the hub to the Redis subscriber if available
	if s.notifier != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				log.Printf("failed to start %s wiring: %v", s.hub.Name(), err)
			}
		}()
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			log.Printf("error shutting down %s: %v", s.hub.Name(), err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}

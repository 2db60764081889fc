package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"macrame-store/internal/config"
	custommiddleware "macrame-store/internal/middleware"
	"macrame-store/internal/notification"
	"macrame-store/internal/repository"
	"macrame-store/internal/service"
	"macrame-store/internal/storage"
	"macrame-store/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client, uploader *storage.LocalUploader) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.Env == "development"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 300,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit",
	}, logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Uploaded product images are served as static files.
	router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploader.Dir()))))

	// Initialize repositories
	profileRepo := repository.NewProfileRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	resetTokenRepo := repository.NewResetTokenRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	colorRepo := repository.NewColorRepository(db)
	sizeRepo := repository.NewSizeRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	contactRepo := repository.NewContactRepository(db)

	// Outbound boundaries
	mailer := notification.NewHTTPMailer(cfg.Mail.Endpoint, cfg.Mail.APIKey, cfg.Mail.From)
	formRelay := notification.NewFormRelay(cfg.Mail.RelayEndpoint)

	// Initialize services
	userService := service.NewUserService(profileRepo, refreshTokenRepo, resetTokenRepo, mailer, cfg.JWT.Secret, logger)
	catalogService := service.NewCatalogService(productRepo, categoryRepo, colorRepo, sizeRepo)
	cartService := service.NewCartService(cartRepo, redisClient, cfg.Cart.KeyPrefix, cfg.Cart.AnonTTL, logger)
	orderService := service.NewOrderService(orderRepo, mailer, logger)
	contactService := service.NewContactService(contactRepo, mailer, formRelay, cfg.Mail.ContactTo, logger)

	// Initialize handlers
	userHandler := transport.NewUserHandler(userService, logger)
	productHandler := transport.NewProductHandler(catalogService, uploader, logger)
	attributeHandler := transport.NewAttributeHandler(catalogService, logger)
	cartHandler := transport.NewCartHandler(cartService, catalogService, logger)
	orderHandler := transport.NewOrderHandler(orderService, cartService, userService, logger)
	contactHandler := transport.NewContactHandler(contactService, logger)

	// Create auth middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	optionalAuthMiddleware := custommiddleware.OptionalAuthMiddleware(cfg.JWT.Secret, logger)
	adminMiddleware := custommiddleware.RequireAdmin(logger)
	masterAdminMiddleware := custommiddleware.RequireMasterAdmin(logger)

	// Register routes
	userHandler.RegisterRoutes(router, authMiddleware, masterAdminMiddleware)
	productHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	attributeHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	cartHandler.RegisterRoutes(router, optionalAuthMiddleware, authMiddleware)
	orderHandler.RegisterRoutes(router, authMiddleware)
	contactHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}

package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"user-management-service/internal/config"
	"user-management-service/internal/events"
	httphandler "user-management-service/internal/handler/http"
	wshandler "user-management-service/internal/handler/ws"
	"user-management-service/internal/repository"
	"user-management-service/internal/router"
	"user-management-service/internal/usecase"
	"user-management-service/pkg/email"
	"user-management-service/pkg/notifier"
	"user-management-service/pkg/notifier/ws"
)

// Server owns the process-wide resources: the HTTP listener, the db
// pool and the event bus worker.
type Server struct {
	http   *http.Server
	pool   *pgxpool.Pool
	bus    *events.Bus
	hub    *ws.Hub
	logger *zap.Logger
}

func NewServer(cfg config.AppConfig) *Server {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	dbpool, err := config.ConnectDB()
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	// --- Repos ---
	userRepo := repository.NewUserRepository(dbpool)
	passwordRepo := repository.NewPasswordChangeRepository(dbpool, logger)
	notificationRepo := repository.NewNotificationRepository(dbpool)
	emailLogRepo := repository.NewEmailLogRepository(dbpool)

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})

	// --- Email ---
	var sender email.Sender
	switch cfg.EmailProvider {
	case "sendgrid":
		sender = email.NewSendGridSender(cfg.SendGridKey, cfg.EmailFromName, cfg.EmailFrom)
	case "smtp":
		sender = email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom)
	default:
		logger.Warn("email delivery disabled", zap.String("provider", cfg.EmailProvider))
	}

	// --- WS hub ---
	hub := ws.NewHub(logger)
	go hub.Heartbeat(30 * time.Second)
	wsHandler := wshandler.NewWSHandler(hub, logger)

	// --- Dispatcher + event bus ---
	dispatcher := notifier.New(notificationRepo, emailLogRepo, userRepo, sender, hub, cfg.AdminEmail, logger)
	bus := events.NewBus(dispatcher, cfg.EventBufferSize, logger)

	// --- Credential handling ---
	var verifier usecase.CredentialVerifier = usecase.PlaintextVerifier{}
	if cfg.PasswordHashing == "bcrypt" {
		verifier = usecase.BcryptVerifier{}
	}

	// --- Usecases ---
	userUC := usecase.NewUserUsecase(userRepo, verifier, bus, logger)
	passwordUC := usecase.NewPasswordChangeUsecase(userRepo, passwordRepo, verifier, bus, logger)
	notificationUC := usecase.NewNotificationUsecase(notificationRepo, emailLogRepo, userRepo, dispatcher, bus)

	// --- Handlers ---
	userHandler := httphandler.NewUserHandler(userUC, passwordUC)
	notificationHandler := httphandler.NewNotificationHandler(notificationUC)

	// --- Routes ---
	r := chi.NewRouter()
	router.SetupRoutes(r, userHandler, notificationHandler, wsHandler, rdb)

	return &Server{
		http: &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: r,
		},
		pool:   dbpool,
		bus:    bus,
		hub:    hub,
		logger: logger,
	}
}

func (s *Server) ListenAndServe() error {
	return s.http.ListenAndServe()
}

// Shutdown stops accepting requests, then drains the event bus so
// queued notifications still go out, then releases the hub and the pool.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	s.bus.Close()
	s.hub.Close()
	s.pool.Close()
	_ = s.logger.Sync()
	return err
}

package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/majlis/internal/app/controllers"
	"github.com/yigit/majlis/internal/app/models"
	appRoutes "github.com/yigit/majlis/internal/app/routes"
	"github.com/yigit/majlis/internal/app/scheduler"
	"github.com/yigit/majlis/internal/app/store"
	"github.com/yigit/majlis/internal/config"
	"github.com/yigit/majlis/internal/i18n"
	appMiddleware "github.com/yigit/majlis/internal/middleware"
	pkgAuth "github.com/yigit/majlis/internal/pkg/auth"
	"github.com/yigit/majlis/internal/pkg/email"
	"github.com/yigit/majlis/internal/pkg/filestorage"
	"github.com/yigit/majlis/internal/pkg/genai"
	"github.com/yigit/majlis/internal/pkg/logger"
	"github.com/yigit/majlis/internal/pkg/metrics"
	"github.com/yigit/majlis/internal/pkg/websocket"
	"github.com/yigit/majlis/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store          *store.Store
	Translator     *i18n.Translator
	JWTService     *pkgAuth.JWTService
	Mailer         *email.ResetMailer
	Hub            *websocket.Hub
	Scheduler      *scheduler.RecapScheduler
	Sweeper        *scheduler.SessionSweeper
	GenAI          *genai.Client
	FileStorage    *filestorage.LocalStorage
	Metrics        *metrics.Metrics // nil when disabled
	AuthMiddleware *appMiddleware.AuthMiddleware
	Handlers       appRoutes.Handlers
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	lgr := logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  isPretty(cfg.Logging.Format),
		Service: "majlis",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

func isPretty(format string) bool {
	switch strings.ToLower(format) {
	case "text", "console", "pretty":
		return true
	}
	return false
}

// BuildDependencies initializes the store and everything that serves it.
func BuildDependencies(cfg *config.Config, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	translator, err := i18n.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}
	deps.Translator = translator

	opts := store.DefaultOptions()
	opts.MaxLoginAttempts = cfg.Auth.MaxLoginAttempts
	opts.LockoutDuration = cfg.Auth.LockoutDuration
	opts.ResetTokenTTL = cfg.Auth.ResetTokenTTL
	opts.ToastTTL = cfg.Toast.TTL
	opts.SessionTTL = cfg.JWT.AccessTokenExpiration
	opts.RecapWindow = cfg.Recap.Window
	opts.RecapMinRatings = cfg.Recap.MinRatings
	opts.RecapTopN = cfg.Recap.TopN

	hasher := pkgAuth.NewHasher(cfg.Auth.BcryptCost)
	deps.Store = store.New(opts, hasher, translator, logger.Component("store"))

	if cfg.Seed.Enabled {
		if err := seed.Load(deps.Store, hasher, deps.Store.Now()); err != nil {
			return nil, fmt.Errorf("failed to seed store: %w", err)
		}
	}

	deps.Mailer = email.NewResetMailer(email.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		BaseURL:  cfg.Mail.AppBaseURL,
	}, logger.Component("mailer"))
	deps.Store.SetResetNotifier(deps.Mailer)

	deps.Hub = websocket.NewHub(logger.Component("websocket"))
	deps.Store.SetToastNotifier(deps.Hub)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.JWT.AccessTokenExpiration,
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Store)

	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Upload.StoragePath, cfg.Upload.BaseURL, logger.Component("filestorage"))
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.GenAI = genai.NewClient(genai.Config{
		APIKey:        cfg.GenAI.APIKey,
		Model:         cfg.GenAI.Model,
		BaseURL:       cfg.GenAI.BaseURL,
		Timeout:       cfg.GenAI.Timeout,
		MaxTextLength: cfg.GenAI.MaxTextLength,
	}, nil, lgr)
	if !deps.GenAI.Configured() {
		lgr.Warn().Msg("GEMINI_API_KEY is not set, question generation and chat will fail")
	}

	var (
		signIns     appControllers.SignInObserver
		generations appControllers.GenerationObserver
		onRecap     func(bool, time.Duration)
	)
	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.New(cfg.Metrics.Namespace)
		deps.Metrics.TrackSessions(cfg.Metrics.Namespace, deps.Store.ClientCount)
		signIns = deps.Metrics
		generations = deps.Metrics
		onRecap = deps.Metrics.ObserveRecap
	}

	deps.Scheduler = scheduler.NewRecapScheduler(deps.Store, scheduler.Options{
		Interval:   cfg.Recap.Interval,
		RunOnStart: true,
		Now:        deps.Store.Now,
		OnRun:      onRecap,
	}, logger.Component("recap"))

	deps.Sweeper = scheduler.NewSessionSweeper(deps.Store, scheduler.SweepOptions{
		Interval: cfg.Auth.SessionSweepInterval,
		Now:      deps.Store.Now,
	}, logger.Component("sessions"))

	signupRoles := make([]models.RoleType, 0, len(cfg.Auth.SignupRoles))
	for _, role := range cfg.Auth.SignupRoles {
		signupRoles = append(signupRoles, models.RoleType(strings.ToUpper(role)))
	}
	production := strings.ToLower(cfg.Server.Mode) == "production"

	deps.Handlers = appRoutes.Handlers{
		Auth: appControllers.NewAuthController(deps.Store, deps.JWTService, appControllers.AuthControllerOptions{
			SignupRoles:      signupRoles,
			ExposeResetToken: !production && !cfg.MailConfigured(),
		}, signIns, logger.Component("auth")),
		User: appControllers.NewUserController(deps.FileStorage, appControllers.UploadLimits{
			MaxAvatarBytes: cfg.Upload.MaxAvatarBytes,
			MaxCVBytes:     cfg.Upload.MaxPDFBytes,
		}, logger.Component("users")),
		Post:     appControllers.NewPostController(deps.Store, logger.Component("posts")),
		Feedback: appControllers.NewFeedbackController(deps.Store, logger.Component("feedback")),
		Admin:    appControllers.NewAdminController(deps.Scheduler, logger.Component("admin")),
		MCQ: appControllers.NewMCQController(deps.GenAI, deps.GenAI, translator, generations, appControllers.MCQLimits{
			MaxPDFBytes:  cfg.Upload.MaxPDFBytes,
			MaxQuestions: cfg.Upload.MaxMCQCount,
		}, logger.Component("mcq")),
		System: appControllers.NewSystemController(deps.Store, translator),
		WebSocket: websocket.NewHandler(deps.Hub, appMiddleware.SessionIDFrom,
			cfg.Server.AllowedOrigins, logger.Component("websocket")),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(logger.Component("http")))
	router.Use(appMiddleware.CORS(cfg.Server.AllowedOrigins))

	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	appRoutes.SetupRouter(router, deps.Handlers, deps.AuthMiddleware)
	setupStaticFileServing(router, cfg, lgr)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}

// setupStaticFileServing serves uploaded avatars and CVs
func setupStaticFileServing(router *gin.Engine, cfg *config.Config, lgr zerolog.Logger) {
	uploadPath := cfg.Upload.StoragePath
	if _, err := os.Stat(uploadPath); os.IsNotExist(err) {
		if err := os.MkdirAll(uploadPath, 0o755); err != nil {
			lgr.Error().Err(err).Str("path", uploadPath).Msg("Failed to create uploads directory")
			return
		}
	}

	urlPath := cfg.Upload.BaseURL
	if urlPath == "" || strings.Contains(urlPath, "://") {
		urlPath = "/uploads"
	}
	router.Static(urlPath, uploadPath)
	lgr.Info().Str("path", uploadPath).Str("url", urlPath).Msg("Static file serving configured for uploads directory")
}

// StartBackground launches the websocket hub, the session sweeper and, when
// enabled, the recap scheduler.
func (d *Dependencies) StartBackground(ctx context.Context, cfg *config.Config) {
	go d.Hub.Run(ctx)
	d.Sweeper.Start(ctx)
	if cfg.Recap.Enabled {
		d.Scheduler.Start(ctx)
	}
}

// StopBackground stops the periodic jobs; the hub stops with its context.
func (d *Dependencies) StopBackground() {
	d.Scheduler.Stop()
	d.Sweeper.Stop()
}

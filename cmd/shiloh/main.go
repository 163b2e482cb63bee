// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/cache"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/config"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/geoip"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/handler"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/handler/api"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/logging"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/mailer"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/middleware"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/notify"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/render"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/scheduler"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/service"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/session"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/store"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/version"
	"github.com/shilointercessionmountain-org/shilohwebsite/web"
)

// crudHandlers defines the standard CRUD handler methods.
type crudHandlers struct {
	List     http.HandlerFunc
	NewForm  http.HandlerFunc
	Create   http.HandlerFunc
	EditForm http.HandlerFunc
	Update   http.HandlerFunc
	Delete   http.HandlerFunc
}

// registerCRUD registers standard CRUD routes for a resource.
func registerCRUD(r chi.Router, base string, h crudHandlers) {
	baseID := base + handler.RouteParamID
	r.Get(base, h.List)
	r.Get(base+handler.RouteSuffixNew, h.NewForm)
	r.Post(base, h.Create)
	r.Get(baseID, h.EditForm)
	r.Post(baseID, h.Update)
	r.Post(baseID+"/delete", h.Delete)
}

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Shiloh Intercession Mountain website\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SHILOH_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SHILOH_DB_PATH           SQLite database path (default: ./data/shiloh.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SHILOH_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SHILOH_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SHILOH_UPLOADS_DIR       Uploaded media directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SHILOH_REDIS_URL         Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SHILOH_SMTP_HOST         SMTP host for contact notifications (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SHILOH_GEOIP_DB_PATH     GeoLite2-Country.mmdb path (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("shiloh %s\n", version.Get())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	slog.Info("starting up", "version", version.Get().String())

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the audit log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewAuditLogHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	// Session manager: cookies are session-scoped unless the user asks
	// to be remembered at login.
	sessionLifetime := time.Duration(cfg.SessionLifetimeHours) * time.Hour
	sessionManager := session.New(db, sessionLifetime, cfg.IsDevelopment())
	slog.Info("session manager initialized", "lifetime", sessionLifetime)

	// Cache backend: Redis when configured, in-process memory otherwise.
	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	backend := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cacheTTL,
		MaxSize:    cfg.CacheMaxSize,
	})
	cacheManager := cache.NewManager(backend)
	defer func() {
		if err := cacheManager.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	if cfg.UseRedisCache() {
		slog.Info("cache initialized", "backend", "redis", "ttl", cacheTTL)
	} else {
		slog.Info("cache initialized", "backend", "memory", "ttl", cacheTTL)
	}

	// Event hub distributes change notifications to SSE subscribers and
	// the cache invalidator.
	hub := notify.NewHub()
	hub.Start()
	defer hub.Stop()

	invalidator := notify.NewInvalidator(hub, cacheManager)
	invalidator.Start()
	defer invalidator.Stop()

	// Template renderer
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	// Services
	accounts := service.NewAccountService(db, cfg.UploadsDir)
	media := service.NewMediaService(db, cfg.UploadsDir)
	audit := service.NewAuditService(db)

	// Outbound mail is optional; handlers skip notifications when nil.
	var mail mailer.Sender
	if m := mailer.New(*cfg); m != nil {
		mail = m
		slog.Info("mailer initialized", "host", cfg.SMTPHost, "inbox", cfg.ContactInbox)
	}

	// GeoIP country lookup for contact submissions (optional)
	geo := geoip.NewResolver()
	if cfg.GeoIPEnabled() {
		if err := geo.Open(cfg.GeoIPDBPath); err != nil {
			slog.Warn("geoip database unavailable", "path", cfg.GeoIPDBPath, "error", err)
		} else {
			slog.Info("geoip enabled", "path", cfg.GeoIPDBPath)
		}
	}
	defer func() {
		if err := geo.Close(); err != nil {
			slog.Error("error closing geoip database", "error", err)
		}
	}()

	// Background maintenance jobs
	sched := scheduler.New(db, audit, cacheManager, cfg.AuditRetentionDays, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Create router
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.StripTrailingSlash)

	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	r.Use(middleware.SecurityHeaders(securityConfig))

	// CSRF protection; the JSON API carries no session credentials and
	// is exempted below.
	csrfConfig := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())
	csrfMiddleware := middleware.CSRF(csrfConfig)

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	publicRateLimiter := middleware.NewGlobalRateLimiter(10.0, 20)

	// Request timeout for everything except the SSE stream, which is
	// long-lived and manages its own write deadlines.
	requestTimeout := middleware.Timeout(30 * time.Second)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(db, accounts, audit, renderer, sessionManager,
		loginProtection, hub, mail)
	frontendHandler := handler.NewFrontendHandler(db, audit, renderer, cacheManager, geo,
		mail, hub, cacheTTL)
	dashboardHandler := handler.NewDashboardHandler(db, renderer)
	requestsHandler := handler.NewRequestsHandler(db, accounts, audit, renderer, hub)
	usersHandler := handler.NewUsersHandler(db, accounts, audit, renderer)
	profileHandler := handler.NewProfileHandler(db, accounts, media, audit, renderer, sessionManager)
	eventsHandler := handler.NewEventsHandler(db, media, audit, renderer, hub)
	videosHandler := handler.NewVideosHandler(db, audit, renderer, hub)
	galleryHandler := handler.NewGalleryHandler(db, media, audit, renderer, hub)
	serviceTimesHandler := handler.NewServiceTimesHandler(db, audit, renderer, hub)
	contactHandler := handler.NewContactHandler(db, audit, renderer)
	settingsHandler := handler.NewSettingsHandler(db, audit, renderer, hub)
	auditHandler := handler.NewAuditHandler(db, renderer)
	streamHandler := handler.NewStreamHandler(hub)
	healthHandler := handler.NewHealthHandler(db, cacheManager, cfg.UploadsDir, version.Get().Version)
	contentAPI := api.NewContentHandler(db)

	// Health checks (public; moderators get expanded detail)
	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(middleware.OptionalLoadUser(sessionManager, db))
		r.Use(requestTimeout)

		r.Get("/health", healthHandler.Health)
		r.Get("/health/live", healthHandler.Liveness)
		r.Get("/health/ready", healthHandler.Readiness)
	})

	// Public site
	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(middleware.OptionalLoadUser(sessionManager, db))
		r.Use(csrfMiddleware)
		r.Use(requestTimeout)

		r.Get(handler.RouteRoot, frontendHandler.Home)
		r.Get(handler.RouteEvents, frontendHandler.Events)
		r.Get(handler.RouteEvents+handler.RouteParamSlug, frontendHandler.Event)
		r.Get(handler.RouteVideos, frontendHandler.Videos)
		r.Get(handler.RouteGallery, frontendHandler.Gallery)
		r.Get(handler.RouteGallery+handler.RouteParamSlug, frontendHandler.Album)
		r.Get(handler.RouteContact, frontendHandler.ContactForm)
		r.With(publicRateLimiter.HTMLMiddleware()).Post(handler.RouteContact, frontendHandler.ContactSubmit)
	})

	// Auth routes: rate limited, with per-account lockout on login posts
	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(csrfMiddleware)
		r.Use(publicRateLimiter.HTMLMiddleware())
		r.Use(requestTimeout)

		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post(handler.RouteLogin, authHandler.Login)
		r.Get(handler.RouteSignup, authHandler.SignupForm)
		r.Post(handler.RouteSignup, authHandler.Signup)
		r.Post(handler.RouteLogout, authHandler.Logout)
	})

	// Admin area: moderators manage content, admins additionally manage
	// users, requests, settings, and the audit log.
	r.Route("/admin", func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(middleware.Auth(sessionManager))
		r.Use(middleware.LoadUser(sessionManager, db))
		r.Use(csrfMiddleware)

		// Every signed-in account manages its own profile.
		r.Group(func(r chi.Router) {
			r.Use(requestTimeout)

			r.Get(handler.RouteProfile, profileHandler.Show)
			r.Post(handler.RouteProfile, profileHandler.Update)
			r.Post(handler.RouteProfile+"/avatar", profileHandler.UploadAvatar)
			r.Post(handler.RouteProfile+"/avatar/delete", profileHandler.RemoveAvatar)
			r.Post(handler.RouteProfile+"/password", profileHandler.ChangePassword)
			r.Post(handler.RouteProfile+"/delete", profileHandler.DeleteAccount)
		})

		// The SSE stream is long-lived, so it skips the request timeout.
		r.With(middleware.RequireModeratorWithAudit(audit)).
			Get(handler.RouteStream, streamHandler.Serve)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireModeratorWithAudit(audit))
			r.Use(requestTimeout)

			r.Get(handler.RouteRoot, dashboardHandler.Show)

			registerCRUD(r, handler.RouteEvents, crudHandlers{
				List: eventsHandler.List, NewForm: eventsHandler.NewForm, Create: eventsHandler.Create,
				EditForm: eventsHandler.EditForm, Update: eventsHandler.Update, Delete: eventsHandler.Delete,
			})
			registerCRUD(r, handler.RouteVideos, crudHandlers{
				List: videosHandler.List, NewForm: videosHandler.NewForm, Create: videosHandler.Create,
				EditForm: videosHandler.EditForm, Update: videosHandler.Update, Delete: videosHandler.Delete,
			})
			registerCRUD(r, handler.RouteGallery, crudHandlers{
				List: galleryHandler.List, NewForm: galleryHandler.NewForm, Create: galleryHandler.Create,
				EditForm: galleryHandler.Show, Update: galleryHandler.Update, Delete: galleryHandler.Delete,
			})
			galleryID := handler.RouteGallery + handler.RouteParamID
			r.Post(galleryID+"/images", galleryHandler.UploadImage)
			r.Post(galleryID+"/images/{imageID}", galleryHandler.UpdateImage)
			r.Post(galleryID+"/images/{imageID}/delete", galleryHandler.DeleteImage)

			r.Get(handler.RouteServiceTimes, serviceTimesHandler.List)
			r.Post(handler.RouteServiceTimes, serviceTimesHandler.Create)
			r.Post(handler.RouteServiceTimes+handler.RouteParamID, serviceTimesHandler.Update)
			r.Post(handler.RouteServiceTimes+handler.RouteParamID+"/delete", serviceTimesHandler.Delete)

			r.Get(handler.RouteContact, contactHandler.List)
			r.Get(handler.RouteContact+handler.RouteParamID, contactHandler.Show)
			r.Post(handler.RouteContact+handler.RouteParamID+"/delete", contactHandler.Delete)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdminWithAudit(audit))
			r.Use(requestTimeout)

			r.Get(handler.RouteRequests, requestsHandler.List)
			r.Post(handler.RouteRequests+handler.RouteParamID+"/approve", requestsHandler.Approve)
			r.Post(handler.RouteRequests+handler.RouteParamID+"/reject", requestsHandler.Reject)

			r.Get(handler.RouteUsers, usersHandler.List)
			r.Post(handler.RouteUsers+handler.RouteParamID+"/role", usersHandler.ChangeRole)
			r.Post(handler.RouteUsers+handler.RouteParamID+"/delete", usersHandler.Delete)

			r.Get(handler.RouteSettings, settingsHandler.Show)
			r.Post(handler.RouteSettings, settingsHandler.Update)

			r.Get(handler.RouteAudit, auditHandler.List)
		})
	})

	// Read-only JSON API
	r.Route("/api/v1", func(r chi.Router) {
		apiRateLimiter := middleware.NewGlobalRateLimiter(100, 200)
		r.Use(apiRateLimiter.Middleware())
		r.Use(requestTimeout)

		r.Get(handler.RouteEvents, contentAPI.Events)
		r.Get(handler.RouteEvents+handler.RouteParamSlug, contentAPI.Event)
		r.Get(handler.RouteVideos, contentAPI.Videos)
		r.Get(handler.RouteGallery, contentAPI.Albums)
		r.Get(handler.RouteGallery+handler.RouteParamSlug+"/images", contentAPI.AlbumImages)
		r.Get(handler.RouteServiceTimes, contentAPI.ServiceTimes)
		r.Get("/church-info", contentAPI.ChurchInfo)
	})

	// Static assets (embedded) and uploaded media
	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	staticHandler := middleware.StaticCache(31536000)(
		http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	r.Handle("/static/*", staticHandler)

	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}
	uploadsHandler := middleware.StaticCache(604800)(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	r.Handle("/uploads/*", uploadsHandler)

	// 404 handler renders the site not-found page
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		sessionManager.LoadAndSave(
			middleware.OptionalLoadUser(sessionManager, db)(
				http.HandlerFunc(frontendHandler.NotFound))).ServeHTTP(w, req)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

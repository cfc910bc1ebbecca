package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orelvisrguez/assistravel/config"
	"github.com/orelvisrguez/assistravel/db"
	"github.com/orelvisrguez/assistravel/handlers"
	"github.com/orelvisrguez/assistravel/middleware"
	"github.com/orelvisrguez/assistravel/models"
	"github.com/orelvisrguez/assistravel/services"
	"github.com/orelvisrguez/assistravel/services/authz"
	"github.com/orelvisrguez/assistravel/services/i18n"
	"github.com/orelvisrguez/assistravel/services/jobs"
	"github.com/orelvisrguez/assistravel/services/session"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := i18n.Load(); err != nil {
		log.Fatalf("Failed to load translations: %v", err)
	}
	i18n.SetDefaultLanguage(cfg.DefaultLanguage)

	services.InitializeStorage(cfg)
	middleware.InitAssetVersions()

	handlers.Auth = services.NewAuthClient(db.DB, cfg)
	handlers.Sessions = session.NewManager(handlers.Auth)
	defer handlers.Sessions.Close()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         hstsMaxAge(cfg),
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})
	e.Use(middleware.Locale(cfg))
	e.Use(middleware.CSPNonce())
	e.Use(echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   cfg.IsProduction(),
		CookieSameSite: http.SameSiteLaxMode,
	}))
	e.Use(middleware.LoadSession(handlers.Sessions))
	e.Use(middleware.AuditContext())
	e.Use(middleware.ViewContext())

	// Static files
	e.Static("/static", "static")

	// Public routes
	public := e.Group("/auth")
	public.Use(middleware.RedirectIfAuthenticated(handlers.HomeAfterSignIn))
	{
		public.GET("", handlers.AuthPageHandler)
		public.POST("/signin", handlers.SignInHandler, middleware.LoginRateLimiter.Middleware())
		public.POST("/signup", handlers.SignUpHandler, middleware.SignupRateLimiter.Middleware())
	}
	e.GET("/auth/confirm", handlers.ConfirmEmailHandler)

	// Private routes
	private := e.Group("")
	private.Use(middleware.RequireAuth())
	{
		private.GET("/", func(c echo.Context) error {
			return c.Redirect(http.StatusSeeOther, handlers.HomeAfterSignIn)
		})
		private.POST("/logout", handlers.LogoutHandler)
		private.GET("/api/me", handlers.CurrentUserHandler, middleware.APIRateLimiter.Middleware())

		anyRole := middleware.RequirePermission(authz.Requirement{})
		canEdit := middleware.RequirePermission(middleware.RequireEditor)
		canDelete := middleware.RequirePermission(middleware.RequireDelete)

		private.GET("/corresponsales", handlers.CorresponsalesHandler, anyRole)
		private.GET("/corresponsales/new", handlers.NewCorresponsalHandler, canEdit)
		private.POST("/corresponsales", handlers.CreateCorresponsalHandler, canEdit)
		private.GET("/corresponsales/:id", handlers.CorresponsalDetailHandler, anyRole)
		private.GET("/corresponsales/:id/edit", handlers.EditCorresponsalHandler, canEdit)
		private.POST("/corresponsales/:id", handlers.UpdateCorresponsalHandler, canEdit)
		private.DELETE("/corresponsales/:id", handlers.DeleteCorresponsalHandler, canDelete)

		private.GET("/casos", handlers.CasosHandler, anyRole)
		private.GET("/casos/export", handlers.ExportCasosHandler, anyRole)
		private.GET("/casos/new", handlers.NewCasoHandler, canEdit)
		private.POST("/casos", handlers.CreateCasoHandler, canEdit)
		private.GET("/casos/:id", handlers.CasoDetailHandler, anyRole)
		private.GET("/casos/:id/pdf", handlers.CasoPDFHandler, anyRole)
		private.GET("/casos/:id/edit", handlers.EditCasoHandler, canEdit)
		private.POST("/casos/:id", handlers.UpdateCasoHandler, canEdit)
		private.POST("/casos/:id/duplicate", handlers.DuplicateCasoHandler, canEdit)
		private.DELETE("/casos/:id", handlers.DeleteCasoHandler, canDelete)

		private.GET("/import", handlers.ImportPageHandler, canEdit)
		private.GET("/import/template", handlers.ImportTemplateHandler, canEdit)
		private.POST("/import", handlers.ImportUploadHandler, canEdit)

		// Admin only
		admin := private.Group("/usuarios", middleware.RequirePermission(middleware.RequireAdmin))
		{
			admin.GET("", handlers.UsuariosHandler)
			admin.POST("/:id/role", handlers.SetRoleHandler)
		}
	}

	// Background cleanup of sessions, unconfirmed accounts and idle stores
	scheduler := jobs.StartScheduler(handlers.Auth, handlers.Sessions)
	if _, err := scheduler.AddFunc("@every 10m", func() { services.Monitor.Prune() }); err != nil {
		log.Printf("[CRON] Failed to schedule sign-in monitor pruning: %v", err)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s (env: %s)", cfg.ServerPort, cfg.Environment)
		serverErr <- e.Start(":" + cfg.ServerPort)
	}()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	case sig := <-shutdown:
		log.Printf("Received %v, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		<-scheduler.Stop().Done()
		if err := e.Shutdown(ctx); err != nil {
			log.Printf("Graceful shutdown failed: %v", err)
		}
		services.WaitForAuditWrites()
	}
}

func hstsMaxAge(cfg *config.Config) int {
	if cfg.IsProduction() {
		return 31536000
	}
	return 0
}

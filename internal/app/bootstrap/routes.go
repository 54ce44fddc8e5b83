// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	authgooglefeature "github.com/dalemusser/billtrack/internal/app/features/authgoogle"
	billsfeature "github.com/dalemusser/billtrack/internal/app/features/bills"
	categoriesfeature "github.com/dalemusser/billtrack/internal/app/features/categories"
	dashboardfeature "github.com/dalemusser/billtrack/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/billtrack/internal/app/features/errors"
	healthfeature "github.com/dalemusser/billtrack/internal/app/features/health"
	hearingsfeature "github.com/dalemusser/billtrack/internal/app/features/hearings"
	homefeature "github.com/dalemusser/billtrack/internal/app/features/home"
	loginfeature "github.com/dalemusser/billtrack/internal/app/features/login"
	logoutfeature "github.com/dalemusser/billtrack/internal/app/features/logout"
	sessionsfeature "github.com/dalemusser/billtrack/internal/app/features/sessions"
	settingsfeature "github.com/dalemusser/billtrack/internal/app/features/settings"
	signupfeature "github.com/dalemusser/billtrack/internal/app/features/signup"
	auditstore "github.com/dalemusser/billtrack/internal/app/store/audit"
	userstore "github.com/dalemusser/billtrack/internal/app/store/users"
	"github.com/dalemusser/billtrack/internal/app/system/auditlog"
	"github.com/dalemusser/billtrack/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// BillTrack initializes the template engine, applies session and CSRF
// middleware, and mounts feature routers: public pages, authentication,
// the dashboard, session management, and the session-scoped bill,
// category, and hearing routers nested under /sessions/{sessionID}.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.BillTrackMongoDatabase

	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data on
	// each request. Role changes, disabled accounts, and profile updates take
	// effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Document storage backend for bill uploads.
	store, err := buildStorage(appCfg, logger)
	if err != nil {
		logger.Error("storage init failed", zap.Error(err))
		return nil, err
	}

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	// Audit logging for auth and admin events.
	audit := auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	googleEnabled := appCfg.GoogleClientID != ""
	users := userstore.New(db)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// CSRF protection for all form posts.
	r.Use(csrf.Protect([]byte(appCfg.CSRFKey), csrf.Secure(secure), csrf.Path("/")))

	// Error pages. NotFound is registered before any mounts so chi copies it
	// into every subrouter mounted below.
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)
	r.NotFound(errorsHandler.NotFound)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.BillTrackMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))
	r.Get("/about", homeHandler.ServeAbout)
	r.Get("/terms", homeHandler.ServeTerms)

	// Authentication
	loginHandler := loginfeature.NewHandler(users, sessionMgr, errLog, audit, googleEnabled, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	signupHandler := signupfeature.NewHandler(users, sessionMgr, errLog, audit, logger)
	r.Mount("/signup", signupfeature.Routes(signupHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, audit, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	if googleEnabled {
		googleHandler := authgooglefeature.NewHandler(users, sessionMgr, errLog, audit,
			appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, appCfg.SessionKey, logger)
		r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
	}

	// Dashboard
	dashboardHandler := dashboardfeature.NewHandler(db, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	// Account settings
	settingsHandler := settingsfeature.NewHandler(db, errLog, logger)
	r.Mount("/settings", settingsfeature.Routes(settingsHandler, sessionMgr))

	// Session management with the session-scoped routers nested inside.
	categoriesHandler := categoriesfeature.NewHandler(db, errLog, audit, logger)
	billsHandler := billsfeature.NewHandler(db, store, errLog, audit, logger)
	hearingsHandler := hearingsfeature.NewHandler(db, errLog, audit, logger)

	sessionsHandler := sessionsfeature.NewHandler(db, errLog, audit, logger)
	r.Mount("/sessions", sessionsfeature.Routes(sessionsHandler, sessionMgr,
		categoriesfeature.Routes(categoriesHandler, sessionMgr),
		billsfeature.Routes(billsHandler, sessionMgr),
		hearingsfeature.Routes(hearingsHandler, sessionMgr)))

	return r, nil
}

// buildStorage creates the document storage backend from config.
func buildStorage(appCfg AppConfig, logger *zap.Logger) (storage.Store, error) {
	switch appCfg.StorageType {
	case "s3":
		logger.Info("using S3 document storage",
			zap.String("bucket", appCfg.StorageS3Bucket),
			zap.String("region", appCfg.StorageS3Region))
		return storage.NewS3(context.Background(), storage.S3Config{
			Region: appCfg.StorageS3Region,
			Bucket: appCfg.StorageS3Bucket,
			Prefix: appCfg.StorageS3Prefix,
		})
	default:
		logger.Info("using local document storage",
			zap.String("path", appCfg.StorageLocalPath))
		local, err := storage.NewLocal(storage.LocalConfig{
			BasePath: appCfg.StorageLocalPath,
			BaseURL:  appCfg.StorageLocalURL,
		})
		if err != nil {
			return nil, err
		}
		return local, nil
	}
}

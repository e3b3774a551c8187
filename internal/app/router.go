// Package app assembles the HTTP server from its modules.
package app

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"daisy/internal/audit"
	"daisy/internal/config"
	"daisy/internal/media"
	"daisy/internal/middleware"
	"daisy/internal/modules/auth"
	"daisy/internal/modules/catalog"
	"daisy/internal/modules/profile"
	"daisy/internal/modules/project"
	jwtsvc "daisy/internal/pkg/jwt"
	"daisy/internal/repository"
)

// NewRouter wires repositories, services and handlers onto a gin engine.
func NewRouter(cfg *config.Config, db *gorm.DB, log *zap.Logger) (*gin.Engine, error) {
	if err := os.MkdirAll(cfg.MediaRoot, 0o755); err != nil {
		return nil, err
	}

	store := media.NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
	files := media.NewLifecycle(store, log.Named("media"))
	rec := audit.NewRecorder(db, log.Named("audit"))
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	profileRepo := repository.NewProfileImageRepository(db)

	authHandler := auth.NewHandler(auth.NewService(userRepo, j))
	catalogHandler := catalog.NewHandler(catalog.NewService(catalogRepo, files, rec))
	projectHandler := project.NewHandler(
		project.NewService(projectRepo, catalogRepo, userRepo, files, rec),
		cfg.PageSize,
	)
	profileHandler := profile.NewHandler(profile.NewService(profileRepo, files, rec))
	auditHandler := audit.NewHandler(rec, cfg.PageSize)

	csrf := middleware.CSRFOptions{Enabled: cfg.CSRFEnabled, Secure: cfg.CookieSecure}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg.CORSOrigins, cfg.IsProd()))
	// a full http(s) MEDIA_URL means files are served elsewhere
	if strings.HasPrefix(cfg.MediaURL, "/") {
		r.Static(cfg.MediaURL, cfg.MediaRoot)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.GET("/auth/csrf", middleware.CSRFToken(csrf))

		public := v1.Group("")
		public.Use(middleware.OptionalAuth(j), middleware.CSRF(csrf))
		authHandler.RegisterPublicRoutes(public)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(j), middleware.CSRF(csrf))
		authHandler.RegisterProtectedRoutes(protected)
		projectHandler.RegisterRoutes(public, protected)
		profileHandler.RegisterRoutes(protected)

		staff := v1.Group("")
		staff.Use(middleware.JWTAuth(j), middleware.AdminOnly(), middleware.CSRF(csrf))
		catalogHandler.RegisterRoutes(public, staff)
		auditHandler.RegisterRoutes(staff.Group("/admin"))
	}

	return r, nil
}

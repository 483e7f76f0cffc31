package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/authz"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/config"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/linkage"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/middleware"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/repository"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/service"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/storage"
)

type HandlerSet struct {
	log            zerolog.Logger
	cfg            *config.AppConfig
	authService    *service.AuthService
	visitService   *service.VisitService
	officerService *service.OfficerService
	accountService *service.AccountService
	photos         *storage.PhotoStore
	cache          *redis.Client
	accounts       *repository.AccountRepository
	officers       *repository.OfficerRepository
	visits         *repository.VisitRepository
	sessions       *repository.SessionRepository
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, photos *storage.PhotoStore, cfg *config.AppConfig) HandlerSet {
	accountRepo := repository.NewAccountRepository(db)
	officerRepo := repository.NewOfficerRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	linkageManager := linkage.NewManager(accountRepo, officerRepo, log)

	return HandlerSet{
		log:            log,
		cfg:            cfg,
		authService:    service.NewAuthService(accountRepo, officerRepo, sessionRepo, cfg, log),
		visitService:   service.NewVisitService(visitRepo, officerRepo, cache, log),
		officerService: service.NewOfficerService(officerRepo, accountRepo, linkageManager, log),
		accountService: service.NewAccountService(accountRepo, officerRepo, log),
		photos:         photos,
		cache:          cache,
		accounts:       accountRepo,
		officers:       officerRepo,
		visits:         visitRepo,
		sessions:       sessionRepo,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", h.RegisterAccount)
	auth.POST("/login", h.Login)
	auth.POST("/officer-login", h.OfficerLogin)
	auth.POST("/refresh", h.Refresh)

	authed := v1.Group("")
	authed.Use(middleware.Auth(h.cfg, h.accounts, h.officers, h.sessions))

	authed.POST("/auth/logout", h.Logout)
	authed.GET("/auth/me", h.Me)

	visits := authed.Group("/visits")
	visits.GET("", middleware.Require(canSeeVisits), h.ListVisits)
	visits.GET("/export", middleware.Require(canSeeVisits), h.ExportVisits)
	visits.GET("/check-phone", middleware.Require(func(p authz.Permissions) bool { return p.CanCreateVisitor }), h.CheckPhone)
	visits.POST("", middleware.Require(func(p authz.Permissions) bool { return p.CanCreateVisitor }), h.CreateVisit)
	visits.POST("/photos", middleware.Require(func(p authz.Permissions) bool { return p.CanCreateVisitor }), h.UploadVisitPhoto)
	visits.GET("/:id/photo", middleware.Require(canSeeVisits), h.VisitPhoto)

	officers := authed.Group("/officers")
	officers.GET("", h.ListOfficers)
	officers.GET("/:id", h.GetOfficer)

	manage := authed.Group("/officers")
	manage.Use(middleware.Require(func(p authz.Permissions) bool { return p.CanManageOfficers }))
	manage.POST("", h.CreateOfficer)
	manage.PUT("/:id", h.UpdateOfficer)
	manage.PATCH("/:id/status", h.SetOfficerStatus)
	manage.PATCH("/:id/admin-role", h.SetOfficerAdminRole)
	manage.DELETE("/:id", h.DeleteOfficer)

	accounts := authed.Group("/accounts")
	accounts.Use(middleware.Require(func(p authz.Permissions) bool { return p.CanManageOfficers }))
	accounts.GET("", h.ListAccounts)
	accounts.GET("/:id", h.GetAccount)
	accounts.PUT("/:id", h.UpdateAccount)
	accounts.PATCH("/:id/status", h.SetAccountStatus)
	accounts.PATCH("/:id/password", h.ChangeAccountPassword)
	accounts.DELETE("/:id", h.DeleteAccount)

	authed.GET("/stats/visits", middleware.Require(canSeeVisits), h.VisitStats)
}

func canSeeVisits(p authz.Permissions) bool {
	return p.CanViewAllVisitors || p.CanViewOwnVisitorsOnly
}

package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/salesdesk/crm-api/internal/api/handler"
	"github.com/salesdesk/crm-api/internal/api/middleware"
	"github.com/salesdesk/crm-api/internal/auth"
	"github.com/salesdesk/crm-api/internal/core/domain"
	"github.com/salesdesk/crm-api/internal/core/service"
	"github.com/salesdesk/crm-api/internal/infrastructure/db/postgres"
	"github.com/salesdesk/crm-api/internal/infrastructure/db/redis"
	"github.com/salesdesk/crm-api/internal/pkg/config"
)

// NewRouter builds the Echo instance with all routes registered. rdb may be
// nil; token revocation is then disabled and previously issued tokens stay
// valid after a password change until they expire.
func NewRouter(db *gorm.DB, rdb *goredis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("crm"))

	// --- Dependencies ---
	usersRepo := postgres.NewUsersRepository(db)
	clientsRepo := postgres.NewClientsRepository(db)
	dealsRepo := postgres.NewDealsRepository(db)
	tasksRepo := postgres.NewTasksRepository(db)

	var revoker auth.Revoker
	if rdb != nil {
		revoker = redis.NewRevocationStore(rdb)
	}
	tokens := auth.NewTokenService(cfg.JWTSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute, revoker)

	authService := service.NewAuthService(usersRepo, tokens, log)
	usersService := service.NewUsersService(usersRepo, log)
	clientsService := service.NewClientsService(clientsRepo, usersRepo, log)
	dealsService := service.NewDealsService(dealsRepo, clientsRepo, log)
	tasksService := service.NewTasksService(tasksRepo, usersRepo, log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(usersService)
	clientHandler := handler.NewClientHandler(clientsService)
	dealHandler := handler.NewDealHandler(dealsService)
	taskHandler := handler.NewTaskHandler(tasksService)
	healthHandler := handler.NewHealthHandler(db, rdb)

	authn := middleware.Authenticate(tokens, usersRepo)
	adminOnly := middleware.RequireRoles(domain.RoleAdmin)
	managerUp := middleware.RequireRoles(domain.RoleManager, domain.RoleAdmin)

	// --- Auth ---
	e.POST("/auth/login", authHandler.Login)
	e.PATCH("/auth/change-password", authHandler.ChangePassword)

	// --- Users ---
	users := e.Group("/users", authn)
	users.GET("/me", userHandler.Me)
	users.GET("/get-all-users", userHandler.List, adminOnly)
	users.POST("/add", userHandler.Create, adminOnly)
	users.PUT("/update", userHandler.Update, adminOnly)
	users.DELETE("/delete", userHandler.Delete, adminOnly)

	// --- Clients ---
	clients := e.Group("/clients", authn, managerUp)
	clients.GET("/get", clientHandler.List)
	clients.GET("/get/unassigned_clients", clientHandler.ListUnassigned)
	clients.POST("/add", clientHandler.Create)
	clients.PUT("/update", clientHandler.Update)
	clients.PATCH("/patch/take", clientHandler.Take)
	clients.PATCH("/patch/delegate", clientHandler.Delegate, adminOnly)
	clients.PATCH("/patch/discharge", clientHandler.Discharge, adminOnly)
	clients.DELETE("/delete", clientHandler.Delete, adminOnly)

	// --- Deals ---
	deals := e.Group("/deals", authn, managerUp)
	deals.GET("/get-all", dealHandler.List)
	deals.GET("/get-by-date", dealHandler.ListByDate)
	deals.POST("/add", dealHandler.Create)
	deals.PUT("/update", dealHandler.Update)
	deals.PATCH("/patch/set_status", dealHandler.SetStatus)
	deals.PATCH("/patch/set-close-date", dealHandler.SetCloseDate)
	deals.DELETE("/delete", dealHandler.Delete, adminOnly)
	deals.DELETE("/delete-by-client", dealHandler.DeleteByClient, adminOnly)

	// --- Tasks ---
	tasks := e.Group("/tasks", authn)
	tasks.GET("/get", taskHandler.List)
	tasks.PATCH("/patch/take", taskHandler.Take)
	tasks.POST("/add", taskHandler.Create, managerUp)
	tasks.PUT("/update", taskHandler.Update, managerUp)
	tasks.DELETE("/delete", taskHandler.Delete, adminOnly)
	tasks.DELETE("/delete/done", taskHandler.DeleteDone, adminOnly)
	tasks.DELETE("/delete/expired", taskHandler.DeleteExpired, adminOnly)

	// --- Health probes and metrics (no auth required) ---
	e.GET("/health", healthHandler.Live)
	e.GET("/health/ready", healthHandler.Ready)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}

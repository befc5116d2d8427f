package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lazypos/admin-api/internal"
	"github.com/lazypos/admin-api/internal/auth"
	authPostgres "github.com/lazypos/admin-api/internal/auth/postgres"
	"github.com/lazypos/admin-api/internal/authz"
	authzPostgres "github.com/lazypos/admin-api/internal/authz/postgres"
	"github.com/lazypos/admin-api/internal/cache"
	cachePostgres "github.com/lazypos/admin-api/internal/cache/postgres"
	"github.com/lazypos/admin-api/internal/core/events"
	"github.com/lazypos/admin-api/internal/department"
	departmentPostgres "github.com/lazypos/admin-api/internal/department/postgres"
	"github.com/lazypos/admin-api/internal/membership"
	membershipPostgres "github.com/lazypos/admin-api/internal/membership/postgres"
	"github.com/lazypos/admin-api/internal/notification"
	notificationPostgres "github.com/lazypos/admin-api/internal/notification/postgres"
	"github.com/lazypos/admin-api/internal/permission"
	permissionPostgres "github.com/lazypos/admin-api/internal/permission/postgres"
	"github.com/lazypos/admin-api/internal/role"
	rolePostgres "github.com/lazypos/admin-api/internal/role/postgres"
	"github.com/lazypos/admin-api/internal/team"
	teamPostgres "github.com/lazypos/admin-api/internal/team/postgres"
	"github.com/lazypos/admin-api/internal/transport"
	"github.com/lazypos/admin-api/internal/transport/rest"
	"github.com/lazypos/admin-api/internal/user"
	userPostgres "github.com/lazypos/admin-api/internal/user/postgres"
	"github.com/lazypos/admin-api/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Env)
	log := logger.LoggerWrapper()

	if err := validateOpenAPISpec(config.Server.OpenAPIPath); err != nil {
		return nil, fmt.Errorf("failed to validate OpenAPI document: %w", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm over pgx: %w", err)
	}

	router := chi.NewRouter()
	baseHandler := transport.NewBaseHandler(log)
	eventBus := events.NewEventBus(log)

	store := cache.NewStore(cachePostgres.NewSnapshotLoader(gormDB), log)
	resolver := authz.NewResolver(authzPostgres.NewGrantRepository(gormDB), store, config.Authz, log)

	notificationService := notification.NewService(notificationPostgres.NewNotificationRepository(gormDB), log)
	notificationService.RegisterHandlers(eventBus)
	dispatcher := notification.NewDispatcher(eventBus, log)

	tokenGenerator := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewAuthRepository(gormDB), tokenGenerator, eventBus, config.Security.BCryptCost, log)

	roleMembers := membership.NewManager(membershipPostgres.NewRoleMemberRepository(gormDB), dispatcher, log)
	teamMembers := membership.NewManager(membershipPostgres.NewTeamMemberRepository(gormDB), dispatcher, log)
	departmentMembers := membership.NewManager(membershipPostgres.NewDepartmentMemberRepository(gormDB), dispatcher, log)

	roleService := role.NewService(rolePostgres.NewRoleRepository(gormDB), roleMembers, resolver, store, log)
	teamService := team.NewService(teamPostgres.NewTeamRepository(gormDB), teamMembers, store, log)
	departmentService := department.NewService(departmentPostgres.NewDepartmentRepository(gormDB), departmentMembers, store, log)
	userService := user.NewService(userPostgres.NewUserRepository(gormDB), resolver, store, dispatcher, config.Security.BCryptCost, log)
	permissionService := permission.NewService(permissionPostgres.NewPermissionRepository(gormDB), store, log)

	handlers := rest.Handlers{
		Auth:         auth.NewHandler(baseHandler, authService),
		User:         user.NewHandler(baseHandler, userService),
		Role:         role.NewHandler(baseHandler, roleService),
		Team:         team.NewHandler(baseHandler, teamService),
		Department:   department.NewHandler(baseHandler, departmentService),
		Permission:   permission.NewHandler(baseHandler, permissionService, resolver),
		Notification: notification.NewHandler(baseHandler, notificationService),
		Utility:      rest.NewUtilityHandler(baseHandler, store, eventBus),
	}

	rest.RegisterAllRoutes(router, db.DB, handlers, authService, resolver, log)

	return &Dependencies{
		Config: config,
		DB:     db,
		Router: router,
		Logger: log,
	}, nil
}

// validateOpenAPISpec refuses to boot when the published contract is broken.
func validateOpenAPISpec(path string) error {
	if path == "" {
		path = "api/openapi.yml"
	}
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return err
	}
	return doc.Validate(loader.Context)
}

func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

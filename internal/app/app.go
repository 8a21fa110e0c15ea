package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"taskManager/internal/auth"
	"taskManager/internal/config"
	"taskManager/internal/handlers"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/repository/inmemory"
	"taskManager/internal/repository/postgres"
	"taskManager/internal/repository/sqlite"
	"taskManager/internal/service"
	"taskManager/internal/tracing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const serviceName = "task-manager"

// Store is what every backend provides: tasks and users in one place.
type Store interface {
	service.TaskRepository
	service.UserRepository
	Close()
}

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	store     Store
	shutdowns []func() // run in reverse order on shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development, a.config.Logging.Level); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: flushing logs")
		logger.Sync()
	})

	tc := a.config.Tracing
	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:     tc.Enabled,
		Endpoint:    tc.Endpoint,
		SampleRatio: tc.SampleRatio,
	}, serviceName)
	if err != nil {
		a.Shutdown()
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("App: failed to flush spans", err)
		}
	})

	store, err := a.openStore(ctx)
	if err != nil {
		a.Shutdown()
		return nil, err
	}
	a.store = store
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: closing storage", zap.String("type", a.config.Repository.Type))
		store.Close()
	})

	tokens, err := auth.NewTokenManager(a.config.Auth.JWTSecret, a.config.Auth.TokenTTL, a.config.Auth.Issuer)
	if err != nil {
		a.Shutdown()
		return nil, fmt.Errorf("init token manager: %w", err)
	}
	hasher := auth.NewPasswordHasher(auth.DefaultArgon2Params())

	userService := service.NewUserService(store, hasher, tokens)
	taskService := service.NewTaskService(store)

	a.router = a.newRouter(
		handlers.NewAuthHandler(userService),
		handlers.NewTaskHandler(taskService),
		userService,
	)

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      otelhttp.NewHandler(a.router, serviceName),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	logger.Info("App: initialized",
		zap.String("repository", a.config.Repository.Type),
		zap.String("addr", a.server.Addr))
	return a, nil
}

func (a *App) openStore(ctx context.Context) (Store, error) {
	switch a.config.Repository.Type {
	case config.RepositoryPostgres:
		db := a.config.Database
		storage, err := postgres.New(ctx, db.URL, postgres.Options{
			MaxConns:    db.MaxConnections,
			MinConns:    db.MinConnections,
			MaxConnIdle: db.IdleTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := storage.Migrate(ctx); err != nil {
			storage.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return storage, nil
	case config.RepositorySQLite:
		storage, err := sqlite.Open(ctx, a.config.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return storage, nil
	case config.RepositoryInMemory:
		return inmemory.NewStorage(), nil
	default:
		return nil, fmt.Errorf("unknown repository type %q", a.config.Repository.Type)
	}
}

func (a *App) newRouter(authHandler *handlers.AuthHandler, taskHandler *handlers.TaskHandler, authenticator middleware.Authenticator) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(a.config.Server.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.config.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", taskHandler.HealthCheck)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.SignUp) // POST /auth/signup
		r.Post("/signin", authHandler.SignIn) // POST /auth/signin
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(middleware.Authenticate(authenticator))

		r.Get("/", taskHandler.GetTasks)  // GET /tasks?search=&status=
		r.Post("/", taskHandler.PostTask) // POST /tasks

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", taskHandler.GetTaskByID)              // GET /tasks/{id}
			r.Patch("/status", taskHandler.UpdateTaskStatus) // PATCH /tasks/{id}/status
			r.Delete("/", taskHandler.DeleteTaskByID)        // DELETE /tasks/{id}
		})
	})

	return r
}

// Handler exposes the router, mostly for tests.
func (a *App) Handler() http.Handler {
	return a.router
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	defer a.Shutdown()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("App: server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("App: shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.config.Server.ShutdownTimeout)
		defer cancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}

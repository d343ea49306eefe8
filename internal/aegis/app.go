// Package aegis wires the authorization server: policy storage,
// enforcer, role cache, watcher, and the HTTP API on top of them.
package aegis

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/aegis/internal/aegis/biz"
	"github.com/kart-io/aegis/internal/aegis/handler"
	"github.com/kart-io/aegis/internal/aegis/router"
	"github.com/kart-io/aegis/internal/aegis/store"
	"github.com/kart-io/aegis/pkg/app"
	"github.com/kart-io/aegis/pkg/authz"
	"github.com/kart-io/aegis/pkg/authz/guard"
	"github.com/kart-io/aegis/pkg/authz/rbac"
	"github.com/kart-io/aegis/pkg/authz/rolecache"
	"github.com/kart-io/aegis/pkg/authz/store/gormstore"
	"github.com/kart-io/aegis/pkg/authz/watcher"
	"github.com/kart-io/aegis/pkg/component/db"
	"github.com/kart-io/aegis/pkg/component/redis"
	"github.com/kart-io/aegis/pkg/security/auth/jwt"
)

const (
	appName = "aegis"

	appDescription = `Aegis Authorization Server

Multi-tenant RBAC policy service. Policies persist in SQL through a
Casbin adapter, replicate across instances over Redis pub/sub, and are
enforced per request with a fail-closed role cache.`
)

// NewApp creates the aegis application.
func NewApp() *app.App {
	opts := NewOptions()
	return app.NewApp(
		app.WithName(appName),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithRunFunc(func() error {
			return Run(opts)
		}),
	)
}

// Run assembles and runs the server with the given options.
func Run(opts *Options) error {
	if err := opts.Log.Init(appName); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Flush() }()

	logger.Infow("Starting Aegis server", "addr", opts.Server.Addr, "db_driver", opts.DB.Driver)

	ctx := setupSignalContext()

	// Database and policy repository.
	gormDB, err := db.New(opts.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	repo, err := gormstore.NewRepository(gormDB)
	if err != nil {
		return fmt.Errorf("failed to initialize policy repository: %w", err)
	}
	logger.Info("Policy repository initialized")

	// Redis backs the role cache and the policy update channel.
	redisClient, err := redis.New(ctx, opts.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()
	roleCache := rolecache.NewRedisCache(redisClient, opts.Authz.CacheKeyPrefix)

	adapter := authz.NewAdapter(repo, authz.WithOperationTimeout(opts.Authz.OperationTimeout))

	cfg := &authz.EnforcerConfig{
		ModelPath: opts.Authz.ModelPath,
		Adapter:   adapter,
	}
	if opts.Authz.WatcherEnabled {
		w, err := watcher.NewRedisWatcher(redisClient)
		if err != nil {
			return fmt.Errorf("failed to initialize policy watcher: %w", err)
		}
		defer w.Close()
		cfg.Watcher = w
	}

	enforcer, err := authz.NewEnforcer(cfg)
	if err != nil {
		return err
	}
	logger.Info("Policy engine initialized")

	rbacSvc := rbac.NewService(enforcer, rbac.WithRoleCache(roleCache))
	g := guard.New(enforcer, roleCache)

	// Control-plane storage.
	factory := store.NewFactory(gormDB)
	if err := factory.AutoMigrate(); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	tokens := jwt.NewManager(opts.JWT.Key, opts.JWT.Issuer, opts.JWT.Expired)

	authBiz := biz.NewAuthService(tokens, factory, rbacSvc, roleCache)
	policyBiz := biz.NewPolicyService(rbacSvc)
	domainBiz := biz.NewDomainService(factory, rbacSvc)

	handlers := &router.Handlers{
		Auth:   handler.NewAuthHandler(authBiz),
		Policy: handler.NewPolicyHandler(policyBiz),
		Role:   handler.NewRoleHandler(policyBiz),
		Domain: handler.NewDomainHandler(domainBiz),
	}

	gin.SetMode(opts.Server.Mode)
	engine := router.New(tokens, g, handlers)

	return serve(ctx, opts, engine)
}

// serve runs the HTTP server until the context is cancelled, then shuts
// down gracefully.
func serve(ctx context.Context, opts *Options, engine *gin.Engine) error {
	srv := &http.Server{
		Addr:         opts.Server.Addr,
		Handler:      engine,
		ReadTimeout:  opts.Server.ReadTimeout,
		WriteTimeout: opts.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening", "addr", opts.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// setupSignalContext returns a context that is cancelled on SIGINT or
// SIGTERM. A second signal exits immediately.
func setupSignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}

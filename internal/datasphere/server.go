// Package datasphere wires the DataSphere API server together.
package datasphere

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/logger"
	"github.com/kart-io/datasphere/internal/datasphere/biz"
	"github.com/kart-io/datasphere/internal/datasphere/cache"
	"github.com/kart-io/datasphere/internal/datasphere/router"
	"github.com/kart-io/datasphere/internal/datasphere/store"
	"github.com/kart-io/datasphere/pkg/component/database"
	"github.com/kart-io/datasphere/pkg/component/redis"
	"github.com/kart-io/datasphere/pkg/component/storage"
	"github.com/kart-io/datasphere/pkg/infra/app"
	"github.com/kart-io/datasphere/pkg/infra/pool"
	"github.com/kart-io/datasphere/pkg/infra/server"
	dbopts "github.com/kart-io/datasphere/pkg/options/database"
	logopts "github.com/kart-io/datasphere/pkg/options/logger"
	redisopts "github.com/kart-io/datasphere/pkg/options/redis"
	httpopts "github.com/kart-io/datasphere/pkg/options/server/http"
	"github.com/kart-io/datasphere/pkg/security/auth/identity"
	"github.com/kart-io/datasphere/pkg/security/authz"
)

// Name is the name of the application.
const Name = "datasphere"

// Storage client names registered with the storage manager.
const (
	storageDatabase = "database"
	storageRedis    = "redis"
)

// Config contains application-related configurations.
type Config struct {
	HTTPOptions     *httpopts.Options
	LogOptions      *logopts.Options
	IdentityOptions *identity.Options
	AuthzOptions    *authz.Options
	DatabaseOptions *dbopts.Options
	RedisOptions    *redisopts.Options
	PoolOptions     *pool.Config
	ShutdownTimeout time.Duration
}

// Server represents the DataSphere server.
type Server struct {
	srv      *server.Manager
	storages *storage.Manager
	pool     *pool.Pool
	// drain bounds how long in-flight stats tasks may run after shutdown.
	drain time.Duration
}

// NewServer initializes and returns a new Server instance.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	printBanner()

	// 1. 初始化日志
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Infow("Starting datasphere service...", "version", app.GetVersion())

	storages := storage.NewManager()
	s := &Server{storages: storages, drain: cfg.ShutdownTimeout}

	srv, err := cfg.build(ctx, s)
	if err != nil {
		s.cleanup()
		return nil, err
	}
	s.srv = srv

	logger.Info("DataSphere service is ready")
	return s, nil
}

func (cfg *Config) build(ctx context.Context, s *Server) (*server.Manager, error) {
	// 2. 初始化数据库
	dbClient, err := database.New(ctx, cfg.DatabaseOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := s.storages.Register(storageDatabase, dbClient); err != nil {
		_ = dbClient.Close()
		return nil, err
	}

	// 3. 初始化 Store 层
	storeFactory := store.NewStore(dbClient.DB())
	if cfg.DatabaseOptions.AutoMigrate {
		if err := storeFactory.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// 4. 初始化缓存（Redis 可选）
	leaderboardCache := cache.NewNoop()
	if cfg.RedisOptions.Enabled {
		redisClient, err := redis.New(ctx, cfg.RedisOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		if err := s.storages.Register(storageRedis, redisClient); err != nil {
			_ = redisClient.Close()
			return nil, err
		}
		leaderboardCache = cache.NewRedis(redisClient.Client())
		logger.Infow("Leaderboard cache enabled", "addr", cfg.RedisOptions.Addr(), "ttl", cfg.RedisOptions.CacheTTL.String())
	}

	// 5. 初始化授权策略与身份校验
	policy, err := authz.NewPolicyFromOptions(cfg.AuthzOptions, dbClient.DB())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize authorization policy: %w", err)
	}
	authorizer := authz.New(storeFactory.Users(), policy)

	verifier, err := identity.NewJWTVerifier(cfg.IdentityOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize identity verifier: %w", err)
	}
	logger.Infow("Identity verification initialized", "signing_method", cfg.IdentityOptions.SigningMethod)

	// 6. 初始化 Biz 层
	s.pool, err = pool.NewPool("stats", cfg.PoolOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize worker pool: %w", err)
	}
	services := biz.New(storeFactory, authorizer, leaderboardCache, s.pool, cfg.RedisOptions.CacheTTL)
	logger.Info("Business layer initialized")

	// 7. 初始化服务器
	serverManager := server.NewManager(
		server.WithHTTPOptions(cfg.HTTPOptions),
		server.WithShutdownTimeout(cfg.ShutdownTimeout),
	)

	// 8. 注册路由
	if err := router.Register(serverManager, services, verifier, s.storages); err != nil {
		return nil, fmt.Errorf("failed to register routes: %w", err)
	}
	return serverManager, nil
}

// Run starts the server and blocks until ctx is done or a termination
// signal arrives. Storage connections are closed on return.
func (s *Server) Run(ctx context.Context) error {
	defer s.cleanup()
	return s.srv.Run(ctx)
}

func (s *Server) cleanup() {
	if s.pool != nil {
		if err := s.pool.ReleaseTimeout(s.drain); err != nil {
			logger.Warnw("Worker pool did not drain in time", "error", err.Error())
		}
	}
	if err := s.storages.CloseAll(); err != nil {
		logger.Warnw("Failed to close storage clients", "error", err.Error())
	}
	_ = logger.Flush()
}

func printBanner() {
	fmt.Printf("Starting %s...\n", Name)
}

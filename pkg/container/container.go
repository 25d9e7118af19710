package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"diary-backend/internal/config"
	infraCache "diary-backend/internal/infrastructure/cache"
	"diary-backend/internal/infrastructure/database"
	"diary-backend/pkg/cache"
	"diary-backend/pkg/jwt"

	diaryHandler "diary-backend/internal/domains/diary/handler"
	diaryRepo "diary-backend/internal/domains/diary/repository"
	diaryService "diary-backend/internal/domains/diary/service"
	exploreHandler "diary-backend/internal/domains/explore/handler"
	exploreService "diary-backend/internal/domains/explore/service"
	userHandler "diary-backend/internal/domains/user/handler"
	userRepo "diary-backend/internal/domains/user/repository"
	userService "diary-backend/internal/domains/user/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds every long-lived dependency of the API process.
// Initialization order: config, infrastructure, repositories, services, handlers.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================

	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache // Redis, or the in-process cache when Redis is unreachable
	JWTManager *jwt.Manager

	redis *infraCache.RedisClient
	local *cache.LocalCache

	// ========================================
	// REPOSITORY LAYER
	// ========================================

	UserRepo  userRepo.Repository
	DiaryRepo diaryRepo.Repository

	// ========================================
	// SERVICE LAYER
	// ========================================

	UserService    userService.ServiceInterface
	DiaryService   diaryService.ServiceInterface
	ExploreService exploreService.ServiceInterface

	// ========================================
	// HANDLER LAYER
	// ========================================

	UserHandler    *userHandler.UserHandler
	DiaryHandler   *diaryHandler.DiaryHandler
	ExploreHandler *exploreHandler.ExploreHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer builds the dependency graph from cfg.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	log.Info().Msg("[CONTAINER] initializing")

	c := &Container{Config: cfg}

	// ========================================
	// STEP 1: DATABASE
	// ========================================
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.Connect(connectCtx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			c.Cleanup()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// ========================================
	// STEP 2: CACHE
	// ========================================
	if err := c.initCache(ctx); err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to init cache: %w", err)
	}

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL())

	// ========================================
	// STEP 3: REPOSITORIES, SERVICES, HANDLERS
	// ========================================
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Msg("[CONTAINER] initialized")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

// initCache prefers Redis. A down Redis is not fatal: the user cache and
// the token denylist fall back to a per-process cache.
func (c *Container) initCache(ctx context.Context) error {
	cfg := c.Config.Redis
	if cfg.Host != "" {
		rc := infraCache.NewRedisClient(cfg.Host, cfg.Password, cfg.DB)
		err := rc.Connect(ctx)
		if err == nil {
			c.redis = rc
			c.Cache = rc
			return nil
		}
		log.Warn().Err(err).Msg("[CACHE] redis unavailable, using in-process cache")
		_ = rc.Close()
	}

	local, err := cache.NewLocalCache()
	if err != nil {
		return err
	}
	c.local = local
	c.Cache = local
	return nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool, c.Cache)
	c.DiaryRepo = diaryRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	c.UserService = userService.NewUserService(c.UserRepo, c.JWTManager, c.Cache)
	c.DiaryService = diaryService.NewDiaryService(c.DiaryRepo)

	// Cross-domain: explore reads through the other two services
	c.ExploreService = exploreService.NewExploreService(c.UserService, c.DiaryService)
}

func (c *Container) initHandlers() {
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.DiaryHandler = diaryHandler.NewDiaryHandler(c.DiaryService)
	c.ExploreHandler = exploreHandler.NewExploreHandler(c.ExploreService)
}

// ========================================
// HELPER METHODS
// ========================================

// PoolStats is nil when the database is not connected.
func (c *Container) PoolStats() *database.PoolStats {
	if c.DB == nil {
		return nil
	}
	stats, err := c.DB.Stats()
	if err != nil {
		return nil
	}
	return stats
}

// Cleanup releases connections. Called once on shutdown.
func (c *Container) Cleanup() {
	log.Info().Msg("[CONTAINER] cleaning up")

	if c.DB != nil {
		_ = c.DB.Close()
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("[CACHE] failed to close redis")
		}
	}
	if c.local != nil {
		c.local.Close()
	}
}

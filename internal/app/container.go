package app

import (
	"context"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/checkout"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/config"
	httpx "github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/http"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/http/handlers"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/http/middleware"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/infrastructure/apiclient"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/infrastructure/auth"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/infrastructure/billing"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/infrastructure/cooldown"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/infrastructure/database"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/infrastructure/identity"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/infrastructure/predictor"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/infrastructure/tokenstore"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/metrics"
	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/internal/services"
)

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client
	Metrics     *metrics.Metrics

	// Storage
	Tokens    domain.TokenStore
	Cooldowns domain.CooldownStore

	// Gateways
	Identity  domain.IdentityGateway
	Payments  domain.PaymentGateway
	Predictor domain.PredictorGateway
	Bridge    *checkout.Bridge

	// Services
	Enforcer *casbin.Enforcer
	Session  domain.SessionController
	Access   domain.AccessController

	Router *gin.Engine
}

// NewContainer creates and initializes all dependencies
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	container := &Container{Config: cfg, Logger: logger, Metrics: metrics.New()}

	// Initialize storage
	if err := container.initStorage(ctx); err != nil {
		container.Close()
		return nil, err
	}

	// Initialize gateways
	container.initGateways()

	// Initialize services
	if err := container.initServices(); err != nil {
		container.Close()
		return nil, err
	}

	container.initRouter()
	return container, nil
}

func (c *Container) initStorage(ctx context.Context) error {
	switch c.Config.TokenStoreDriver {
	case config.DriverMemory:
		c.Tokens = tokenstore.NewMemoryStore()
		c.Cooldowns = cooldown.NewMemoryStore(nil)

	case config.DriverRedis:
		rdb := database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
		if err := rdb.Ping(ctx); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		c.RedisClient = rdb.Client
		// shells sharing a profile also share the resend window
		c.Tokens = tokenstore.NewRedisStore(rdb.Client, c.Config.Profile, c.Logger)
		c.Cooldowns = cooldown.NewRedisStore(rdb.Client, c.Config.Profile, c.Logger)

	case config.DriverSQLite, config.DriverPostgres:
		db, err := database.Open(c.Config.TokenStoreDriver, c.Config.TokenStoreDSN)
		if err != nil {
			return fmt.Errorf("failed to open profile database: %w", err)
		}
		c.DB = db
		if err := database.AutoMigrate(db, &tokenstore.ProfileEntry{}); err != nil {
			return err
		}
		c.Tokens = tokenstore.NewProfileStore(db, c.Config.Profile, c.Logger)
		c.Cooldowns = cooldown.NewMemoryStore(nil)

	default:
		return fmt.Errorf("unknown token store driver %q", c.Config.TokenStoreDriver)
	}
	return nil
}

func (c *Container) initGateways() {
	observer := apiclient.WithObserver(c.Metrics.ObserveCall)

	// identity and billing live behind the same API base URL
	api := apiclient.New(c.Config.APIBaseURL, c.Config.APITimeout, c.Tokens, c.Logger.Named("api"), observer)
	c.Identity = identity.NewGateway(api)
	c.Payments = billing.NewGateway(api)

	predictorURL := c.Config.PredictorURL
	if predictorURL == "" {
		predictorURL = c.Config.APIBaseURL
	}
	pc := apiclient.New(predictorURL, c.Config.PredictorTimeout, c.Tokens, c.Logger.Named("predictor"), observer)
	c.Predictor = predictor.NewGateway(pc)

	c.Bridge = checkout.NewBridge(c.Logger.Named("checkout"))
}

func (c *Container) initServices() error {
	enforcer, err := auth.NewRoleEnforcer()
	if err != nil {
		return fmt.Errorf("failed to build role enforcer: %w", err)
	}
	c.Enforcer = enforcer

	c.Session = services.NewSessionController(
		c.Tokens,
		c.Identity,
		c.Payments,
		c.Bridge,
		c.Cooldowns,
		auth.NewJWTInspector(),
		services.SessionConfig{
			ResendCooldown:  c.Config.ResendCooldown,
			DefaultAmount:   c.Config.DefaultAmount,
			CheckoutTimeout: c.Config.CheckoutTimeout,
		},
		c.Logger.Named("session"),
	)
	c.Session.Subscribe(c.Metrics.ObserveSession)

	c.Access = services.NewAccessController(c.Enforcer, c.Logger.Named("access"))
	return nil
}

func (c *Container) initRouter() {
	if c.Config.GinMode != "" {
		gin.SetMode(c.Config.GinMode)
	}
	guard := middleware.NewGuard(c.Session, c.Access, c.Logger.Named("guard"))
	c.Router = httpx.BuildRouter(httpx.Handlers{
		Session:   handlers.NewSessionHandlers(c.Session, c.Logger),
		Payment:   handlers.NewPaymentHandlers(c.Session, c.Bridge, c.Config.APITimeout*2, c.Logger),
		Predictor: handlers.NewPredictorHandlers(c.Predictor, c.Logger),
		Admin:     handlers.NewAdminHandlers(c.Session),
		Metrics:   c.Metrics.Handler(),
	}, guard, c.Logger.Named("http"))
}

// Close closes all connections
func (c *Container) Close() error {
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}

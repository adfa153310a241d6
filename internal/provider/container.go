package provider

import (
	"fmt"
	"time"

	"github.com/leafcart/internal/authz"
	"github.com/leafcart/internal/cache"
	"github.com/leafcart/internal/config"
	"github.com/leafcart/internal/logger"
	"github.com/leafcart/internal/metrics"
	"github.com/leafcart/internal/queue"
	"github.com/leafcart/internal/repository"
	"github.com/leafcart/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	QueueClient *queue.Client
	Metrics     *metrics.OrderMetrics

	// Repositories
	UserRepo      repository.UserRepository
	ProductRepo   repository.ProductRepository
	InventoryRepo repository.InventoryRepository
	PromoCodeRepo repository.PromoCodeRepository
	CartRepo      repository.CartRepository
	OrderRepo     repository.OrderRepository

	// Services
	AuthzService          *authz.Service
	InventoryService      *service.InventoryService
	PromoCodeService      *service.PromoCodeService
	PromoCodeAdminService *service.PromoCodeAdminService
	LoyaltyService        *service.LoyaltyService
	CartService           *service.CartService
	OrderService          *service.OrderService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config, db *gorm.DB) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}

	// 初始化缓存，失败时降级为无缓存模式
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	c := &Container{
		Config:      cfg,
		DB:          db,
		QueueClient: queueClient,
		Metrics:     metrics.Orders(),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initRepositories() {
	c.UserRepo = repository.NewUserRepository(c.DB)
	c.ProductRepo = repository.NewProductRepository(c.DB)
	c.InventoryRepo = repository.NewInventoryRepository(c.DB)
	c.PromoCodeRepo = repository.NewPromoCodeRepository(c.DB)
	c.CartRepo = repository.NewCartRepository(c.DB)
	c.OrderRepo = repository.NewOrderRepository(c.DB)
}

func (c *Container) initServices() error {
	authzService, err := authz.NewService(c.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		return err
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		return err
	}

	orderCfg := c.Config.Order
	pricing := service.PricingPolicyFromConfig(orderCfg, c.Config.Currency)

	c.InventoryService = service.NewInventoryService(c.DB, c.InventoryRepo, c.Metrics)
	c.PromoCodeService = service.NewPromoCodeService(c.DB, c.PromoCodeRepo)
	c.PromoCodeAdminService = service.NewPromoCodeAdminService(c.PromoCodeRepo)
	c.LoyaltyService = service.NewLoyaltyService(c.DB, c.UserRepo, c.Metrics)
	c.CartService = service.NewCartService(
		c.CartRepo,
		c.ProductRepo,
		pricing.SupportedCurrencies,
		time.Duration(orderCfg.CartCacheSeconds)*time.Second,
	)

	orderService, err := service.NewOrderService(service.OrderServiceDeps{
		DB:          c.DB,
		OrderRepo:   c.OrderRepo,
		ProductRepo: c.ProductRepo,
		Inventory:   c.InventoryService,
		PromoCodes:  c.PromoCodeService,
		Loyalty:     c.LoyaltyService,
		Cart:        c.CartService,
		QueueClient: c.QueueClient,
		Pricing:     pricing,
		OrderNoNode: orderCfg.OrderNoNode,
		LockTTL:     time.Duration(orderCfg.IdempotencyLockSecond) * time.Second,
		Metrics:     c.Metrics,
	})
	if err != nil {
		logger.Errorw("provider_init_order_service_failed", "error", err)
		return err
	}
	c.OrderService = orderService
	return nil
}

// Close 释放容器持有的外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}

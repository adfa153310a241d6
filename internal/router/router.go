package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leafcart/internal/authz"
	"github.com/leafcart/internal/cache"
	"github.com/leafcart/internal/config"
	adminhandlers "github.com/leafcart/internal/http/handlers/admin"
	publichandlers "github.com/leafcart/internal/http/handlers/public"
	"github.com/leafcart/internal/http/response"
	"github.com/leafcart/internal/logger"
	"github.com/leafcart/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按用户侧/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "lc"
	}
	orderRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:order", redisPrefix),
		WindowSeconds: cfg.Security.OrderRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.OrderRateLimit.MaxRequests,
		Message:       "too many order attempts, retry in %d seconds",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 用户接口（需要登录）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT))
		{
			user.GET("/cart", publicHandler.GetCart)
			user.POST("/cart/items", publicHandler.UpsertCartItem)
			user.DELETE("/cart/items/:product_id", publicHandler.DeleteCartItem)

			user.POST("/orders/preview", publicHandler.PreviewOrder)
			user.POST("/orders", RateLimitMiddleware(cache.Client(), orderRule, KeyByUser), publicHandler.CreateOrder)
			user.GET("/orders", publicHandler.ListOrders)
			user.GET("/orders/:id", publicHandler.GetOrder)
			user.GET("/orders/by-order-no/:order_no", publicHandler.GetOrderByOrderNo)

			user.POST("/promo-codes/validate", publicHandler.ValidatePromoCode)
			user.GET("/loyalty", publicHandler.GetLoyalty)
		}

		// 后台接口（令牌 + casbin 策略）
		admin := apiV1.Group("/admin")
		admin.Use(UserJWTAuthMiddleware(cfg.UserJWT), AdminRBACMiddleware(c.AuthzService))
		{
			admin.GET("/orders", adminHandler.AdminListOrders)
			admin.GET("/orders/:id", adminHandler.AdminGetOrder)
			admin.PATCH("/orders/:id/status", adminHandler.AdminUpdateOrderStatus)
			admin.PATCH("/orders/:id/payment-status", adminHandler.AdminUpdatePaymentStatus)

			admin.GET("/inventory", adminHandler.AdminListInventory)
			admin.GET("/inventory/low-stock", adminHandler.AdminListLowStock)
			admin.GET("/inventory/logs", adminHandler.AdminListInventoryLogs)
			admin.GET("/inventory/:product_id", adminHandler.AdminGetInventory)
			admin.POST("/inventory/:product_id/adjust", adminHandler.AdminAdjustInventory)
			admin.PUT("/inventory/:product_id/threshold", adminHandler.AdminUpdateThreshold)

			admin.GET("/promo-codes", adminHandler.AdminListPromoCodes)
			admin.POST("/promo-codes", adminHandler.AdminCreatePromoCode)
			admin.GET("/promo-codes/:id", adminHandler.AdminGetPromoCode)
			admin.PUT("/promo-codes/:id", adminHandler.AdminUpdatePromoCode)
			admin.DELETE("/promo-codes/:id", adminHandler.AdminDeletePromoCode)

			admin.GET("/authz/roles", adminHandler.AdminListRoles)
			admin.GET("/authz/staff/:user_id/roles", adminHandler.AdminGetStaffRoles)
			admin.PUT("/authz/staff/:user_id/roles", adminHandler.AdminSetStaffRoles)
			admin.GET("/authz/permissions", func(ctx *gin.Context) {
				response.Success(ctx, buildAdminPermissionCatalog(r))
			})
		}
	}

	// 健康检查
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	return segments[1]
}

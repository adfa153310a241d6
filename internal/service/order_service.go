package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leafcart/internal/cache"
	"github.com/leafcart/internal/constants"
	"github.com/leafcart/internal/logger"
	"github.com/leafcart/internal/metrics"
	"github.com/leafcart/internal/models"
	"github.com/leafcart/internal/queue"
	"github.com/leafcart/internal/repository"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	orderNoPrefix        = "LC"
	maxIdempotencyKeyLen = 120
	defaultLockTTL       = 30 * time.Second
	postCommitRetryDelay = 30 * time.Second
	orderEffectKeyPrefix = "order:"
)

// cartClearer 下单成功后清空购物车
type cartClearer interface {
	Clear(ctx context.Context, userID uint) error
}

// OrderService 订单组装服务
// 库存检查、折扣计算、订单写入与库存预留在同一事务内完成；
// 优惠码核销与积分入账在提交后执行，失败时投递补偿任务。
type OrderService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	inventory   *InventoryService
	promo       *PromoCodeService
	loyalty     *LoyaltyService
	cart        CartSnapshotProvider
	queueClient *queue.Client
	pricing     PricingPolicy
	orderNoNode *snowflake.Node
	lockTTL     time.Duration
	metrics     *metrics.OrderMetrics
	now         func() time.Time
}

// OrderServiceDeps 订单服务依赖
type OrderServiceDeps struct {
	DB          *gorm.DB
	OrderRepo   repository.OrderRepository
	ProductRepo repository.ProductRepository
	Inventory   *InventoryService
	PromoCodes  *PromoCodeService
	Loyalty     *LoyaltyService
	Cart        CartSnapshotProvider
	QueueClient *queue.Client
	Pricing     PricingPolicy
	OrderNoNode int64
	LockTTL     time.Duration
	Metrics     *metrics.OrderMetrics
}

// NewOrderService 创建订单服务
func NewOrderService(deps OrderServiceDeps) (*OrderService, error) {
	node, err := snowflake.NewNode(deps.OrderNoNode)
	if err != nil {
		return nil, fmt.Errorf("init order number generator: %w", err)
	}
	lockTTL := deps.LockTTL
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	pricing := deps.Pricing
	if pricing.BaseCurrency == "" {
		pricing = DefaultPricingPolicy()
	}
	return &OrderService{
		db:          deps.DB,
		orderRepo:   deps.OrderRepo,
		productRepo: deps.ProductRepo,
		inventory:   deps.Inventory,
		promo:       deps.PromoCodes,
		loyalty:     deps.Loyalty,
		cart:        deps.Cart,
		queueClient: deps.QueueClient,
		pricing:     pricing,
		orderNoNode: node,
		lockTTL:     lockTTL,
		metrics:     deps.Metrics,
		now:         time.Now,
	}, nil
}

// DeliveryDetails 收货信息
type DeliveryDetails struct {
	Method         string
	RecipientName  string
	RecipientPhone string
	Address        string
	City           string
	Comment        string
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	UserID         uint
	Lines          []CartLine
	Delivery       DeliveryDetails
	PromoCode      string
	Currency       string
	IdempotencyKey string
}

// CheckoutInput 购物车结算输入（订单行取自购物车快照）
type CheckoutInput struct {
	UserID         uint
	Delivery       DeliveryDetails
	PromoCode      string
	Currency       string
	IdempotencyKey string
}

// OrderPreview 订单金额预览
type OrderPreview struct {
	Currency       string             `json:"currency"`
	DeliveryMethod string             `json:"delivery_method"`
	PromoCode      string             `json:"promo_code,omitempty"`
	Subtotal       models.Money       `json:"subtotal"`
	DiscountAmount models.Money       `json:"discount_amount"`
	DeliveryFee    models.Money       `json:"delivery_fee"`
	Total          models.Money       `json:"total"`
	LoyaltyPoints  int64              `json:"loyalty_points"`
	Items          []models.OrderItem `json:"items"`
}

// orderQuote 事务内计价结果
type orderQuote struct {
	OrderPreview
	promo *models.PromoCode
}

// availabilityFunc 库存可用性检查（事务内加锁，预览不加锁）
type availabilityFunc func(productID uint, quantity int) (bool, error)

// CreateOrder 原子创建订单
// 相同 (用户, 幂等键) 的重复请求直接返回已创建的订单，不会重复预留库存。
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.UserID == 0 {
		return nil, ErrUserRequired
	}
	key, err := normalizeIdempotencyKey(input.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	existing, err := s.orderRepo.GetByIdempotencyKey(input.UserID, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.metrics.ObserveIdempotentReplay()
		logger.Infow("order_idempotent_replay", "user_id", input.UserID, "order_id", existing.ID)
		return existing, nil
	}

	currency, err := s.pricing.ResolveCurrency(input.Currency)
	if err != nil {
		return nil, err
	}
	delivery, err := normalizeDelivery(input.Delivery, true)
	if err != nil {
		return nil, err
	}

	lockKey := cache.OrderLockKey(input.UserID, key)
	token, locked, err := cache.TryLock(ctx, lockKey, s.lockTTL)
	if err != nil {
		// 锁服务不可用时由唯一索引兜底
		logger.Warnw("order_idempotency_lock_failed", "user_id", input.UserID, "error", err)
	} else if !locked {
		s.metrics.ObserveOrderFailure(metrics.OrderFailureDuplicate)
		return nil, ErrDuplicateRequest
	}
	defer func() {
		if err := cache.Unlock(context.Background(), lockKey, token); err != nil {
			logger.Warnw("order_idempotency_unlock_failed", "user_id", input.UserID, "error", err)
		}
	}()

	started := s.now()
	var order *models.Order
	err = s.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		inventory := s.inventory.WithTx(tx)
		quote, err := s.buildQuote(
			s.productRepo.WithTx(tx),
			s.promo.WithTx(tx),
			inventory.CheckAvailability,
			input.UserID, input.Lines, delivery.Method, input.PromoCode, currency,
		)
		if err != nil {
			return err
		}

		order = s.newOrder(input.UserID, key, delivery, quote)
		items := quote.Items
		if err := orderRepo.Create(order, items); err != nil {
			return err
		}

		for _, line := range aggregateLines(items) {
			if err := inventory.Reserve(line.ProductID, line.Quantity); err != nil {
				var stockErr *OutOfStockError
				if errors.As(err, &stockErr) {
					stockErr.ProductName = line.ProductName
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			// 并发的同键请求已先一步提交
			if replay, getErr := s.orderRepo.GetByIdempotencyKey(input.UserID, key); getErr == nil && replay != nil {
				s.metrics.ObserveIdempotentReplay()
				return replay, nil
			}
		}
		s.metrics.ObserveOrderFailure(ClassifyOrderFailure(err))
		return nil, err
	}

	s.metrics.ObserveOrderCreated(order.Currency, s.now().Sub(started))
	logger.Infow("order_created",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"user_id", order.UserID,
		"total", order.Total.String(),
		"currency", order.Currency,
	)

	if err := s.ApplyPostCommitEffects(ctx, order.ID); err != nil {
		s.schedulePostCommitRetry(order.ID, err)
	}
	return order, nil
}

// CreateOrderFromCart 以购物车快照下单，成功后清空购物车
func (s *OrderService) CreateOrderFromCart(ctx context.Context, input CheckoutInput) (*models.Order, error) {
	if input.UserID == 0 {
		return nil, ErrUserRequired
	}
	key, err := normalizeIdempotencyKey(input.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	// 重放请求时购物车可能已清空，先按幂等键查找
	existing, err := s.orderRepo.GetByIdempotencyKey(input.UserID, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.metrics.ObserveIdempotentReplay()
		return existing, nil
	}
	if s.cart == nil {
		return nil, ErrEmptyCart
	}

	currency, err := s.pricing.ResolveCurrency(input.Currency)
	if err != nil {
		return nil, err
	}
	lines, err := s.cart.GetCart(ctx, input.UserID, currency)
	if err != nil {
		return nil, err
	}
	order, err := s.CreateOrder(ctx, CreateOrderInput{
		UserID:         input.UserID,
		Lines:          lines,
		Delivery:       input.Delivery,
		PromoCode:      input.PromoCode,
		Currency:       currency,
		IdempotencyKey: key,
	})
	if err != nil {
		return nil, err
	}
	if clearer, ok := s.cart.(cartClearer); ok {
		if err := clearer.Clear(ctx, input.UserID); err != nil {
			logger.Warnw("order_cart_clear_failed", "user_id", input.UserID, "order_id", order.ID, "error", err)
		}
	}
	return order, nil
}

// PreviewOrder 计算订单金额（不落库、不加锁、不预留）
func (s *OrderService) PreviewOrder(ctx context.Context, input CreateOrderInput) (*OrderPreview, error) {
	if input.UserID == 0 {
		return nil, ErrUserRequired
	}
	currency, err := s.pricing.ResolveCurrency(input.Currency)
	if err != nil {
		return nil, err
	}
	delivery, err := normalizeDelivery(input.Delivery, false)
	if err != nil {
		return nil, err
	}
	quote, err := s.buildQuote(s.productRepo, s.promo, s.inventory.PeekAvailability,
		input.UserID, input.Lines, delivery.Method, input.PromoCode, currency)
	if err != nil {
		return nil, err
	}
	return &quote.OrderPreview, nil
}

// PreviewCheckout 以购物车快照预览订单
func (s *OrderService) PreviewCheckout(ctx context.Context, input CheckoutInput) (*OrderPreview, error) {
	if input.UserID == 0 {
		return nil, ErrUserRequired
	}
	if s.cart == nil {
		return nil, ErrEmptyCart
	}
	currency, err := s.pricing.ResolveCurrency(input.Currency)
	if err != nil {
		return nil, err
	}
	lines, err := s.cart.GetCart(ctx, input.UserID, currency)
	if err != nil {
		return nil, err
	}
	return s.PreviewOrder(ctx, CreateOrderInput{
		UserID:    input.UserID,
		Lines:     lines,
		Delivery:  input.Delivery,
		PromoCode: input.PromoCode,
		Currency:  currency,
	})
}

// ApplyPostCommitEffects 执行提交后副作用：优惠码核销与积分入账
// 两者均按订单幂等，可安全重试。
func (s *OrderService) ApplyPostCommitEffects(ctx context.Context, orderID uint) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.PostCommitDoneAt != nil {
		return nil
	}

	var errs []error
	if order.PromoCodeID != nil && s.promo != nil {
		if err := s.promo.RecordUsage(*order.PromoCodeID, order.UserID, order.ID, UsageKeyForOrder(order.ID)); err != nil {
			logger.Errorw("order_promo_usage_record_failed", "order_id", order.ID, "promo_code_id", *order.PromoCodeID, "error", err)
			errs = append(errs, fmt.Errorf("record promo usage: %w", err))
		}
	}
	if s.loyalty != nil {
		orderRef := order.ID
		if _, err := s.loyalty.Credit(order.UserID, order.LoyaltyPoints, LoyaltyReferenceForOrder(order.ID), &orderRef); err != nil {
			logger.Errorw("order_loyalty_credit_failed", "order_id", order.ID, "user_id", order.UserID, "error", err)
			errs = append(errs, fmt.Errorf("credit loyalty points: %w", err))
		}
	}
	if len(errs) > 0 {
		s.metrics.ObservePostCommit(metrics.PostCommitResultFailed)
		return errors.Join(errs...)
	}
	if err := s.orderRepo.MarkPostCommitDone(order.ID, s.now()); err != nil {
		return err
	}
	s.metrics.ObservePostCommit(metrics.PostCommitResultApplied)
	return nil
}

// SweepPendingPostCommit 补偿执行超时未完成的提交后副作用，返回成功处理的订单数
func (s *OrderService) SweepPendingPostCommit(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	orders, err := s.orderRepo.ListPendingPostCommit(s.now().Add(-olderThan), limit)
	if err != nil {
		return 0, err
	}
	applied := 0
	for _, order := range orders {
		if ctx.Err() != nil {
			return applied, ctx.Err()
		}
		if err := s.ApplyPostCommitEffects(ctx, order.ID); err != nil {
			logger.Warnw("order_post_commit_sweep_failed", "order_id", order.ID, "error", err)
			continue
		}
		applied++
	}
	if applied > 0 {
		logger.Infow("order_post_commit_sweep_applied", "count", applied)
	}
	return applied, nil
}

// LoyaltyReferenceForOrder 订单积分入账引用
func LoyaltyReferenceForOrder(orderID uint) string {
	return orderEffectKeyPrefix + uintToString(orderID)
}

// ClassifyOrderFailure 下单失败原因归类（用于指标标签）
func ClassifyOrderFailure(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrOutOfStock):
		return metrics.OrderFailureOutOfStock
	case errors.Is(err, ErrPromoCodeNotFound),
		errors.Is(err, ErrPromoCodeInactive),
		errors.Is(err, ErrPromoCodeNotStarted),
		errors.Is(err, ErrPromoCodeExpired),
		errors.Is(err, ErrPromoCodeMinAmount),
		errors.Is(err, ErrPromoCodeUsageLimit),
		errors.Is(err, ErrPromoCodeNotApplicable),
		errors.Is(err, ErrPromoCodeInvalid):
		return metrics.OrderFailurePromo
	case errors.Is(err, ErrDuplicateRequest):
		return metrics.OrderFailureDuplicate
	case errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidOrderItem),
		errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrInvalidDeliveryMethod),
		errors.Is(err, ErrDeliveryDetailsRequired),
		errors.Is(err, ErrInvalidCurrency):
		return metrics.OrderFailureValidation
	default:
		return metrics.OrderFailureInternal
	}
}

func (s *OrderService) schedulePostCommitRetry(orderID uint, cause error) {
	if s.queueClient == nil || !s.queueClient.Enabled() {
		logger.Errorw("order_post_commit_pending", "order_id", orderID, "error", cause, "queue", "disabled")
		return
	}
	if err := s.queueClient.EnqueueOrderPostCommit(queue.OrderPostCommitPayload{OrderID: orderID}, postCommitRetryDelay); err != nil {
		logger.Errorw("order_enqueue_post_commit_failed", "order_id", orderID, "error", err, "cause", cause)
		return
	}
	s.metrics.ObservePostCommit(metrics.PostCommitResultQueued)
	logger.Warnw("order_post_commit_queued", "order_id", orderID, "cause", cause)
}

// buildQuote 校验订单行并计算金额
func (s *OrderService) buildQuote(productRepo repository.ProductRepository, promo *PromoCodeService, available availabilityFunc, userID uint, lines []CartLine, deliveryMethod, promoCode, currency string) (*orderQuote, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]models.OrderItem, 0, len(lines))
	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if line.ProductID == 0 || !line.UnitPrice.Decimal.IsPositive() {
			return nil, ErrInvalidOrderItem
		}
		product, err := productRepo.GetByID(line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || !product.IsActive {
			return nil, ErrProductNotFound
		}
		lineTotal := line.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(line.Quantity)))
		items = append(items, models.OrderItem{
			ProductID:   line.ProductID,
			StrainID:    line.StrainID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   models.NewMoney(line.UnitPrice.Decimal),
			Total:       models.NewMoney(lineTotal),
		})
		subtotal = subtotal.Add(lineTotal)
	}

	// 同一商品多行时按合计数量检查
	productIDs := make([]uint, 0, len(items))
	for _, line := range aggregateLines(items) {
		ok, err := available(line.ProductID, line.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &OutOfStockError{ProductID: line.ProductID, ProductName: line.ProductName}
		}
		productIDs = append(productIDs, line.ProductID)
	}

	quote := &orderQuote{OrderPreview: OrderPreview{
		Currency:       currency,
		DeliveryMethod: deliveryMethod,
		Subtotal:       models.NewMoney(subtotal),
		DiscountAmount: models.MoneyFromInt(0),
		Items:          items,
	}}

	if code := NormalizePromoCode(promoCode); code != "" {
		validation, err := promo.Validate(code, userID, quote.Subtotal, productIDs, currency)
		if err != nil {
			return nil, err
		}
		quote.promo = validation.PromoCode
		quote.PromoCode = code
		quote.DiscountAmount = validation.Discount
	}

	discounted := models.NewMoney(quote.Subtotal.Decimal.Sub(quote.DiscountAmount.Decimal))
	fee, err := s.pricing.DeliveryFee(deliveryMethod, discounted)
	if err != nil {
		return nil, err
	}
	quote.DeliveryFee = fee
	quote.Total = models.NewMoney(discounted.Decimal.Add(fee.Decimal))
	quote.LoyaltyPoints = PointsForTotal(quote.Total, s.pricing.LoyaltyRate)
	return quote, nil
}

func (s *OrderService) newOrder(userID uint, key string, delivery DeliveryDetails, quote *orderQuote) *models.Order {
	order := &models.Order{
		OrderNo:         s.nextOrderNo(),
		UserID:          userID,
		IdempotencyKey:  key,
		Status:          constants.OrderStatusPending,
		PaymentStatus:   constants.PaymentStatusPending,
		Currency:        quote.Currency,
		Subtotal:        quote.Subtotal,
		DiscountAmount:  quote.DiscountAmount,
		DeliveryFee:     quote.DeliveryFee,
		Total:           quote.Total,
		DeliveryMethod:  delivery.Method,
		RecipientName:   delivery.RecipientName,
		RecipientPhone:  delivery.RecipientPhone,
		DeliveryAddress: delivery.Address,
		DeliveryCity:    delivery.City,
		DeliveryComment: delivery.Comment,
		LoyaltyPoints:   quote.LoyaltyPoints,
	}
	if quote.promo != nil {
		promoID := quote.promo.ID
		order.PromoCodeID = &promoID
		order.PromoCode = quote.promo.Code
	}
	return order
}

// nextOrderNo 订单号：LC + 日期 + snowflake ID，进程内严格递增且跨节点唯一
func (s *OrderService) nextOrderNo() string {
	return orderNoPrefix + s.now().Format("20060102") + s.orderNoNode.Generate().String()
}

// aggregateLines 按商品合并数量，保持首次出现的顺序
func aggregateLines(items []models.OrderItem) []models.OrderItem {
	index := make(map[uint]int, len(items))
	merged := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if pos, ok := index[item.ProductID]; ok {
			merged[pos].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
		})
	}
	return merged
}

func normalizeIdempotencyKey(raw string) (string, error) {
	key := strings.TrimSpace(raw)
	if key == "" {
		return "", ErrIdempotencyKeyRequired
	}
	if len(key) > maxIdempotencyKeyLen {
		return "", ErrInvalidIdempotencyKey
	}
	return key, nil
}

func normalizeDelivery(details DeliveryDetails, requireAddress bool) (DeliveryDetails, error) {
	details.Method = normalizeDeliveryMethod(details.Method)
	if details.Method != constants.DeliveryMethodStandard && details.Method != constants.DeliveryMethodExpress {
		return details, ErrInvalidDeliveryMethod
	}
	details.RecipientName = strings.TrimSpace(details.RecipientName)
	details.RecipientPhone = strings.TrimSpace(details.RecipientPhone)
	details.Address = strings.TrimSpace(details.Address)
	details.City = strings.TrimSpace(details.City)
	details.Comment = strings.TrimSpace(details.Comment)
	if requireAddress && (details.RecipientName == "" || details.RecipientPhone == "" || details.Address == "" || details.City == "") {
		return details, ErrDeliveryDetailsRequired
	}
	return details, nil
}

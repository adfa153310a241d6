package service

import (
	"context"
	"time"

	"github.com/leafcart/internal/cache"
	"github.com/leafcart/internal/constants"
	"github.com/leafcart/internal/logger"
	"github.com/leafcart/internal/models"
	"github.com/leafcart/internal/repository"

	"github.com/shopspring/decimal"
)

// CartLine 购物车快照行，单价为加入购物车时锁定的价格
type CartLine struct {
	ProductID   uint         `json:"product_id"`
	StrainID    *uint        `json:"strain_id,omitempty"`
	ProductName string       `json:"product_name"`
	Quantity    int          `json:"quantity"`
	UnitPrice   models.Money `json:"unit_price"`
}

// CartSnapshotProvider 购物车快照来源
type CartSnapshotProvider interface {
	GetCart(ctx context.Context, userID uint, currency string) ([]CartLine, error)
}

// CartView 购物车响应
type CartView struct {
	Currency string       `json:"currency"`
	Items    []CartLine   `json:"items"`
	Subtotal models.Money `json:"subtotal"`
}

// AddCartItemInput 加入购物车输入
type AddCartItemInput struct {
	UserID    uint
	ProductID uint
	StrainID  *uint
	Quantity  int
}

// CartService 购物车服务（GORM 持久化 + Redis 快照缓存）
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	currencies  []string
	cacheTTL    time.Duration
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, currencies []string, cacheTTL time.Duration) *CartService {
	if len(currencies) == 0 {
		currencies = []string{constants.CurrencyBase, constants.CurrencyUSD, constants.CurrencyEUR}
	}
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		currencies:  currencies,
		cacheTTL:    cacheTTL,
	}
}

// GetCart 读取购物车快照（先读缓存，未命中回源数据库）
func (s *CartService) GetCart(ctx context.Context, userID uint, currency string) ([]CartLine, error) {
	if userID == 0 {
		return nil, ErrUserRequired
	}
	currency = normalizeCurrency(currency)
	key := cache.CartSnapshotKey(userID, currency)

	var cached []CartLine
	if hit, err := cache.GetJSON(ctx, key, &cached); err != nil {
		logger.Warnw("cart_snapshot_cache_read_failed", "user_id", userID, "error", err)
	} else if hit {
		return cached, nil
	}

	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	lines := make([]CartLine, 0, len(items))
	for _, item := range items {
		product := item.Product
		if product == nil || product.ID == 0 || !product.IsActive {
			// 商品已下架：从购物车移除
			if err := s.cartRepo.DeleteByUserAndProduct(userID, item.ProductID); err != nil {
				return nil, err
			}
			continue
		}
		price := snapshotPrice(item, currency)
		if !price.IsPositive() {
			return nil, ErrInvalidCurrency
		}
		lines = append(lines, CartLine{
			ProductID:   item.ProductID,
			StrainID:    item.StrainID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   models.NewMoney(price),
		})
	}

	if s.cacheTTL > 0 {
		if err := cache.SetJSON(ctx, key, lines, s.cacheTTL); err != nil {
			logger.Warnw("cart_snapshot_cache_write_failed", "user_id", userID, "error", err)
		}
	}
	return lines, nil
}

// View 购物车视图（含小计）
func (s *CartService) View(ctx context.Context, userID uint, currency string) (*CartView, error) {
	currency = normalizeCurrency(currency)
	lines, err := s.GetCart(ctx, userID, currency)
	if err != nil {
		return nil, err
	}
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return &CartView{Currency: currency, Items: lines, Subtotal: models.NewMoney(subtotal)}, nil
}

// AddItem 加入或更新购物车项，同时刷新价格快照
func (s *CartService) AddItem(ctx context.Context, input AddCartItemInput) (*models.CartItem, error) {
	if input.UserID == 0 {
		return nil, ErrUserRequired
	}
	if input.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotFound
	}
	if input.StrainID != nil {
		strain, err := s.productRepo.GetStrain(product.ID, *input.StrainID)
		if err != nil {
			return nil, err
		}
		if strain == nil {
			return nil, ErrInvalidOrderItem
		}
	}

	item, err := s.cartRepo.FindLine(input.UserID, input.ProductID, input.StrainID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		item = &models.CartItem{
			UserID:    input.UserID,
			ProductID: input.ProductID,
			StrainID:  input.StrainID,
		}
	}
	item.Quantity = input.Quantity
	item.UnitPrice = product.Price
	item.UnitPriceUSD = product.PriceUSD
	item.UnitPriceEUR = product.PriceEUR
	if err := s.cartRepo.Save(item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, input.UserID)
	return item, nil
}

// RemoveItem 移除购物车商品
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uint) error {
	if userID == 0 {
		return ErrUserRequired
	}
	if err := s.cartRepo.DeleteByUserAndProduct(userID, productID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, userID uint) error {
	if userID == 0 {
		return ErrUserRequired
	}
	if err := s.cartRepo.ClearByUser(userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *CartService) invalidate(ctx context.Context, userID uint) {
	for _, currency := range s.currencies {
		if err := cache.Del(ctx, cache.CartSnapshotKey(userID, currency)); err != nil {
			logger.Warnw("cart_snapshot_cache_invalidate_failed", "user_id", userID, "currency", currency, "error", err)
		}
	}
}

func snapshotPrice(item models.CartItem, currency string) decimal.Decimal {
	switch currency {
	case constants.CurrencyUSD:
		return item.UnitPriceUSD.Decimal
	case constants.CurrencyEUR:
		return item.UnitPriceEUR.Decimal
	default:
		return item.UnitPrice.Decimal
	}
}

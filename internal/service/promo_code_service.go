package service

import (
	"strings"
	"time"

	"github.com/leafcart/internal/constants"
	"github.com/leafcart/internal/logger"
	"github.com/leafcart/internal/models"
	"github.com/leafcart/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PromoCodeService 优惠码校验与核销服务
type PromoCodeService struct {
	db   *gorm.DB
	repo repository.PromoCodeRepository
	now  func() time.Time
}

// NewPromoCodeService 创建优惠码服务
func NewPromoCodeService(db *gorm.DB, repo repository.PromoCodeRepository) *PromoCodeService {
	return &PromoCodeService{db: db, repo: repo, now: time.Now}
}

// WithTx 绑定事务
func (s *PromoCodeService) WithTx(tx *gorm.DB) *PromoCodeService {
	if tx == nil {
		return s
	}
	return &PromoCodeService{db: tx, repo: s.repo.WithTx(tx), now: s.now}
}

// PromoValidation 优惠码校验结果
type PromoValidation struct {
	Valid     bool              `json:"valid"`
	Code      string            `json:"code"`
	Discount  models.Money      `json:"discount"`
	Currency  string            `json:"currency"`
	Reason    string            `json:"reason,omitempty"`
	PromoCode *models.PromoCode `json:"-"`
}

// NormalizePromoCode 优惠码统一为大写存储与比较
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate 按固定顺序校验优惠码并计算折扣
// 顺序：存在 → 启用 → 生效时间 → 过期时间 → 最低金额 → 使用次数 → 适用商品。
// 任一环节失败即返回对应的哨兵错误，结果中 Reason 为面向用户的原因。
func (s *PromoCodeService) Validate(code string, userID uint, cartTotal models.Money, productIDs []uint, currency string) (*PromoValidation, error) {
	normalized := NormalizePromoCode(code)
	currency = normalizeCurrency(currency)
	result := &PromoValidation{Code: normalized, Currency: currency, Discount: models.MoneyFromInt(0)}
	reject := func(err error) (*PromoValidation, error) {
		result.Reason = err.Error()
		logger.Debugw("promo_code_rejected", "code", normalized, "user_id", userID, "reason", err.Error())
		return result, err
	}
	if normalized == "" {
		return reject(ErrPromoCodeNotFound)
	}

	promo, err := s.repo.GetByCode(normalized)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return reject(ErrPromoCodeNotFound)
	}
	result.PromoCode = promo
	if !promo.IsActive {
		return reject(ErrPromoCodeInactive)
	}

	now := s.now()
	if now.Before(promo.ValidFrom) {
		return reject(ErrPromoCodeNotStarted)
	}
	if promo.ValidUntil != nil && now.After(*promo.ValidUntil) {
		return reject(ErrPromoCodeExpired)
	}
	if cartTotal.Decimal.LessThan(promo.MinOrderAmount.Decimal) {
		return reject(ErrPromoCodeMinAmount)
	}
	if promo.UsageLimit != nil && promo.UsedCount >= *promo.UsageLimit {
		return reject(ErrPromoCodeUsageLimit)
	}
	if eligible := promo.EligibleProductIDs(); len(eligible) > 0 && !intersects(eligible, productIDs) {
		return reject(ErrPromoCodeNotApplicable)
	}

	discount, err := calculatePromoDiscount(promo, cartTotal, currency)
	if err != nil {
		return reject(err)
	}
	result.Valid = true
	result.Discount = discount
	return result, nil
}

// RecordUsage 记录一次核销并累加使用次数（同一事务）
// 以幂等键去重：相同键重复调用不会重复计数。
func (s *PromoCodeService) RecordUsage(promoCodeID, userID, orderID uint, idempotencyKey string) error {
	key := strings.TrimSpace(idempotencyKey)
	if promoCodeID == 0 || key == "" {
		return ErrPromoCodeInvalid
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.GetUsageByKey(key)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}
		usage := &models.PromoCodeUsage{
			PromoCodeID:    promoCodeID,
			UserID:         userID,
			OrderID:        orderID,
			IdempotencyKey: key,
			UsedAt:         s.now(),
		}
		if err := repo.CreateUsage(usage); err != nil {
			return err
		}
		return repo.IncrementUsedCount(promoCodeID)
	})
	if err != nil && repository.IsUniqueViolation(err) {
		// 并发的重复核销已由另一方完成
		return nil
	}
	return err
}

// UsageKeyForOrder 订单核销的幂等键
func UsageKeyForOrder(orderID uint) string {
	return orderEffectKeyPrefix + uintToString(orderID)
}

func calculatePromoDiscount(promo *models.PromoCode, cartTotal models.Money, currency string) (models.Money, error) {
	var discount decimal.Decimal
	switch strings.ToLower(strings.TrimSpace(promo.DiscountType)) {
	case constants.DiscountTypePercentage:
		discount = cartTotal.Decimal.Mul(promo.DiscountValue.Decimal).Div(decimal.NewFromInt(100))
	case constants.DiscountTypeFixed:
		discount = fixedDiscountFor(promo, currency)
	default:
		return models.Money{}, ErrPromoCodeInvalid
	}
	if discount.IsNegative() {
		return models.Money{}, ErrPromoCodeInvalid
	}
	if discount.GreaterThan(cartTotal.Decimal) {
		discount = cartTotal.Decimal
	}
	return models.NewMoney(discount), nil
}

// fixedDiscountFor 选择币种对应的固定折扣，未配置时回落到基础币种
func fixedDiscountFor(promo *models.PromoCode, currency string) decimal.Decimal {
	var value decimal.Decimal
	switch currency {
	case constants.CurrencyUSD:
		value = promo.DiscountValueUSD.Decimal
	case constants.CurrencyEUR:
		value = promo.DiscountValueEUR.Decimal
	}
	if value.IsPositive() {
		return value
	}
	return promo.DiscountValue.Decimal
}

func intersects(eligible []uint, productIDs []uint) bool {
	set := make(map[uint]struct{}, len(eligible))
	for _, id := range eligible {
		set[id] = struct{}{}
	}
	for _, id := range productIDs {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}

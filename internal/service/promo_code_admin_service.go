package service

import (
	"strings"
	"time"

	"github.com/leafcart/internal/constants"
	"github.com/leafcart/internal/models"
	"github.com/leafcart/internal/repository"

	"github.com/shopspring/decimal"
)

const maxPromoCodeLength = 64

// PromoCodeAdminService 优惠码管理服务
type PromoCodeAdminService struct {
	repo repository.PromoCodeRepository
}

// NewPromoCodeAdminService 创建优惠码管理服务
func NewPromoCodeAdminService(repo repository.PromoCodeRepository) *PromoCodeAdminService {
	return &PromoCodeAdminService{repo: repo}
}

// PromoCodeInput 创建/更新优惠码输入
type PromoCodeInput struct {
	Code             string
	DiscountType     string
	DiscountValue    models.Money
	DiscountValueUSD models.Money
	DiscountValueEUR models.Money
	MinOrderAmount   models.Money
	UsageLimit       *int
	ValidFrom        *time.Time
	ValidUntil       *time.Time
	IsActive         *bool
	ProductIDs       []uint
}

// Create 创建优惠码
func (s *PromoCodeAdminService) Create(input PromoCodeInput) (*models.PromoCode, error) {
	promo := &models.PromoCode{IsActive: true}
	if err := applyPromoCodeInput(promo, input); err != nil {
		return nil, err
	}

	exist, err := s.repo.GetByCode(promo.Code)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrPromoCodeExists
	}
	if err := s.repo.Create(promo, input.ProductIDs); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrPromoCodeExists
		}
		return nil, err
	}
	return s.repo.GetByID(promo.ID)
}

// Update 更新优惠码（适用商品整体覆盖）
func (s *PromoCodeAdminService) Update(id uint, input PromoCodeInput) (*models.PromoCode, error) {
	promo, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := applyPromoCodeInput(promo, input); err != nil {
		return nil, err
	}

	exist, err := s.repo.GetByCode(promo.Code)
	if err != nil {
		return nil, err
	}
	if exist != nil && exist.ID != promo.ID {
		return nil, ErrPromoCodeExists
	}
	if err := s.repo.Update(promo); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrPromoCodeExists
		}
		return nil, err
	}
	if input.ProductIDs != nil {
		if err := s.repo.ReplaceProducts(promo.ID, input.ProductIDs); err != nil {
			return nil, err
		}
	}
	return s.repo.GetByID(promo.ID)
}

// Deactivate 停用优惠码（保留历史核销记录）
func (s *PromoCodeAdminService) Deactivate(id uint) (*models.PromoCode, error) {
	promo, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !promo.IsActive {
		return promo, nil
	}
	if err := s.repo.SetActive(promo.ID, false); err != nil {
		return nil, err
	}
	return s.repo.GetByID(promo.ID)
}

// Get 获取优惠码详情
func (s *PromoCodeAdminService) Get(id uint) (*models.PromoCode, error) {
	promo, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, ErrPromoCodeNotFound
	}
	return promo, nil
}

// List 优惠码分页列表
func (s *PromoCodeAdminService) List(filter repository.PromoCodeListFilter) ([]models.PromoCode, int64, error) {
	return s.repo.List(filter)
}

func applyPromoCodeInput(promo *models.PromoCode, input PromoCodeInput) error {
	code := NormalizePromoCode(input.Code)
	if code == "" || len(code) > maxPromoCodeLength {
		return ErrPromoCodeInvalid
	}
	discountType := strings.ToLower(strings.TrimSpace(input.DiscountType))
	hundred := decimal.NewFromInt(100)
	switch discountType {
	case constants.DiscountTypePercentage:
		if !input.DiscountValue.Decimal.IsPositive() || input.DiscountValue.Decimal.GreaterThan(hundred) {
			return ErrPromoCodeInvalid
		}
	case constants.DiscountTypeFixed:
		if !input.DiscountValue.Decimal.IsPositive() {
			return ErrPromoCodeInvalid
		}
	default:
		return ErrPromoCodeInvalid
	}
	if input.DiscountValueUSD.Decimal.IsNegative() || input.DiscountValueEUR.Decimal.IsNegative() || input.MinOrderAmount.Decimal.IsNegative() {
		return ErrPromoCodeInvalid
	}
	if input.UsageLimit != nil && *input.UsageLimit < 0 {
		return ErrPromoCodeInvalid
	}

	validFrom := promo.ValidFrom
	if input.ValidFrom != nil {
		validFrom = *input.ValidFrom
	}
	if validFrom.IsZero() {
		validFrom = time.Now()
	}
	if input.ValidUntil != nil && !input.ValidUntil.After(validFrom) {
		return ErrPromoCodeInvalid
	}

	promo.Code = code
	promo.DiscountType = discountType
	promo.DiscountValue = models.NewMoney(input.DiscountValue.Decimal)
	promo.DiscountValueUSD = models.NewMoney(input.DiscountValueUSD.Decimal)
	promo.DiscountValueEUR = models.NewMoney(input.DiscountValueEUR.Decimal)
	promo.MinOrderAmount = models.NewMoney(input.MinOrderAmount.Decimal)
	promo.UsageLimit = input.UsageLimit
	promo.ValidFrom = validFrom
	promo.ValidUntil = input.ValidUntil
	if input.IsActive != nil {
		promo.IsActive = *input.IsActive
	}
	return nil
}

package repository

import (
	"errors"
	"strings"

	"github.com/leafcart/internal/models"

	"gorm.io/gorm"
)

// PromoCodeRepository 优惠码数据访问接口
type PromoCodeRepository interface {
	GetByID(id uint) (*models.PromoCode, error)
	GetByCode(code string) (*models.PromoCode, error)
	Create(promo *models.PromoCode, productIDs []uint) error
	Update(promo *models.PromoCode) error
	SetActive(id uint, active bool) error
	ReplaceProducts(promoID uint, productIDs []uint) error
	List(filter PromoCodeListFilter) ([]models.PromoCode, int64, error)
	IncrementUsedCount(id uint) error
	GetUsageByKey(key string) (*models.PromoCodeUsage, error)
	CreateUsage(usage *models.PromoCodeUsage) error
	WithTx(tx *gorm.DB) *GormPromoCodeRepository
}

// GormPromoCodeRepository GORM 实现
type GormPromoCodeRepository struct {
	db *gorm.DB
}

// NewPromoCodeRepository 创建优惠码仓库
func NewPromoCodeRepository(db *gorm.DB) *GormPromoCodeRepository {
	return &GormPromoCodeRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromoCodeRepository) WithTx(tx *gorm.DB) *GormPromoCodeRepository {
	if tx == nil {
		return r
	}
	return &GormPromoCodeRepository{db: tx}
}

// GetByID 根据 ID 获取优惠码（含适用商品）
func (r *GormPromoCodeRepository) GetByID(id uint) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.db.Preload("Products").First(&promo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promo, nil
}

// GetByCode 根据优惠码获取，code 需已规范化为大写
func (r *GormPromoCodeRepository) GetByCode(code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.db.Preload("Products").Where("code = ?", code).First(&promo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promo, nil
}

// Create 创建优惠码及适用商品
func (r *GormPromoCodeRepository) Create(promo *models.PromoCode, productIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Products").Create(promo).Error; err != nil {
			return err
		}
		return r.WithTx(tx).ReplaceProducts(promo.ID, productIDs)
	})
}

// promoCodeEditableColumns 管理端可编辑字段；used_count 只由 IncrementUsedCount 维护
var promoCodeEditableColumns = []string{
	"code",
	"discount_type",
	"discount_value",
	"discount_value_usd",
	"discount_value_eur",
	"min_order_amount",
	"usage_limit",
	"valid_from",
	"valid_until",
	"is_active",
	"updated_at",
}

// Update 更新优惠码基础字段（不回写 used_count）
func (r *GormPromoCodeRepository) Update(promo *models.PromoCode) error {
	return r.db.Model(promo).Select(promoCodeEditableColumns).Updates(promo).Error
}

// SetActive 更新启用状态
func (r *GormPromoCodeRepository) SetActive(id uint, active bool) error {
	return r.db.Model(&models.PromoCode{}).Where("id = ?", id).Update("is_active", active).Error
}

// ReplaceProducts 覆盖适用商品列表
func (r *GormPromoCodeRepository) ReplaceProducts(promoID uint, productIDs []uint) error {
	if err := r.db.Where("promo_code_id = ?", promoID).Delete(&models.PromoCodeProduct{}).Error; err != nil {
		return err
	}
	if len(productIDs) == 0 {
		return nil
	}
	seen := make(map[uint]struct{}, len(productIDs))
	rows := make([]models.PromoCodeProduct, 0, len(productIDs))
	for _, id := range productIDs {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		rows = append(rows, models.PromoCodeProduct{PromoCodeID: promoID, ProductID: id})
	}
	if len(rows) == 0 {
		return nil
	}
	return r.db.Create(&rows).Error
}

// List 优惠码分页列表
func (r *GormPromoCodeRepository) List(filter PromoCodeListFilter) ([]models.PromoCode, int64, error) {
	query := r.db.Model(&models.PromoCode{})
	if code := strings.TrimSpace(filter.Code); code != "" {
		query = query.Where("code "+likeOperator(r.db)+" ?", "%"+strings.ToUpper(code)+"%")
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var promos []models.PromoCode
	query = applyPagination(query.Preload("Products"), filter.Page, filter.PageSize)
	if err := query.Order("id desc").Find(&promos).Error; err != nil {
		return nil, 0, err
	}
	return promos, total, nil
}

// IncrementUsedCount 使用次数 +1
func (r *GormPromoCodeRepository) IncrementUsedCount(id uint) error {
	return r.db.Model(&models.PromoCode{}).
		Where("id = ?", id).
		UpdateColumn("used_count", gorm.Expr("used_count + ?", 1)).Error
}

// GetUsageByKey 按幂等键查找使用记录
func (r *GormPromoCodeRepository) GetUsageByKey(key string) (*models.PromoCodeUsage, error) {
	if key == "" {
		return nil, nil
	}
	var usage models.PromoCodeUsage
	if err := r.db.Where("idempotency_key = ?", key).First(&usage).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &usage, nil
}

// CreateUsage 写入使用记录
func (r *GormPromoCodeRepository) CreateUsage(usage *models.PromoCodeUsage) error {
	return r.db.Create(usage).Error
}

package repository

import (
	"errors"
	"time"

	"github.com/leafcart/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryRepository 库存数据访问接口
type InventoryRepository interface {
	GetByProductID(productID uint) (*models.Inventory, error)
	GetByProductIDForUpdate(productID uint) (*models.Inventory, error)
	Create(inv *models.Inventory) error
	Reserve(productID uint, quantity int) (bool, error)
	Release(productID uint, quantity int) (bool, error)
	Consume(productID uint, quantity int) (bool, error)
	ApplyDelta(productID uint, delta int, restockedAt *time.Time) (bool, error)
	UpdateThreshold(productID uint, threshold int) (bool, error)
	List(filter InventoryListFilter) ([]models.Inventory, int64, error)
	ListLowStock() ([]models.Inventory, error)
	CreateLog(entry *models.InventoryLog) error
	ListLogs(filter InventoryLogListFilter) ([]models.InventoryLog, int64, error)
	WithTx(tx *gorm.DB) *GormInventoryRepository
}

// GormInventoryRepository GORM 实现
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository 创建库存仓库
func NewInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormInventoryRepository) WithTx(tx *gorm.DB) *GormInventoryRepository {
	if tx == nil {
		return r
	}
	return &GormInventoryRepository{db: tx}
}

// GetByProductID 按商品获取库存，不存在返回 nil
func (r *GormInventoryRepository) GetByProductID(productID uint) (*models.Inventory, error) {
	return r.first(r.db, productID)
}

// GetByProductIDForUpdate 加行锁读取库存（SELECT ... FOR UPDATE）
func (r *GormInventoryRepository) GetByProductIDForUpdate(productID uint) (*models.Inventory, error) {
	return r.first(r.db.Clauses(clause.Locking{Strength: "UPDATE"}), productID)
}

func (r *GormInventoryRepository) first(query *gorm.DB, productID uint) (*models.Inventory, error) {
	if productID == 0 {
		return nil, nil
	}
	var inv models.Inventory
	if err := query.Where("product_id = ?", productID).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

// Create 创建库存记录
func (r *GormInventoryRepository) Create(inv *models.Inventory) error {
	return r.db.Create(inv).Error
}

// Reserve 条件更新预留量：仅当可用量足够时生效
// 返回 false 表示库存不足或记录不存在。
func (r *GormInventoryRepository) Reserve(productID uint, quantity int) (bool, error) {
	result := r.db.Model(&models.Inventory{}).
		Where("product_id = ? AND quantity - reserved_quantity >= ?", productID, quantity).
		Updates(map[string]interface{}{
			"reserved_quantity": gorm.Expr("reserved_quantity + ?", quantity),
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Release 释放预留量
func (r *GormInventoryRepository) Release(productID uint, quantity int) (bool, error) {
	result := r.db.Model(&models.Inventory{}).
		Where("product_id = ? AND reserved_quantity >= ?", productID, quantity).
		Updates(map[string]interface{}{
			"reserved_quantity": gorm.Expr("reserved_quantity - ?", quantity),
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Consume 出库：同时扣减在库量与预留量
func (r *GormInventoryRepository) Consume(productID uint, quantity int) (bool, error) {
	result := r.db.Model(&models.Inventory{}).
		Where("product_id = ? AND reserved_quantity >= ? AND quantity >= ?", productID, quantity, quantity).
		Updates(map[string]interface{}{
			"quantity":          gorm.Expr("quantity - ?", quantity),
			"reserved_quantity": gorm.Expr("reserved_quantity - ?", quantity),
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ApplyDelta 调整在库量，调整后不得低于已预留量
func (r *GormInventoryRepository) ApplyDelta(productID uint, delta int, restockedAt *time.Time) (bool, error) {
	updates := map[string]interface{}{
		"quantity":   gorm.Expr("quantity + ?", delta),
		"updated_at": time.Now(),
	}
	if restockedAt != nil {
		updates["last_restock_date"] = *restockedAt
	}
	result := r.db.Model(&models.Inventory{}).
		Where("product_id = ? AND quantity + ? >= reserved_quantity AND quantity + ? >= 0", productID, delta, delta).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateThreshold 更新低库存阈值
func (r *GormInventoryRepository) UpdateThreshold(productID uint, threshold int) (bool, error) {
	result := r.db.Model(&models.Inventory{}).
		Where("product_id = ?", productID).
		Updates(map[string]interface{}{
			"low_stock_threshold": threshold,
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List 库存分页列表
func (r *GormInventoryRepository) List(filter InventoryListFilter) ([]models.Inventory, int64, error) {
	query := r.db.Model(&models.Inventory{})
	if len(filter.ProductIDs) > 0 {
		query = query.Where("product_id IN ?", filter.ProductIDs)
	}
	if filter.OnlyLowStock {
		query = query.Where("quantity - reserved_quantity <= low_stock_threshold")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Inventory
	query = applyPagination(query.Preload("Product"), filter.Page, filter.PageSize)
	if err := query.Order("product_id asc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListLowStock 低库存列表，按可用量升序
func (r *GormInventoryRepository) ListLowStock() ([]models.Inventory, error) {
	var items []models.Inventory
	err := r.db.Preload("Product").
		Where("quantity - reserved_quantity <= low_stock_threshold").
		Order("(quantity - reserved_quantity) asc").
		Order("product_id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// CreateLog 追加库存日志
func (r *GormInventoryRepository) CreateLog(entry *models.InventoryLog) error {
	return r.db.Create(entry).Error
}

// ListLogs 库存日志分页列表
func (r *GormInventoryRepository) ListLogs(filter InventoryLogListFilter) ([]models.InventoryLog, int64, error) {
	query := r.db.Model(&models.InventoryLog{})
	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.ChangeType != "" {
		query = query.Where("change_type = ?", filter.ChangeType)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.InventoryLog
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("id desc").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

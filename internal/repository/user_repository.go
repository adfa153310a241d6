package repository

import (
	"errors"

	"github.com/leafcart/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository 用户数据访问接口（积分相关）
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	GetByIDForUpdate(id uint) (*models.User, error)
	Create(user *models.User) error
	UpdateLoyalty(id uint, points int64, level string) error
	GetLoyaltyTransactionByReference(reference string) (*models.LoyaltyTransaction, error)
	CreateLoyaltyTransaction(txn *models.LoyaltyTransaction) error
	ListLoyaltyTransactions(userID uint, page, pageSize int) ([]models.LoyaltyTransaction, int64, error)
	WithTx(tx *gorm.DB) *GormUserRepository
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// WithTx 绑定事务
func (r *GormUserRepository) WithTx(tx *gorm.DB) *GormUserRepository {
	if tx == nil {
		return r
	}
	return &GormUserRepository{db: tx}
}

// GetByID 根据 ID 获取用户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByIDForUpdate 加锁读取用户
func (r *GormUserRepository) GetByIDForUpdate(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create 创建用户
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// UpdateLoyalty 写入积分与等级
func (r *GormUserRepository) UpdateLoyalty(id uint, points int64, level string) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"loyalty_points": points,
		"loyalty_level":  level,
	}).Error
}

// GetLoyaltyTransactionByReference 按引用查找积分流水
func (r *GormUserRepository) GetLoyaltyTransactionByReference(reference string) (*models.LoyaltyTransaction, error) {
	if reference == "" {
		return nil, nil
	}
	var txn models.LoyaltyTransaction
	if err := r.db.Where("reference = ?", reference).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// CreateLoyaltyTransaction 写入积分流水
func (r *GormUserRepository) CreateLoyaltyTransaction(txn *models.LoyaltyTransaction) error {
	return r.db.Create(txn).Error
}

// ListLoyaltyTransactions 积分流水分页
func (r *GormUserRepository) ListLoyaltyTransactions(userID uint, page, pageSize int) ([]models.LoyaltyTransaction, int64, error) {
	query := r.db.Model(&models.LoyaltyTransaction{}).Where("user_id = ?", userID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []models.LoyaltyTransaction
	if err := applyPagination(query, page, pageSize).Order("id desc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

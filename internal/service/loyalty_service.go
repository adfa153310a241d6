package service

import (
	"strings"

	"github.com/leafcart/internal/constants"
	"github.com/leafcart/internal/logger"
	"github.com/leafcart/internal/metrics"
	"github.com/leafcart/internal/models"
	"github.com/leafcart/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 会员等级阈值（累计积分）
const (
	loyaltySilverThreshold   int64 = 2000
	loyaltyGoldThreshold     int64 = 5000
	loyaltyPlatinumThreshold int64 = 10000
)

// LoyaltyService 积分入账服务
type LoyaltyService struct {
	db       *gorm.DB
	userRepo repository.UserRepository
	metrics  *metrics.OrderMetrics
}

// NewLoyaltyService 创建积分服务
func NewLoyaltyService(db *gorm.DB, userRepo repository.UserRepository, m *metrics.OrderMetrics) *LoyaltyService {
	return &LoyaltyService{db: db, userRepo: userRepo, metrics: m}
}

// LoyaltyAccount 用户积分账户视图
type LoyaltyAccount struct {
	UserID       uint                        `json:"user_id"`
	Points       int64                       `json:"points"`
	Level        string                      `json:"level"`
	NextLevel    string                      `json:"next_level,omitempty"`
	PointsToNext int64                       `json:"points_to_next,omitempty"`
	Transactions []models.LoyaltyTransaction `json:"transactions"`
	Total        int64                       `json:"total"`
}

// LevelForPoints 根据累计积分计算等级
func LevelForPoints(points int64) string {
	switch {
	case points >= loyaltyPlatinumThreshold:
		return constants.LoyaltyLevelPlatinum
	case points >= loyaltyGoldThreshold:
		return constants.LoyaltyLevelGold
	case points >= loyaltySilverThreshold:
		return constants.LoyaltyLevelSilver
	default:
		return constants.LoyaltyLevelBronze
	}
}

// PointsForTotal 订单应得积分：floor(total * rate)
func PointsForTotal(total models.Money, rate float64) int64 {
	if rate <= 0 || !total.Decimal.IsPositive() {
		return 0
	}
	return total.Decimal.Mul(decimal.NewFromFloat(rate)).Floor().IntPart()
}

// Credit 为用户累加积分并重算等级
// 以 reference 去重，同一引用重复调用直接返回首次入账的流水。
func (s *LoyaltyService) Credit(userID uint, points int64, reference string, orderID *uint) (*models.LoyaltyTransaction, error) {
	if userID == 0 {
		return nil, ErrUserRequired
	}
	if points < 0 {
		return nil, ErrInvalidLoyaltyPoints
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, ErrLoyaltyReferenceMissing
	}

	var txn *models.LoyaltyTransaction
	applied := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.userRepo.WithTx(tx)
		existing, err := repo.GetLoyaltyTransactionByReference(reference)
		if err != nil {
			return err
		}
		if existing != nil {
			txn = existing
			return nil
		}

		user, err := repo.GetByIDForUpdate(userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		balance := user.LoyaltyPoints + points
		level := LevelForPoints(balance)
		if err := repo.UpdateLoyalty(userID, balance, level); err != nil {
			return err
		}
		txn = &models.LoyaltyTransaction{
			UserID:       userID,
			OrderID:      orderID,
			Points:       points,
			BalanceAfter: balance,
			LevelAfter:   level,
			Reference:    reference,
		}
		if err := repo.CreateLoyaltyTransaction(txn); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return s.userRepo.GetLoyaltyTransactionByReference(reference)
		}
		return nil, err
	}
	if applied {
		s.metrics.ObserveLoyaltyPoints(points)
		logger.Infow("loyalty_points_credited",
			"user_id", userID,
			"points", points,
			"balance", txn.BalanceAfter,
			"level", txn.LevelAfter,
			"reference", reference,
		)
	}
	return txn, nil
}

// GetAccount 获取用户积分账户及流水
func (s *LoyaltyService) GetAccount(userID uint, page, pageSize int) (*LoyaltyAccount, error) {
	if userID == 0 {
		return nil, ErrUserRequired
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	items, total, err := s.userRepo.ListLoyaltyTransactions(userID, page, pageSize)
	if err != nil {
		return nil, err
	}
	account := &LoyaltyAccount{
		UserID:       user.ID,
		Points:       user.LoyaltyPoints,
		Level:        LevelForPoints(user.LoyaltyPoints),
		Transactions: items,
		Total:        total,
	}
	account.NextLevel, account.PointsToNext = nextLevel(user.LoyaltyPoints)
	return account, nil
}

func nextLevel(points int64) (string, int64) {
	switch {
	case points >= loyaltyPlatinumThreshold:
		return "", 0
	case points >= loyaltyGoldThreshold:
		return constants.LoyaltyLevelPlatinum, loyaltyPlatinumThreshold - points
	case points >= loyaltySilverThreshold:
		return constants.LoyaltyLevelGold, loyaltyGoldThreshold - points
	default:
		return constants.LoyaltyLevelSilver, loyaltySilverThreshold - points
	}
}

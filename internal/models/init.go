package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/leafcart/internal/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SeedProduct 演示商品
type SeedProduct struct {
	Name      string
	Price     int64 // 基础币种
	PriceUSD  string
	PriceEUR  string
	Stock     int
	Threshold int
	Strains   []string
}

// SeedPromoCode 演示优惠码
type SeedPromoCode struct {
	Code          string
	DiscountType  string
	DiscountValue int64
	MinOrder      int64
	UsageLimit    *int
}

// DemoCatalog 默认演示目录
var DemoCatalog = []SeedProduct{
	{Name: "Sencha", Price: 225, PriceUSD: "2.50", PriceEUR: "2.30", Stock: 40, Threshold: 5, Strains: []string{"Yabukita", "Saemidori"}},
	{Name: "Matcha", Price: 900, PriceUSD: "9.90", PriceEUR: "9.10", Stock: 15, Threshold: 3},
	{Name: "Da Hong Pao", Price: 1500, PriceUSD: "16.50", PriceEUR: "15.20", Stock: 8, Threshold: 2},
	{Name: "Shu Puer", Price: 1200, PriceUSD: "13.20", PriceEUR: "12.10", Stock: 0, Threshold: 2},
}

// DemoPromoCodes 默认演示优惠码
var DemoPromoCodes = []SeedPromoCode{
	{Code: "WELCOME10", DiscountType: "percentage", DiscountValue: 10},
	{Code: "TEA500", DiscountType: "fixed", DiscountValue: 500, MinOrder: 3000},
}

// SeedDemoData 写入演示目录、库存与优惠码（按名称/代码幂等）
func SeedDemoData(db *gorm.DB, products []SeedProduct, promos []SeedPromoCode) error {
	if db == nil {
		return fmt.Errorf("db is nil")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for _, item := range products {
			var product Product
			err := tx.Where("name = ?", item.Name).First(&product).Error
			if err == nil {
				logger.Infow("seed_product_exists", "name", item.Name, "product_id", product.ID)
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			product = Product{
				Name:     item.Name,
				Price:    MoneyFromInt(item.Price),
				PriceUSD: seedMoney(item.PriceUSD),
				PriceEUR: seedMoney(item.PriceEUR),
				IsActive: true,
			}
			if err := tx.Create(&product).Error; err != nil {
				return fmt.Errorf("create product %s: %w", item.Name, err)
			}
			for _, name := range item.Strains {
				if err := tx.Create(&Strain{ProductID: product.ID, Name: name}).Error; err != nil {
					return fmt.Errorf("create strain %s: %w", name, err)
				}
			}
			inv := Inventory{
				ProductID:         product.ID,
				Quantity:          item.Stock,
				LowStockThreshold: item.Threshold,
			}
			if item.Stock > 0 {
				inv.LastRestockDate = &now
			}
			if err := tx.Create(&inv).Error; err != nil {
				return fmt.Errorf("create inventory %s: %w", item.Name, err)
			}
			logger.Infow("seed_product_created", "name", item.Name, "product_id", product.ID, "stock", item.Stock)
		}

		for _, item := range promos {
			var count int64
			if err := tx.Model(&PromoCode{}).Where("code = ?", item.Code).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			promo := PromoCode{
				Code:           item.Code,
				DiscountType:   item.DiscountType,
				DiscountValue:  MoneyFromInt(item.DiscountValue),
				MinOrderAmount: MoneyFromInt(item.MinOrder),
				UsageLimit:     item.UsageLimit,
				ValidFrom:      now,
				IsActive:       true,
			}
			if err := tx.Create(&promo).Error; err != nil {
				return fmt.Errorf("create promo code %s: %w", item.Code, err)
			}
			logger.Infow("seed_promo_code_created", "code", item.Code)
		}
		return nil
	})
}

func seedMoney(raw string) Money {
	if raw == "" {
		return MoneyFromInt(0)
	}
	return NewMoney(decimal.RequireFromString(raw))
}

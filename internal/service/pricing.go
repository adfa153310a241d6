package service

import (
	"strconv"
	"strings"

	"github.com/leafcart/internal/config"
	"github.com/leafcart/internal/constants"
	"github.com/leafcart/internal/models"

	"github.com/shopspring/decimal"
)

// PricingPolicy 下单计价规则：运费、免运费门槛、积分比例与可用币种
type PricingPolicy struct {
	BaseCurrency          string
	SupportedCurrencies   []string
	StandardDeliveryFee   decimal.Decimal
	ExpressDeliveryFee    decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
	LoyaltyRate           float64
}

// DefaultPricingPolicy 默认规则：标准 100、加急 200、满 2500 免运费、积分 10%
func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		BaseCurrency:          constants.CurrencyBase,
		SupportedCurrencies:   []string{constants.CurrencyBase, constants.CurrencyUSD, constants.CurrencyEUR},
		StandardDeliveryFee:   decimal.NewFromInt(100),
		ExpressDeliveryFee:    decimal.NewFromInt(200),
		FreeDeliveryThreshold: decimal.NewFromInt(2500),
		LoyaltyRate:           0.10,
	}
}

// PricingPolicyFromConfig 由配置构建计价规则，缺省项沿用默认值
func PricingPolicyFromConfig(orderCfg config.OrderConfig, currencyCfg config.CurrencyConfig) PricingPolicy {
	policy := DefaultPricingPolicy()
	if orderCfg.StandardDeliveryFee > 0 {
		policy.StandardDeliveryFee = decimal.NewFromFloat(orderCfg.StandardDeliveryFee)
	}
	if orderCfg.ExpressDeliveryFee > 0 {
		policy.ExpressDeliveryFee = decimal.NewFromFloat(orderCfg.ExpressDeliveryFee)
	}
	if orderCfg.FreeDeliveryThreshold > 0 {
		policy.FreeDeliveryThreshold = decimal.NewFromFloat(orderCfg.FreeDeliveryThreshold)
	}
	if orderCfg.LoyaltyRate > 0 {
		policy.LoyaltyRate = orderCfg.LoyaltyRate
	}
	if base := strings.ToUpper(strings.TrimSpace(currencyCfg.Base)); base != "" {
		policy.BaseCurrency = base
	}
	if len(currencyCfg.Supported) > 0 {
		policy.SupportedCurrencies = currencyCfg.Supported
	}
	return policy
}

// ResolveCurrency 校验并规范化币种，空值取基础币种
func (p PricingPolicy) ResolveCurrency(raw string) (string, error) {
	currency := strings.ToUpper(strings.TrimSpace(raw))
	if currency == "" {
		return p.BaseCurrency, nil
	}
	for _, item := range p.SupportedCurrencies {
		if item == currency {
			return currency, nil
		}
	}
	return "", ErrInvalidCurrency
}

// DeliveryFee 计算运费；折后小计达到门槛时免运费
func (p PricingPolicy) DeliveryFee(method string, discountedSubtotal models.Money) (models.Money, error) {
	var fee decimal.Decimal
	switch normalizeDeliveryMethod(method) {
	case constants.DeliveryMethodStandard:
		fee = p.StandardDeliveryFee
	case constants.DeliveryMethodExpress:
		fee = p.ExpressDeliveryFee
	default:
		return models.Money{}, ErrInvalidDeliveryMethod
	}
	if discountedSubtotal.Decimal.GreaterThanOrEqual(p.FreeDeliveryThreshold) {
		return models.MoneyFromInt(0), nil
	}
	return models.NewMoney(fee), nil
}

func normalizeDeliveryMethod(method string) string {
	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" {
		return constants.DeliveryMethodStandard
	}
	return method
}

func normalizeCurrency(raw string) string {
	currency := strings.ToUpper(strings.TrimSpace(raw))
	if currency == "" {
		return constants.CurrencyBase
	}
	return currency
}

func uintToString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

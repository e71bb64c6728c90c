// Package valueobject defines immutable domain value objects and the
// settlement fee formulas.
package valueobject

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gobuddy/backend/internal/domain/entity"
)

// Platform fee constants. Every settled transaction contributes a flat base
// fee plus a percentage of its fee basis.
var (
	baseSystemFee = decimal.NewFromInt(5)
	systemFeeRate = decimal.RequireFromString("0.12")
	grossDivisor  = decimal.RequireFromString("1.12")
)

// deliveryFeeRule is the flat delivery fee schedule for an errand category:
// a base amount for the first item plus a per-additional-item rate.
type deliveryFeeRule struct {
	Base           decimal.Decimal
	AdditionalItem decimal.Decimal
}

var deliveryFeeRules = map[string]deliveryFeeRule{
	"deliver items":    {Base: decimal.NewFromInt(20), AdditionalItem: decimal.NewFromInt(5)},
	"food delivery":    {Base: decimal.NewFromInt(15), AdditionalItem: decimal.NewFromInt(5)},
	"school materials": {Base: decimal.NewFromInt(10), AdditionalItem: decimal.NewFromInt(5)},
	"printing":         {Base: decimal.NewFromInt(5), AdditionalItem: decimal.NewFromInt(2)},
}

// catalogUnitPrices holds the fallback unit price per errand category, used
// when a line item does not carry an explicit unit price.
var catalogUnitPrices = map[string]decimal.Decimal{
	"deliver items":    decimal.NewFromInt(50),
	"food delivery":    decimal.NewFromInt(60),
	"school materials": decimal.NewFromInt(25),
	"printing":         decimal.NewFromInt(3),
}

// CalculateErrandSystemFee computes the platform fee for a completed errand:
// subtotal over line items, a category-dependent flat delivery fee, then
// 5 + 12% of (subtotal + delivery fee). Malformed item fields contribute
// zero; the function never fails.
func CalculateErrandSystemFee(category string, items []entity.ErrandItem) decimal.Decimal {
	subtotal := decimal.Zero
	totalQuantity := decimal.Zero

	for _, item := range items {
		quantity := parseAmount(item.Quantity)
		if !quantity.IsPositive() {
			continue
		}

		unitPrice := parseAmount(item.UnitPrice)
		if unitPrice.IsZero() {
			unitPrice = catalogUnitPrice(category)
		}

		subtotal = subtotal.Add(unitPrice.Mul(quantity))
		totalQuantity = totalQuantity.Add(quantity)
	}

	deliveryFee := calculateDeliveryFee(category, totalQuantity)

	return baseSystemFee.Add(systemFeeRate.Mul(subtotal.Add(deliveryFee)))
}

// CalculateCommissionSystemFee computes the platform fee for a commission
// given only the final accepted invoice total. The subtotal is reverse-derived
// from the gross formula total = subtotal*1.12 + 5; totals at or below the
// base fee yield a zero fee.
func CalculateCommissionSystemFee(invoiceTotal decimal.Decimal) decimal.Decimal {
	if invoiceTotal.LessThanOrEqual(baseSystemFee) {
		return decimal.Zero
	}

	subtotal := invoiceTotal.Sub(baseSystemFee).Div(grossDivisor)

	return baseSystemFee.Add(systemFeeRate.Mul(subtotal))
}

// calculateDeliveryFee returns the flat delivery fee for a category:
// base + additional-item rate for every item beyond the first. Categories
// without a schedule carry no delivery fee.
func calculateDeliveryFee(category string, totalQuantity decimal.Decimal) decimal.Decimal {
	rule, ok := deliveryFeeRules[normalizeCategory(category)]
	if !ok {
		return decimal.Zero
	}

	extra := totalQuantity.Sub(decimal.NewFromInt(1))
	if extra.IsNegative() {
		extra = decimal.Zero
	}

	return rule.Base.Add(rule.AdditionalItem.Mul(extra))
}

// catalogUnitPrice returns the fallback unit price for a category, or zero
// when the category is not in the catalog.
func catalogUnitPrice(category string) decimal.Decimal {
	if price, ok := catalogUnitPrices[normalizeCategory(category)]; ok {
		return price
	}
	return decimal.Zero
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// parseAmount parses a raw numeric field from errand data. Parse failures
// degrade to zero rather than erroring so that malformed rows never block
// settlement creation.
func parseAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}

	value, err := decimal.NewFromString(raw)
	if err != nil || value.IsNegative() {
		return decimal.Zero
	}
	return value
}

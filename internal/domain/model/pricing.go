package model

import "github.com/shopspring/decimal"

// MinimumCharge is the smallest final price a gateway order may carry.
var MinimumCharge = decimal.NewFromInt(1)

var hundred = decimal.NewFromInt(100)

// Pricing is the breakdown shown at checkout and stored on the transaction.
type Pricing struct {
	OriginalPrice   decimal.Decimal
	DiscountAmount  decimal.Decimal
	FinalPrice      decimal.Decimal
	DiscountPercent int
}

// FullPrice is the breakdown when no promo code applies.
func FullPrice(price decimal.Decimal) Pricing {
	return Pricing{OriginalPrice: price, DiscountAmount: decimal.Zero, FinalPrice: price}
}

// ApplyDiscount rounds the discount to whole units and clamps the final price
// to MinimumCharge. The discount absorbs the clamp.
func ApplyDiscount(price decimal.Decimal, percent int) Pricing {
	if percent <= 0 {
		return FullPrice(price)
	}
	if percent > 100 {
		percent = 100
	}
	discount := price.Mul(decimal.NewFromInt(int64(percent))).Div(hundred).Round(0)
	final := price.Sub(discount)
	if final.LessThan(MinimumCharge) {
		final = MinimumCharge
		discount = price.Sub(MinimumCharge)
	}
	if discount.IsNegative() {
		discount = decimal.Zero
		final = price
	}
	return Pricing{
		OriginalPrice:   price,
		DiscountAmount:  discount,
		FinalPrice:      final,
		DiscountPercent: percent,
	}
}

// ToMinorUnits converts whole units to the gateway's smallest unit (paise, cents).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

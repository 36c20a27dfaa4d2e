package pricing

import "math"

// Money represents a monetary value in minor units of the display currency.
type Money = int64

// ExchangeRate converts the catalog cost currency into the display currency.
// It is passed explicitly so price computation never reads ambient state.
type ExchangeRate float64

// Item carries the cost-basis inputs of a catalog item.
type Item struct {
	CostBasis     float64
	MarkupPercent float64
}

// BundleContent references an item and the quantity bundled.
type BundleContent struct {
	ItemID string
	Qty    int
}

// Summary aggregates computed order totals.
type Summary struct {
	Subtotal Money
	Discount Money
	Total    Money
}

// SellPrice converts an item's cost basis into a display-currency sell price.
// The result is rounded half-up to the nearest multiple of 10 to keep shelf
// prices clean. Inputs are not validated; callers own the preconditions and
// negative inputs propagate into the result.
func SellPrice(it Item, rate ExchangeRate) Money {
	raw := it.CostBasis * float64(rate)
	withMarkup := raw * (1 + it.MarkupPercent/100)
	return Money(math.Floor(withMarkup/10+0.5)) * 10
}

// BundlePrice sums the per-item sell prices of a bundle's contents. Rounding
// is applied per item before summing. Contents referencing an item missing
// from the lookup contribute zero rather than failing; catalog consistency
// is checked elsewhere.
func BundlePrice(contents []BundleContent, items map[string]Item, rate ExchangeRate) Money {
	var total Money
	for _, c := range contents {
		it, ok := items[c.ItemID]
		if !ok {
			continue
		}
		total += SellPrice(it, rate) * Money(c.Qty)
	}
	return total
}

// Compute calculates order totals given already-priced line subtotals and the
// selected discount. The discount is capped at the subtotal so totals never
// go negative.
func Compute(lineSubtotals []Money, discount Money) Summary {
	var subtotal Money
	for _, s := range lineSubtotals {
		if s <= 0 {
			continue
		}
		subtotal += s
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return Summary{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal - discount,
	}
}

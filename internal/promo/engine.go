package promo

import (
	"time"

	"github.com/noah-isme/backend-katalog/internal/pricing"
)

// Kind enumerates the supported discount mechanics.
type Kind string

const (
	KindPercentage Kind = "percentage"
	KindFixed      Kind = "fixed"
	KindBuyXGetY   Kind = "buyXgetY"
)

// Scope restricts which cart lines a percentage or fixed discount applies to.
type Scope string

const (
	ScopeAll      Scope = "all"
	ScopeCategory Scope = "category"
	ScopeProduct  Scope = "product"
)

// Discount is a tagged union over the three discount mechanics. Only the
// fields belonging to the Kind are meaningful; the constructors below keep
// the variants well-formed.
type Discount struct {
	Kind   Kind
	Scope  Scope
	Target string
	// Percent holds the percentage value for KindPercentage (0-100, not
	// clamped here; admin validation owns the bounds).
	Percent float64
	// Amount holds the fixed discount for KindFixed in display currency.
	Amount pricing.Money
	// BuyQty and GetQty configure KindBuyXGetY: every BuyQty purchased units
	// of the target product grant GetQty free units.
	BuyQty int
	GetQty int
}

// Percentage builds a percentage discount for the given scope.
func Percentage(scope Scope, target string, percent float64) Discount {
	return Discount{Kind: KindPercentage, Scope: scope, Target: target, Percent: percent}
}

// Fixed builds a fixed-amount discount for the given scope.
func Fixed(scope Scope, target string, amount pricing.Money) Discount {
	return Discount{Kind: KindFixed, Scope: scope, Target: target, Amount: amount}
}

// BuyXGetY builds a buy-X-get-Y discount targeting one product.
func BuyXGetY(productID string, buyQty, getQty int) Discount {
	return Discount{Kind: KindBuyXGetY, Target: productID, BuyQty: buyQty, GetQty: getQty}
}

// Extra is a fixed-price add-on attached to a cart line. Its price is already
// in display currency and never passes through currency conversion.
type Extra struct {
	ID    string
	Name  string
	Price pricing.Money
}

// CartLine is one priced entry of a cart.
type CartLine struct {
	ProductID string
	Category  string
	UnitPrice pricing.Money
	Qty       int
	Extras    []Extra
}

// LineTotal computes a line's price contribution. The selector is agnostic to
// how a line total is derived; callers decide whether extras count.
type LineTotal func(CartLine) pricing.Money

// DefaultLineTotal prices a line as (unit price + extras) * quantity.
func DefaultLineTotal(line CartLine) pricing.Money {
	unit := line.UnitPrice
	for _, ex := range line.Extras {
		unit += ex.Price
	}
	return unit * pricing.Money(line.Qty)
}

// Offer is a time-bounded promotion optionally carrying a discount. An offer
// without a discount, or whose expiry is not strictly after now, is inactive.
type Offer struct {
	ID        string
	ExpiresAt time.Time
	Discount  *Discount
}

// Active reports whether the offer can be considered at the given instant.
func (o Offer) Active(now time.Time) bool {
	return o.Discount != nil && o.ExpiresAt.After(now)
}

// Selection is the outcome of evaluating offers against a cart. A zero
// Selection means no offer applied.
type Selection struct {
	Discount pricing.Money
	OfferID  string
}

// SelectBest evaluates every active offer against the cart and returns the
// single offer with the strictly greatest discount value. Offers never stack.
// Ties keep the offer seen first in the input slice, which makes selection
// deterministic for equal candidates. An empty cart, no active offers, or no
// candidate with a positive value all yield the zero Selection.
func SelectBest(lines []CartLine, offers []Offer, now time.Time, lineTotal LineTotal) Selection {
	if len(lines) == 0 || len(offers) == 0 {
		return Selection{}
	}
	if lineTotal == nil {
		lineTotal = DefaultLineTotal
	}
	var subtotal pricing.Money
	for _, line := range lines {
		subtotal += lineTotal(line)
	}

	var best Selection
	for _, offer := range offers {
		if !offer.Active(now) {
			continue
		}
		value := candidateValue(lines, *offer.Discount, subtotal, lineTotal)
		if value <= 0 {
			continue
		}
		if value > best.Discount {
			best = Selection{Discount: value, OfferID: offer.ID}
		}
	}
	return best
}

func candidateValue(lines []CartLine, d Discount, subtotal pricing.Money, lineTotal LineTotal) pricing.Money {
	switch d.Kind {
	case KindPercentage:
		eligible := discountableAmount(lines, d, subtotal, lineTotal)
		return pricing.Money(float64(eligible) * d.Percent / 100)
	case KindFixed:
		eligible := discountableAmount(lines, d, subtotal, lineTotal)
		if eligible <= 0 {
			return 0
		}
		if d.Amount > eligible {
			return eligible
		}
		return d.Amount
	case KindBuyXGetY:
		return buyXGetYValue(lines, d)
	default:
		// Unknown kinds are unreachable through the constructors; treat as
		// ineligible rather than failing the whole selection.
		return 0
	}
}

func discountableAmount(lines []CartLine, d Discount, subtotal pricing.Money, lineTotal LineTotal) pricing.Money {
	switch d.Scope {
	case ScopeCategory:
		var sum pricing.Money
		for _, line := range lines {
			if line.Category == d.Target {
				sum += lineTotal(line)
			}
		}
		return sum
	case ScopeProduct:
		var sum pricing.Money
		for _, line := range lines {
			if line.ProductID == d.Target {
				sum += lineTotal(line)
			}
		}
		return sum
	default:
		return subtotal
	}
}

// buyXGetYValue prices the free units at the bare unit price; extras attached
// to free units stay chargeable.
func buyXGetYValue(lines []CartLine, d Discount) pricing.Money {
	if d.BuyQty < 1 || d.GetQty < 1 {
		return 0
	}
	for _, line := range lines {
		if line.ProductID != d.Target {
			continue
		}
		if line.Qty < d.BuyQty {
			return 0
		}
		applications := line.Qty / d.BuyQty
		freeUnits := applications * d.GetQty
		return pricing.Money(freeUnits) * line.UnitPrice
	}
	return 0
}

package promo

import (
	"testing"
	"time"

	"github.com/noah-isme/backend-katalog/internal/pricing"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func activeOffer(id string, d Discount) Offer {
	return Offer{ID: id, ExpiresAt: testNow.Add(24 * time.Hour), Discount: &d}
}

func TestSelectBestEmptyInputs(t *testing.T) {
	offer := activeOffer("A", Percentage(ScopeAll, "", 10))
	line := CartLine{ProductID: "p1", Category: "food", UnitPrice: 1000, Qty: 1}

	if sel := SelectBest(nil, []Offer{offer}, testNow, nil); sel != (Selection{}) {
		t.Fatalf("empty cart must yield zero selection, got %+v", sel)
	}
	if sel := SelectBest([]CartLine{line}, nil, testNow, nil); sel != (Selection{}) {
		t.Fatalf("no offers must yield zero selection, got %+v", sel)
	}
}

func TestSelectBestSkipsExpiredOffers(t *testing.T) {
	lines := []CartLine{{ProductID: "p1", Category: "food", UnitPrice: 1000, Qty: 2}}
	expired := Offer{
		ID:        "big",
		ExpiresAt: testNow.Add(-time.Minute),
		Discount:  &Discount{Kind: KindPercentage, Scope: ScopeAll, Percent: 90},
	}
	small := activeOffer("small", Percentage(ScopeAll, "", 5))

	sel := SelectBest(lines, []Offer{expired, small}, testNow, nil)
	if sel.OfferID != "small" {
		t.Fatalf("expired offer must never win, selected %q", sel.OfferID)
	}
	if sel.Discount != 100 {
		t.Fatalf("expected 5%% of 2000 = 100, got %d", sel.Discount)
	}
}

func TestSelectBestOfferWithoutDiscountIsInactive(t *testing.T) {
	lines := []CartLine{{ProductID: "p1", Category: "food", UnitPrice: 500, Qty: 1}}
	empty := Offer{ID: "empty", ExpiresAt: testNow.Add(time.Hour)}
	if sel := SelectBest(lines, []Offer{empty}, testNow, nil); sel != (Selection{}) {
		t.Fatalf("offer without discount must be ignored, got %+v", sel)
	}
}

func TestSelectBestPicksGreatestValue(t *testing.T) {
	lines := []CartLine{{ProductID: "p1", Category: "food", UnitPrice: 1000, Qty: 2}}
	offerA := activeOffer("A", Percentage(ScopeCategory, "food", 10))
	offerB := activeOffer("B", Fixed(ScopeAll, "", 150))

	sel := SelectBest(lines, []Offer{offerB, offerA}, testNow, nil)
	if sel.OfferID != "A" || sel.Discount != 200 {
		t.Fatalf("expected offer A with 200, got %+v", sel)
	}
}

func TestSelectBestScopedToProductAndCategory(t *testing.T) {
	lines := []CartLine{
		{ProductID: "p1", Category: "food", UnitPrice: 1000, Qty: 1},
		{ProductID: "p2", Category: "drink", UnitPrice: 500, Qty: 2},
	}
	catOffer := activeOffer("cat", Percentage(ScopeCategory, "drink", 10))
	sel := SelectBest(lines, []Offer{catOffer}, testNow, nil)
	if sel.Discount != 100 {
		t.Fatalf("category scope must only count matching lines, got %d", sel.Discount)
	}

	prodOffer := activeOffer("prod", Percentage(ScopeProduct, "p1", 10))
	sel = SelectBest(lines, []Offer{prodOffer}, testNow, nil)
	if sel.Discount != 100 {
		t.Fatalf("product scope must only count matching lines, got %d", sel.Discount)
	}

	missOffer := activeOffer("miss", Percentage(ScopeProduct, "nope", 50))
	if sel = SelectBest(lines, []Offer{missOffer}, testNow, nil); sel != (Selection{}) {
		t.Fatalf("unmatched target must be ineligible, got %+v", sel)
	}
}

func TestSelectBestFixedDiscountCapped(t *testing.T) {
	lines := []CartLine{{ProductID: "p1", Category: "food", UnitPrice: 100, Qty: 1}}
	offer := activeOffer("cap", Fixed(ScopeAll, "", 500))
	sel := SelectBest(lines, []Offer{offer}, testNow, nil)
	if sel.Discount != 100 {
		t.Fatalf("fixed discount must be capped at discountable amount, got %d", sel.Discount)
	}
}

func TestSelectBestBuyXGetY(t *testing.T) {
	lines := []CartLine{{ProductID: "p2", Category: "food", UnitPrice: 300, Qty: 7}}
	offer := activeOffer("bxgy", BuyXGetY("p2", 3, 1))
	sel := SelectBest(lines, []Offer{offer}, testNow, nil)
	// floor(7/3)=2 applications, 2 free units at 300
	if sel.Discount != 600 || sel.OfferID != "bxgy" {
		t.Fatalf("expected 600 from bxgy, got %+v", sel)
	}

	below := []CartLine{{ProductID: "p2", UnitPrice: 300, Qty: 2}}
	if sel = SelectBest(below, []Offer{offer}, testNow, nil); sel != (Selection{}) {
		t.Fatalf("below threshold must be ineligible, got %+v", sel)
	}
}

func TestSelectBestBuyXGetYIgnoresExtras(t *testing.T) {
	lines := []CartLine{{
		ProductID: "p2",
		UnitPrice: 300,
		Qty:       3,
		Extras:    []Extra{{ID: "x", Name: "topping", Price: 50}},
	}}
	offer := activeOffer("bxgy", BuyXGetY("p2", 3, 1))
	sel := SelectBest(lines, []Offer{offer}, testNow, DefaultLineTotal)
	if sel.Discount != 300 {
		t.Fatalf("free units must be priced at bare unit price, got %d", sel.Discount)
	}
}

func TestSelectBestTieBreakFirstSeen(t *testing.T) {
	lines := []CartLine{{ProductID: "p1", Category: "food", UnitPrice: 1000, Qty: 1}}
	first := activeOffer("first", Fixed(ScopeAll, "", 200))
	second := activeOffer("second", Fixed(ScopeAll, "", 200))
	for i := 0; i < 10; i++ {
		sel := SelectBest(lines, []Offer{first, second}, testNow, nil)
		if sel.OfferID != "first" {
			t.Fatalf("tie must keep the first-seen offer, got %q", sel.OfferID)
		}
	}
}

func TestDefaultLineTotalIncludesExtras(t *testing.T) {
	line := CartLine{
		UnitPrice: 1000,
		Qty:       2,
		Extras:    []Extra{{Price: 100}, {Price: 50}},
	}
	if got := DefaultLineTotal(line); got != 2300 {
		t.Fatalf("expected (1000+150)*2 = 2300, got %d", got)
	}
}

func TestSelectBestCustomLineTotal(t *testing.T) {
	lines := []CartLine{{ProductID: "p1", UnitPrice: 1000, Qty: 2, Extras: []Extra{{Price: 500}}}}
	bare := func(l CartLine) pricing.Money { return l.UnitPrice * pricing.Money(l.Qty) }
	offer := activeOffer("pct", Percentage(ScopeAll, "", 10))
	sel := SelectBest(lines, []Offer{offer}, testNow, bare)
	if sel.Discount != 200 {
		t.Fatalf("caller-supplied line total must drive the subtotal, got %d", sel.Discount)
	}
}

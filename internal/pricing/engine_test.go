package pricing

import "testing"

func TestSellPriceRoundsToTensHalfUp(t *testing.T) {
	// 4.2 * 1000 = 4200, markup 10% -> 4620
	got := SellPrice(Item{CostBasis: 4.2, MarkupPercent: 10}, 1000)
	if got != 4620 {
		t.Fatalf("expected 4620, got %d", got)
	}
	// 1.5 * 10 = 15 -> exactly halfway, rounds up to 20
	got = SellPrice(Item{CostBasis: 1.5}, 10)
	if got != 20 {
		t.Fatalf("expected half-up rounding to 20, got %d", got)
	}
	// 1.4 * 10 = 14 -> rounds down to 10
	got = SellPrice(Item{CostBasis: 1.4}, 10)
	if got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
}

func TestSellPriceAlwaysMultipleOfTen(t *testing.T) {
	costs := []float64{0, 0.01, 1, 2.5, 3.33, 99.99, 1234.56}
	markups := []float64{0, 5, 12.5, 100}
	rates := []ExchangeRate{1, 7.3, 1500, 16250.75}
	for _, c := range costs {
		for _, m := range markups {
			for _, r := range rates {
				price := SellPrice(Item{CostBasis: c, MarkupPercent: m}, r)
				if price%10 != 0 {
					t.Fatalf("price %d not a multiple of 10 (cost=%v markup=%v rate=%v)", price, c, m, r)
				}
				if price < 0 {
					t.Fatalf("price %d negative for non-negative inputs", price)
				}
			}
		}
	}
}

func TestSellPriceMonotonic(t *testing.T) {
	base := Item{CostBasis: 10, MarkupPercent: 20}
	rate := ExchangeRate(1000)
	ref := SellPrice(base, rate)
	if SellPrice(Item{CostBasis: 12, MarkupPercent: 20}, rate) < ref {
		t.Fatal("raising cost basis lowered the price")
	}
	if SellPrice(Item{CostBasis: 10, MarkupPercent: 35}, rate) < ref {
		t.Fatal("raising markup lowered the price")
	}
	if SellPrice(base, 1200) < ref {
		t.Fatal("raising exchange rate lowered the price")
	}
}

func TestBundlePriceSumsPerItemRounding(t *testing.T) {
	items := map[string]Item{
		"a": {CostBasis: 1.2},
		"b": {CostBasis: 3.4},
	}
	rate := ExchangeRate(10)
	contents := []BundleContent{{ItemID: "a", Qty: 1}, {ItemID: "b", Qty: 1}}
	want := SellPrice(items["a"], rate) + SellPrice(items["b"], rate)
	if got := BundlePrice(contents, items, rate); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestBundlePriceSkipsMissingItems(t *testing.T) {
	items := map[string]Item{"a": {CostBasis: 5}}
	rate := ExchangeRate(100)
	contents := []BundleContent{
		{ItemID: "a", Qty: 2},
		{ItemID: "deleted", Qty: 3},
	}
	want := SellPrice(items["a"], rate) * 2
	if got := BundlePrice(contents, items, rate); got != want {
		t.Fatalf("missing item must contribute zero: expected %d, got %d", want, got)
	}
	if got := BundlePrice(contents, map[string]Item{}, rate); got != 0 {
		t.Fatalf("bundle with no resolvable contents must price at 0, got %d", got)
	}
}

func TestComputeCapsDiscount(t *testing.T) {
	summary := Compute([]Money{100, 200}, 500)
	if summary.Subtotal != 300 {
		t.Fatalf("expected subtotal 300, got %d", summary.Subtotal)
	}
	if summary.Discount != 300 || summary.Total != 0 {
		t.Fatalf("expected discount capped at subtotal, got discount=%d total=%d", summary.Discount, summary.Total)
	}
	summary = Compute([]Money{1000}, -50)
	if summary.Discount != 0 || summary.Total != 1000 {
		t.Fatalf("negative discount must clamp to zero, got %+v", summary)
	}
}

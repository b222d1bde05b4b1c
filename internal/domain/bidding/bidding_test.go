package bidding

import (
	"errors"
	"testing"

	"facility_workorders/internal/domain/entities"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(v decimal.Decimal) *decimal.Decimal { return &v }

func TestComputeAmounts(t *testing.T) {
	t.Run("labor and material with markup", func(t *testing.T) {
		a, err := ComputeAmounts(AmountInput{
			LaborCost: d("600"), MaterialCost: d("400"), AdditionalCosts: d("50"), DiscountAmount: d("25.5"),
			MarkupPercentage: d("20"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !a.TotalAmount.Equal(d("1024.5")) {
			t.Fatalf("expected total 1024.50, got %s", a.TotalAmount)
		}
		if !a.ClientAmount.Equal(d("1229.4")) {
			t.Fatalf("expected client 1229.40, got %s", a.ClientAmount)
		}
	})

	t.Run("line items drive subtotal", func(t *testing.T) {
		a, err := ComputeAmounts(AmountInput{
			LaborCost: d("999"),
			LineItems: []entities.LineItem{
				{Description: "filter", Quantity: d("3"), UnitPrice: d("12.333")},
				{Description: "labor hour", Quantity: d("2"), UnitPrice: d("80"), Amount: d("160")},
			},
			AdditionalCosts: d("10"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !a.LineItems[0].Amount.Equal(d("37")) {
			t.Fatalf("expected 37.00, got %s", a.LineItems[0].Amount)
		}
		if !a.TotalAmount.Equal(d("207")) {
			t.Fatalf("expected 207.00, got %s", a.TotalAmount)
		}
	})

	t.Run("explicit client amount wins", func(t *testing.T) {
		a, err := ComputeAmounts(AmountInput{LaborCost: d("100"), MarkupPercentage: d("50"), ClientAmount: ptr(d("120"))})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !a.ClientAmount.Equal(d("120")) {
			t.Fatalf("expected explicit 120, got %s", a.ClientAmount)
		}
	})

	t.Run("rejects", func(t *testing.T) {
		cases := map[string]AmountInput{
			"negative labor":     {LaborCost: d("-1")},
			"line item mismatch": {LineItems: []entities.LineItem{{Quantity: d("2"), UnitPrice: d("5"), Amount: d("11")}}},
			"total mismatch":     {LaborCost: d("100"), TotalAmount: ptr(d("90"))},
			"discount too large": {LaborCost: d("10"), DiscountAmount: d("11")},
		}
		for name, in := range cases {
			if _, err := ComputeAmounts(in); !errors.Is(err, ErrInvalidAmounts) {
				t.Fatalf("%s: expected ErrInvalidAmounts, got %v", name, err)
			}
		}
	})
}

func quote(id, wo string, total string) entities.Quote {
	return entities.Quote{ID: id, WorkOrderID: wo, TotalAmount: d(total)}
}

func TestRecommend(t *testing.T) {
	a := quote("qa", "wo-1", "1000")
	b := quote("qb", "wo-1", "1300")
	same := []entities.Quote{a, b}

	t.Run("cheaper quote is approved", func(t *testing.T) {
		r := Recommend(a, same, nil)
		if !r.BenchmarkAmount.Equal(d("1300")) {
			t.Fatalf("expected benchmark 1300, got %s", r.BenchmarkAmount)
		}
		if !r.PercentDiff.Equal(d("-23.08")) {
			t.Fatalf("expected -23.08, got %s", r.PercentDiff)
		}
		if r.Recommendation != Approve || r.BenchmarkSource != SourceSiblings {
			t.Fatalf("unexpected recommendation: %+v", r)
		}
	})

	t.Run("expensive quote is rejected", func(t *testing.T) {
		r := Recommend(b, same, nil)
		if !r.PercentDiff.Equal(d("30")) || r.Recommendation != Reject {
			t.Fatalf("unexpected recommendation: %+v", r)
		}
	})

	t.Run("threshold is inclusive", func(t *testing.T) {
		c := quote("qc", "wo-2", "115")
		r := Recommend(c, []entities.Quote{c, quote("qd", "wo-2", "100")}, nil)
		if !r.PercentDiff.Equal(d("15")) || r.Recommendation != Approve {
			t.Fatalf("unexpected recommendation: %+v", r)
		}
	})

	t.Run("verdict ignores report rounding", func(t *testing.T) {
		c := quote("qc", "wo-2", "1150.04")
		r := Recommend(c, []entities.Quote{c, quote("qd", "wo-2", "1000")}, nil)
		if !r.PercentDiff.Equal(d("15")) {
			t.Fatalf("expected reported 15, got %s", r.PercentDiff)
		}
		if r.Recommendation != Reject {
			t.Fatalf("15.004%% above benchmark must be rejected: %+v", r)
		}
	})

	t.Run("benchmark mean is not rounded before comparing", func(t *testing.T) {
		// mean 10.002 reports as 10; 11.5023 is exactly 15% above the real mean
		c := quote("qc", "wo-4", "11.5023")
		r := Recommend(c, []entities.Quote{c, quote("q1", "wo-4", "10.004"), quote("q2", "wo-4", "10")}, nil)
		if !r.BenchmarkAmount.Equal(d("10")) || !r.PercentDiff.Equal(d("15")) {
			t.Fatalf("unexpected report: %s %s", r.BenchmarkAmount, r.PercentDiff)
		}
		if r.Recommendation != Approve {
			t.Fatalf("expected approve against the exact mean: %+v", r)
		}
	})

	t.Run("lone quote uses system-wide mean", func(t *testing.T) {
		lone := quote("ql", "wo-3", "200")
		r := Recommend(lone, []entities.Quote{lone}, []entities.Quote{a, b, lone})
		if r.BenchmarkSource != SourceSystemWide || r.SampleSize != 3 {
			t.Fatalf("unexpected source: %+v", r)
		}
		if !r.BenchmarkAmount.Equal(d("833.33")) {
			t.Fatalf("expected 833.33, got %s", r.BenchmarkAmount)
		}
		if r.Recommendation != Approve {
			t.Fatalf("expected approve")
		}
	})

	t.Run("only quote anywhere benchmarks itself", func(t *testing.T) {
		lone := quote("ql", "wo-3", "200")
		r := Recommend(lone, nil, nil)
		if r.BenchmarkSource != SourceSelf || !r.PercentDiff.IsZero() {
			t.Fatalf("unexpected recommendation: %+v", r)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		first := Recommend(a, same, nil)
		for i := 0; i < 50; i++ {
			r := Recommend(a, []entities.Quote{b, a}, nil)
			if !r.PercentDiff.Equal(first.PercentDiff) || r.Recommendation != first.Recommendation {
				t.Fatalf("run %d differs: %+v vs %+v", i, r, first)
			}
		}
	})
}

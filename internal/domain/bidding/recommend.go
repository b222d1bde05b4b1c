package bidding

import (
	"facility_workorders/internal/domain/entities"

	"github.com/shopspring/decimal"
)

type Verdict string

const (
	Approve Verdict = "approve"
	Reject  Verdict = "reject"
)

type BenchmarkSource string

const (
	SourceSiblings   BenchmarkSource = "siblings"
	SourceSystemWide BenchmarkSource = "system_wide"
	SourceSelf       BenchmarkSource = "self"
)

// ApproveThreshold is the highest percent above benchmark still recommended.
var ApproveThreshold = decimal.NewFromInt(15)

type Recommendation struct {
	QuoteID         string          `json:"quote_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	BenchmarkAmount decimal.Decimal `json:"benchmark_amount"`
	PercentDiff     decimal.Decimal `json:"percent_diff"`
	Recommendation  Verdict         `json:"recommendation"`
	BenchmarkSource BenchmarkSource `json:"benchmark_source"`
	SampleSize      int             `json:"sample_size"`
}

// Recommend scores q against the mean total of the other quotes for the same
// work order. When q is alone it falls back to the mean of every quote in
// systemWide (q included). Stateless and deterministic.
func Recommend(q entities.Quote, sameWorkOrder, systemWide []entities.Quote) Recommendation {
	var others []decimal.Decimal
	for _, s := range sameWorkOrder {
		if s.ID == q.ID || s.WorkOrderID != q.WorkOrderID {
			continue
		}
		others = append(others, s.TotalAmount)
	}

	source := SourceSiblings
	sample := others
	if len(sample) == 0 {
		source = SourceSystemWide
		sample = []decimal.Decimal{q.TotalAmount}
		for _, s := range systemWide {
			if s.ID == q.ID {
				continue
			}
			sample = append(sample, s.TotalAmount)
		}
		if len(sample) == 1 {
			source = SourceSelf
		}
	}

	// The verdict uses the unrounded figures; only the reported ones are rounded.
	benchmark := mean(sample)
	diff := percentDiff(q.TotalAmount, benchmark)
	verdict := Approve
	if diff.GreaterThan(ApproveThreshold) {
		verdict = Reject
	}
	return Recommendation{
		QuoteID:         q.ID,
		TotalAmount:     q.TotalAmount,
		BenchmarkAmount: benchmark.Round(2),
		PercentDiff:     diff.Round(2),
		Recommendation:  verdict,
		BenchmarkSource: source,
		SampleSize:      len(sample),
	}
}

// Mean returns the arithmetic mean rounded to 2 dp, zero for an empty set.
func Mean(values []decimal.Decimal) decimal.Decimal {
	return mean(values).Round(2)
}

func mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(values))))
}

// PercentDiff is (amount - benchmark) / benchmark * 100 to 2 dp; zero when
// the benchmark is zero.
func PercentDiff(amount, benchmark decimal.Decimal) decimal.Decimal {
	return percentDiff(amount, benchmark).Round(2)
}

func percentDiff(amount, benchmark decimal.Decimal) decimal.Decimal {
	if benchmark.IsZero() {
		return decimal.Zero
	}
	return amount.Sub(benchmark).Mul(hundred).Div(benchmark)
}

package gearing

import (
	"github.com/iwvelando/gearing-dashboard/pkg/mathutil"
	"github.com/iwvelando/gearing-dashboard/pkg/value"
)

// GearingRatioRow is the ratio of a numerator total to a denominator value
// for one period.
type GearingRatioRow struct {
	SortKey     int
	Label       string
	Numerator   value.Amount
	Denominator value.Amount
	Ratio       value.Amount
}

// ComputeRatios left-joins denominator onto numerator by period. Every
// numerator period is kept; a missing or zero denominator leaves the ratio
// missing.
func ComputeRatios(numerator, denominator []PeriodTotal) []GearingRatioRow {
	byPeriod := make(map[int]value.Amount, len(denominator))
	for _, d := range denominator {
		byPeriod[d.SortKey] = d.Amount
	}

	rows := make([]GearingRatioRow, 0, len(numerator))
	for _, n := range numerator {
		den := byPeriod[n.SortKey]
		rows = append(rows, GearingRatioRow{
			SortKey:     n.SortKey,
			Label:       n.Label,
			Numerator:   n.Amount,
			Denominator: den,
			Ratio:       mathutil.Divide(n.Amount, den),
		})
	}
	return rows
}

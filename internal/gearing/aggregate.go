package gearing

import (
	"sort"

	"github.com/iwvelando/gearing-dashboard/pkg/mathutil"
	"github.com/iwvelando/gearing-dashboard/pkg/period"
	"github.com/iwvelando/gearing-dashboard/pkg/value"
)

// PeriodAggregate is the resolved amount for one period and category.
type PeriodAggregate struct {
	SortKey  int
	Label    string
	Category string
	Amount   value.Amount
}

// PeriodTotal is one amount per period, either a single resolved category or
// a sum across several.
type PeriodTotal struct {
	SortKey int
	Label   string
	Amount  value.Amount
}

type groupKey struct {
	sortKey  int
	category string
}

type resolution struct {
	audited     value.Amount
	preliminary value.Amount
}

func (r resolution) amount() value.Amount {
	if r.audited.Valid {
		return r.audited
	}
	return r.preliminary
}

// Resolve picks one amount per (period, category) among the given categories.
// An audited row always beats a preliminary one for the same period and
// category; among rows of equal standing the last in input order wins.
// Missing amounts never win. Results are ordered by period, then by the
// order of categories.
func Resolve(obs []Observation, categories ...string) []PeriodAggregate {
	rank := make(map[string]int, len(categories))
	for i, c := range categories {
		if _, dup := rank[c]; !dup {
			rank[c] = i
		}
	}

	groups := make(map[groupKey]*resolution)
	var order []groupKey
	for _, o := range obs {
		if _, ok := rank[o.Category]; !ok || !o.Amount.Valid {
			continue
		}
		key := groupKey{sortKey: o.Period.SortKey, category: o.Category}
		g, ok := groups[key]
		if !ok {
			g = &resolution{}
			groups[key] = g
			order = append(order, key)
		}
		if o.Period.Audited {
			g.audited = o.Amount
		} else {
			g.preliminary = o.Amount
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].sortKey != order[j].sortKey {
			return order[i].sortKey < order[j].sortKey
		}
		return rank[order[i].category] < rank[order[j].category]
	})

	out := make([]PeriodAggregate, 0, len(order))
	for _, key := range order {
		year, month := period.FromSortKey(key.sortKey)
		out = append(out, PeriodAggregate{
			SortKey:  key.sortKey,
			Label:    period.Label(year, month),
			Category: key.category,
			Amount:   groups[key].amount(),
		})
	}
	return out
}

// SumCategories resolves each category per period and then adds the
// resolved amounts across categories. A period appears when at least one of
// the categories has a value for it.
func SumCategories(obs []Observation, categories ...string) []PeriodTotal {
	var totals []PeriodTotal
	for _, agg := range Resolve(obs, categories...) {
		n := len(totals)
		if n > 0 && totals[n-1].SortKey == agg.SortKey {
			totals[n-1].Amount = mathutil.Add(totals[n-1].Amount, agg.Amount)
			continue
		}
		totals = append(totals, PeriodTotal{SortKey: agg.SortKey, Label: agg.Label, Amount: agg.Amount})
	}
	return totals
}

// SingleSeries is the resolved series of one category.
func SingleSeries(obs []Observation, category string) []PeriodTotal {
	return SumCategories(obs, category)
}

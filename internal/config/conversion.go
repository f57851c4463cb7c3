// Package config defines conversion utilities for configuration objects.
package config

import (
	"fmt"
	"strings"

	"github.com/iwvelando/gearing-dashboard/internal/breakdown"
	"github.com/iwvelando/gearing-dashboard/internal/gearing"
	"github.com/iwvelando/gearing-dashboard/pkg/period"
)

// ToSection converts a SectionConfig to a gearing.Section. A missing kind
// means sum and a missing title falls back to the key. Category names are
// trimmed the same way observation categories are, and blank ones dropped.
func (s SectionConfig) ToSection() gearing.Section {
	categories := make([]string, 0, len(s.Categories))
	for _, c := range s.Categories {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, c)
		}
	}
	kind := gearing.Kind(strings.ToLower(strings.TrimSpace(s.Kind)))
	if kind == "" {
		kind = gearing.KindSum
	}
	title := s.Title
	if title == "" {
		title = s.Key
	}
	return gearing.Section{
		Key:         s.Key,
		Title:       title,
		Kind:        kind,
		Categories:  categories,
		Denominator: strings.TrimSpace(s.Denominator),
	}
}

// GearingSections returns the configured sections, or the dashboard defaults
// when none are configured.
func (c *Configuration) GearingSections() []gearing.Section {
	if len(c.Sections) == 0 {
		return gearing.DefaultSections()
	}
	sections := make([]gearing.Section, 0, len(c.Sections))
	for _, s := range c.Sections {
		sections = append(sections, s.ToSection())
	}
	return sections
}

// ToFilter converts month names to numbers. Unknown months are an error.
func (f FilterConfig) ToFilter() (gearing.Filter, error) {
	filter := gearing.Filter{Years: append([]int(nil), f.Years...)}
	for _, name := range f.Months {
		month, ok := period.MonthFromAbbrev(name)
		if !ok {
			return gearing.Filter{}, fmt.Errorf("unknown month %q in filter", name)
		}
		filter.Months = append(filter.Months, month)
	}
	return filter, nil
}

// ToOptions converts a BreakdownConfig to breakdown.Options.
func (b BreakdownConfig) ToOptions() breakdown.Options {
	return breakdown.Options{
		Periods:    b.Periods,
		KurPen:     b.KurPen,
		Dimensions: b.Dimensions,
		Tenors:     b.Tenors,
	}
}

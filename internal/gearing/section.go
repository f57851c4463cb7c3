package gearing

import (
	"fmt"

	"github.com/iwvelando/gearing-dashboard/pkg/constants"
)

// Kind selects how a section aggregates its categories.
type Kind string

const (
	// KindSum adds resolved amounts across categories per period.
	KindSum Kind = "sum"
	// KindSingle is the resolved series of exactly one category.
	KindSingle Kind = "single"
	// KindRatio divides a KindSum numerator by a single denominator category.
	KindRatio Kind = "ratio"
)

// Section describes one chart/table of the gearing dashboard.
type Section struct {
	Key         string
	Title       string
	Kind        Kind
	Categories  []string
	Denominator string
}

// Validate checks that the section definition is usable.
func (s Section) Validate() error {
	if s.Key == "" {
		return fmt.Errorf("section with title %q has no key", s.Title)
	}
	if len(s.Categories) == 0 {
		return fmt.Errorf("section %s has no categories", s.Key)
	}
	switch s.Kind {
	case KindSum:
	case KindSingle:
		if len(s.Categories) != 1 {
			return fmt.Errorf("section %s of kind single needs exactly one category, got %d", s.Key, len(s.Categories))
		}
	case KindRatio:
		if s.Denominator == "" {
			return fmt.Errorf("section %s of kind ratio needs a denominator category", s.Key)
		}
	default:
		return fmt.Errorf("section %s has unknown kind %q", s.Key, s.Kind)
	}
	return nil
}

// DefaultSections mirrors the outstanding, equity and gearing charts of the
// KUR & PEN dashboard.
func DefaultSections() []Section {
	kur := []string{constants.CategoryKURGen1, constants.CategoryKURGen2}
	kurPen := []string{
		constants.CategoryKURGen1, constants.CategoryKURGen2,
		constants.CategoryPENGen1, constants.CategoryPENGen2,
	}
	return []Section{
		{Key: "os_kur", Title: "OS Penjaminan KUR", Kind: KindSum, Categories: kur},
		{Key: "ekuitas_kur", Title: "Ekuitas KUR", Kind: KindSingle, Categories: []string{constants.CategoryEquityKUR}},
		{Key: "os_kur_pen", Title: "OS Penjaminan KUR dan PEN", Kind: KindSum, Categories: kurPen},
		{Key: "gearing_kur", Title: "Gearing Ratio KUR", Kind: KindRatio, Categories: kur, Denominator: constants.CategoryEquityKUR},
		{Key: "gearing_kur_pen", Title: "Gearing Ratio KUR dan PEN", Kind: KindRatio, Categories: kurPen, Denominator: constants.CategoryEquityKUR},
	}
}

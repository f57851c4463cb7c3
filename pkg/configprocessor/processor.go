// Package configprocessor provides shared configuration processing utilities.
package configprocessor

import (
	"fmt"
	"strings"

	"github.com/iwvelando/gearing-dashboard/pkg/constants"
	"github.com/iwvelando/gearing-dashboard/pkg/period"
)

// Section kinds understood by the gearing pipeline.
const (
	KindSum    = "sum"
	KindSingle = "single"
	KindRatio  = "ratio"
)

// SectionInfo represents section configuration information
type SectionInfo struct {
	Key         string
	Title       string
	Kind        string
	Categories  []string
	Denominator string
}

// FilterInfo represents filter configuration information
type FilterInfo struct {
	Years  []int
	Months []string
}

// Processor handles configuration processing and validation
type Processor struct{}

// NewProcessor creates a new configuration processor
func NewProcessor() *Processor {
	return &Processor{}
}

// ValidateConfiguration validates the configuration and returns warnings
func (p *Processor) ValidateConfiguration(outputFormat string, sections []SectionInfo, filter FilterInfo) []string {
	var warnings []string

	if outputFormat != "" && outputFormat != constants.OutputFormatPretty && outputFormat != constants.OutputFormatCSV {
		warnings = append(warnings, fmt.Sprintf("Output format '%s' is not supported, falling back to '%s'", outputFormat, constants.OutputFormatPretty))
	}

	seen := make(map[string]struct{}, len(sections))
	for _, section := range sections {
		name := section.Key
		if name == "" {
			name = section.Title
		}
		if section.Key == "" {
			warnings = append(warnings, fmt.Sprintf("Section '%s' has no key", section.Title))
		} else if _, dup := seen[section.Key]; dup {
			warnings = append(warnings, fmt.Sprintf("Section '%s' is defined more than once", section.Key))
		}
		seen[section.Key] = struct{}{}

		if len(section.Categories) == 0 {
			warnings = append(warnings, fmt.Sprintf("Section '%s' has no categories", name))
		}

		switch strings.ToLower(section.Kind) {
		case KindSum, "":
		case KindSingle:
			if len(section.Categories) > 1 {
				warnings = append(warnings, fmt.Sprintf("Section '%s' is single but lists %d categories", name, len(section.Categories)))
			}
		case KindRatio:
			if section.Denominator == "" {
				warnings = append(warnings, fmt.Sprintf("Ratio section '%s' has no denominator", name))
			}
			for _, c := range section.Categories {
				if strings.EqualFold(c, section.Denominator) {
					warnings = append(warnings, fmt.Sprintf("Ratio section '%s' uses '%s' as both numerator and denominator", name, c))
				}
			}
		default:
			warnings = append(warnings, fmt.Sprintf("Section '%s' has unknown kind '%s'", name, section.Kind))
		}
	}

	for _, year := range filter.Years {
		if year < constants.MinYear || year > constants.MaxYear {
			warnings = append(warnings, fmt.Sprintf("Filter year %d is outside %d..%d", year, constants.MinYear, constants.MaxYear))
		}
	}
	for _, month := range filter.Months {
		if _, ok := period.MonthFromAbbrev(month); !ok {
			warnings = append(warnings, fmt.Sprintf("Filter month '%s' is not a recognized month", month))
		}
	}

	if len(warnings) == 0 {
		return nil
	}
	return warnings
}

// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/gearing-dashboard/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// ValidateMode checks if the run mode is one the CLI understands.
func ValidateMode(mode string) error {
	switch mode {
	case constants.ModeGearing, constants.ModeBreakdown, constants.ModeServe:
		return nil
	}
	return fmt.Errorf("expected mode of %s, %s or %s, got %s",
		constants.ModeGearing, constants.ModeBreakdown, constants.ModeServe, mode)
}

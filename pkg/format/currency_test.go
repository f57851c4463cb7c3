package format

import (
	"testing"

	"github.com/iwvelando/gearing-dashboard/pkg/value"
)

func TestRupiah(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{1234.56, "Rp 1.234,56"},
		{-1234.56, "-Rp 1.234,56"},
		{0, "Rp 0,00"},
		{1000000, "Rp 1.000.000,00"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := Rupiah(tt.input); got != tt.expected {
				t.Errorf("Rupiah(%v) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRatioAndTrillions(t *testing.T) {
	if got := Ratio(5); got != "5,00x" {
		t.Errorf("Ratio(5) = %q", got)
	}
	if got := Trillions(2.5); got != "2,50 T" {
		t.Errorf("Trillions(2.5) = %q", got)
	}
	if got := Count(12345); got != "12.345" {
		t.Errorf("Count(12345) = %q", got)
	}
}

func TestAmountMissing(t *testing.T) {
	if got := Amount(value.None(), Rupiah); got != "" {
		t.Errorf("Amount(None) = %q, expected blank", got)
	}
	if got := Amount(value.Some(10), Number); got != "10,00" {
		t.Errorf("Amount(10) = %q", got)
	}
}

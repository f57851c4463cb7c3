// Package constants provides shared constants for the gearing-dashboard application.
package constants

// Scaling constants
const (
	// TrillionDivisor converts a Rupiah amount into the "triliun" display unit.
	TrillionDivisor = 1_000_000_000_000

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 sen)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Period constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// SortKeyYearFactor builds a sort key as year*SortKeyYearFactor+month.
	SortKeyYearFactor = 100

	// MinYear and MaxYear bound the years accepted by the period normalizer.
	MinYear = 1900
	MaxYear = 9999

	// TwoDigitYearBase is added to a bare two-digit year.
	TwoDigitYearBase = 2000
)

// Input column names
const (
	ColumnPeriod   = "Periode"
	ColumnValue    = "Value"
	ColumnCategory = "Jenis"
	ColumnMetrics  = "Metrics"

	// CSVSheetName is the sheet name given to a CSV upload.
	CSVSheetName = "CSV"
)

// Category names used by the default gearing sections
const (
	CategoryKURGen1    = "KUR Gen 1"
	CategoryKURGen2    = "KUR Gen 2"
	CategoryPENGen1    = "PEN Gen 1"
	CategoryPENGen2    = "PEN Gen 2"
	CategoryEquityKUR  = "Ekuitas KUR"
	AuditedMarker      = "audit"
	DebtorMetricMarker = "debitur"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Run modes for the CLI
const (
	ModeGearing   = "gearing"
	ModeBreakdown = "breakdown"
	ModeServe     = "serve"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for spreadsheets (16 MB)
	DefaultMaxUploadSizeBytes int64 = 16 * 1024 * 1024

	// DefaultCacheSize is the number of parsed uploads kept in memory.
	DefaultCacheSize = 32
)

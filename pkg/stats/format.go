package stats

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultPrecision is used when a call does not ask for one
	DefaultPrecision = 4
	MinPrecision     = 0
	MaxPrecision     = 10

	labelWidth = 8
)

// ClampPrecision forces precision into [MinPrecision, MaxPrecision]
func ClampPrecision(precision int) int {
	if precision < MinPrecision {
		return MinPrecision
	}
	if precision > MaxPrecision {
		return MaxPrecision
	}
	return precision
}

// FormatValue renders v in fixed-point notation with exactly precision decimals
func FormatValue(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', ClampPrecision(precision), 64)
}

// PercentileLabel names a percentile line by the integer part of its rank, e.g. p99 for 99.9
func PercentileLabel(rank float64) string {
	return "p" + strconv.Itoa(int(rank))
}

// Format renders the report: one "label = value" line per metric in the fixed
// order n, min, max, mean, median, std_dev, then one line per percentile.
func (s Summary) Format(precision int) string {
	lines := []string{
		reportLine("n", strconv.Itoa(s.Count)),
		reportLine("min", FormatValue(s.Min, precision)),
		reportLine("max", FormatValue(s.Max, precision)),
		reportLine("mean", FormatValue(s.Mean, precision)),
		reportLine("median", FormatValue(s.Median, precision)),
		reportLine("std_dev", FormatValue(s.StdDev, precision)),
	}

	for _, p := range s.Percentiles {
		lines = append(lines, reportLine(PercentileLabel(p.Rank), FormatValue(p.Value, precision)))
	}

	return strings.Join(lines, "\n")
}

func reportLine(label, value string) string {
	return fmt.Sprintf("%-*s = %s", labelWidth, label, value)
}

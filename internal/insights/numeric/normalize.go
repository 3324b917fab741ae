// internal/insights/numeric/normalize.go
package numeric

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"adinsight-workers/internal/models"
)

var ErrNotANumber = errors.New("not a number")

// Parse strips currency symbols, thousands separators and trailing unit
// marks ("%", "x") from a token and parses the remainder as a float. It is
// the shared cleanup step for every numeric token the extractors touch.
func Parse(token string) (float64, error) {
	cleaned := strings.TrimSpace(token)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.TrimSuffix(cleaned, "x")
	cleaned = strings.TrimSuffix(cleaned, "X")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, token)
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, token)
	}
	return value, nil
}

// Normalize parses a raw matched token into a typed value whose unit is
// inferred from the metric kind, never from the token's own symbols. A
// failed parse returns ErrNotANumber and the caller drops the item.
func Normalize(token string, kind models.MetricKind) (models.NormalizedValue, error) {
	value, err := Parse(token)
	if err != nil {
		return models.NormalizedValue{}, err
	}
	if kind == models.MetricROAS {
		value = renormalizeRatio(value)
	}
	return models.NormalizedValue{
		Raw:         value,
		Unit:        kind.Unit(),
		DisplayHint: strings.TrimSpace(token),
	}, nil
}

// renormalizeRatio corrects ratio metrics that were historically entered as
// percentages or basis points: values above 100 are treated as basis points
// and divided by 100, values between 0.01 and 1 are treated as fractions and
// multiplied by 100. The result is rounded to two decimals. Values that
// legitimately sit near the range edges are ambiguous; the historical
// behavior is kept as-is.
func renormalizeRatio(value float64) float64 {
	switch {
	case value > 100:
		value = value / 100
	case value > 0.01 && value < 1:
		value = value * 100
	}
	return math.Round(value*100) / 100
}

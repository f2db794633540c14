// Package indicators provides the price-series math used by strategies.
package indicators

import "fmt"

// SMA calculates the simple moving average of the last period values.
func SMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(values) < period {
		return 0, fmt.Errorf("not enough values: need %d, got %d", period, len(values))
	}

	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

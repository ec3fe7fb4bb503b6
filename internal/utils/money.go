package utils

import (
	"fmt"
	"math"
)

// Round2 rounds to two decimals, half away from zero.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// FormatMoney keeps consistent decimal formatting for currency fields.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

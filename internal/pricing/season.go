package pricing

import (
	"time"

	"rentalapi/internal/domain/models"
)

// SeasonRate returns the 21-night reference rate for a stay starting in the
// given month. The season is decided by the start month alone, even when the
// stay crosses a season boundary; a stay starting late high season keeps the
// high rate for every night.
func SeasonRate(startMonth time.Month, cfg models.RateConfig) float64 {
	if cfg.LowSeasonMonths[startMonth] {
		return cfg.BaseRateLowSeason
	}
	return cfg.BaseRateHighSeason
}

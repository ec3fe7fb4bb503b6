package models

import "time"

// RateConfig is the tenant-level pricing configuration. Base rates are quoted
// as a 21-night reference price and prorated linearly per night.
type RateConfig struct {
	BaseRateLowSeason            float64
	BaseRateHighSeason           float64
	LowSeasonMonths              map[time.Month]bool
	LinensOptionPrice            float64
	CleaningOptionPrice          float64
	TouristTaxPerPersonPerDay    float64
	CancellationInsurancePercent float64
}

// DefaultRateConfig seeds the settings row on first run.
func DefaultRateConfig() RateConfig {
	return RateConfig{
		BaseRateLowSeason:  750,
		BaseRateHighSeason: 830,
		LowSeasonMonths: map[time.Month]bool{
			time.January:  true,
			time.February: true,
			time.March:    true,
			time.October:  true,
			time.November: true,
			time.December: true,
		},
		LinensOptionPrice:            20,
		CleaningOptionPrice:          35,
		TouristTaxPerPersonPerDay:    1,
		CancellationInsurancePercent: 6,
	}
}

// PriceBreakdown is the calculator output. Every field, total included, is
// rounded to two decimals independently.
type PriceBreakdown struct {
	BasePrice     float64 `json:"basePrice"`
	LinensPrice   float64 `json:"linensPrice"`
	CleaningPrice float64 `json:"cleaningPrice"`
	Discount      float64 `json:"discount"`
	InsuranceFee  float64 `json:"insuranceFee"`
	TouristTax    float64 `json:"touristTax"`
	TotalPrice    float64 `json:"totalPrice"`
}

package repositories

import (
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	intconfig "rentalapi/internal/config"
	"rentalapi/internal/domain/models"
)

// SettingsRepository loads the single tenant-level rate configuration row.
// The row is read per request; there is no module-level cached config.
type SettingsRepository struct {
	DB *sql.DB
}

func (r SettingsRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const settingsRowID = 1

// Load returns the stored rate configuration, seeding the defaults on first
// run so pricing always has a complete config to work with.
func (r SettingsRepository) Load() (models.RateConfig, error) {
	var (
		cfg    models.RateConfig
		months string
	)
	err := r.db().QueryRow(`
		SELECT base_rate_low_season, base_rate_high_season, low_season_months,
		       linens_option_price, cleaning_option_price,
		       tourist_tax_per_person_per_day, cancellation_insurance_percent
		FROM rate_settings WHERE id=?`, settingsRowID).Scan(
		&cfg.BaseRateLowSeason,
		&cfg.BaseRateHighSeason,
		&months,
		&cfg.LinensOptionPrice,
		&cfg.CleaningOptionPrice,
		&cfg.TouristTaxPerPersonPerDay,
		&cfg.CancellationInsurancePercent,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return r.seedDefaults()
	}
	if err != nil {
		return models.RateConfig{}, TranslateError("rate settings", err)
	}
	cfg.LowSeasonMonths = parseMonthsCSV(months)
	return cfg, nil
}

func (r SettingsRepository) seedDefaults() (models.RateConfig, error) {
	cfg := models.DefaultRateConfig()
	_, err := r.db().Exec(`
		INSERT INTO rate_settings
			(id, base_rate_low_season, base_rate_high_season, low_season_months,
			 linens_option_price, cleaning_option_price,
			 tourist_tax_per_person_per_day, cancellation_insurance_percent)
		VALUES (?,?,?,?,?,?,?,?)`,
		settingsRowID,
		cfg.BaseRateLowSeason,
		cfg.BaseRateHighSeason,
		formatMonthsCSV(cfg.LowSeasonMonths),
		cfg.LinensOptionPrice,
		cfg.CleaningOptionPrice,
		cfg.TouristTaxPerPersonPerDay,
		cfg.CancellationInsurancePercent,
	)
	if err != nil {
		return models.RateConfig{}, TranslateError("rate settings", err)
	}
	return cfg, nil
}

// parseMonthsCSV reads "1,2,11,12" into a month set, dropping anything
// outside 1..12.
func parseMonthsCSV(raw string) map[time.Month]bool {
	out := map[time.Month]bool{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > 12 {
			continue
		}
		out[time.Month(n)] = true
	}
	return out
}

func formatMonthsCSV(months map[time.Month]bool) string {
	nums := make([]int, 0, len(months))
	for m, on := range months {
		if on {
			nums = append(nums, int(m))
		}
	}
	sort.Ints(nums)
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

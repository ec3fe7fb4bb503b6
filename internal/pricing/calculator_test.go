package pricing

import (
	"testing"
	"time"

	"rentalapi/internal/domain"
	"rentalapi/internal/domain/models"
)

func testConfig() models.RateConfig {
	return models.RateConfig{
		BaseRateLowSeason:  750,
		BaseRateHighSeason: 830,
		LowSeasonMonths: map[time.Month]bool{
			time.January:  true,
			time.February: true,
			time.November: true,
			time.December: true,
		},
		LinensOptionPrice:            20,
		CleaningOptionPrice:          35,
		TouristTaxPerPersonPerDay:    1,
		CancellationInsurancePercent: 6,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sevenNightsJanuary() models.Stay {
	return models.Stay{StartDate: date(2025, time.January, 15), EndDate: date(2025, time.January, 22)}
}

func TestCalculateLowSeasonBasePrice(t *testing.T) {
	in := Input{
		Stay:      sevenNightsJanuary(),
		Occupancy: models.Occupancy{Adults: 2},
	}
	got, err := Calculate(in, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 750 / 21 * 7 = 250 exactly
	if got.BasePrice != 250.00 {
		t.Fatalf("base price = %v, want 250.00", got.BasePrice)
	}
}

func TestCalculateHighSeasonBasePriceRounding(t *testing.T) {
	in := Input{
		Stay:      models.Stay{StartDate: date(2025, time.July, 5), EndDate: date(2025, time.July, 12)},
		Occupancy: models.Occupancy{Adults: 2},
	}
	got, err := Calculate(in, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 830 / 21 * 7 = 276.666... rounds to 276.67
	if got.BasePrice != 276.67 {
		t.Fatalf("base price = %v, want 276.67", got.BasePrice)
	}
}

func TestCalculatePercentDiscountOnGrossBase(t *testing.T) {
	in := Input{
		Stay:      sevenNightsJanuary(),
		Occupancy: models.Occupancy{Adults: 2},
		Discount:  models.Discount{Amount: 10, Type: models.DiscountPercent},
	}
	got, err := Calculate(in, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Discount != 25.00 {
		t.Fatalf("discount = %v, want 25.00 (10%% of 250)", got.Discount)
	}
}

func TestCalculateInsuranceOnNetBase(t *testing.T) {
	in := Input{
		Stay:      sevenNightsJanuary(),
		Occupancy: models.Occupancy{Adults: 2},
		Options:   models.OptionSelection{HasInsurance: true},
		Discount:  models.Discount{Amount: 10, Type: models.DiscountPercent},
	}
	got, err := Calculate(in, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 6% of (250 - 25), not of the gross 250
	if got.InsuranceFee != 13.50 {
		t.Fatalf("insurance fee = %v, want 13.50", got.InsuranceFee)
	}
}

func TestCalculateTouristTaxScalesWithPersonsAndNights(t *testing.T) {
	in := Input{
		Stay:      sevenNightsJanuary(),
		Occupancy: models.Occupancy{Adults: 2, Children: 1},
	}
	got, err := Calculate(in, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TouristTax != 21.00 {
		t.Fatalf("tourist tax = %v, want 21.00 (3 persons * 7 nights * 1)", got.TouristTax)
	}
}

func TestCalculateFullScenario(t *testing.T) {
	in := Input{
		Stay:      sevenNightsJanuary(),
		Occupancy: models.Occupancy{Adults: 2, Children: 1},
		Options:   models.OptionSelection{HasLinens: true, HasCleaning: true, HasInsurance: true},
		Discount:  models.Discount{Amount: 10, Type: models.DiscountPercent},
	}
	got, err := Calculate(in, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := models.PriceBreakdown{
		BasePrice:     250.00,
		LinensPrice:   20.00,
		CleaningPrice: 35.00,
		Discount:      25.00,
		InsuranceFee:  13.50,
		TouristTax:    21.00,
		TotalPrice:    314.50,
	}
	if got != want {
		t.Fatalf("breakdown = %+v, want %+v", got, want)
	}
}

func TestCalculateDeterministic(t *testing.T) {
	in := Input{
		Stay:      models.Stay{StartDate: date(2025, time.July, 3), EndDate: date(2025, time.July, 13)},
		Occupancy: models.Occupancy{Adults: 3, Children: 2},
		Options:   models.OptionSelection{HasLinens: true, HasInsurance: true},
		Discount:  models.Discount{Amount: 42.5, Type: models.DiscountAmount},
	}
	cfg := testConfig()
	first, err := Calculate(in, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Calculate(in, cfg)
		if err != nil {
			t.Fatalf("unexpected error on run %d: %v", i, err)
		}
		if again != first {
			t.Fatalf("run %d diverged: %+v vs %+v", i, again, first)
		}
	}
}

func TestCalculateNonPositiveDiscountClampsToZero(t *testing.T) {
	base := Input{
		Stay:      sevenNightsJanuary(),
		Occupancy: models.Occupancy{Adults: 2},
	}
	noDiscount, err := Calculate(base, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, amount := range []float64{0, -5, -100} {
		in := base
		in.Discount = models.Discount{Amount: amount, Type: models.DiscountAmount}
		got, err := Calculate(in, testConfig())
		if err != nil {
			t.Fatalf("discount %v: unexpected error: %v", amount, err)
		}
		if got.Discount != 0 {
			t.Fatalf("discount %v: output discount = %v, want 0", amount, got.Discount)
		}
		if got.TotalPrice != noDiscount.TotalPrice {
			t.Fatalf("discount %v: total = %v, want %v", amount, got.TotalPrice, noDiscount.TotalPrice)
		}
	}
}

func TestCalculateDiscountWithoutTypeIgnored(t *testing.T) {
	in := Input{
		Stay:      sevenNightsJanuary(),
		Occupancy: models.Occupancy{Adults: 1},
		Discount:  models.Discount{Amount: 50},
	}
	got, err := Calculate(in, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Discount != 0 {
		t.Fatalf("discount = %v, want 0 when type is absent", got.Discount)
	}
}

func TestCalculateUnknownDiscountTypeRejected(t *testing.T) {
	in := Input{
		Stay:      sevenNightsJanuary(),
		Occupancy: models.Occupancy{Adults: 1},
		Discount:  models.Discount{Amount: 10, Type: "coupon"},
	}
	if _, err := Calculate(in, testConfig()); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for unknown discount type, got %v", err)
	}
}

func TestCalculateOversizedDiscountNotClamped(t *testing.T) {
	in := Input{
		Stay:      sevenNightsJanuary(),
		Occupancy: models.Occupancy{Adults: 1},
		Discount:  models.Discount{Amount: 400, Type: models.DiscountAmount},
	}
	got, err := Calculate(in, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 250 - 400 = -150 net, plus 7 nights tax for one person
	if got.TotalPrice != -143.00 {
		t.Fatalf("total = %v, want -143.00 (negative net preserved)", got.TotalPrice)
	}
}

func TestCalculateRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name string
		in   Input
	}{
		{"end before start", Input{
			Stay:      models.Stay{StartDate: date(2025, time.March, 10), EndDate: date(2025, time.March, 5)},
			Occupancy: models.Occupancy{Adults: 1},
		}},
		{"end equals start", Input{
			Stay:      models.Stay{StartDate: date(2025, time.March, 10), EndDate: date(2025, time.March, 10)},
			Occupancy: models.Occupancy{Adults: 1},
		}},
		{"zero adults", Input{
			Stay:      sevenNightsJanuary(),
			Occupancy: models.Occupancy{Adults: 0},
		}},
		{"negative children", Input{
			Stay:      sevenNightsJanuary(),
			Occupancy: models.Occupancy{Adults: 1, Children: -1},
		}},
	}
	for _, tc := range cases {
		if _, err := Calculate(tc.in, testConfig()); !domain.IsValidation(err) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

package pricing

import (
	"rentalapi/internal/domain"
	"rentalapi/internal/domain/models"
	"rentalapi/internal/utils"
)

// Base rates are quoted as a price for a 21-night reference stay and
// prorated linearly to the actual number of nights.
const referenceNights = 21

// Input is everything a quote depends on besides the tenant rate config.
type Input struct {
	Stay      models.Stay
	Occupancy models.Occupancy
	Options   models.OptionSelection
	Discount  models.Discount
}

// Calculate prices a stay. Pure: no I/O, identical input gives an identical
// breakdown. Order matters — the insurance fee is a percentage of the base
// price net of discount, not of the gross price and not of the total.
func Calculate(in Input, cfg models.RateConfig) (models.PriceBreakdown, error) {
	if err := validate(in); err != nil {
		return models.PriceBreakdown{}, err
	}

	nights := float64(in.Stay.Nights())
	rate := SeasonRate(in.Stay.StartDate.Month(), cfg)
	basePrice := rate / referenceNights * nights

	discountAmount, err := resolveDiscount(basePrice, in.Discount)
	if err != nil {
		return models.PriceBreakdown{}, err
	}
	// Not clamped: a discount larger than the base price drives the net
	// price (and anything derived from it) negative.
	baseNet := basePrice - discountAmount

	var linens, cleaning, insurance float64
	if in.Options.HasLinens {
		linens = cfg.LinensOptionPrice
	}
	if in.Options.HasCleaning {
		cleaning = cfg.CleaningOptionPrice
	}
	if in.Options.HasInsurance {
		insurance = baseNet * cfg.CancellationInsurancePercent / 100
	}

	touristTax := float64(in.Occupancy.Persons()) * nights * cfg.TouristTaxPerPersonPerDay
	total := baseNet + linens + cleaning + insurance + touristTax

	return models.PriceBreakdown{
		BasePrice:     utils.Round2(basePrice),
		LinensPrice:   utils.Round2(linens),
		CleaningPrice: utils.Round2(cleaning),
		Discount:      utils.Round2(discountAmount),
		InsuranceFee:  utils.Round2(insurance),
		TouristTax:    utils.Round2(touristTax),
		TotalPrice:    utils.Round2(total),
	}, nil
}

func validate(in Input) error {
	if in.Stay.StartDate.IsZero() || in.Stay.EndDate.IsZero() {
		return domain.ValidationError{Field: "startDate", Msg: "start and end dates are required"}
	}
	if !in.Stay.EndDate.After(in.Stay.StartDate) {
		return domain.ValidationError{Field: "endDate", Msg: "end date must be after start date"}
	}
	if in.Occupancy.Adults < 1 {
		return domain.ValidationError{Field: "adults", Msg: "at least one adult is required"}
	}
	if in.Occupancy.Children < 0 {
		return domain.ValidationError{Field: "children", Msg: "children cannot be negative"}
	}
	return nil
}

// resolveDiscount computes the discount on the GROSS base price. A missing
// type or a non-positive amount means no discount; a negative amount never
// raises the price.
func resolveDiscount(basePrice float64, d models.Discount) (float64, error) {
	if d.Amount <= 0 {
		return 0, nil
	}
	switch d.Type {
	case models.DiscountPercent:
		return basePrice * d.Amount / 100, nil
	case models.DiscountAmount:
		return d.Amount, nil
	case "":
		return 0, nil
	default:
		return 0, domain.ValidationError{Field: "discountType", Msg: "must be 'amount' or 'percent'"}
	}
}

package services

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	intconfig "rentalapi/internal/config"
	"rentalapi/internal/domain"
	"rentalapi/internal/domain/models"
	"rentalapi/internal/pricing"
	"rentalapi/internal/repositories"
	"rentalapi/internal/utils"
)

// BookingService owns the booking lifecycle: availability-guarded creation
// and updates, cancellation, atomic delete with the dependent invoice, and
// invoice generation. Conflict and referential checks always run before any
// write, so a rejected operation leaves the store untouched.
type BookingService struct {
	BookingRepo  repositories.BookingRepository
	InvoiceRepo  repositories.InvoiceRepository
	SettingsRepo repositories.SettingsRepository
	DB           *sql.DB
}

func (s BookingService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

// CreateBookingInput carries everything needed to price and persist a stay.
type CreateBookingInput struct {
	PropertyID      int64
	ClientID        int64
	Stay            models.Stay
	Status          models.BookingStatus
	Occupancy       models.Occupancy
	Options         models.OptionSelection
	Discount        models.Discount
	SpecialRequests string
}

// CalculatePrice prices a stay against the stored tenant rates without
// touching any booking. Raises only validation errors.
func (s BookingService) CalculatePrice(in pricing.Input) (models.PriceBreakdown, error) {
	cfg, err := s.SettingsRepo.Load()
	if err != nil {
		return models.PriceBreakdown{}, err
	}
	return pricing.Calculate(in, cfg)
}

// Create prices the stay, then inserts it inside one transaction that first
// locks and re-checks overlapping bookings (SELECT ... FOR UPDATE), so two
// concurrent requests for the same property cannot both pass the check.
func (s BookingService) Create(in CreateBookingInput) (models.Booking, error) {
	if in.PropertyID <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "propertyId", Msg: "property is required"}
	}
	if in.ClientID <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "clientId", Msg: "client is required"}
	}
	status := in.Status
	if status == "" {
		status = models.StatusPending
	}
	if !status.Valid() {
		return models.Booking{}, domain.ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q", in.Status)}
	}

	breakdown, err := s.CalculatePrice(pricing.Input{
		Stay:      in.Stay,
		Occupancy: in.Occupancy,
		Options:   in.Options,
		Discount:  in.Discount,
	})
	if err != nil {
		return models.Booking{}, err
	}

	tx, err := s.db().Begin()
	if err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	overlaps, err := s.BookingRepo.FindOverlapping(tx, in.PropertyID, in.Stay, 0, true)
	if err != nil {
		return models.Booking{}, err
	}
	if len(overlaps) > 0 {
		return models.Booking{}, conflictError(overlaps[0], in.ClientID)
	}

	booking := models.Booking{
		PropertyID:      in.PropertyID,
		ClientID:        in.ClientID,
		Stay:            in.Stay,
		Status:          status,
		Occupancy:       in.Occupancy,
		Options:         in.Options,
		Discount:        in.Discount,
		Breakdown:       breakdown,
		SpecialRequests: in.SpecialRequests,
	}
	if err := s.BookingRepo.InsertTx(tx, &booking); err != nil {
		return models.Booking{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}

	return s.BookingRepo.GetByID(nil, booking.ID)
}

// Update applies a PATCH-style change. A date move or a status change that
// keeps the booking blocking re-checks availability against the new range,
// excluding the booking itself; a conflicting move rolls back untouched.
func (s BookingService) Update(id int64, upd models.BookingUpdate) (models.Booking, error) {
	if id <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "id", Msg: "invalid booking id"}
	}
	if upd.Status != nil && !upd.Status.Valid() {
		return models.Booking{}, domain.ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q", *upd.Status)}
	}

	var cfg models.RateConfig
	if upd.TouchesPricing() {
		loaded, err := s.SettingsRepo.Load()
		if err != nil {
			return models.Booking{}, err
		}
		cfg = loaded
	}

	tx, err := s.db().Begin()
	if err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	current, err := s.BookingRepo.GetByID(tx, id)
	if err != nil {
		return models.Booking{}, err
	}
	merged := mergeUpdate(current, upd)

	if merged.Status.BlocksProperty() && (upd.TouchesDates() || upd.Status != nil) {
		overlaps, err := s.BookingRepo.FindOverlapping(tx, merged.PropertyID, merged.Stay, merged.ID, true)
		if err != nil {
			return models.Booking{}, err
		}
		if len(overlaps) > 0 {
			return models.Booking{}, conflictError(overlaps[0], merged.ClientID)
		}
	}

	if upd.TouchesPricing() {
		breakdown, err := pricing.Calculate(pricing.Input{
			Stay:      merged.Stay,
			Occupancy: merged.Occupancy,
			Options:   merged.Options,
			Discount:  merged.Discount,
		}, cfg)
		if err != nil {
			return models.Booking{}, err
		}
		merged.Breakdown = breakdown
	}

	if err := s.BookingRepo.UpdateTx(tx, merged); err != nil {
		return models.Booking{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}

	return s.BookingRepo.GetByID(nil, id)
}

// Cancel keeps the record but flips it to cancelled, after which the
// availability scan ignores it.
func (s BookingService) Cancel(id int64) (models.Booking, error) {
	status := models.StatusCancelled
	return s.Update(id, models.BookingUpdate{Status: &status})
}

// Delete removes the booking and its dependent invoice in one transaction:
// either both rows go or neither does, so a crash can never leave an
// orphaned invoice behind.
func (s BookingService) Delete(id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "invalid booking id"}
	}
	tx, err := s.db().Begin()
	if err != nil {
		return domain.InternalError{Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.InvoiceRepo.DeleteByBookingTx(tx, id); err != nil {
		return err
	}
	existed, err := s.BookingRepo.DeleteTx(tx, id)
	if err != nil {
		return err
	}
	if !existed {
		return domain.NotFoundError{Resource: "booking"}
	}
	if err := tx.Commit(); err != nil {
		return domain.InternalError{Err: err}
	}
	return nil
}

// GenerateInvoice creates the booking's single invoice. Allowed only once,
// and only when the stored total is strictly positive. Does not change the
// booking status.
func (s BookingService) GenerateInvoice(id int64) (models.Invoice, error) {
	booking, err := s.BookingRepo.GetByID(nil, id)
	if err != nil {
		return models.Invoice{}, err
	}
	if booking.InvoiceID != nil {
		return models.Invoice{}, domain.ReferentialError{Resource: "invoice", Msg: "booking already has an invoice"}
	}
	if booking.Breakdown.TotalPrice <= 0 {
		return models.Invoice{}, domain.ValidationError{Field: "totalPrice", Msg: "must be positive to generate an invoice"}
	}

	tx, err := s.db().Begin()
	if err != nil {
		return models.Invoice{}, domain.InternalError{Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	invoice := models.Invoice{
		BookingID: booking.ID,
		Number:    uuid.NewString(),
		Amount:    booking.Breakdown.TotalPrice,
		IssuedAt:  utils.NowUTC(),
	}
	// Unique key on booking_id backs the pre-check: a concurrent duplicate
	// surfaces here as a ReferentialError.
	if err := s.InvoiceRepo.InsertTx(tx, &invoice); err != nil {
		return models.Invoice{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Invoice{}, domain.InternalError{Err: err}
	}
	return invoice, nil
}

func mergeUpdate(b models.Booking, upd models.BookingUpdate) models.Booking {
	if upd.StartDate != nil {
		b.Stay.StartDate = *upd.StartDate
	}
	if upd.EndDate != nil {
		b.Stay.EndDate = *upd.EndDate
	}
	if upd.Status != nil {
		b.Status = *upd.Status
	}
	if upd.Adults != nil {
		b.Occupancy.Adults = *upd.Adults
	}
	if upd.Children != nil {
		b.Occupancy.Children = *upd.Children
	}
	if upd.HasLinens != nil {
		b.Options.HasLinens = *upd.HasLinens
	}
	if upd.HasCleaning != nil {
		b.Options.HasCleaning = *upd.HasCleaning
	}
	if upd.HasInsurance != nil {
		b.Options.HasInsurance = *upd.HasInsurance
	}
	if upd.Discount != nil {
		b.Discount.Amount = *upd.Discount
	}
	if upd.DiscountType != nil {
		b.Discount.Type = *upd.DiscountType
	}
	if upd.SpecialRequests != nil {
		b.SpecialRequests = *upd.SpecialRequests
	}
	return b
}

func conflictError(existing models.Booking, clientID int64) domain.ConflictError {
	same := clientID != 0 && existing.ClientID == clientID
	msg := "property already reserved by another client for these dates"
	if same {
		msg = "you already have a booking for these dates"
	}
	return domain.ConflictError{
		Resource:     "booking",
		Msg:          msg,
		StartDate:    utils.FormatDate(existing.Stay.StartDate),
		EndDate:      utils.FormatDate(existing.Stay.EndDate),
		ClientName:   existing.ClientName,
		IsSameClient: same,
	}
}

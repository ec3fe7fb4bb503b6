package repositories

import (
	"database/sql"

	intconfig "rentalapi/internal/config"
	intdb "rentalapi/internal/db"
	"rentalapi/internal/domain/models"
)

// BookingRepository wraps all bookings-table access. Transactional writes
// take an explicit *sql.Tx so the service controls commit boundaries.
type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// Runner is the subset of *sql.DB / *sql.Tx the read queries need.
type Runner interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
}

const bookingColumns = `
	b.id, b.property_id, b.client_id, COALESCE(c.name,''),
	b.start_date, b.end_date, b.status, b.adults, b.children,
	b.has_linens, b.has_cleaning, b.has_insurance,
	b.discount, b.discount_type,
	b.base_price, b.linens_price, b.cleaning_price, b.discount_amount,
	b.insurance_fee, b.tourist_tax, b.total_price,
	COALESCE(b.special_requests,''), i.id,
	b.created_at, b.updated_at`

const bookingFrom = `
	FROM bookings b
	LEFT JOIN clients c ON c.id = b.client_id
	LEFT JOIN invoices i ON i.booking_id = b.id`

func scanBooking(row interface{ Scan(dest ...any) error }) (models.Booking, error) {
	var (
		b         models.Booking
		invoiceID sql.NullInt64
	)
	err := row.Scan(
		&b.ID, &b.PropertyID, &b.ClientID, &b.ClientName,
		&b.Stay.StartDate, &b.Stay.EndDate, &b.Status,
		&b.Occupancy.Adults, &b.Occupancy.Children,
		&b.Options.HasLinens, &b.Options.HasCleaning, &b.Options.HasInsurance,
		&b.Discount.Amount, &b.Discount.Type,
		&b.Breakdown.BasePrice, &b.Breakdown.LinensPrice, &b.Breakdown.CleaningPrice,
		&b.Breakdown.Discount, &b.Breakdown.InsuranceFee, &b.Breakdown.TouristTax,
		&b.Breakdown.TotalPrice,
		&b.SpecialRequests, &invoiceID,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return models.Booking{}, err
	}
	if invoiceID.Valid {
		id := invoiceID.Int64
		b.InvoiceID = &id
	}
	return b, nil
}

// GetByID loads one booking with its client name and invoice reference.
// Pass a *sql.Tx to read inside a transaction, or nil for the shared DB.
func (r BookingRepository) GetByID(q Runner, id int64) (models.Booking, error) {
	if q == nil {
		q = r.db()
	}
	b, err := scanBooking(q.QueryRow(
		`SELECT`+bookingColumns+bookingFrom+` WHERE b.id=? LIMIT 1`, id))
	if err != nil {
		return models.Booking{}, TranslateError("booking", err)
	}
	return b, nil
}

// List returns all bookings, newest stay first.
func (r BookingRepository) List() ([]models.Booking, error) {
	rows, err := r.db().Query(
		`SELECT` + bookingColumns + bookingFrom + ` ORDER BY b.start_date DESC, b.id DESC`)
	if err != nil {
		return nil, TranslateError("bookings", err)
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, TranslateError("bookings", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, TranslateError("bookings", err)
	}
	return out, nil
}

// FindOverlapping returns every non-cancelled booking on the property whose
// [start, end) interval intersects the candidate stay. Half-open semantics:
// a booking ending on the candidate's start day is a turnover, not a
// conflict. excludeID keeps an updated booking from conflicting with itself.
// With forUpdate the matched rows stay locked until the caller's transaction
// ends, closing the check-then-act window between check and write.
func (r BookingRepository) FindOverlapping(q Runner, propertyID int64, stay models.Stay, excludeID int64, forUpdate bool) ([]models.Booking, error) {
	if q == nil {
		q = r.db()
	}
	query := `
		SELECT b.id, b.property_id, b.client_id, COALESCE(c.name,''),
		       b.start_date, b.end_date, b.status
		FROM bookings b
		LEFT JOIN clients c ON c.id = b.client_id
		WHERE b.property_id = ?
		  AND b.status <> 'cancelled'
		  AND b.start_date < ?
		  AND b.end_date > ?
		  AND (? = 0 OR b.id <> ?)
		ORDER BY b.start_date`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := q.Query(query, propertyID, stay.EndDate, stay.StartDate, excludeID, excludeID)
	if err != nil {
		return nil, TranslateError("bookings", err)
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(
			&b.ID, &b.PropertyID, &b.ClientID, &b.ClientName,
			&b.Stay.StartDate, &b.Stay.EndDate, &b.Status,
		); err != nil {
			return nil, TranslateError("bookings", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, TranslateError("bookings", err)
	}
	return out, nil
}

// InsertTx persists a new booking inside the caller's transaction and fills
// in the generated id.
func (r BookingRepository) InsertTx(tx *sql.Tx, b *models.Booking) error {
	res, err := tx.Exec(`
		INSERT INTO bookings
			(property_id, client_id, start_date, end_date, status,
			 adults, children, has_linens, has_cleaning, has_insurance,
			 discount, discount_type,
			 base_price, linens_price, cleaning_price, discount_amount,
			 insurance_fee, tourist_tax, total_price, special_requests)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.PropertyID, b.ClientID, b.Stay.StartDate, b.Stay.EndDate, string(b.Status),
		b.Occupancy.Adults, b.Occupancy.Children,
		b.Options.HasLinens, b.Options.HasCleaning, b.Options.HasInsurance,
		b.Discount.Amount, b.Discount.Type,
		b.Breakdown.BasePrice, b.Breakdown.LinensPrice, b.Breakdown.CleaningPrice,
		b.Breakdown.Discount, b.Breakdown.InsuranceFee, b.Breakdown.TouristTax,
		b.Breakdown.TotalPrice, intdb.NullIfEmpty(b.SpecialRequests),
	)
	if err != nil {
		return TranslateError("booking", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return TranslateError("booking", err)
	}
	b.ID = id
	return nil
}

// UpdateTx writes every mutable column of an already-merged booking.
func (r BookingRepository) UpdateTx(tx *sql.Tx, b models.Booking) error {
	_, err := tx.Exec(`
		UPDATE bookings SET
			start_date=?, end_date=?, status=?,
			adults=?, children=?, has_linens=?, has_cleaning=?, has_insurance=?,
			discount=?, discount_type=?,
			base_price=?, linens_price=?, cleaning_price=?, discount_amount=?,
			insurance_fee=?, tourist_tax=?, total_price=?, special_requests=?
		WHERE id=?`,
		b.Stay.StartDate, b.Stay.EndDate, string(b.Status),
		b.Occupancy.Adults, b.Occupancy.Children,
		b.Options.HasLinens, b.Options.HasCleaning, b.Options.HasInsurance,
		b.Discount.Amount, b.Discount.Type,
		b.Breakdown.BasePrice, b.Breakdown.LinensPrice, b.Breakdown.CleaningPrice,
		b.Breakdown.Discount, b.Breakdown.InsuranceFee, b.Breakdown.TouristTax,
		b.Breakdown.TotalPrice, intdb.NullIfEmpty(b.SpecialRequests),
		b.ID,
	)
	if err != nil {
		return TranslateError("booking", err)
	}
	return nil
}

// DeleteTx removes the booking row and reports whether it existed.
func (r BookingRepository) DeleteTx(tx *sql.Tx, id int64) (bool, error) {
	res, err := tx.Exec(`DELETE FROM bookings WHERE id=?`, id)
	if err != nil {
		return false, TranslateError("booking", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, TranslateError("booking", err)
	}
	return affected > 0, nil
}

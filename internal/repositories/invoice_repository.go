package repositories

import (
	"database/sql"

	intconfig "rentalapi/internal/config"
	"rentalapi/internal/domain/models"
)

// InvoiceRepository wraps invoice-table access. A booking owns at most one
// invoice; the table enforces that with a unique key on booking_id.
type InvoiceRepository struct {
	DB *sql.DB
}

func (r InvoiceRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// GetByBookingID loads a booking's invoice if one exists.
func (r InvoiceRepository) GetByBookingID(q Runner, bookingID int64) (models.Invoice, error) {
	if q == nil {
		q = r.db()
	}
	var inv models.Invoice
	err := q.QueryRow(`
		SELECT id, booking_id, number, amount, issued_at
		FROM invoices WHERE booking_id=? LIMIT 1`, bookingID).Scan(
		&inv.ID, &inv.BookingID, &inv.Number, &inv.Amount, &inv.IssuedAt,
	)
	if err != nil {
		return models.Invoice{}, TranslateError("invoice", err)
	}
	return inv, nil
}

// InsertTx creates the invoice row; a duplicate booking_id trips the unique
// key and comes back as a ReferentialError.
func (r InvoiceRepository) InsertTx(tx *sql.Tx, inv *models.Invoice) error {
	res, err := tx.Exec(`
		INSERT INTO invoices (booking_id, number, amount, issued_at)
		VALUES (?,?,?,?)`,
		inv.BookingID, inv.Number, inv.Amount, inv.IssuedAt,
	)
	if err != nil {
		return TranslateError("invoice", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return TranslateError("invoice", err)
	}
	inv.ID = id
	return nil
}

// DeleteByBookingTx removes the dependent invoice ahead of a booking delete.
// No rows is fine — not every booking has been invoiced.
func (r InvoiceRepository) DeleteByBookingTx(tx *sql.Tx, bookingID int64) error {
	if _, err := tx.Exec(`DELETE FROM invoices WHERE booking_id=?`, bookingID); err != nil {
		return TranslateError("invoice", err)
	}
	return nil
}

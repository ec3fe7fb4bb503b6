package db

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
)

type QueryRower interface {
	QueryRow(query string, args ...any) *sql.Row
}

func HasTable(q QueryRower, table string) bool {
	var name sql.NullString
	err := q.QueryRow(`
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		LIMIT 1
	`, table).Scan(&name)

	if err != nil {
		// bad connection -> false, caller handles
		if errors.Is(err, driver.ErrBadConn) {
			return false
		}
		return false
	}
	return name.Valid && name.String != ""
}

func HasColumn(q QueryRower, table, column string) bool {
	var name sql.NullString
	err := q.QueryRow(`
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		  AND column_name = ?
		LIMIT 1
	`, table, column).Scan(&name)

	if err != nil {
		return false
	}
	return name.Valid && name.String != ""
}

// NullIfEmpty helps store optional strings without wiping existing data.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var schemaDDL = []struct {
	table string
	ddl   string
}{
	{"properties", `
CREATE TABLE IF NOT EXISTS properties (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`},
	{"clients", `
CREATE TABLE IF NOT EXISTS clients (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL DEFAULT '',
	phone VARCHAR(100) NOT NULL DEFAULT '',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`},
	{"rate_settings", `
CREATE TABLE IF NOT EXISTS rate_settings (
	id TINYINT PRIMARY KEY,
	base_rate_low_season DECIMAL(10,2) NOT NULL,
	base_rate_high_season DECIMAL(10,2) NOT NULL,
	low_season_months VARCHAR(50) NOT NULL,
	linens_option_price DECIMAL(10,2) NOT NULL,
	cleaning_option_price DECIMAL(10,2) NOT NULL,
	tourist_tax_per_person_per_day DECIMAL(10,2) NOT NULL,
	cancellation_insurance_percent DECIMAL(10,2) NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	property_id BIGINT NOT NULL,
	client_id BIGINT NOT NULL,
	start_date DATE NOT NULL,
	end_date DATE NOT NULL,
	status ENUM('pending','confirmed','cancelled','blocked') NOT NULL DEFAULT 'pending',
	adults INT NOT NULL DEFAULT 1,
	children INT NOT NULL DEFAULT 0,
	has_linens TINYINT(1) NOT NULL DEFAULT 0,
	has_cleaning TINYINT(1) NOT NULL DEFAULT 0,
	has_insurance TINYINT(1) NOT NULL DEFAULT 0,
	discount DECIMAL(10,2) NOT NULL DEFAULT 0,
	discount_type VARCHAR(20) NOT NULL DEFAULT '',
	base_price DECIMAL(10,2) NOT NULL DEFAULT 0,
	linens_price DECIMAL(10,2) NOT NULL DEFAULT 0,
	cleaning_price DECIMAL(10,2) NOT NULL DEFAULT 0,
	discount_amount DECIMAL(10,2) NOT NULL DEFAULT 0,
	insurance_fee DECIMAL(10,2) NOT NULL DEFAULT 0,
	tourist_tax DECIMAL(10,2) NOT NULL DEFAULT 0,
	total_price DECIMAL(10,2) NOT NULL DEFAULT 0,
	special_requests TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_property_dates (property_id, start_date, end_date),
	CONSTRAINT fk_bookings_property FOREIGN KEY (property_id) REFERENCES properties(id),
	CONSTRAINT fk_bookings_client FOREIGN KEY (client_id) REFERENCES clients(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`},
	{"invoices", `
CREATE TABLE IF NOT EXISTS invoices (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	booking_id BIGINT NOT NULL,
	number VARCHAR(64) NOT NULL,
	amount DECIMAL(10,2) NOT NULL,
	issued_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_invoice_booking (booking_id),
	CONSTRAINT fk_invoices_booking FOREIGN KEY (booking_id) REFERENCES bookings(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`},
}

// EnsureSchema creates missing tables at startup. Order matters: bookings
// references properties and clients, invoices references bookings.
func EnsureSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("db not available")
	}
	for _, s := range schemaDDL {
		if HasTable(db, s.table) {
			continue
		}
		if _, err := db.Exec(s.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", s.table, err)
		}
	}
	// bookings tables created before the notes feature lack this column
	if !HasColumn(db, "bookings", "special_requests") {
		if _, err := db.Exec(`ALTER TABLE bookings ADD COLUMN special_requests TEXT`); err != nil {
			return fmt.Errorf("add bookings.special_requests: %w", err)
		}
	}
	return nil
}

package models

import "time"

// Invoice is the single billing record a booking may own.
type Invoice struct {
	ID        int64
	BookingID int64
	Number    string
	Amount    float64
	IssuedAt  time.Time
}

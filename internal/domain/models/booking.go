package models

import (
	"math"
	"time"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusBlocked   BookingStatus = "blocked"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusBlocked:
		return true
	}
	return false
}

// BlocksProperty reports whether a booking in this status occupies the
// property. Cancelled bookings are the only ones the availability scan skips.
func (s BookingStatus) BlocksProperty() bool {
	return s != StatusCancelled
}

// Stay is a half-open interval [StartDate, EndDate): checkout morning and
// check-in afternoon may share a calendar day without overlapping.
type Stay struct {
	StartDate time.Time
	EndDate   time.Time
}

func (s Stay) Nights() int {
	return int(math.Ceil(s.EndDate.Sub(s.StartDate).Hours() / 24))
}

func (s Stay) Overlaps(other Stay) bool {
	return s.StartDate.Before(other.EndDate) && other.StartDate.Before(s.EndDate)
}

type Occupancy struct {
	Adults   int
	Children int
}

func (o Occupancy) Persons() int { return o.Adults + o.Children }

type OptionSelection struct {
	HasLinens    bool
	HasCleaning  bool
	HasInsurance bool
}

const (
	DiscountAmount  = "amount"
	DiscountPercent = "percent"
)

// Discount of zero amount or empty type means no discount.
type Discount struct {
	Amount float64
	Type   string
}

// Booking is the persisted reservation. A blocked booking is a manual hold
// that occupies the property without a real guest stay.
type Booking struct {
	ID              int64
	PropertyID      int64
	ClientID        int64
	ClientName      string
	Stay            Stay
	Status          BookingStatus
	Occupancy       Occupancy
	Options         OptionSelection
	Discount        Discount
	Breakdown       PriceBreakdown
	SpecialRequests string
	InvoiceID       *int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BookingUpdate supports PATCH-style updates via key presence.
type BookingUpdate struct {
	StartDate       *time.Time
	EndDate         *time.Time
	Status          *BookingStatus
	Adults          *int
	Children        *int
	HasLinens       *bool
	HasCleaning     *bool
	HasInsurance    *bool
	Discount        *float64
	DiscountType    *string
	SpecialRequests *string
}

// TouchesPricing reports whether the patch changes any input of the price
// calculation, which forces the breakdown to be recomputed.
func (u BookingUpdate) TouchesPricing() bool {
	return u.StartDate != nil || u.EndDate != nil ||
		u.Adults != nil || u.Children != nil ||
		u.HasLinens != nil || u.HasCleaning != nil || u.HasInsurance != nil ||
		u.Discount != nil || u.DiscountType != nil
}

// TouchesDates reports whether the patch moves the stay, which forces the
// availability check to run again against the new range.
func (u BookingUpdate) TouchesDates() bool {
	return u.StartDate != nil || u.EndDate != nil
}

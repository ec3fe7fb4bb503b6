package services

import (
	"time"

	"rentalapi/internal/domain"
	"rentalapi/internal/domain/models"
	"rentalapi/internal/repositories"
)

// Conflict describes one existing booking that blocks a candidate stay.
type Conflict struct {
	BookingID    int64
	StartDate    time.Time
	EndDate      time.Time
	ClientName   string
	IsSameClient bool
}

// AvailabilityService answers "is this property free for these dates".
// It is read-only; the locking variant used during writes lives in
// BookingService so the lock shares the write transaction.
type AvailabilityService struct {
	BookingRepo repositories.BookingRepository
}

// FindConflicts reports every non-cancelled booking overlapping the stay.
// clientID, when known, attributes each conflict: the caller can tell the
// client "you already booked this stay" instead of "property is taken".
// excludeID must be the booking's own id when re-checking an update.
func (s AvailabilityService) FindConflicts(propertyID int64, stay models.Stay, excludeID, clientID int64) ([]Conflict, error) {
	if propertyID <= 0 {
		return nil, domain.ValidationError{Field: "propertyId", Msg: "property is required"}
	}
	if stay.StartDate.IsZero() || stay.EndDate.IsZero() {
		return nil, domain.ValidationError{Field: "startDate", Msg: "start and end dates are required"}
	}
	if !stay.EndDate.After(stay.StartDate) {
		return nil, domain.ValidationError{Field: "endDate", Msg: "end date must be after start date"}
	}

	rows, err := s.BookingRepo.FindOverlapping(nil, propertyID, stay, excludeID, false)
	if err != nil {
		return nil, err
	}
	return toConflicts(rows, clientID), nil
}

func toConflicts(rows []models.Booking, clientID int64) []Conflict {
	out := make([]Conflict, 0, len(rows))
	for _, b := range rows {
		out = append(out, Conflict{
			BookingID:    b.ID,
			StartDate:    b.Stay.StartDate,
			EndDate:      b.Stay.EndDate,
			ClientName:   b.ClientName,
			IsSameClient: clientID != 0 && b.ClientID == clientID,
		})
	}
	return out
}

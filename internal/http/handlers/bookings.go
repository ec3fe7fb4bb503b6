package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"rentalapi/internal/domain"
	"rentalapi/internal/domain/models"
	"rentalapi/internal/http/middleware"
	"rentalapi/internal/pricing"
	"rentalapi/internal/services"
	"rentalapi/internal/utils"

	"github.com/gin-gonic/gin"
)

type calculatePriceRequest struct {
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate"`
	Adults       int     `json:"adults"`
	Children     int     `json:"children"`
	HasLinens    bool    `json:"hasLinens"`
	HasCleaning  bool    `json:"hasCleaning"`
	HasInsurance bool    `json:"hasCancellationInsurance"`
	Discount     float64 `json:"discount"`
	DiscountType string  `json:"discountType"`
}

type checkAvailabilityRequest struct {
	PropertyID int64  `json:"propertyId"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	ClientID   int64  `json:"clientId"`
}

type createBookingRequest struct {
	PropertyID      int64   `json:"propertyId"`
	ClientID        int64   `json:"clientId"`
	StartDate       string  `json:"startDate"`
	EndDate         string  `json:"endDate"`
	Status          string  `json:"status"`
	Adults          int     `json:"adults"`
	Children        int     `json:"children"`
	HasLinens       bool    `json:"hasLinens"`
	HasCleaning     bool    `json:"hasCleaning"`
	HasInsurance    bool    `json:"hasCancellationInsurance"`
	Discount        float64 `json:"discount"`
	DiscountType    string  `json:"discountType"`
	SpecialRequests string  `json:"specialRequests"`
}

// updateBookingRequest mirrors the PATCH contract: only keys present in the
// payload are applied.
type updateBookingRequest struct {
	StartDate       *string  `json:"startDate"`
	EndDate         *string  `json:"endDate"`
	Status          *string  `json:"status"`
	Adults          *int     `json:"adults"`
	Children        *int     `json:"children"`
	HasLinens       *bool    `json:"hasLinens"`
	HasCleaning     *bool    `json:"hasCleaning"`
	HasInsurance    *bool    `json:"hasCancellationInsurance"`
	Discount        *float64 `json:"discount"`
	DiscountType    *string  `json:"discountType"`
	SpecialRequests *string  `json:"specialRequests"`
}

type conflictResponse struct {
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	ClientName   string `json:"clientName"`
	IsSameClient bool   `json:"isSameClient"`
}

type bookingResponse struct {
	ID              int64                 `json:"id"`
	PropertyID      int64                 `json:"propertyId"`
	ClientID        int64                 `json:"clientId"`
	ClientName      string                `json:"clientName,omitempty"`
	StartDate       string                `json:"startDate"`
	EndDate         string                `json:"endDate"`
	Nights          int                   `json:"nights"`
	Status          string                `json:"status"`
	Adults          int                   `json:"adults"`
	Children        int                   `json:"children"`
	HasLinens       bool                  `json:"hasLinens"`
	HasCleaning     bool                  `json:"hasCleaning"`
	HasInsurance    bool                  `json:"hasCancellationInsurance"`
	Discount        float64               `json:"discountInput"`
	DiscountType    string                `json:"discountType,omitempty"`
	Breakdown       models.PriceBreakdown `json:"breakdown"`
	SpecialRequests string                `json:"specialRequests,omitempty"`
	InvoiceID       *int64                `json:"invoiceId,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

type invoiceResponse struct {
	ID        int64     `json:"id"`
	BookingID int64     `json:"bookingId"`
	Number    string    `json:"number"`
	Amount    float64   `json:"amount"`
	IssuedAt  time.Time `json:"issuedAt"`
}

func toBookingResponse(b models.Booking) bookingResponse {
	return bookingResponse{
		ID:              b.ID,
		PropertyID:      b.PropertyID,
		ClientID:        b.ClientID,
		ClientName:      b.ClientName,
		StartDate:       utils.FormatDate(b.Stay.StartDate),
		EndDate:         utils.FormatDate(b.Stay.EndDate),
		Nights:          b.Stay.Nights(),
		Status:          string(b.Status),
		Adults:          b.Occupancy.Adults,
		Children:        b.Occupancy.Children,
		HasLinens:       b.Options.HasLinens,
		HasCleaning:     b.Options.HasCleaning,
		HasInsurance:    b.Options.HasInsurance,
		Discount:        b.Discount.Amount,
		DiscountType:    b.Discount.Type,
		Breakdown:       b.Breakdown,
		SpecialRequests: b.SpecialRequests,
		InvoiceID:       b.InvoiceID,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func parseStay(startRaw, endRaw string) (models.Stay, error) {
	start, err := utils.ParseDate(startRaw)
	if err != nil {
		return models.Stay{}, domain.ValidationError{Field: "startDate", Msg: "invalid date", Err: err}
	}
	end, err := utils.ParseDate(endRaw)
	if err != nil {
		return models.Stay{}, domain.ValidationError{Field: "endDate", Msg: "invalid date", Err: err}
	}
	return models.Stay{StartDate: start, EndDate: end}, nil
}

func parseBookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid_booking_id", "invalid booking id", nil)
		return 0, false
	}
	return id, true
}

// CalculatePrice quotes a stay without creating anything.
func CalculatePrice(c *gin.Context) {
	var req calculatePriceRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	stay, err := parseStay(req.StartDate, req.EndDate)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	svc := services.BookingService{}
	breakdown, err := svc.CalculatePrice(pricing.Input{
		Stay:      stay,
		Occupancy: models.Occupancy{Adults: req.Adults, Children: req.Children},
		Options: models.OptionSelection{
			HasLinens:    req.HasLinens,
			HasCleaning:  req.HasCleaning,
			HasInsurance: req.HasInsurance,
		},
		Discount: models.Discount{Amount: req.Discount, Type: strings.TrimSpace(req.DiscountType)},
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

// CheckAvailability reports whether a property is free for a date range and
// lists the blocking bookings when it is not.
func CheckAvailability(c *gin.Context) {
	var req checkAvailabilityRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	stay, err := parseStay(req.StartDate, req.EndDate)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	svc := services.AvailabilityService{}
	conflicts, err := svc.FindConflicts(req.PropertyID, stay, 0, req.ClientID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	out := make([]conflictResponse, 0, len(conflicts))
	for _, cf := range conflicts {
		out = append(out, conflictResponse{
			StartDate:    utils.FormatDate(cf.StartDate),
			EndDate:      utils.FormatDate(cf.EndDate),
			ClientName:   cf.ClientName,
			IsSameClient: cf.IsSameClient,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"available": len(out) == 0,
		"conflicts": out,
	})
}

// CreateBooking checks availability and persists the stay with its price
// breakdown attached.
func CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	stay, err := parseStay(req.StartDate, req.EndDate)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	svc := services.BookingService{}
	booking, err := svc.Create(services.CreateBookingInput{
		PropertyID: req.PropertyID,
		ClientID:   req.ClientID,
		Stay:       stay,
		Status:     models.BookingStatus(strings.TrimSpace(req.Status)),
		Occupancy:  models.Occupancy{Adults: req.Adults, Children: req.Children},
		Options: models.OptionSelection{
			HasLinens:    req.HasLinens,
			HasCleaning:  req.HasCleaning,
			HasInsurance: req.HasInsurance,
		},
		Discount:        models.Discount{Amount: req.Discount, Type: strings.TrimSpace(req.DiscountType)},
		SpecialRequests: strings.TrimSpace(req.SpecialRequests),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	utils.LogEvent(middleware.GetRequestID(c), "bookings", "create",
		"booking "+strconv.FormatInt(booking.ID, 10)+" created")
	c.JSON(http.StatusCreated, toBookingResponse(booking))
}

// ListBookings returns all bookings, newest stay first.
func ListBookings(c *gin.Context) {
	svc := services.BookingService{}
	bookings, err := svc.BookingRepo.List()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	c.JSON(http.StatusOK, gin.H{"bookings": out})
}

// GetBooking returns one booking by id.
func GetBooking(c *gin.Context) {
	id, ok := parseBookingID(c)
	if !ok {
		return
	}
	svc := services.BookingService{}
	booking, err := svc.BookingRepo.GetByID(nil, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(booking))
}

// UpdateBooking applies a PATCH; date or status moves re-run the
// availability check against the new range.
func UpdateBooking(c *gin.Context) {
	id, ok := parseBookingID(c)
	if !ok {
		return
	}
	var req updateBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	upd := models.BookingUpdate{
		Adults:          req.Adults,
		Children:        req.Children,
		HasLinens:       req.HasLinens,
		HasCleaning:     req.HasCleaning,
		HasInsurance:    req.HasInsurance,
		Discount:        req.Discount,
		DiscountType:    req.DiscountType,
		SpecialRequests: req.SpecialRequests,
	}
	if req.StartDate != nil {
		start, err := utils.ParseDate(*req.StartDate)
		if err != nil {
			RespondDomainError(c, domain.ValidationError{Field: "startDate", Msg: "invalid date", Err: err})
			return
		}
		upd.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := utils.ParseDate(*req.EndDate)
		if err != nil {
			RespondDomainError(c, domain.ValidationError{Field: "endDate", Msg: "invalid date", Err: err})
			return
		}
		upd.EndDate = &end
	}
	if req.Status != nil {
		status := models.BookingStatus(strings.TrimSpace(*req.Status))
		upd.Status = &status
	}

	svc := services.BookingService{}
	booking, err := svc.Update(id, upd)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(booking))
}

// DeleteBooking removes a booking and its invoice in one transaction.
func DeleteBooking(c *gin.Context) {
	id, ok := parseBookingID(c)
	if !ok {
		return
	}
	svc := services.BookingService{}
	if err := svc.Delete(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	utils.LogEvent(middleware.GetRequestID(c), "bookings", "delete",
		"booking "+strconv.FormatInt(id, 10)+" deleted with invoice")
	c.JSON(http.StatusOK, gin.H{"ok": true, "booking_id": id})
}

// GetBookingInvoice returns the booking's invoice if one has been generated.
func GetBookingInvoice(c *gin.Context) {
	id, ok := parseBookingID(c)
	if !ok {
		return
	}
	svc := services.BookingService{}
	invoice, err := svc.InvoiceRepo.GetByBookingID(nil, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoiceResponse{
		ID:        invoice.ID,
		BookingID: invoice.BookingID,
		Number:    invoice.Number,
		Amount:    invoice.Amount,
		IssuedAt:  invoice.IssuedAt,
	})
}

// GenerateBookingInvoice creates the booking's single invoice record.
func GenerateBookingInvoice(c *gin.Context) {
	id, ok := parseBookingID(c)
	if !ok {
		return
	}
	svc := services.BookingService{}
	invoice, err := svc.GenerateInvoice(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	utils.LogEvent(middleware.GetRequestID(c), "invoices", "generate",
		"invoice "+invoice.Number+" for booking "+strconv.FormatInt(id, 10)+
			" amount "+utils.FormatMoney(invoice.Amount))
	c.JSON(http.StatusCreated, invoiceResponse{
		ID:        invoice.ID,
		BookingID: invoice.BookingID,
		Number:    invoice.Number,
		Amount:    invoice.Amount,
		IssuedAt:  invoice.IssuedAt,
	})
}

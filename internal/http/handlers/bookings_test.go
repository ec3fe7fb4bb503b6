package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	intconfig "rentalapi/internal/config"
	"rentalapi/internal/domain"
	"rentalapi/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// withMockDB points the shared connection at a sqlmock database for the
// duration of one test, since handlers build their services inline.
func withMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	prev := intconfig.DB
	intconfig.DB = db
	t.Cleanup(func() {
		intconfig.DB = prev
		db.Close()
	})
	return mock
}

func settingsRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"base_rate_low_season", "base_rate_high_season", "low_season_months",
		"linens_option_price", "cleaning_option_price",
		"tourist_tax_per_person_per_day", "cancellation_insurance_percent",
	}).AddRow(750.0, 830.0, "1,2,3,10,11,12", 20.0, 35.0, 1.0, 6.0)
}

func postJSON(handler gin.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := gin.New()
	r.POST(path, handler)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCalculatePriceEndpoint(t *testing.T) {
	mock := withMockDB(t)
	mock.ExpectQuery("FROM rate_settings").WillReturnRows(settingsRows())

	w := postJSON(CalculatePrice, "/calculate-price", `{
		"startDate": "2025-01-15",
		"endDate": "2025-01-22",
		"adults": 2,
		"children": 1,
		"hasLinens": true,
		"hasCleaning": true,
		"hasCancellationInsurance": true,
		"discount": 10,
		"discountType": "percent"
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var got map[string]float64
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]float64{
		"basePrice":     250.00,
		"linensPrice":   20.00,
		"cleaningPrice": 35.00,
		"discount":      25.00,
		"insuranceFee":  13.50,
		"touristTax":    21.00,
		"totalPrice":    314.50,
	}
	for field, v := range want {
		if got[field] != v {
			t.Fatalf("%s = %v, want %v (body %s)", field, got[field], v, w.Body.String())
		}
	}
}

func TestCalculatePriceEndpointRejectsBadDate(t *testing.T) {
	withMockDB(t)

	w := postJSON(CalculatePrice, "/calculate-price", `{
		"startDate": "15/01/2025",
		"endDate": "2025-01-22",
		"adults": 2
	}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCheckAvailabilityEndpointConflict(t *testing.T) {
	mock := withMockDB(t)
	mock.ExpectQuery("ORDER BY b.start_date").WillReturnRows(
		sqlmock.NewRows([]string{"id", "property_id", "client_id", "name", "start_date", "end_date", "status"}).
			AddRow(int64(11), int64(1), int64(42), "Claire Petit",
				mustDate(t, "2025-06-10"), mustDate(t, "2025-06-17"), "confirmed"))

	w := postJSON(CheckAvailability, "/check-availability", `{
		"propertyId": 1,
		"startDate": "2025-06-12",
		"endDate": "2025-06-19",
		"clientId": 42
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var got struct {
		Available bool `json:"available"`
		Conflicts []struct {
			StartDate    string `json:"startDate"`
			EndDate      string `json:"endDate"`
			ClientName   string `json:"clientName"`
			IsSameClient bool   `json:"isSameClient"`
		} `json:"conflicts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Available {
		t.Fatalf("expected available=false, body %s", w.Body.String())
	}
	if len(got.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(got.Conflicts))
	}
	cf := got.Conflicts[0]
	if cf.StartDate != "2025-06-10" || cf.EndDate != "2025-06-17" {
		t.Fatalf("unexpected conflict range %s..%s", cf.StartDate, cf.EndDate)
	}
	if cf.ClientName != "Claire Petit" || !cf.IsSameClient {
		t.Fatalf("conflict not attributed to the requesting client: %+v", cf)
	}
}

func TestCheckAvailabilityEndpointFree(t *testing.T) {
	mock := withMockDB(t)
	mock.ExpectQuery("ORDER BY b.start_date").WillReturnRows(
		sqlmock.NewRows([]string{"id", "property_id", "client_id", "name", "start_date", "end_date", "status"}))

	w := postJSON(CheckAvailability, "/check-availability", `{
		"propertyId": 1,
		"startDate": "2025-06-12",
		"endDate": "2025-06-19"
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var got struct {
		Available bool            `json:"available"`
		Conflicts json.RawMessage `json:"conflicts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Available {
		t.Fatalf("expected available=true, body %s", w.Body.String())
	}
	if string(got.Conflicts) != "[]" {
		t.Fatalf("conflicts must serialize as an empty array, got %s", got.Conflicts)
	}
}

func TestRespondDomainErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", domain.ValidationError{Field: "adults", Msg: "at least one adult"}, http.StatusBadRequest, "validation_error"},
		{"conflict", domain.ConflictError{Resource: "booking", Msg: "dates taken"}, http.StatusConflict, "conflict"},
		{"referential", domain.ReferentialError{Resource: "invoice", Msg: "already invoiced"}, http.StatusBadRequest, "impossible_operation"},
		{"not found", domain.NotFoundError{Resource: "booking"}, http.StatusBadRequest, "not_found"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		RespondDomainError(c, tc.err)

		if w.Code != tc.wantStatus {
			t.Fatalf("%s: status = %d, want %d", tc.name, w.Code, tc.wantStatus)
		}
		var body struct {
			Code string `json:"code"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if body.Code != tc.wantCode {
			t.Fatalf("%s: code = %q, want %q", tc.name, body.Code, tc.wantCode)
		}
	}
}

func TestConflictResponseCarriesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RespondDomainError(c, domain.ConflictError{
		Resource:     "booking",
		Msg:          "you already have a booking for these dates",
		StartDate:    "2025-06-10",
		EndDate:      "2025-06-17",
		ClientName:   "Claire Petit",
		IsSameClient: true,
	})

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	var body struct {
		Details struct {
			StartDate    string `json:"startDate"`
			EndDate      string `json:"endDate"`
			ClientName   string `json:"clientName"`
			IsSameClient bool   `json:"isSameClient"`
		} `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	d := body.Details
	if d.StartDate != "2025-06-10" || d.EndDate != "2025-06-17" || d.ClientName != "Claire Petit" || !d.IsSameClient {
		t.Fatalf("conflict details incomplete: %+v (body %s)", d, w.Body.String())
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := utils.ParseDate(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

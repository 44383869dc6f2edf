package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/greenobird/service-booking/internal/adapter"
	"github.com/greenobird/service-booking/internal/application"
	"github.com/greenobird/service-booking/internal/handler"
	"github.com/greenobird/service-booking/internal/platform/middleware"
	"github.com/greenobird/service-booking/internal/repository"
)

type testServer struct {
	router     *gin.Engine
	ledgerPath string
	promoPath  string
}

func newTestServer(t *testing.T, opts application.BookingOptions) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	dir := t.TempDir()

	ledgerPath := filepath.Join(dir, "bookings.json")
	promoPath := filepath.Join(dir, "promocodes.csv")
	require.NoError(t, os.WriteFile(promoPath, []byte("code,discount\nSAVE10,10\n"), 0o644))

	ledger, err := repository.OpenFileBookingRepository(ledgerPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledger.Close() })

	bookingService := application.NewBookingService(
		ledger,
		adapter.NewMockRazorpayAdapter(logger),
		nil,
		adapter.NewPDFInvoiceRenderer("GreenOBird Farmstay"),
		opts,
		logger,
	)

	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.RequestIDMiddleware())
	handler.NewBookingHandler(bookingService).RegisterRoutes(router)
	handler.NewAdminHandler(bookingService).RegisterRoutes(router)
	handler.NewPromoHandler(application.NewPromoService(repository.NewCSVPromoRepository(promoPath, logger), logger)).RegisterRoutes(router)
	handler.NewAvailabilityHandler(application.NewAvailabilityService(ledger, logger)).RegisterRoutes(router)

	return &testServer{router: router, ledgerPath: ledgerPath, promoPath: promoPath}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

const validBooking = `{
	"name": "Asha Rao",
	"email": "asha@example.com",
	"phone": "9999999999",
	"checkin": "2024-03-01",
	"checkout": "2024-03-03",
	"guests": 2,
	"amount": 5000
}`

func TestConfirmBooking_EndToEnd(t *testing.T) {
	srv := newTestServer(t, application.BookingOptions{})

	w := srv.do(t, http.MethodPost, "/confirm-booking", validBooking)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result application.ConfirmBookingResponse
	decode(t, w, &result)
	assert.Equal(t, "success", result.Status)
	assert.Contains(t, result.OrderID, "order_mock_")
	assert.False(t, result.Notification.Sent)

	data, err := os.ReadFile(srv.ledgerPath)
	require.NoError(t, err)
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, result.OrderID, rows[0]["razorpay_order_id"])
	assert.Equal(t, "asha@example.com", rows[0]["email"])

	w = srv.do(t, http.MethodGet, "/invoice/asha@example.com", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "invoice.pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
	assert.Contains(t, w.Body.String(), result.OrderID)

	w = srv.do(t, http.MethodGet, "/booked-dates", "")
	require.Equal(t, http.StatusOK, w.Code)
	var dates []string
	decode(t, w, &dates)
	assert.Equal(t, []string{"2024-03-01", "2024-03-02"}, dates)

	w = srv.do(t, http.MethodGet, "/bookings", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []application.BookingDTO
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, result.BookingID, list[0].ID)
	assert.Equal(t, int64(5000), list[0].Amount)
}

func TestConfirmBooking_AmountAsString(t *testing.T) {
	srv := newTestServer(t, application.BookingOptions{})

	body := `{"name":"A","email":"a@example.com","phone":"1","checkin":"2024-03-01","checkout":"2024-03-02","guests":"1","amount":"150.75"}`
	w := srv.do(t, http.MethodPost, "/confirm-booking", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = srv.do(t, http.MethodGet, "/bookings", "")
	var list []application.BookingDTO
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, int64(150), list[0].Amount)
}

func TestConfirmBooking_NumericPhoneAndName(t *testing.T) {
	srv := newTestServer(t, application.BookingOptions{})

	body := `{"name":1234,"email":"a@example.com","phone":9876543210,"checkin":"2024-03-01","checkout":"2024-03-02","guests":1}`
	w := srv.do(t, http.MethodPost, "/confirm-booking", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = srv.do(t, http.MethodGet, "/bookings", "")
	var list []application.BookingDTO
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "9876543210", list[0].Phone)
	assert.Equal(t, "1234", list[0].Name)
}

func TestConfirmBooking_ValidationErrors(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		field   string
		message string
	}{
		{
			name:    "missing phone",
			body:    `{"name":"A","email":"a@example.com","checkin":"2024-03-01","checkout":"2024-03-02","guests":1}`,
			field:   "phone",
			message: "Missing: phone",
		},
		{
			name:    "bad email",
			body:    `{"name":"A","email":"nope","phone":"1","checkin":"2024-03-01","checkout":"2024-03-02","guests":1}`,
			field:   "email",
			message: "Invalid email",
		},
		{
			name:    "checkout not after checkin",
			body:    `{"name":"A","email":"a@example.com","phone":"1","checkin":"2024-03-02","checkout":"2024-03-02","guests":1}`,
			field:   "checkout",
			message: "Checkout must be after checkin",
		},
		{
			name:    "numeric checkin",
			body:    `{"name":"A","email":"a@example.com","phone":"1","checkin":20240301,"checkout":"2024-03-02","guests":1}`,
			field:   "checkin",
			message: "Dates must be in YYYY-MM-DD format",
		},
		{
			name:    "malformed checkout",
			body:    `{"name":"A","email":"a@example.com","phone":"1","checkin":"2024-03-01","checkout":"03/02/2024","guests":1}`,
			field:   "checkout",
			message: "Dates must be in YYYY-MM-DD format",
		},
		{
			name:    "negative amount",
			body:    `{"name":"A","email":"a@example.com","phone":"1","checkin":"2024-03-01","checkout":"2024-03-02","guests":1,"amount":-1}`,
			field:   "amount",
			message: "Amount must be non-negative",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, application.BookingOptions{})

			w := srv.do(t, http.MethodPost, "/confirm-booking", tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var body map[string]string
			decode(t, w, &body)
			assert.Equal(t, "error", body["status"])
			assert.Equal(t, tc.field, body["field"])
			assert.Equal(t, tc.message, body["message"])

			_, err := os.Stat(srv.ledgerPath)
			assert.True(t, os.IsNotExist(err), "rejected bookings are never written")
		})
	}
}

func TestConfirmBooking_MalformedJSON(t *testing.T) {
	srv := newTestServer(t, application.BookingOptions{})
	w := srv.do(t, http.MethodPost, "/confirm-booking", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfirmBooking_OverlapGuardReturnsConflict(t *testing.T) {
	srv := newTestServer(t, application.BookingOptions{RejectOverlaps: true})

	w := srv.do(t, http.MethodPost, "/confirm-booking", validBooking)
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodPost, "/confirm-booking", validBooking)
	assert.Equal(t, http.StatusConflict, w.Code)
	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "Selected dates are already booked", body["message"])
}

func TestCreateOrder(t *testing.T) {
	srv := newTestServer(t, application.BookingOptions{})

	w := srv.do(t, http.MethodPost, "/create-order", `{"amount": 2500}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var order adapter.Order
	decode(t, w, &order)
	assert.Equal(t, int64(250000), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.NotEmpty(t, order.ID)

	for _, body := range []string{`{"amount": 0}`, `{"amount": "abc"}`, `{}`} {
		w = srv.do(t, http.MethodPost, "/create-order", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		var e map[string]string
		decode(t, w, &e)
		assert.Equal(t, "Invalid amount", e["error"])
	}
}

func TestValidatePromo(t *testing.T) {
	srv := newTestServer(t, application.BookingOptions{})

	w := srv.do(t, http.MethodPost, "/validate-promo", `{"code":" save10 "}`)
	require.Equal(t, http.StatusOK, w.Code)
	var result application.PromoValidationDTO
	decode(t, w, &result)
	assert.Equal(t, application.PromoValidationDTO{Valid: true, Discount: 10}, result)

	w = srv.do(t, http.MethodPost, "/validate-promo", `{"code":"BOGUS"}`)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &result)
	assert.Equal(t, application.PromoValidationDTO{Valid: false, Discount: 0}, result)
}

func TestValidatePromo_UnreadableTable(t *testing.T) {
	srv := newTestServer(t, application.BookingOptions{})
	require.NoError(t, os.Remove(srv.promoPath))
	require.NoError(t, os.Mkdir(srv.promoPath, 0o755))

	w := srv.do(t, http.MethodPost, "/validate-promo", `{"code":"SAVE10"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, false, body["valid"])
	assert.NotEmpty(t, body["error"])
}

func TestInvoice_UnknownEmail(t *testing.T) {
	srv := newTestServer(t, application.BookingOptions{})
	w := srv.do(t, http.MethodGet, "/invoice/nobody@example.com", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Booking not found", w.Body.String())
}

func TestBookedDates_EmptyLedger(t *testing.T) {
	srv := newTestServer(t, application.BookingOptions{})
	w := srv.do(t, http.MethodGet, "/booked-dates", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestAvailability(t *testing.T) {
	srv := newTestServer(t, application.BookingOptions{})
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/confirm-booking", validBooking).Code)

	w := srv.do(t, http.MethodGet, "/availability?checkin=2024-03-03&checkout=2024-03-04", "")
	require.Equal(t, http.StatusOK, w.Code)
	var result application.AvailabilityDTO
	decode(t, w, &result)
	assert.True(t, result.Free)

	w = srv.do(t, http.MethodGet, "/availability?checkin=2024-03-02&checkout=2024-03-04", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &result)
	assert.False(t, result.Free)

	w = srv.do(t, http.MethodGet, "/availability?checkin=tomorrow", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCorruptLedger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	path := filepath.Join(t.TempDir(), "bookings.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o644))

	ledger, err := repository.OpenFileBookingRepository(path, logger)
	require.NoError(t, err)
	svc := application.NewBookingService(ledger, adapter.NewMockRazorpayAdapter(logger), nil,
		adapter.NewPDFInvoiceRenderer("Test"), application.BookingOptions{}, logger)

	router := gin.New()
	handler.NewBookingHandler(svc).RegisterRoutes(router)
	handler.NewAdminHandler(svc).RegisterRoutes(router)
	handler.NewAvailabilityHandler(application.NewAvailabilityService(ledger, logger)).RegisterRoutes(router)
	srv := &testServer{router: router, ledgerPath: path}

	w := srv.do(t, http.MethodGet, "/bookings", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = srv.do(t, http.MethodGet, "/booked-dates", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = srv.do(t, http.MethodGet, "/invoice/asha@example.com", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(t, http.MethodPost, "/confirm-booking", validBooking)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{oops", string(data))
}

func TestRegisterStatic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "booking.html"), []byte("<h1>Book</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))

	router := gin.New()
	require.True(t, handler.RegisterStatic(router, dir))
	srv := &testServer{router: router}

	w := srv.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>Book</h1>")

	w = srv.do(t, http.MethodGet, "/app.js", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log(1)", w.Body.String())

	w = srv.do(t, http.MethodGet, "/missing.css", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.False(t, handler.RegisterStatic(gin.New(), filepath.Join(dir, "absent")))
}

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/TuilaBo/TechRent-Backend-sub001/internal/app"
	"github.com/TuilaBo/TechRent-Backend-sub001/internal/clock"
	"github.com/TuilaBo/TechRent-Backend-sub001/internal/domain"
	"github.com/TuilaBo/TechRent-Backend-sub001/internal/storage/postgres"
	"github.com/TuilaBo/TechRent-Backend-sub001/internal/testutil"
)

// Walks an order through the whole lifecycle over a real database:
// soft hold, review, confirm, hard booking, teardown, with availability
// checked from both caller perspectives along the way.
func TestEngine_HTTPIntegration(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	reservationRepo := postgres.NewReservationRepository(pool)
	bookingRepo := postgres.NewBookingRepository(pool)
	deviceRepo := postgres.NewDeviceRepository(pool)

	reservations := app.NewReservationService(reservationRepo, clock.NewFixed(now), nil)
	bookings := app.NewBookingService(bookingRepo, clock.NewFixed(now), nil)
	availability := app.NewAvailabilityService(deviceRepo, bookingRepo, reservations, app.DefaultAvailabilityPolicy())

	router := testRouter(RouterDeps{
		Availability: availability,
		Reservations: reservations,
		Bookings:     bookings,
	})

	modelID := testutil.NewModelID(t, ctx, pool)
	dev1 := testutil.InsertDevice(t, ctx, pool, modelID, domain.DeviceStatusAvailable)
	testutil.InsertDevice(t, ctx, pool, modelID, domain.DeviceStatusAvailable)

	const (
		windowStart = "2025-04-10T00:00:00Z"
		windowEnd   = "2025-04-12T00:00:00Z"
	)

	available := func(role string) int {
		t.Helper()
		url := "/availability?model_id=" + modelID + "&start=" + windowStart + "&end=" + windowEnd
		if role != "" {
			url += "&role=" + role
		}
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("availability: expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp availabilityResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("availability: decode: %v", err)
		}
		return resp.Available
	}

	do := func(method, url, body string, wantStatus int) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(method, url, strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != wantStatus {
			t.Fatalf("%s %s: expected %d, got %d: %s", method, url, wantStatus, rec.Code, rec.Body.String())
		}
		return rec
	}

	if n := available(""); n != 2 {
		t.Fatalf("expected 2 free before any hold, got %d", n)
	}

	createBody := `{
		"order": {"id": "order-1", "window_start": "` + windowStart + `", "window_end": "` + windowEnd + `"},
		"lines": [{"id": "line-1", "device_model_id": "` + modelID + `", "quantity": 1}]
	}`
	do(http.MethodPost, "/reservations", createBody, http.StatusNoContent)

	if n := available(""); n != 1 {
		t.Fatalf("expected pending hold to block a unit, got %d", n)
	}
	if n := available("technician"); n != 2 {
		t.Fatalf("expected pending hold invisible to technician, got %d", n)
	}

	do(http.MethodPost, "/orders/order-1/reservations/review", "", http.StatusNoContent)
	if n := available("technician"); n != 1 {
		t.Fatalf("expected under_review to block technician, got %d", n)
	}

	do(http.MethodPost, "/orders/order-1/reservations/confirm", "", http.StatusNoContent)
	if n := available(""); n != 1 {
		t.Fatalf("expected confirmed hold to keep blocking, got %d", n)
	}
	if n := available("technician"); n != 2 {
		t.Fatalf("expected confirmed hold invisible to technician, got %d", n)
	}

	bookingBody := `{
		"allocations": [{
			"device_id": "` + dev1 + `",
			"order_reference_id": "order-1",
			"order_detail_reference_id": "line-1",
			"window_start": "` + windowStart + `",
			"window_end": "` + windowEnd + `"
		}]
	}`
	do(http.MethodPost, "/bookings", bookingBody, http.StatusNoContent)

	if n := available("technician"); n != 1 {
		t.Fatalf("expected booked device off the technician count, got %d", n)
	}

	// Same device, overlapping window: the storage guard must refuse.
	conflictBody := `{
		"allocations": [{
			"device_id": "` + dev1 + `",
			"order_reference_id": "order-2",
			"order_detail_reference_id": "line-1",
			"window_start": "2025-04-11T00:00:00Z",
			"window_end": "2025-04-13T00:00:00Z"
		}]
	}`
	do(http.MethodPost, "/bookings", conflictBody, http.StatusConflict)

	listRec := do(http.MethodGet, "/orders/order-1/bookings", "", http.StatusOK)
	var listed listBookingsResponse
	if err := json.Unmarshal(listRec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode bookings: %v", err)
	}
	if len(listed.Bookings) != 1 || listed.Bookings[0].DeviceID != dev1 {
		t.Fatalf("unexpected bookings: %+v", listed.Bookings)
	}

	do(http.MethodDelete, "/orders/order-1/bookings", "", http.StatusNoContent)
	do(http.MethodPost, "/orders/order-1/reservations/cancel", "", http.StatusNoContent)

	if n := available(""); n != 2 {
		t.Fatalf("expected full capacity after teardown, got %d", n)
	}
}

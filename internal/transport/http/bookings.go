package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/TuilaBo/TechRent-Backend-sub001/internal/domain"
)

// BookingCalendar is the slice of the engine the booking endpoints
// drive.
type BookingCalendar interface {
	CreateBookingsForAllocations(ctx context.Context, allocations []domain.Allocation) error
	ClearBookingsForOrder(ctx context.Context, orderRef string) error
	ListBookingsByOrder(ctx context.Context, orderRef string) ([]domain.BookingEntry, error)
}

// HandleCreateBookings materializes hard bookings from an allocation
// list supplied by the QC/device-picking process, which is expected to
// have checked availability first.
func HandleCreateBookings(svc BookingCalendar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBookingsRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		allocations := make([]domain.Allocation, 0, len(req.Allocations))
		for _, a := range req.Allocations {
			allocations = append(allocations, domain.Allocation{
				DeviceID:               a.DeviceID,
				OrderReferenceID:       a.OrderReferenceID,
				OrderDetailReferenceID: a.OrderDetailReferenceID,
				WindowStart:            a.WindowStart,
				WindowEnd:              a.WindowEnd,
			})
		}

		if err := svc.CreateBookingsForAllocations(r.Context(), allocations); err != nil {
			writeBookingError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleClearBookings deletes every entry for the order so allocation
// can be redone. Idempotent: clearing an order with no entries is 204.
func HandleClearBookings(svc BookingCalendar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderRef := chi.URLParam(r, "orderID")
		if orderRef == "" {
			writeError(w, http.StatusBadRequest, codeOrderRefRequired, domain.ErrOrderRefMissing.Error())
			return
		}

		if err := svc.ClearBookingsForOrder(r.Context(), orderRef); err != nil {
			writeBookingError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleListBookings exposes the order's calendar entries.
func HandleListBookings(svc BookingCalendar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderRef := chi.URLParam(r, "orderID")
		if orderRef == "" {
			writeError(w, http.StatusBadRequest, codeOrderRefRequired, domain.ErrOrderRefMissing.Error())
			return
		}

		entries, err := svc.ListBookingsByOrder(r.Context(), orderRef)
		if err != nil {
			writeBookingError(w, err)
			return
		}

		out := make([]bookingResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, bookingResponse{
				ID:                     e.ID,
				DeviceID:               e.DeviceID,
				OrderReferenceID:       e.OrderReferenceID,
				OrderDetailReferenceID: e.OrderDetailReferenceID,
				WindowStart:            e.WindowStart,
				WindowEnd:              e.WindowEnd,
				Status:                 string(e.Status),
			})
		}

		writeJSON(w, http.StatusOK, listBookingsResponse{Bookings: out})
	}
}

func writeBookingError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrOrderRefMissing:
		writeError(w, http.StatusBadRequest, codeOrderRefRequired, err.Error())
	case domain.ErrDeviceNotFound:
		writeError(w, http.StatusNotFound, codeDeviceNotFound, err.Error())
	case domain.ErrBookingOverlap:
		writeError(w, http.StatusConflict, codeBookingOverlap, err.Error())
	case domain.ErrInvalidID:
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

type createBookingsRequest struct {
	Allocations []allocationPayload `json:"allocations"`
}

type allocationPayload struct {
	DeviceID               string     `json:"device_id"`
	OrderReferenceID       string     `json:"order_reference_id"`
	OrderDetailReferenceID string     `json:"order_detail_reference_id"`
	WindowStart            *time.Time `json:"window_start"`
	WindowEnd              *time.Time `json:"window_end"`
}

type bookingResponse struct {
	ID                     string    `json:"id"`
	DeviceID               string    `json:"device_id"`
	OrderReferenceID       string    `json:"order_reference_id"`
	OrderDetailReferenceID string    `json:"order_detail_reference_id"`
	WindowStart            time.Time `json:"window_start"`
	WindowEnd              time.Time `json:"window_end"`
	Status                 string    `json:"status"`
}

type listBookingsResponse struct {
	Bookings []bookingResponse `json:"bookings"`
}

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/TuilaBo/TechRent-Backend-sub001/internal/domain"
)

// ReservationLedger is the slice of the engine the reservation
// endpoints drive.
type ReservationLedger interface {
	CreatePendingReservations(ctx context.Context, order domain.OrderRef, lines []domain.OrderLine) error
	MoveToUnderReview(ctx context.Context, orderRef string) error
	MarkConfirmed(ctx context.Context, orderRef string) error
	CancelReservations(ctx context.Context, orderRef string) error
	ListReservationsByOrder(ctx context.Context, orderRef string) ([]domain.Reservation, error)
}

// HandleCreateReservations inserts soft holds for an order's line
// items. Partial input is fine: unusable lines are skipped by the
// ledger, so this always answers 204 unless the batch itself fails.
func HandleCreateReservations(svc ReservationLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createReservationsRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.Order.ID == "" {
			writeError(w, http.StatusBadRequest, codeOrderRefRequired, domain.ErrOrderRefMissing.Error())
			return
		}

		lines := make([]domain.OrderLine, 0, len(req.Lines))
		for _, l := range req.Lines {
			lines = append(lines, domain.OrderLine{
				ID:            l.ID,
				DeviceModelID: l.DeviceModelID,
				Quantity:      l.Quantity,
			})
		}

		err := svc.CreatePendingReservations(r.Context(), domain.OrderRef{
			ID:          req.Order.ID,
			WindowStart: req.Order.WindowStart,
			WindowEnd:   req.Order.WindowEnd,
		}, lines)
		if err != nil {
			writeLedgerError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleReservationTransition dispatches the three bulk lifecycle
// moves. All are idempotent set-based updates; an order with no
// matching reservations is still a success.
func HandleReservationTransition(svc ReservationLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderRef := chi.URLParam(r, "orderID")
		if orderRef == "" {
			writeError(w, http.StatusBadRequest, codeOrderRefRequired, domain.ErrOrderRefMissing.Error())
			return
		}

		var err error
		switch chi.URLParam(r, "action") {
		case "review":
			err = svc.MoveToUnderReview(r.Context(), orderRef)
		case "confirm":
			err = svc.MarkConfirmed(r.Context(), orderRef)
		case "cancel":
			err = svc.CancelReservations(r.Context(), orderRef)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if err != nil {
			writeLedgerError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleListReservations exposes the order's ledger rows, terminal
// statuses included, for audit by the surrounding business logic.
func HandleListReservations(svc ReservationLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderRef := chi.URLParam(r, "orderID")
		if orderRef == "" {
			writeError(w, http.StatusBadRequest, codeOrderRefRequired, domain.ErrOrderRefMissing.Error())
			return
		}

		reservations, err := svc.ListReservationsByOrder(r.Context(), orderRef)
		if err != nil {
			writeLedgerError(w, err)
			return
		}

		out := make([]reservationResponse, 0, len(reservations))
		for _, res := range reservations {
			out = append(out, reservationResponse{
				ID:                     res.ID,
				OrderReferenceID:       res.OrderReferenceID,
				OrderDetailReferenceID: res.OrderDetailReferenceID,
				DeviceModelID:          res.DeviceModelID,
				Quantity:               res.Quantity,
				WindowStart:            res.WindowStart,
				WindowEnd:              res.WindowEnd,
				Status:                 string(res.Status),
				ExpiresAt:              res.ExpiresAt,
			})
		}

		writeJSON(w, http.StatusOK, listReservationsResponse{Reservations: out})
	}
}

func writeLedgerError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrOrderRefMissing:
		writeError(w, http.StatusBadRequest, codeOrderRefRequired, err.Error())
	case domain.ErrInvalidID:
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

type createReservationsRequest struct {
	Order orderPayload  `json:"order"`
	Lines []linePayload `json:"lines"`
}

type orderPayload struct {
	ID          string     `json:"id"`
	WindowStart *time.Time `json:"window_start"`
	WindowEnd   *time.Time `json:"window_end"`
}

type linePayload struct {
	ID            string `json:"id"`
	DeviceModelID string `json:"device_model_id"`
	Quantity      int    `json:"quantity"`
}

type reservationResponse struct {
	ID                     string     `json:"id"`
	OrderReferenceID       string     `json:"order_reference_id"`
	OrderDetailReferenceID string     `json:"order_detail_reference_id"`
	DeviceModelID          string     `json:"device_model_id"`
	Quantity               int        `json:"quantity"`
	WindowStart            time.Time  `json:"window_start"`
	WindowEnd              time.Time  `json:"window_end"`
	Status                 string     `json:"status"`
	ExpiresAt              *time.Time `json:"expires_at,omitempty"`
}

type listReservationsResponse struct {
	Reservations []reservationResponse `json:"reservations"`
}

package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/TuilaBo/TechRent-Backend-sub001/internal/domain"
)

// AvailabilityQuerier is the read-only slice of the engine the
// availability endpoints need.
type AvailabilityQuerier interface {
	AvailableCountByModel(ctx context.Context, modelID string, start, end time.Time, role domain.CallerRole) (int, error)
	CheckAvailability(ctx context.Context, modelID string, start, end time.Time, quantity int, role domain.CallerRole) (bool, error)
}

// HandleGetAvailability answers "units free" for a model and window.
// The role parameter is an already-resolved flag; this layer performs
// no authentication.
func HandleGetAvailability(svc AvailabilityQuerier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := parseAvailabilityQuery(w, r)
		if !ok {
			return
		}

		available, err := svc.AvailableCountByModel(r.Context(), q.modelID, q.start, q.end, q.role)
		if err != nil {
			writeAvailabilityError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, availabilityResponse{
			DeviceModelID: q.modelID,
			Available:     available,
		})
	}
}

// HandleCheckAvailability reports whether the requested quantity fits.
// Purely a read; it holds nothing.
func HandleCheckAvailability(svc AvailabilityQuerier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := parseAvailabilityQuery(w, r)
		if !ok {
			return
		}

		quantity := 0
		if raw := r.URL.Query().Get("quantity"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "quantity must be an integer")
				return
			}
			quantity = n
		}

		ok2, err := svc.CheckAvailability(r.Context(), q.modelID, q.start, q.end, quantity, q.role)
		if err != nil {
			writeAvailabilityError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, checkAvailabilityResponse{
			DeviceModelID: q.modelID,
			Quantity:      quantity,
			Available:     ok2,
		})
	}
}

type availabilityQuery struct {
	modelID    string
	start, end time.Time
	role       domain.CallerRole
}

// parseAvailabilityQuery rejects malformed parameters at the edge;
// semantically empty input (inverted window, blank model) is left to
// the engine, which answers zero rather than erroring.
func parseAvailabilityQuery(w http.ResponseWriter, r *http.Request) (availabilityQuery, bool) {
	values := r.URL.Query()

	start, err := time.Parse(time.RFC3339, values.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidWindow, "start must be RFC3339")
		return availabilityQuery{}, false
	}
	end, err := time.Parse(time.RFC3339, values.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidWindow, "end must be RFC3339")
		return availabilityQuery{}, false
	}

	return availabilityQuery{
		modelID: values.Get("model_id"),
		start:   start,
		end:     end,
		role:    domain.ParseCallerRole(values.Get("role")),
	}, true
}

func writeAvailabilityError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrInvalidID:
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

type availabilityResponse struct {
	DeviceModelID string `json:"device_model_id"`
	Available     int    `json:"available"`
}

type checkAvailabilityResponse struct {
	DeviceModelID string `json:"device_model_id"`
	Quantity      int    `json:"quantity"`
	Available     bool   `json:"available"`
}

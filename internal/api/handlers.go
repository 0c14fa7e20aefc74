package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/slotwise/booking-engine/internal/booking"
	"github.com/slotwise/booking-engine/internal/clock"
)

// BookingEngine is the narrow reservation interface every channel adapter
// (public API, chat, voice) drives. Channels differ only in how they parse
// intent into these calls, never in reservation semantics.
type BookingEngine interface {
	ListResources(ctx context.Context, tenantID uuid.UUID) ([]booking.Resource, error)
	ComputeAvailability(ctx context.Context, tenantID, serviceID uuid.UUID, localDate string, offsetMinutes int, resourceID *uuid.UUID) ([]booking.Slot, error)
	CreateHold(ctx context.Context, in booking.CreateHoldInput) (*booking.Commitment, error)
	Confirm(ctx context.Context, id uuid.UUID) (*booking.Commitment, error)
	GetCommitment(ctx context.Context, id uuid.UUID) (*booking.Commitment, error)
}

func listResourcesHandler(engine BookingEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := uuid.Parse(r.URL.Query().Get("tenant_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_tenant_id", "", "tenant_id must be a valid UUID")
			return
		}

		resources, err := engine.ListResources(r.Context(), tenantID)
		if err != nil {
			handleEngineError(w, err)
			return
		}

		resp := ResourcesResponse{Resources: make([]ResourceResponse, 0, len(resources))}
		for _, res := range resources {
			resp.Resources = append(resp.Resources, ResourceResponse{
				ID:        res.ID,
				Name:      res.Name,
				WorkStart: res.WorkStart,
				WorkEnd:   res.WorkEnd,
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func availabilityHandler(engine BookingEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		tenantID, err := uuid.Parse(q.Get("tenant_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_tenant_id", "", "tenant_id must be a valid UUID")
			return
		}
		serviceID, err := uuid.Parse(q.Get("service_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_service_id", "", "service_id must be a valid UUID")
			return
		}
		offset, err := parseOffsetMinutes(q.Get("tz_offset_minutes"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_tz_offset", "", "tz_offset_minutes must be a signed integer")
			return
		}

		var resourceID *uuid.UUID
		if raw := q.Get("resource_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_resource_id", "", "resource_id must be a valid UUID")
				return
			}
			resourceID = &id
		}

		slots, err := engine.ComputeAvailability(r.Context(), tenantID, serviceID, q.Get("date"), offset, resourceID)
		if err != nil {
			handleEngineError(w, err)
			return
		}

		resp := AvailabilityResponse{Slots: make([]SlotResponse, 0, len(slots))}
		for _, s := range slots {
			resp.Slots = append(resp.Slots, SlotResponse{
				ResourceID:   s.ResourceID,
				ResourceName: s.ResourceName,
				StartAt:      s.StartAt,
				EndAt:        s.EndAt,
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func createHoldHandler(engine BookingEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateHoldRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "", "could not parse JSON")
			return
		}

		tenantID, err := uuid.Parse(req.TenantID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_tenant_id", "", "tenant_id must be a valid UUID")
			return
		}
		serviceID, err := uuid.Parse(req.ServiceID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_service_id", "", "service_id must be a valid UUID")
			return
		}
		resourceID, err := uuid.Parse(req.ResourceID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_resource_id", "", "resource_id must be a valid UUID")
			return
		}

		c, err := engine.CreateHold(r.Context(), booking.CreateHoldInput{
			TenantID:       tenantID,
			ServiceID:      serviceID,
			ResourceID:     resourceID,
			LocalDate:      req.Date,
			LocalStartTime: req.StartTime,
			OffsetMinutes:  req.TzOffsetMinutes,
			CustomerName:   req.CustomerName,
			CustomerPhone:  req.CustomerPhone,
		})
		if err != nil {
			handleEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, commitmentResponse(c))
	}
}

func confirmHandler(engine BookingEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_commitment_id", "", "id must be a valid UUID")
			return
		}

		c, err := engine.Confirm(r.Context(), id)
		if err != nil {
			handleEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, commitmentResponse(c))
	}
}

func getCommitmentHandler(engine BookingEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_commitment_id", "", "id must be a valid UUID")
			return
		}

		c, err := engine.GetCommitment(r.Context(), id)
		if err != nil {
			handleEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, commitmentResponse(c))
	}
}

func commitmentResponse(c *booking.Commitment) CommitmentResponse {
	return CommitmentResponse{
		CommitmentID:  c.ID,
		ResourceID:    c.ResourceID,
		State:         string(c.Status),
		StartAt:       c.StartAt,
		EndAt:         c.EndAt,
		HoldExpiresAt: c.HoldExpiresAt,
	}
}

func handleEngineError(w http.ResponseWriter, err error) {
	var invalidTime *clock.InvalidTimeError
	if errors.As(err, &invalidTime) {
		writeError(w, http.StatusBadRequest, "invalid_time", "", invalidTime.Error())
		return
	}

	if ce, ok := booking.AsConflict(err); ok {
		writeError(w, http.StatusConflict, "reservation_conflict", string(ce.Kind), ce.Detail)
		return
	}

	switch {
	case errors.Is(err, booking.ErrTenantNotFound):
		writeError(w, http.StatusNotFound, "tenant_not_found", "", err.Error())
	case errors.Is(err, booking.ErrResourceNotFound):
		writeError(w, http.StatusNotFound, "resource_not_found", "", err.Error())
	case errors.Is(err, booking.ErrServiceNotFound):
		writeError(w, http.StatusNotFound, "service_not_found", "", err.Error())
	case errors.Is(err, booking.ErrCommitmentNotFound):
		writeError(w, http.StatusNotFound, "commitment_not_found", "", err.Error())
	case errors.Is(err, booking.ErrResourceInactive):
		writeError(w, http.StatusConflict, "resource_inactive", "", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "", err.Error())
	}
}

package api

import (
	"time"

	"github.com/google/uuid"
)

type ResourceResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	WorkStart *string   `json:"work_start,omitempty"`
	WorkEnd   *string   `json:"work_end,omitempty"`
}

type ResourcesResponse struct {
	Resources []ResourceResponse `json:"resources"`
}

type SlotResponse struct {
	ResourceID   uuid.UUID `json:"resource_id"`
	ResourceName string    `json:"resource_name"`
	StartAt      time.Time `json:"start_at"`
	EndAt        time.Time `json:"end_at"`
}

type AvailabilityResponse struct {
	Slots []SlotResponse `json:"slots"`
}

type CreateHoldRequest struct {
	TenantID        string `json:"tenant_id"`
	ServiceID       string `json:"service_id"`
	ResourceID      string `json:"resource_id"`
	Date            string `json:"date"`       // YYYY-MM-DD
	StartTime       string `json:"start_time"` // HH:MM
	TzOffsetMinutes int    `json:"tz_offset_minutes"`
	CustomerName    string `json:"customer_name,omitempty"`
	CustomerPhone   string `json:"customer_phone,omitempty"`
}

type CommitmentResponse struct {
	CommitmentID  uuid.UUID  `json:"commitment_id"`
	ResourceID    uuid.UUID  `json:"resource_id"`
	State         string     `json:"state"`
	StartAt       time.Time  `json:"start_at"`
	EndAt         time.Time  `json:"end_at"`
	HoldExpiresAt *time.Time `json:"hold_expires_at,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Details string `json:"details,omitempty"`
}

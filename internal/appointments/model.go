package appointments

import (
	"time"

	"github.com/google/uuid"
)

// Service types offered by the business.
const (
	ServiceHeaterRepair   = "heater-repair"
	ServiceACRepair       = "ac-repair"
	ServiceInstallation   = "installation"
	ServiceFanMotor       = "fan-motor-replacement"
	ServiceMaintenance    = "maintenance-plan"
	ServiceWaterHeater    = "water-heater"
)

// Urgency levels.
const (
	UrgencyNormal    = "normal"
	UrgencyEmergency = "emergency"
)

// Appointment statuses. New appointments start pending; cancellation is
// reachable from any state. The ledger does not enforce transitions (see
// UpdateStatus).
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Appointment is one scheduled service visit. Customer identity fields are
// populated on list queries, which join the customers table.
type Appointment struct {
	ID            uuid.UUID `json:"id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	ServiceType   string    `json:"service_type"`
	ScheduledDate time.Time `json:"scheduled_date"`
	Notes         string    `json:"notes"`
	Urgency       string    `json:"urgency"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	CustomerFirstName string `json:"first_name,omitempty"`
	CustomerLastName  string `json:"last_name,omitempty"`
	CustomerPhone     string `json:"phone,omitempty"`
}

// CreateRequest carries the fields of a booking request.
type CreateRequest struct {
	CustomerID    uuid.UUID
	ServiceType   string
	ScheduledDate time.Time
	Notes         string
	Urgency       string
}

// ListFilter narrows a list query. Zero values impose no constraint; set
// filters combine with AND.
type ListFilter struct {
	CustomerID uuid.UUID
	Status     string
	Date       string // YYYY-MM-DD
}

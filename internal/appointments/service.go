package appointments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mjacobco/hvac-assistant/internal/customers"
	"github.com/mjacobco/hvac-assistant/pkg/logging"
)

// Ledger is the persistence contract the service drives.
type Ledger interface {
	Insert(ctx context.Context, req CreateRequest) (*Appointment, error)
	List(ctx context.Context, filter ListFilter) ([]*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error)
	ActiveHours(ctx context.Context, day time.Time) ([]int, error)
}

// CustomerReader resolves customer records for confirmations.
type CustomerReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*customers.Customer, error)
}

// ConfirmationNotifier dispatches booking confirmations. Best-effort: the
// service logs failures and keeps the appointment.
type ConfirmationNotifier interface {
	AppointmentConfirmation(ctx context.Context, customer *customers.Customer, appt *Appointment) error
}

// Service is the appointment ledger: it creates, lists and transitions
// appointments and triggers confirmations on creation.
type Service struct {
	ledger    Ledger
	customers CustomerReader
	notifier  ConfirmationNotifier
	logger    *logging.Logger
}

// NewService wires the ledger. The notifier may be nil when confirmations are
// disabled.
func NewService(ledger Ledger, customerReader CustomerReader, notifier ConfirmationNotifier, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		ledger:    ledger,
		customers: customerReader,
		notifier:  notifier,
		logger:    logger,
	}
}

// Create books an appointment and sends a confirmation. Notification failure
// does not roll the booking back. There is no conflict check against other
// bookings in the same hour; see Repository.Insert.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Appointment, error) {
	if req.ServiceType == "" {
		return nil, ErrMissingServiceType
	}
	if req.ScheduledDate.IsZero() {
		return nil, ErrMissingSchedule
	}

	appt, err := s.ledger.Insert(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment created",
		"id", appt.ID,
		"customer_id", appt.CustomerID,
		"service_type", appt.ServiceType,
		"scheduled_date", appt.ScheduledDate,
		"urgency", appt.Urgency,
	)

	if s.notifier != nil {
		customer, err := s.customers.GetByID(ctx, appt.CustomerID)
		if err != nil {
			s.logger.Warn("confirmation skipped, customer lookup failed", "error", err, "customer_id", appt.CustomerID)
			return appt, nil
		}
		if err := s.notifier.AppointmentConfirmation(ctx, customer, appt); err != nil {
			s.logger.Warn("confirmation dispatch failed", "error", err, "appointment_id", appt.ID)
		}
	}

	return appt, nil
}

// List returns appointments matching the filter, scheduled time ascending.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Appointment, error) {
	return s.ledger.List(ctx, filter)
}

// UpdateStatus transitions an appointment unconditionally.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	if status == "" {
		return nil, fmt.Errorf("appointments: status is required")
	}
	return s.ledger.UpdateStatus(ctx, id, status)
}

// ActiveHours passes through to the ledger for the availability engine.
func (s *Service) ActiveHours(ctx context.Context, day time.Time) ([]int, error) {
	return s.ledger.ActiveHours(ctx, day)
}

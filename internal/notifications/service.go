package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/mjacobco/hvac-assistant/internal/appointments"
	"github.com/mjacobco/hvac-assistant/internal/customers"
	"github.com/mjacobco/hvac-assistant/internal/observability/metrics"
	"github.com/mjacobco/hvac-assistant/pkg/logging"
)

// Config identifies the business the notifications speak for.
type Config struct {
	BusinessName  string
	BusinessPhone string
}

// Service renders templates and dispatches them over SMS and, when the
// customer has an email on file, email.
type Service struct {
	sms     SMSSender
	email   EmailSender
	cfg     Config
	metrics *metrics.NotificationMetrics
	logger  *logging.Logger
}

// NewService wires the dispatcher. email and m may be nil.
func NewService(sms SMSSender, email EmailSender, cfg Config, m *metrics.NotificationMetrics, logger *logging.Logger) *Service {
	if sms == nil {
		panic("notifications: sms sender required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		sms:     sms,
		email:   email,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
	}
}

var _ appointments.ConfirmationNotifier = (*Service)(nil)

// AppointmentConfirmation renders and sends the booking confirmation. The
// SMS is the primary channel; email is additive and its failure does not fail
// the confirmation when the SMS went out.
func (s *Service) AppointmentConfirmation(ctx context.Context, customer *customers.Customer, appt *appointments.Appointment) error {
	if customer == nil || appt == nil {
		return errors.New("notifications: customer and appointment required")
	}
	if customer.Phone == "" {
		return errors.New("notifications: customer has no phone on file")
	}

	body, err := RenderTemplate("appointmentConfirmation", map[string]any{
		"businessName":  s.cfg.BusinessName,
		"customerName":  customer.FirstName,
		"serviceType":   appt.ServiceType,
		"date":          appt.ScheduledDate.Format("Monday, January 2"),
		"time":          appt.ScheduledDate.Format("3:04 PM"),
		"businessPhone": s.cfg.BusinessPhone,
	})
	if err != nil {
		return err
	}

	if err := s.sms.Send(ctx, customer.Phone, body); err != nil {
		s.metrics.ObserveSend("sms", "failed")
		return fmt.Errorf("notifications: confirmation sms: %w", err)
	}
	s.metrics.ObserveSend("sms", "sent")

	if s.email != nil && customer.Email != "" {
		msg := EmailMessage{
			To:      customer.Email,
			ToName:  fmt.Sprintf("%s %s", customer.FirstName, customer.LastName),
			Subject: fmt.Sprintf("Appointment Confirmed - %s", s.cfg.BusinessName),
			Body:    body,
		}
		if err := s.email.Send(ctx, msg); err != nil {
			s.metrics.ObserveSend("email", "failed")
			s.logger.Warn("confirmation email failed", "error", err, "to", customer.Email)
		} else {
			s.metrics.ObserveSend("email", "sent")
		}
	}

	s.logger.Info("appointment confirmation sent",
		"appointment_id", appt.ID,
		"customer_id", customer.ID,
		"to", customer.Phone,
	)
	return nil
}

// Send delivers a raw message to one recipient.
func (s *Service) Send(ctx context.Context, to, message string) error {
	if to == "" {
		return errors.New("notifications: to required")
	}
	if message == "" {
		return errors.New("notifications: message required")
	}
	if err := s.sms.Send(ctx, to, message); err != nil {
		s.metrics.ObserveSend("sms", "failed")
		return err
	}
	s.metrics.ObserveSend("sms", "sent")
	return nil
}

// BatchResult reports the outcome of one recipient in a batch send.
type BatchResult struct {
	To      string `json:"to"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SendBatch delivers the same message to each recipient, continuing past
// per-recipient failures.
func (s *Service) SendBatch(ctx context.Context, recipients []string, message string) ([]BatchResult, error) {
	if len(recipients) == 0 {
		return nil, errors.New("notifications: recipients required")
	}
	if message == "" {
		return nil, errors.New("notifications: message required")
	}

	results := make([]BatchResult, 0, len(recipients))
	for _, to := range recipients {
		res := BatchResult{To: to, Success: true}
		if err := s.sms.Send(ctx, to, message); err != nil {
			s.metrics.ObserveSend("sms", "failed")
			s.logger.Warn("batch send failed", "error", err, "to", to)
			res.Success = false
			res.Error = err.Error()
		} else {
			s.metrics.ObserveSend("sms", "sent")
		}
		results = append(results, res)
	}
	return results, nil
}

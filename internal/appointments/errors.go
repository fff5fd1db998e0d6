package appointments

import "errors"

var (
	// ErrAppointmentNotFound is returned when no appointment matches.
	ErrAppointmentNotFound = errors.New("appointments: appointment not found")

	// ErrMissingServiceType is returned when a booking omits the service type.
	ErrMissingServiceType = errors.New("appointments: service type is required")

	// ErrMissingSchedule is returned when a booking omits the scheduled date.
	ErrMissingSchedule = errors.New("appointments: scheduled date is required")
)

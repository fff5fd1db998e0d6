package availability

import "errors"

var (
	// ErrInvalidDate is returned when a date is not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("availability: date must be in YYYY-MM-DD format")

	// ErrInvalidRange is returned when endDate precedes startDate.
	ErrInvalidRange = errors.New("availability: end date precedes start date")
)

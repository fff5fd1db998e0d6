package customers

import "errors"

var (
	// ErrMissingPhone is returned when a phone number is required but absent.
	ErrMissingPhone = errors.New("customers: phone is required")

	// ErrCustomerNotFound is returned when no customer matches.
	ErrCustomerNotFound = errors.New("customers: customer not found")
)

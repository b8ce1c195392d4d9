package domain

import "errors"

var (
	// ErrInvalidItem is returned for rows with missing or out of range fields.
	ErrInvalidItem = errors.New("invalid inventory item")

	// ErrUndefinedEOQ is returned when an item has zero holding cost.
	ErrUndefinedEOQ = errors.New("EOQ undefined for zero holding cost")

	// ErrMailDisabled is returned by the mail transport when no SMTP account is configured.
	ErrMailDisabled = errors.New("mail transport disabled")
)

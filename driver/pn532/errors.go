package pn532

import "errors"

var (
	ErrNoChip      = errors.New("pn532: no chip found")
	ErrBadFrame    = errors.New("pn532: malformed frame")
	ErrShortFrame  = errors.New("pn532: incomplete frame")
	ErrNack        = errors.New("pn532: frame not acknowledged")
	ErrTimeout     = errors.New("pn532: operation timed out")
	ErrDataTooLong = errors.New("pn532: command data too long")
)

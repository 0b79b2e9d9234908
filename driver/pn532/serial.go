package pn532

import (
	"fmt"

	"go.bug.st/serial"
)

// Open opens the named serial port in HSU mode (8N1) and returns a reader
// on it. Begin must still be called.
func Open(name string, baud int, opts ...Option) (*Reader, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("pn532: open %s: %w", name, err)
	}
	return New(port, opts...), nil
}

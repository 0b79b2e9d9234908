// Package gpio drives the relay bank through periph.io GPIO pins.
package gpio

import (
	"errors"
	"fmt"
	"log"

	periphgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/ystepanoff/nfcgate/access"
)

var (
	ErrInvalidRelay = errors.New("gpio: relay index out of range")
	ErrUnknownPin   = errors.New("gpio: unknown pin")
)

// Bank maps relay indices onto output pins, in order.
type Bank struct {
	pins []periphgpio.PinOut
}

func New(pins ...periphgpio.PinOut) *Bank {
	return &Bank{pins: pins}
}

// Open initializes the host drivers and looks up each pin by name
// ("GPIO9", "17", ...).
func Open(names []string) (*Bank, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("gpio: host init: %w", err)
	}

	pins := make([]periphgpio.PinOut, 0, len(names))
	for _, name := range names {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPin, name)
		}
		pins = append(pins, p)
	}
	log.Printf("[GPIO] Relay bank on %v", names)
	return New(pins...), nil
}

func (b *Bank) Count() int { return len(b.pins) }

// WriteLevel drives the relay's pin to the given electrical level.
func (b *Bank) WriteLevel(relay int, level access.Level) error {
	if relay < 0 || relay >= len(b.pins) {
		return fmt.Errorf("%w: %d", ErrInvalidRelay, relay)
	}
	if err := b.pins[relay].Out(periphgpio.Level(level)); err != nil {
		return fmt.Errorf("gpio: relay %d: %w", relay, err)
	}
	return nil
}

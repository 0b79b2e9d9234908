package controller

import (
	"log"

	"github.com/ystepanoff/nfcgate/access"
)

// RelayBank keeps the logical state of each relay channel and writes the
// matching active-low level through the pin driver.
type RelayBank struct {
	pins   PinDriver
	states []bool
}

// NewRelayBank sizes the bank from pins. A nil driver gives an empty bank
// on which every Set is an out-of-range no-op.
func NewRelayBank(pins PinDriver) *RelayBank {
	n := 0
	if pins != nil {
		n = pins.Count()
	}
	return &RelayBank{
		pins:   pins,
		states: make([]bool, n),
	}
}

func (b *RelayBank) Count() int { return len(b.states) }

func (b *RelayBank) valid(relay int) bool {
	return relay >= 0 && relay < len(b.states)
}

// Set issues exactly one write for relay. Out-of-range indexes are ignored.
func (b *RelayBank) Set(relay int, engaged bool) error {
	if !b.valid(relay) {
		return nil
	}
	b.states[relay] = engaged
	if err := b.pins.WriteLevel(relay, access.LogicalToElectrical(engaged)); err != nil {
		log.Printf("[Relay] write relay %d failed: %v", relay, err)
		return err
	}
	return nil
}

// InitializeAllOff releases every channel.
func (b *RelayBank) InitializeAllOff() {
	for i := range b.states {
		_ = b.Set(i, false)
	}
}

// State returns the logical state of relay, false when out of range.
func (b *RelayBank) State(relay int) bool {
	if !b.valid(relay) {
		return false
	}
	return b.states[relay]
}

// States returns a snapshot of every channel.
func (b *RelayBank) States() map[int]bool {
	out := make(map[int]bool, len(b.states))
	for i, s := range b.states {
		out[i] = s
	}
	return out
}

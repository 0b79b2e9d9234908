//go:build !stub

// This file is built for the target board (PN532, GPIO relays, JQ6500).
package nfcgate

import (
	"log"

	"github.com/ystepanoff/nfcgate/controller"
	"github.com/ystepanoff/nfcgate/driver/gpio"
	"github.com/ystepanoff/nfcgate/driver/jq6500"
	"github.com/ystepanoff/nfcgate/driver/pn532"
)

// OpenDrivers opens the reader, relay pins and audio module named in cfg.
// Audio that fails to open only disables cues. The reader is closed by the
// controller when Run returns; the returned func closes the rest.
func OpenDrivers(cfg Config) (Drivers, func() error, error) {
	reader, err := pn532.Open(cfg.Reader.Port, cfg.Reader.Baud,
		pn532.WithTimeout(cfg.Reader.Timeout.Duration),
		pn532.WithRetries(uint8(cfg.Reader.Retries)),
	)
	if err != nil {
		return Drivers{}, nil, err
	}

	pins, err := gpio.Open(cfg.Relays.Pins)
	if err != nil {
		_ = reader.Close()
		return Drivers{}, nil, err
	}

	d := controller.Drivers{Reader: reader, Pins: pins}
	closeFn := func() error { return nil }

	if cfg.Audio.Enabled {
		player, err := jq6500.Open(cfg.Audio.Port, cfg.Audio.Baud, jq6500.WithSettle(cfg.Audio.Settle.Duration))
		if err != nil {
			log.Printf("[Gate] Audio disabled: %v", err)
		} else {
			d.Audio = player
			closeFn = player.Close
		}
	}
	return d, closeFn, nil
}

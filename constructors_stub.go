//go:build stub

// This file is built for host runs without hardware. Card UIDs are read
// from stdin, one per line.
package nfcgate

import (
	"log"
	"os"

	"github.com/ystepanoff/nfcgate/controller"
	"github.com/ystepanoff/nfcgate/driver/stub"
)

func OpenDrivers(cfg Config) (Drivers, func() error, error) {
	reader := stub.NewReader()
	go func() {
		if err := reader.FeedLines(os.Stdin); err != nil {
			log.Printf("[Stub] stdin: %v", err)
		}
	}()

	d := controller.Drivers{Reader: reader, Pins: stub.NewPins(len(cfg.Relays.Pins))}
	if cfg.Audio.Enabled {
		d.Audio = stub.NewAudio()
	}
	return d, func() error { return nil }, nil
}

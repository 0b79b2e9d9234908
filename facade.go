// Package nfcgate provides a façade over the door controller: it wires the
// configured drivers, policy and journal into a runnable gate.
package nfcgate

import (
	"github.com/ystepanoff/nfcgate/access"
	"github.com/ystepanoff/nfcgate/config"
	"github.com/ystepanoff/nfcgate/controller"
	"github.com/ystepanoff/nfcgate/driver/pn532"
)

// The driver constructors are split into build-tag specific files:
// - constructors_hw.go - for the target board (//go:build !stub)
// - constructors_stub.go - for host runs without hardware (//go:build stub)

// Re-export types used by callers of the façade
type (
	UID        = access.UID
	Cue        = access.Cue
	Config     = config.Config
	Controller = controller.Controller
	Decision   = controller.Decision
	Drivers    = controller.Drivers
	Outcome    = controller.Outcome
)

// Error constants exposed in the public API
var (
	ErrInvalidUID = access.ErrInvalidUID
	ErrNoReader   = controller.ErrNoReader
	ErrNoChip     = pn532.ErrNoChip
)

// Constants exposed in the public API
const (
	OutcomeNone    = controller.OutcomeNone
	OutcomeLocked  = controller.OutcomeLocked
	OutcomeGranted = controller.OutcomeGranted
	OutcomeDenied  = controller.OutcomeDenied
)

// LoadConfig reads the TOML file at path (optional) plus NFCGATE_*
// overrides.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

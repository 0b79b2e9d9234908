package nfcgate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ystepanoff/nfcgate/access"
	"github.com/ystepanoff/nfcgate/config"
	"github.com/ystepanoff/nfcgate/controller"
	"github.com/ystepanoff/nfcgate/journal"
)

// Gate is a configured controller together with the resources it owns.
type Gate struct {
	Controller *controller.Controller
	Journal    journal.Sink

	interval time.Duration
	closers  []func() error
}

// New opens the drivers for this build and wires them into a Gate.
func New(ctx context.Context, cfg Config) (*Gate, error) {
	d, closeDrivers, err := OpenDrivers(cfg)
	if err != nil {
		return nil, err
	}
	g, err := NewWithDrivers(ctx, cfg, d)
	if err != nil {
		_ = closeDrivers()
		return nil, err
	}
	g.closers = append(g.closers, closeDrivers)
	return g, nil
}

// NewWithDrivers wires already-opened drivers into a Gate.
func NewWithDrivers(ctx context.Context, cfg Config, d Drivers) (*Gate, error) {
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}

	sink := OpenJournal(ctx, cfg.Journal)
	opts = append(opts, controller.WithJournal(sink))

	return &Gate{
		Controller: controller.New(d, opts...),
		Journal:    sink,
		interval:   cfg.Controller.TickInterval.Duration,
		closers:    []func() error{sink.Close},
	}, nil
}

// Options translates cfg into controller options.
func Options(cfg Config) ([]controller.Option, error) {
	lockout, err := cfg.Lockout.Build()
	if err != nil {
		return nil, err
	}
	uids, err := cfg.Access.ParseUIDs()
	if err != nil {
		return nil, err
	}
	source, err := cfg.Audio.SourceID()
	if err != nil {
		return nil, err
	}

	registry := access.NewRegistry(
		access.WithCapacity4(cfg.Access.Capacity4),
		access.WithCapacity7(cfg.Access.Capacity7),
	)

	return []controller.Option{
		controller.WithRegistry(registry),
		controller.WithAuthorizedUIDs(uids...),
		controller.WithLockout(lockout),
		controller.WithSequence(Sequence(cfg.Relays.Sequence)),
		controller.WithImpatience(cfg.Controller.Impatience.Duration),
		controller.WithAudio(uint8(cfg.Audio.Volume), source),
	}, nil
}

// Sequence converts configured steps into a relay sequence.
func Sequence(steps []config.StepConfig) controller.Sequence {
	seq := make(controller.Sequence, 0, len(steps))
	for _, st := range steps {
		seq = append(seq, controller.Step{
			Relay:  st.Relay,
			Engage: !st.Off,
			Hold:   st.Hold.Duration,
		})
	}
	return seq
}

// OpenJournal opens every sink named in cfg. A sink that cannot be opened
// is logged and left out; the door keeps working without it.
func OpenJournal(ctx context.Context, cfg config.JournalConfig) journal.Sink {
	var sinks []journal.Sink

	if cfg.SQLitePath != "" {
		s, err := journal.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			log.Printf("[Gate] SQLite journal disabled: %v", err)
		} else {
			sinks = append(sinks, s)
		}
	}

	if cfg.RedisURL != "" {
		dialCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		s, err := journal.DialRedis(dialCtx, cfg.RedisURL, cfg.RedisKey, cfg.RedisMaxLen)
		cancel()
		if err != nil {
			log.Printf("[Gate] Redis journal disabled: %v", err)
		} else {
			sinks = append(sinks, s)
		}
	}

	return journal.Multi(sinks...)
}

// Start initializes the controller. The error is fatal: there is no reader.
func (g *Gate) Start() error {
	if err := g.Controller.Init(time.Now()); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	return nil
}

// Run polls until ctx is cancelled.
func (g *Gate) Run(ctx context.Context) error {
	return g.Controller.Run(ctx, g.interval)
}

// Close flushes pending journal entries, then releases the journal and
// drivers.
func (g *Gate) Close() error {
	g.Controller.CloseJournal()

	var errs []error
	for i := len(g.closers) - 1; i >= 0; i-- {
		if err := g.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

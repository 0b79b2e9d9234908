package controller

import (
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/ystepanoff/nfcgate/access"
	"github.com/ystepanoff/nfcgate/journal"
)

var ErrNoReader = errors.New("no card reader configured")

// State is the orchestrator's operational state.
type State uint8

const (
	StateWaiting State = iota
	StateLockedOut
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateLockedOut:
		return "locked-out"
	default:
		return "unknown"
	}
}

// Outcome is what a tick did with the reader.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomeLocked
	OutcomeGranted
	OutcomeDenied
)

// Decision reports the result of one Tick.
type Decision struct {
	Outcome Outcome
	UID     access.UID
	Cue     access.Cue
	Delay   time.Duration
}

// Controller ties the registry, lockout policy, relay sequencer and
// feedback together. It is driven from a single goroutine through Tick.
type Controller struct {
	reader    CardReader
	bank      *RelayBank
	sequencer *Sequencer
	feedback  *Feedback
	registry  *access.Registry
	lockout   *access.Lockout
	journal   journal.Sink
	writer    *journalWriter

	sequence   Sequence
	uids       []access.UID
	uidsSet    bool
	impatience time.Duration
	volume     uint8
	source     uint8

	state       State
	lockedUntil time.Time
	startedAt   time.Time
	scanned     bool
	impatient   bool

	readErrLog *rate.Limiter
}

// Option configures a Controller.
type Option func(*Controller)

// WithRegistry replaces the default registry.
func WithRegistry(r *access.Registry) Option {
	return func(c *Controller) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithAuthorizedUIDs seeds exactly these UIDs on Init instead of
// access.DefaultUIDs. An empty list leaves the registry empty.
func WithAuthorizedUIDs(uids ...access.UID) Option {
	return func(c *Controller) {
		c.uids = append(c.uids, uids...)
		c.uidsSet = true
	}
}

// WithLockout replaces the default lockout policy.
func WithLockout(l *access.Lockout) Option {
	return func(c *Controller) {
		if l != nil {
			c.lockout = l
		}
	}
}

// WithSequence sets the relay sequence run on a granted scan.
func WithSequence(seq Sequence) Option {
	return func(c *Controller) {
		if len(seq) > 0 {
			c.sequence = seq
		}
	}
}

// WithImpatience sets how long to wait for a first scan before the waiting
// cue plays. Zero disables the cue.
func WithImpatience(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.impatience = d
		}
	}
}

// WithJournal records every decision into sink.
func WithJournal(sink journal.Sink) Option {
	return func(c *Controller) {
		if sink != nil {
			c.journal = sink
		}
	}
}

// WithAudio sets the volume and source forwarded to the audio module.
func WithAudio(volume, source uint8) Option {
	return func(c *Controller) {
		c.volume = volume
		c.source = source
	}
}

func New(d Drivers, opts ...Option) *Controller {
	bank := NewRelayBank(d.Pins)
	c := &Controller{
		reader:     d.Reader,
		bank:       bank,
		sequencer:  NewSequencer(bank),
		feedback:   NewFeedback(d.Audio),
		registry:   access.NewRegistry(),
		lockout:    access.DefaultLockout(),
		journal:    journal.Discard,
		sequence:   Chained(0, access.DefaultRelayHold, 1, access.DefaultRelayHold),
		impatience: access.DefaultImpatience,
		volume:     access.DefaultVolume,
		source:     access.SourceBuiltin,
		readErrLog: rate.NewLimiter(rate.Every(5*time.Second), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init resets every state machine, seeds the registry, releases all relays
// and brings the peripherals up. A reader failure is returned and is fatal
// for the caller; a missing audio module only disables cues.
func (c *Controller) Init(now time.Time) error {
	if c.reader == nil {
		return ErrNoReader
	}

	c.registry.Reset()
	if c.uidsSet {
		for _, uid := range c.uids {
			c.registry.Add(uid)
		}
	} else {
		c.registry.SeedDefaults()
	}
	n4, n7 := c.registry.Len()
	log.Printf("[Controller] registry seeded: %d x 4-byte, %d x 7-byte", n4, n7)

	c.lockout.OnSuccess()
	c.sequencer.Reset()
	c.state = StateWaiting
	c.lockedUntil = time.Time{}
	c.startedAt = now
	c.scanned = false
	c.impatient = false

	if err := c.reader.Begin(); err != nil {
		return fmt.Errorf("card reader: %w", err)
	}

	if c.bank.Count() == 0 {
		log.Printf("[Controller] no relay pins configured, grants will not open anything")
	}
	c.CloseJournal()
	c.writer = startJournalWriter(c.journal)

	c.bank.InitializeAllOff()

	if c.feedback.Init(c.volume, c.source) {
		c.feedback.Notify(EventStartup)
	}

	log.Printf("[Controller] waiting for an ISO14443A card")
	return nil
}

// Tick runs one pass of the polling loop: sequencer, impatience cue, then a
// non-blocking scan unless a lockout is still pending.
func (c *Controller) Tick(now time.Time) Decision {
	c.sequencer.Tick(now)

	if !c.impatient && !c.scanned && c.impatience > 0 && now.Sub(c.startedAt) > c.impatience {
		c.impatient = true
		c.feedback.Notify(EventImpatient)
	}

	if c.state == StateLockedOut {
		if now.Before(c.lockedUntil) {
			return Decision{Outcome: OutcomeLocked}
		}
		c.state = StateWaiting
		c.lockedUntil = time.Time{}
		log.Printf("[Controller] lockout over, accepting scans")
	}

	uid, err := c.reader.TryRead()
	if err != nil {
		if c.readErrLog.AllowN(now, 1) {
			log.Printf("[Controller] reader error: %v", err)
		}
		return Decision{}
	}
	if uid == nil {
		return Decision{}
	}

	c.scanned = true
	return c.decide(now, uid)
}

func (c *Controller) decide(now time.Time, uid access.UID) Decision {
	log.Printf("[Controller] found a card: %d bytes, uid %s", len(uid), uid)

	if c.registry.IsAuthorized(uid) {
		c.lockout.OnSuccess()
		cue := CueFor(EventGranted)
		c.feedback.Play(cue)
		c.sequencer.Start(c.sequence, now)
		log.Printf("[Controller] card match found, starting relay sequence")

		entry := journal.NewEntry(now, uid, true)
		entry.Cue = cue
		c.record(entry)
		return Decision{Outcome: OutcomeGranted, UID: uid, Cue: cue}
	}

	attempt := c.lockout.Attempts()
	cue := c.lockout.FeedbackForFailure()
	c.feedback.Play(cue)
	delay := c.lockout.OnFailure()
	_, saturated := c.lockout.DelayFor(attempt)

	c.state = StateLockedOut
	c.lockedUntil = now.Add(delay)
	log.Printf("[Controller] unauthorised card, attempt %d, locked out for %v", attempt+1, delay)

	entry := journal.NewEntry(now, uid, false)
	entry.Attempt = attempt
	entry.Delay = delay
	entry.Saturated = saturated
	entry.Cue = cue
	c.record(entry)
	return Decision{Outcome: OutcomeDenied, UID: uid, Cue: cue, Delay: delay}
}

// record hands e to the journal writer without waiting for the sink.
func (c *Controller) record(e journal.Entry) {
	if c.writer == nil {
		return
	}
	if !c.writer.enqueue(e) {
		log.Printf("[Controller] journal queue full, dropped entry %s", e.ID)
	}
}

// CloseJournal waits for queued journal entries to be written and stops
// the writer. Decisions made afterwards are not journaled until the next
// Init.
func (c *Controller) CloseJournal() {
	if c.writer == nil {
		return
	}
	c.writer.close()
	c.writer = nil
}

// JournalDropped counts entries lost because the journal queue was full.
func (c *Controller) JournalDropped() int64 {
	if c.writer == nil {
		return 0
	}
	return c.writer.dropped.Load()
}

func (c *Controller) State() State { return c.state }

// LockedUntil returns when the pending lockout ends.
func (c *Controller) LockedUntil() (time.Time, bool) {
	if c.state != StateLockedOut {
		return time.Time{}, false
	}
	return c.lockedUntil, true
}

func (c *Controller) Registry() *access.Registry { return c.registry }
func (c *Controller) Lockout() *access.Lockout   { return c.lockout }
func (c *Controller) Sequencer() *Sequencer      { return c.sequencer }
func (c *Controller) Relays() *RelayBank         { return c.bank }
func (c *Controller) Feedback() *Feedback        { return c.feedback }

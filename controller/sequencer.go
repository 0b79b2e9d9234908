package controller

import (
	"log"
	"time"
)

// Step drives one relay to a state and holds it there.
type Step struct {
	Relay  int
	Engage bool
	Hold   time.Duration
}

// Sequence is an ordered list of steps run back to back.
type Sequence []Step

// SingleRelay engages relay for hold and then releases it.
func SingleRelay(relay int, hold time.Duration) Sequence {
	return Sequence{{Relay: relay, Engage: true, Hold: hold}}
}

// Chained engages a for d1, then releases a and engages b for d2.
func Chained(a int, d1 time.Duration, b int, d2 time.Duration) Sequence {
	return Sequence{
		{Relay: a, Engage: true, Hold: d1},
		{Relay: b, Engage: true, Hold: d2},
	}
}

// Sequencer runs a Sequence without blocking. Progress happens only in
// Tick; starting a new sequence while one is active preempts it.
type Sequencer struct {
	bank     *RelayBank
	seq      Sequence
	step     int
	deadline time.Time
	active   bool
}

func NewSequencer(bank *RelayBank) *Sequencer {
	return &Sequencer{bank: bank}
}

// Start engages the first step. An empty sequence is ignored.
func (s *Sequencer) Start(seq Sequence, now time.Time) {
	if len(seq) == 0 {
		return
	}
	if s.active {
		log.Printf("[Sequencer] preempting sequence at step %d", s.step)
		s.release()
	}

	s.seq = make(Sequence, len(seq))
	copy(s.seq, seq)
	s.active = true
	s.enter(0, now)
}

// Tick advances at most one step once the current deadline has passed.
func (s *Sequencer) Tick(now time.Time) {
	if !s.active || now.Before(s.deadline) {
		return
	}

	s.release()
	next := s.step + 1
	if next >= len(s.seq) {
		s.active = false
		s.seq = nil
		log.Printf("[Sequencer] sequence complete")
		return
	}
	s.enter(next, now)
}

func (s *Sequencer) enter(i int, now time.Time) {
	st := s.seq[i]
	s.step = i
	s.deadline = now.Add(st.Hold)
	_ = s.bank.Set(st.Relay, st.Engage)
	log.Printf("[Sequencer] step %d: relay %d engaged=%t for %v", i, st.Relay, st.Engage, st.Hold)
}

// release undoes the current step. Steps that hold a relay released leave
// nothing to undo.
func (s *Sequencer) release() {
	st := s.seq[s.step]
	if st.Engage {
		_ = s.bank.Set(st.Relay, false)
	}
}

func (s *Sequencer) IsActive() bool { return s.active }

// Step returns the index of the running step.
func (s *Sequencer) Step() (int, bool) {
	if !s.active {
		return 0, false
	}
	return s.step, true
}

// Deadline returns when the running step ends.
func (s *Sequencer) Deadline() (time.Time, bool) {
	if !s.active {
		return time.Time{}, false
	}
	return s.deadline, true
}

func (s *Sequencer) CurrentRelayStates() map[int]bool { return s.bank.States() }

// Reset drops any running sequence and releases its relay.
func (s *Sequencer) Reset() {
	if s.active {
		s.release()
	}
	s.active = false
	s.seq = nil
	s.step = 0
	s.deadline = time.Time{}
}

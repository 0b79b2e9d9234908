// Package stub provides in-memory drivers for running the controller
// without hardware.
package stub

import (
	"bufio"
	"errors"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/ystepanoff/nfcgate/access"
)

var ErrClosed = errors.New("stub: reader closed")

// Reader hands out injected UIDs, one per TryRead.
type Reader struct {
	mu       sync.Mutex
	queue    ringBuffer
	BeginErr error
	closed   bool
}

func NewReader() *Reader { return &Reader{} }

func (r *Reader) Begin() error {
	if r.BeginErr != nil {
		return r.BeginErr
	}
	log.Printf("[Stub] Reader ready")
	return nil
}

func (r *Reader) TryRead() (access.UID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	uid, ok := r.queue.pop()
	if !ok {
		return nil, nil
	}
	return uid, nil
}

func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Inject queues a card presentation.
func (r *Reader) Inject(uid access.UID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue.push(uid.Clone())
}

// FeedLines parses one UID per line from src and injects it until src is
// exhausted. Blank lines and lines starting with '#' are ignored; lines
// that do not parse are logged and skipped.
func (r *Reader) FeedLines(src io.Reader) error {
	sc := bufio.NewScanner(src)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// Lengths are left for the controller to judge.
		uid, err := access.DecodeUID(line)
		if err != nil || len(uid) == 0 {
			log.Printf("[Stub] Ignoring %q: not a hex UID", line)
			continue
		}
		r.Inject(uid)
	}
	return sc.Err()
}

// Pending returns the number of queued presentations.
func (r *Reader) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.count
}

// PinWrite is one recorded electrical write.
type PinWrite struct {
	Relay int
	Level access.Level
}

// Pins records relay writes.
type Pins struct {
	mu     sync.Mutex
	levels []access.Level
	writes []PinWrite
}

// NewPins returns a bank of n pins, all high.
func NewPins(n int) *Pins {
	p := &Pins{levels: make([]access.Level, n)}
	for i := range p.levels {
		p.levels[i] = access.High
	}
	return p
}

func (p *Pins) Count() int { return len(p.levels) }

func (p *Pins) WriteLevel(relay int, level access.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if relay < 0 || relay >= len(p.levels) {
		return errors.New("stub: relay index out of range")
	}
	p.levels[relay] = level
	p.writes = append(p.writes, PinWrite{Relay: relay, Level: level})
	log.Printf("[Stub] Relay %d -> %s", relay, level)
	return nil
}

func (p *Pins) Writes() []PinWrite {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PinWrite(nil), p.writes...)
}

func (p *Pins) Level(relay int) access.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.levels[relay]
}

// Audio records played tracks.
type Audio struct {
	mu     sync.Mutex
	played []uint8
	volume uint8
	source uint8
}

func NewAudio() *Audio { return &Audio{} }

func (a *Audio) Begin() error { return nil }

func (a *Audio) SetVolume(level uint8) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.volume = level
	return nil
}

func (a *Audio) SetSource(src uint8) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.source = src
	return nil
}

func (a *Audio) Play(track uint8) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.played = append(a.played, track)
	log.Printf("[Stub] Playing track %d", track)
	return nil
}

func (a *Audio) Played() []uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]uint8(nil), a.played...)
}

func (a *Audio) Volume() uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.volume
}

func (a *Audio) Source() uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.source
}

const ringCapacity = 64

type ringBuffer struct {
	data       [ringCapacity]access.UID
	head, tail int // head = next pop, tail = next push
	count      int
}

func (rb *ringBuffer) push(uid access.UID) {
	if rb.count == ringCapacity {
		// Overwrite the oldest when buffer is full to keep memory bounded
		rb.data[rb.tail] = nil
		rb.head = (rb.head + 1) % ringCapacity
		rb.count--
	}
	rb.data[rb.tail] = uid
	rb.tail = (rb.tail + 1) % ringCapacity
	rb.count++
}

func (rb *ringBuffer) pop() (access.UID, bool) {
	if rb.count == 0 {
		return nil, false
	}
	uid := rb.data[rb.head]
	rb.data[rb.head] = nil
	rb.head = (rb.head + 1) % ringCapacity
	rb.count--
	return uid, true
}

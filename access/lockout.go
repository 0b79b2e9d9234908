package access

import (
	"fmt"
	"time"
)

// Lockout tracks consecutive failed scans and maps them onto an escalating
// delay table. It never sleeps; the caller decides how to impose the delay.
type Lockout struct {
	base  time.Duration
	table []time.Duration
	count int
}

// NewLockout validates table and returns a Lockout using a private copy of it.
func NewLockout(base time.Duration, table []time.Duration) (*Lockout, error) {
	if base < 0 {
		return nil, fmt.Errorf("lockout base: %w", ErrNegativeDuration)
	}
	if len(table) == 0 {
		return nil, ErrEmptyTable
	}
	for i, d := range table {
		if d < 0 {
			return nil, fmt.Errorf("lockout table[%d]: %w", i, ErrNegativeDuration)
		}
		if i > 0 && d < table[i-1] {
			return nil, fmt.Errorf("lockout table[%d]: %w", i, ErrTableNotMonotonic)
		}
	}
	t := make([]time.Duration, len(table))
	copy(t, table)
	return &Lockout{base: base, table: t}, nil
}

// DefaultLockout uses DefaultLockoutBase and DefaultLockoutTable.
func DefaultLockout() *Lockout {
	l, err := NewLockout(DefaultLockoutBase, DefaultLockoutTable)
	if err != nil {
		panic(err)
	}
	return l
}

func (l *Lockout) lastIndex() int { return len(l.table) - 1 }

// DelayFor returns base+table[attempt], clamping attempt to the last index.
// saturated is true once attempt has reached the last index.
func (l *Lockout) DelayFor(attempt int) (delay time.Duration, saturated bool) {
	idx := attempt
	if idx < 0 {
		idx = 0
	}
	if idx >= l.lastIndex() {
		idx = l.lastIndex()
		saturated = true
	}
	return l.base + l.table[idx], saturated
}

// OnSuccess resets the failure counter.
func (l *Lockout) OnSuccess() { l.count = 0 }

// OnFailure returns the delay for the current counter and then advances the
// counter, which sticks at the last table index.
func (l *Lockout) OnFailure() time.Duration {
	delay, _ := l.DelayFor(l.count)
	if l.count < l.lastIndex() {
		l.count++
	}
	return delay
}

// FeedbackForFailure picks the denied cue for the current counter. Call it
// before OnFailure.
func (l *Lockout) FeedbackForFailure() Cue {
	switch l.count {
	case 0:
		return CueDenied1
	case 1:
		return CueDenied2
	default:
		return CueDenied3
	}
}

// Attempts returns the consecutive failure counter.
func (l *Lockout) Attempts() int { return l.count }

// Saturated reports whether the counter sits on the last table entry.
func (l *Lockout) Saturated() bool { return l.count >= l.lastIndex() }

// Max returns the largest delay OnFailure can ever return.
func (l *Lockout) Max() time.Duration {
	return l.base + l.table[l.lastIndex()]
}

// Package journal records access decisions.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ystepanoff/nfcgate/access"
)

// Entry is one access decision.
type Entry struct {
	ID        string        `json:"id"`
	Time      time.Time     `json:"time"`
	UID       string        `json:"uid"`
	Length    int           `json:"length"`
	Granted   bool          `json:"granted"`
	Attempt   int           `json:"attempt"`
	Delay     time.Duration `json:"delay"`
	Saturated bool          `json:"saturated,omitempty"`
	Cue       access.Cue    `json:"cue"`
}

// NewEntry stamps a fresh ID onto a decision for uid.
func NewEntry(at time.Time, uid access.UID, granted bool) Entry {
	return Entry{
		ID:      uuid.New().String(),
		Time:    at,
		UID:     uid.String(),
		Length:  len(uid),
		Granted: granted,
	}
}

// Sink stores journal entries. It only receives data; querying is up to
// the concrete sink.
type Sink interface {
	Record(ctx context.Context, e Entry) error
	Close() error
}

// Discard drops every entry.
var Discard Sink = discard{}

type discard struct{}

func (discard) Record(context.Context, Entry) error { return nil }
func (discard) Close() error                        { return nil }

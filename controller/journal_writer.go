package controller

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/ystepanoff/nfcgate/journal"
)

const (
	journalQueueSize = 64
	journalTimeout   = time.Second
)

// journalWriter records entries from its own goroutine so a slow or
// unreachable sink never holds up Tick and the relay windows it drives.
type journalWriter struct {
	sink    journal.Sink
	queue   chan journal.Entry
	done    chan struct{}
	dropped atomic.Int64
}

func startJournalWriter(sink journal.Sink) *journalWriter {
	w := &journalWriter{
		sink:  sink,
		queue: make(chan journal.Entry, journalQueueSize),
		done:  make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *journalWriter) loop() {
	defer close(w.done)
	for e := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
		if err := w.sink.Record(ctx, e); err != nil {
			log.Printf("[Controller] journal: %v", err)
		}
		cancel()
	}
}

// enqueue never blocks. It reports false when the queue is full.
func (w *journalWriter) enqueue(e journal.Entry) bool {
	select {
	case w.queue <- e:
		return true
	default:
		w.dropped.Add(1)
		return false
	}
}

// close stops accepting entries and waits until the queue is drained.
func (w *journalWriter) close() {
	close(w.queue)
	<-w.done
}

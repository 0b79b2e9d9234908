package controller

import (
	"log"

	"github.com/ystepanoff/nfcgate/access"
)

// Event is a controller occurrence that has a fixed cue.
type Event uint8

const (
	EventStartup Event = iota
	EventImpatient
	EventGranted
)

// CueFor maps an event onto its cue.
func CueFor(ev Event) access.Cue {
	switch ev {
	case EventStartup:
		return access.CueStartup
	case EventImpatient:
		return access.CueWaiting
	case EventGranted:
		return access.CueAccepted
	default:
		return access.CueNone
	}
}

// Feedback forwards cues to the audio driver. Failures never reach the
// caller; a missing or broken module just drops the cue.
type Feedback struct {
	audio   AudioDriver
	ready   bool
	volume  uint8
	source  uint8
	lastCue access.Cue
	dropped int
}

func NewFeedback(audio AudioDriver) *Feedback {
	return &Feedback{
		audio:  audio,
		volume: access.DefaultVolume,
		source: access.SourceBuiltin,
	}
}

// Init brings the module up and forwards volume and source. It reports
// whether audio is available.
func (f *Feedback) Init(volume, source uint8) bool {
	f.ready = false
	if volume > access.MaxVolume {
		volume = access.MaxVolume
	}
	f.volume = volume
	f.source = source

	if f.audio == nil {
		log.Printf("[Feedback] no audio module configured, cues disabled")
		return false
	}
	if err := f.audio.Begin(); err != nil {
		log.Printf("[Feedback] audio module unavailable, cues disabled: %v", err)
		return false
	}
	if err := f.audio.SetSource(source); err != nil {
		log.Printf("[Feedback] set source %d: %v", source, err)
	}
	if err := f.audio.SetVolume(volume); err != nil {
		log.Printf("[Feedback] set volume %d: %v", volume, err)
	}
	f.ready = true
	return true
}

// Play requests cue. It is a no-op when audio is unavailable.
func (f *Feedback) Play(cue access.Cue) {
	if cue == access.CueNone {
		return
	}
	if !f.ready {
		f.dropped++
		return
	}
	if err := f.audio.Play(cue.Track()); err != nil {
		f.dropped++
		log.Printf("[Feedback] play %s: %v", cue, err)
		return
	}
	f.lastCue = cue
}

// Notify plays the cue for ev.
func (f *Feedback) Notify(ev Event) { f.Play(CueFor(ev)) }

func (f *Feedback) Available() bool { return f.ready }

// LastCue returns the last cue the module accepted.
func (f *Feedback) LastCue() access.Cue { return f.lastCue }

// Dropped counts cues that never reached the module.
func (f *Feedback) Dropped() int { return f.dropped }

func (f *Feedback) Volume() uint8 { return f.volume }

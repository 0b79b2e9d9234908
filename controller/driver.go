package controller

import "github.com/ystepanoff/nfcgate/access"

// CardReader is the interface that wraps the contactless reader.
// TryRead must not block; a nil UID means no card this tick.
type CardReader interface {
	Begin() error
	TryRead() (access.UID, error)
	Close() error
}

// PinDriver writes electrical levels to the relay output lines.
type PinDriver interface {
	Count() int
	WriteLevel(relay int, level access.Level) error
}

// AudioDriver is the interface that wraps the MP3 playback module.
type AudioDriver interface {
	Begin() error
	SetVolume(level uint8) error
	SetSource(src uint8) error
	Play(track uint8) error
}

// Drivers bundles the peripherals a Controller talks to. Audio may be nil.
type Drivers struct {
	Reader CardReader
	Pins   PinDriver
	Audio  AudioDriver
}

// Package jq6500 drives a JQ6500 MP3 module over its UART command
// interface.
package jq6500

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"go.bug.st/serial"
)

// Command frame: Start(1) | LEN(1) | CMD(1) | ARGS(0-2) | End(1).
// LEN counts CMD, ARGS and End.
const (
	FrameStart = 0x7E
	FrameEnd   = 0xEF

	CmdPlayIndex = 0x03
	CmdVolume    = 0x06
	CmdSource    = 0x09
	CmdReset     = 0x0C

	SourceSDCard  = 0x01
	SourceBuiltin = 0x04

	MaxVolume     = 30
	DefaultBaud   = 9600
	DefaultSettle = 500 * time.Millisecond
)

var ErrInvalidSource = errors.New("jq6500: source must be SD card (1) or built-in (4)")

// EncodeCommand frames cmd with its arguments.
func EncodeCommand(cmd byte, args ...byte) []byte {
	out := make([]byte, 0, len(args)+4)
	out = append(out, FrameStart, byte(len(args)+2), cmd)
	out = append(out, args...)
	return append(out, FrameEnd)
}

func PlayCommand(index uint16) []byte {
	return EncodeCommand(CmdPlayIndex, byte(index>>8), byte(index))
}

// VolumeCommand clamps level to MaxVolume.
func VolumeCommand(level uint8) []byte {
	return EncodeCommand(CmdVolume, clampVolume(level))
}

func SourceCommand(src uint8) ([]byte, error) {
	if src != SourceSDCard && src != SourceBuiltin {
		return nil, ErrInvalidSource
	}
	return EncodeCommand(CmdSource, src), nil
}

func ResetCommand() []byte {
	return EncodeCommand(CmdReset)
}

func clampVolume(level uint8) uint8 {
	if level > MaxVolume {
		return MaxVolume
	}
	return level
}

type Option func(*Player)

// WithSettle sets how long Begin waits after resetting the module.
func WithSettle(d time.Duration) Option {
	return func(p *Player) {
		if d >= 0 {
			p.settle = d
		}
	}
}

// Player sends commands to the module. It never reads replies; the module
// is write-only from the controller's point of view.
type Player struct {
	w      io.WriteCloser
	settle time.Duration
	sleep  func(time.Duration)
	volume uint8
	source uint8
}

func New(w io.WriteCloser, opts ...Option) *Player {
	p := &Player{
		w:      w,
		settle: DefaultSettle,
		sleep:  time.Sleep,
		source: SourceBuiltin,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open opens the module's serial port at baud (9600 when zero).
func Open(name string, baud int, opts ...Option) (*Player, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("jq6500: open %s: %w", name, err)
	}
	return New(port, opts...), nil
}

// Begin resets the module and waits for it to come back.
func (p *Player) Begin() error {
	if err := p.send(ResetCommand()); err != nil {
		return err
	}
	p.sleep(p.settle)
	log.Printf("[JQ6500] Module reset")
	return nil
}

func (p *Player) SetVolume(level uint8) error {
	level = clampVolume(level)
	if err := p.send(VolumeCommand(level)); err != nil {
		return err
	}
	p.volume = level
	return nil
}

func (p *Player) SetSource(src uint8) error {
	frame, err := SourceCommand(src)
	if err != nil {
		return err
	}
	if err := p.send(frame); err != nil {
		return err
	}
	p.source = src
	return nil
}

// Play starts the file with the given index on the current source.
func (p *Player) Play(track uint8) error {
	return p.send(PlayCommand(uint16(track)))
}

// Volume returns the last volume written. The module's own volume query
// is unreliable.
func (p *Player) Volume() uint8 { return p.volume }

func (p *Player) Source() uint8 { return p.source }

func (p *Player) Close() error {
	return p.w.Close()
}

func (p *Player) send(frame []byte) error {
	if _, err := p.w.Write(frame); err != nil {
		return fmt.Errorf("jq6500: command 0x%02X: %w", frame[2], err)
	}
	return nil
}

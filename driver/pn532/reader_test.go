package pn532

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ystepanoff/nfcgate/access"
)

// fakeChip answers host frames the way a PN532 does: ACK, then a response
// frame built from the per-command table.
type fakeChip struct {
	responses map[byte][]byte // response params, keyed by command
	silent    map[byte]bool   // ACK but never respond
	raw       map[byte][]byte // reply bytes sent after the ACK instead of a response
	deaf      bool            // never ACK

	commands [][]byte
	aborts   int
	woken    bool
	closed   bool
	out      []byte
}

func newFakeChip() *fakeChip {
	return &fakeChip{
		responses: map[byte][]byte{
			CmdGetFirmwareVersion:  {0x32, 0x01, 0x06, 0x07},
			CmdSAMConfiguration:    {},
			CmdRFConfiguration:     {},
			CmdInListPassiveTarget: {0x00},
		},
		silent: map[byte]bool{},
		raw:    map[byte][]byte{},
	}
}

func (c *fakeChip) Write(p []byte) (int, error) {
	switch {
	case bytes.Equal(p, wakeupSequence):
		c.woken = true
		return len(p), nil
	case bytes.Equal(p, AckFrame):
		c.aborts++
		return len(p), nil
	}

	f, _, err := ParseFrame(p)
	if err != nil || f.TFI != HostToPN532 || len(f.Data) == 0 {
		return len(p), nil
	}
	c.commands = append(c.commands, f.Data)
	if c.deaf {
		return len(p), nil
	}

	cmd := f.Data[0]
	c.out = append(c.out, AckFrame...)
	switch {
	case c.silent[cmd]:
	case c.raw[cmd] != nil:
		c.out = append(c.out, c.raw[cmd]...)
	default:
		c.out = append(c.out, responseFrame(PN532ToHost, append([]byte{cmd + 1}, c.responses[cmd]...)...)...)
	}
	return len(p), nil
}

func (c *fakeChip) Read(p []byte) (int, error) {
	if len(c.out) == 0 {
		time.Sleep(time.Millisecond)
		return 0, nil
	}
	n := copy(p, c.out)
	c.out = c.out[n:]
	return n, nil
}

func (c *fakeChip) SetReadTimeout(time.Duration) error { return nil }
func (c *fakeChip) ResetInputBuffer() error            { return nil }

func (c *fakeChip) Close() error {
	c.closed = true
	return nil
}

func (c *fakeChip) commandCodes() []byte {
	var out []byte
	for _, cmd := range c.commands {
		out = append(out, cmd[0])
	}
	return out
}

func TestReader_Begin(t *testing.T) {
	chip := newFakeChip()
	r := New(chip, WithRetries(3))

	require.NoError(t, r.Begin())

	assert.True(t, chip.woken)
	assert.Equal(t, []byte{CmdGetFirmwareVersion, CmdSAMConfiguration, CmdRFConfiguration}, chip.commandCodes())
	assert.Equal(t, []byte{CmdSAMConfiguration, 0x01, 0x14, 0x01}, chip.commands[1])
	assert.Equal(t, []byte{CmdRFConfiguration, 0x05, 0xFF, 0x01, 0x03}, chip.commands[2])

	fw := r.Firmware()
	assert.Equal(t, Firmware{IC: 0x32, Version: 1, Revision: 6, Support: 7}, fw)
	assert.Equal(t, "PN532 v1.6", fw.String())
}

func TestReader_BeginNoChip(t *testing.T) {
	chip := newFakeChip()
	chip.deaf = true
	r := New(chip, WithTimeout(5*time.Millisecond))

	err := r.Begin()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoChip))
	assert.Len(t, chip.commands, 1, "nothing is configured after a failed probe")
}

func TestReader_BeginShortFirmware(t *testing.T) {
	chip := newFakeChip()
	chip.responses[CmdGetFirmwareVersion] = []byte{0x32}

	err := New(chip).Begin()
	assert.True(t, errors.Is(err, ErrNoChip))
}

func TestReader_TryRead(t *testing.T) {
	tests := []struct {
		name   string
		target []byte
		want   access.UID
	}{
		{
			name:   "no card",
			target: []byte{0x00},
			want:   nil,
		},
		{
			name:   "4-byte uid",
			target: []byte{0x01, 0x01, 0x00, 0x04, 0x08, 0x04, 0xB4, 0x12, 0x34, 0x56},
			want:   access.UID{0xB4, 0x12, 0x34, 0x56},
		},
		{
			name:   "7-byte uid",
			target: []byte{0x01, 0x01, 0x00, 0x44, 0x00, 0x07, 0x04, 0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC},
			want:   access.UID{0x04, 0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC},
		},
		{
			name:   "unsupported length is passed through",
			target: []byte{0x01, 0x01, 0x00, 0x44, 0x00, 0x0A, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			want:   access.UID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chip := newFakeChip()
			r := New(chip)
			require.NoError(t, r.Begin())

			chip.responses[CmdInListPassiveTarget] = tt.target
			uid, err := r.TryRead()
			require.NoError(t, err)
			assert.Equal(t, tt.want, uid)
			assert.Equal(t, []byte{CmdInListPassiveTarget, 0x01, 0x00}, chip.commands[len(chip.commands)-1])
		})
	}
}

func TestReader_TryReadNoResponse(t *testing.T) {
	chip := newFakeChip()
	r := New(chip, WithTimeout(5*time.Millisecond))
	require.NoError(t, r.Begin())

	chip.silent[CmdInListPassiveTarget] = true
	uid, err := r.TryRead()
	assert.NoError(t, err)
	assert.Nil(t, uid)
	assert.Equal(t, 1, chip.aborts, "pending poll is aborted with an ACK")
}

func TestReader_TryReadErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"application error frame", responseFrame(ErrorFrameTFI)},
		{"wrong response code", responseFrame(PN532ToHost, 0x03, 0x00)},
		{"truncated target", responseFrame(PN532ToHost, 0x4B, 0x01, 0x01, 0x00, 0x04, 0x08, 0x04, 0xB4)},
		{"nack", NackFrame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chip := newFakeChip()
			r := New(chip, WithTimeout(5*time.Millisecond))
			require.NoError(t, r.Begin())

			chip.raw[CmdInListPassiveTarget] = tt.raw
			uid, err := r.TryRead()
			assert.Error(t, err)
			assert.Nil(t, uid)
		})
	}
}

func TestReader_Close(t *testing.T) {
	chip := newFakeChip()
	require.NoError(t, New(chip).Close())
	assert.True(t, chip.closed)
}

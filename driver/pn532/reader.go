package pn532

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/ystepanoff/nfcgate/access"
)

// Port is the serial link to the chip. go.bug.st/serial ports satisfy it.
type Port interface {
	io.ReadWriter
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
	Close() error
}

// Firmware is the GetFirmwareVersion response.
type Firmware struct {
	IC       byte
	Version  byte
	Revision byte
	Support  byte
}

func (f Firmware) String() string {
	return fmt.Sprintf("PN5%X v%d.%d", f.IC, f.Version, f.Revision)
}

type Option func(*Reader)

// WithTimeout bounds how long a single command waits for its ACK and
// response.
func WithTimeout(d time.Duration) Option {
	return func(r *Reader) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithRetries sets the passive activation retry count. 0xFF retries forever
// and makes TryRead block until a card shows up.
func WithRetries(n uint8) Option {
	return func(r *Reader) { r.retries = n }
}

// Reader drives a PN532 over HSU and reads ISO14443A card UIDs.
type Reader struct {
	port     Port
	timeout  time.Duration
	retries  uint8
	firmware Firmware
	pending  []byte
	chunk    []byte
}

const maxPending = 512

func New(port Port, opts ...Option) *Reader {
	r := &Reader{
		port:    port,
		timeout: DefaultTimeout,
		retries: DefaultRetries,
		chunk:   make([]byte, 64),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Begin wakes the chip, checks its firmware and configures it for passive
// polling. An error here means there is no usable reader.
func (r *Reader) Begin() error {
	if err := r.port.SetReadTimeout(r.timeout / 4); err != nil {
		return fmt.Errorf("pn532: set read timeout: %w", err)
	}
	if _, err := r.port.Write(wakeupSequence); err != nil {
		return fmt.Errorf("pn532: wakeup: %w", err)
	}
	_ = r.port.ResetInputBuffer()
	r.pending = r.pending[:0]

	fw, err := r.GetFirmwareVersion()
	if err != nil {
		log.Printf("[PN532] Didn't find PN53x board: %v", err)
		return fmt.Errorf("%w: %v", ErrNoChip, err)
	}
	r.firmware = fw
	log.Printf("[PN532] Found chip PN5%X, firmware ver. %d.%d", fw.IC, fw.Version, fw.Revision)

	if _, err := r.command(CmdSAMConfiguration, []byte{samModeNormal, samTimeout, samUseIRQ}); err != nil {
		return fmt.Errorf("pn532: SAM configuration: %w", err)
	}
	if _, err := r.command(CmdRFConfiguration, []byte{rfItemMaxRetries, rfRetriesATR, rfRetriesPSL, r.retries}); err != nil {
		return fmt.Errorf("pn532: set retries: %w", err)
	}
	return nil
}

// GetFirmwareVersion queries the chip identity.
func (r *Reader) GetFirmwareVersion() (Firmware, error) {
	resp, err := r.command(CmdGetFirmwareVersion, nil)
	if err != nil {
		return Firmware{}, err
	}
	if len(resp) < 4 {
		return Firmware{}, fmt.Errorf("%w: firmware response too short", ErrBadFrame)
	}
	return Firmware{IC: resp[0], Version: resp[1], Revision: resp[2], Support: resp[3]}, nil
}

// Firmware returns the version read by Begin.
func (r *Reader) Firmware() Firmware { return r.firmware }

// TryRead polls once for an ISO14443A target. A nil UID with nil error
// means no card was in the field.
func (r *Reader) TryRead() (access.UID, error) {
	resp, err := r.command(CmdInListPassiveTarget, []byte{maxTargetsPerPoll, brTy106kbpsTypeA})
	if errors.Is(err, errNoResponse) {
		// Still searching; abort the pending command so the next poll starts clean.
		_, _ = r.port.Write(AckFrame)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return parseTarget(resp)
}

// parseTarget extracts the NFCID from an InListPassiveTarget response:
// NbTg | Tg | SENS_RES(2) | SEL_RES | NFCIDLength | NFCID...
func parseTarget(resp []byte) (access.UID, error) {
	if len(resp) == 0 {
		return nil, fmt.Errorf("%w: empty target list", ErrBadFrame)
	}
	if resp[0] == 0 {
		return nil, nil
	}
	if len(resp) < 6 {
		return nil, fmt.Errorf("%w: target header too short", ErrBadFrame)
	}
	n := int(resp[5])
	if len(resp) < 6+n {
		return nil, fmt.Errorf("%w: NFCID truncated", ErrBadFrame)
	}
	uid := make(access.UID, n)
	copy(uid, resp[6:6+n])
	return uid, nil
}

func (r *Reader) Close() error {
	return r.port.Close()
}

// errNoResponse marks an ACKed command whose response did not arrive in
// time.
var errNoResponse = fmt.Errorf("%w: no response", ErrTimeout)

// command sends cmd, waits for the ACK and returns the response parameters
// that follow the response code.
func (r *Reader) command(cmd byte, params []byte) ([]byte, error) {
	frame, err := EncodeFrame(cmd, params)
	if err != nil {
		return nil, err
	}
	if _, err := r.port.Write(frame); err != nil {
		return nil, fmt.Errorf("pn532: write: %w", err)
	}

	ack, err := r.readFrame()
	if err != nil {
		return nil, fmt.Errorf("pn532: command 0x%02X ack: %w", cmd, err)
	}
	if !ack.Ack {
		return nil, fmt.Errorf("%w: expected ACK for command 0x%02X", ErrBadFrame, cmd)
	}

	resp, err := r.readFrame()
	if errors.Is(err, ErrTimeout) {
		return nil, errNoResponse
	}
	if err != nil {
		return nil, fmt.Errorf("pn532: command 0x%02X response: %w", cmd, err)
	}
	if resp.TFI == ErrorFrameTFI {
		return nil, fmt.Errorf("%w: application error for command 0x%02X", ErrBadFrame, cmd)
	}
	if resp.TFI != PN532ToHost || len(resp.Data) == 0 || resp.Data[0] != cmd+1 {
		return nil, fmt.Errorf("%w: unexpected response to command 0x%02X", ErrBadFrame, cmd)
	}
	return resp.Data[1:], nil
}

// readFrame reads until a complete frame is buffered or the timeout expires.
func (r *Reader) readFrame() (*Frame, error) {
	deadline := time.Now().Add(r.timeout)
	for {
		f, n, err := ParseFrame(r.pending)
		if n > 0 {
			r.pending = append(r.pending[:0], r.pending[n:]...)
		}
		if !errors.Is(err, ErrShortFrame) {
			return f, err
		}
		if len(r.pending) > maxPending {
			r.pending = r.pending[:0]
		}

		if !time.Now().Before(deadline) {
			return nil, ErrTimeout
		}
		m, err := r.port.Read(r.chunk)
		if err != nil {
			return nil, fmt.Errorf("pn532: read: %w", err)
		}
		r.pending = append(r.pending, r.chunk[:m]...)
	}
}

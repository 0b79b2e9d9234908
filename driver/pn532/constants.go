package pn532

import "time"

// HSU framing (platform independent).
// Layout:
//
//	Preamble(1) | StartCode(2) | LEN(1) | LCS(1) | TFI(1) | Data(LEN-1) | DCS(1) | Postamble(1)
//
// LEN counts TFI plus data. LCS makes LEN+LCS zero mod 256, DCS does the
// same for TFI+data.
const (
	Preamble   = 0x00
	StartCode1 = 0x00
	StartCode2 = 0xFF
	Postamble  = 0x00

	HostToPN532 = 0xD4
	PN532ToHost = 0xD5

	// TFI of the application-level error frame.
	ErrorFrameTFI = 0x7F

	// Normal frames only; extended frames are never needed for UIDs.
	MaxDataLength = 0xFE

	DefaultBaud    = 115200
	DefaultTimeout = 100 * time.Millisecond
	DefaultRetries = 1
)

// Commands used by the reader.
const (
	CmdGetFirmwareVersion  = 0x02
	CmdSAMConfiguration    = 0x14
	CmdRFConfiguration     = 0x32
	CmdInListPassiveTarget = 0x4A
)

const (
	samModeNormal     = 0x01
	samTimeout        = 0x14 // 50ms units
	samUseIRQ         = 0x01
	rfItemMaxRetries  = 0x05
	rfRetriesATR      = 0xFF
	rfRetriesPSL      = 0x01
	brTy106kbpsTypeA  = 0x00
	maxTargetsPerPoll = 0x01
)

var (
	AckFrame  = []byte{0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00}
	NackFrame = []byte{0x00, 0x00, 0xFF, 0xFF, 0x00, 0x00}

	// Sent before the first command to take the chip out of low-power mode.
	wakeupSequence = []byte{0x55, 0x55, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
)

package access

import "time"

// Access-control constants (platform independent). Drivers and the
// controller take their defaults from here.
const (
	// UID sizes for ISO14443A cards
	UIDLength4 = 4
	UIDLength7 = 7

	// Registry capacity per length class
	DefaultCapacity4 = 1
	DefaultCapacity7 = 2

	// Lockout
	DefaultLockoutBase = 3 * time.Second

	// Impatience cue fires once when no card has been seen for this long
	DefaultImpatience = 10 * time.Second

	// Relay bank
	DefaultRelayCount = 4
	DefaultRelayHold  = 1 * time.Second

	// Audio
	DefaultVolume = 20
	MaxVolume     = 30

	// Audio sources understood by the MP3 module
	SourceSDCard  = 0x01
	SourceBuiltin = 0x04
)

// DefaultLockoutTable holds the escalating post-denial delays indexed by
// consecutive failures. The last entry is sticky.
var DefaultLockoutTable = []time.Duration{
	1 * time.Second,
	3 * time.Second,
	4 * time.Second,
	5 * time.Second,
	8 * time.Second,
	12 * time.Second,
	17 * time.Second,
	23 * time.Second,
	30 * time.Second,
	38 * time.Second,
	47 * time.Second,
	57 * time.Second,
	68 * time.Second,
}

// DefaultUIDs are seeded into a fresh registry.
var DefaultUIDs = []UID{
	{0xB4, 0x12, 0x34, 0x56},
	{0x04, 0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC},
	{0x01, 0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD},
}

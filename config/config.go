// Package config loads the controller configuration from a TOML file and
// NFCGATE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ystepanoff/nfcgate/access"
)

const (
	EnvConfigPath      = "NFCGATE_CONFIG"
	EnvReaderPort      = "NFCGATE_READER_PORT"
	EnvReaderBaud      = "NFCGATE_READER_BAUD"
	EnvRelayPins       = "NFCGATE_RELAY_PINS"
	EnvAudioEnabled    = "NFCGATE_AUDIO_ENABLED"
	EnvAudioPort       = "NFCGATE_AUDIO_PORT"
	EnvAudioVolume     = "NFCGATE_AUDIO_VOLUME"
	EnvUIDs            = "NFCGATE_UIDS"
	EnvTickInterval    = "NFCGATE_TICK_INTERVAL"
	EnvImpatience      = "NFCGATE_IMPATIENCE"
	EnvJournalSQLite   = "NFCGATE_JOURNAL_SQLITE"
	EnvJournalRedisURL = "NFCGATE_JOURNAL_REDIS_URL"

	SourceBuiltin = "builtin"
	SourceSDCard  = "sdcard"
)

// Duration is a time.Duration written as a string ("1s", "250ms") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ReaderConfig describes the PN532 serial link.
type ReaderConfig struct {
	Port    string   `toml:"port"`
	Baud    int      `toml:"baud"`
	Timeout Duration `toml:"timeout"`
	Retries int      `toml:"retries"`
}

// StepConfig is one relay sequence step. Off steps hold the relay released.
type StepConfig struct {
	Relay int      `toml:"relay"`
	Hold  Duration `toml:"hold"`
	Off   bool     `toml:"off"`
}

// RelayConfig lists the relay pins by name and the unlock sequence.
type RelayConfig struct {
	Pins     []string     `toml:"pins"`
	Sequence []StepConfig `toml:"sequence"`
}

// AudioConfig describes the JQ6500 module.
type AudioConfig struct {
	Enabled bool     `toml:"enabled"`
	Port    string   `toml:"port"`
	Baud    int      `toml:"baud"`
	Volume  int      `toml:"volume"`
	Source  string   `toml:"source"`
	Settle  Duration `toml:"settle"`
}

// LockoutConfig holds the post-denial delays.
type LockoutConfig struct {
	Base   Duration   `toml:"base"`
	Delays []Duration `toml:"delays"`
}

// AccessConfig holds the authorized UIDs seeded at startup.
type AccessConfig struct {
	UIDs      []string `toml:"uids"`
	Capacity4 int      `toml:"capacity4"`
	Capacity7 int      `toml:"capacity7"`
}

// ControllerConfig holds the polling loop settings.
type ControllerConfig struct {
	TickInterval Duration `toml:"tick_interval"`
	Impatience   Duration `toml:"impatience"`
}

// JournalConfig selects the decision journal sinks. Empty disables a sink.
type JournalConfig struct {
	SQLitePath  string `toml:"sqlite_path"`
	RedisURL    string `toml:"redis_url"`
	RedisKey    string `toml:"redis_key"`
	RedisMaxLen int64  `toml:"redis_max_len"`
}

// Config holds all controller configuration.
type Config struct {
	Reader     ReaderConfig     `toml:"reader"`
	Relays     RelayConfig      `toml:"relays"`
	Audio      AudioConfig      `toml:"audio"`
	Lockout    LockoutConfig    `toml:"lockout"`
	Access     AccessConfig     `toml:"access"`
	Controller ControllerConfig `toml:"controller"`
	Journal    JournalConfig    `toml:"journal"`
}

// Default returns the reference hardware configuration.
func Default() Config {
	delays := make([]Duration, len(access.DefaultLockoutTable))
	for i, d := range access.DefaultLockoutTable {
		delays[i] = Duration{d}
	}

	uids := make([]string, len(access.DefaultUIDs))
	for i, uid := range access.DefaultUIDs {
		uids[i] = uid.String()
	}

	return Config{
		Reader: ReaderConfig{
			Port:    "/dev/ttyS0",
			Baud:    115200,
			Timeout: Duration{100 * time.Millisecond},
			Retries: 1,
		},
		Relays: RelayConfig{
			Pins: []string{"GPIO9", "GPIO10", "GPIO20", "GPIO21"},
			Sequence: []StepConfig{
				{Relay: 0, Hold: Duration{access.DefaultRelayHold}},
				{Relay: 1, Hold: Duration{access.DefaultRelayHold}},
			},
		},
		Audio: AudioConfig{
			Enabled: true,
			Port:    "/dev/ttyS1",
			Baud:    9600,
			Volume:  access.DefaultVolume,
			Source:  SourceBuiltin,
			Settle:  Duration{500 * time.Millisecond},
		},
		Lockout: LockoutConfig{
			Base:   Duration{access.DefaultLockoutBase},
			Delays: delays,
		},
		Access: AccessConfig{
			UIDs:      uids,
			Capacity4: access.DefaultCapacity4,
			Capacity7: access.DefaultCapacity7,
		},
		Controller: ControllerConfig{
			TickInterval: Duration{20 * time.Millisecond},
			Impatience:   Duration{access.DefaultImpatience},
		},
		Journal: JournalConfig{
			RedisKey:    "nfcgate:events",
			RedisMaxLen: 1000,
		},
	}
}

// Load reads path (if not empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode TOML file: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from NFCGATE_* variables.
func (c *Config) ApplyEnv() error {
	if v := envString(EnvReaderPort); v != "" {
		c.Reader.Port = v
	}
	if v := envString(EnvReaderBaud); v != "" {
		baud, err := strconv.Atoi(v)
		if err != nil || baud <= 0 {
			return fmt.Errorf("%s must be a positive integer", EnvReaderBaud)
		}
		c.Reader.Baud = baud
	}
	if v := envString(EnvRelayPins); v != "" {
		c.Relays.Pins = splitList(v)
	}
	if v := envString(EnvAudioEnabled); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s must be a boolean: %w", EnvAudioEnabled, err)
		}
		c.Audio.Enabled = b
	}
	if v := envString(EnvAudioPort); v != "" {
		c.Audio.Port = v
	}
	if v := envString(EnvAudioVolume); v != "" {
		vol, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be a number: %w", EnvAudioVolume, err)
		}
		c.Audio.Volume = vol
	}
	if v := envString(EnvUIDs); v != "" {
		c.Access.UIDs = splitList(v)
	}
	if v := envString(EnvTickInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s must be a valid duration: %w", EnvTickInterval, err)
		}
		c.Controller.TickInterval = Duration{d}
	}
	if v := envString(EnvImpatience); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s must be a valid duration: %w", EnvImpatience, err)
		}
		c.Controller.Impatience = Duration{d}
	}
	if v := envString(EnvJournalSQLite); v != "" {
		c.Journal.SQLitePath = v
	}
	if v := envString(EnvJournalRedisURL); v != "" {
		c.Journal.RedisURL = v
	}
	return nil
}

// Validate checks that the configuration is coherent.
func (c Config) Validate() error {
	if c.Reader.Port == "" {
		return errors.New("reader.port must not be empty")
	}
	if c.Reader.Baud <= 0 {
		return errors.New("reader.baud must be positive")
	}
	if c.Reader.Timeout.Duration <= 0 {
		return errors.New("reader.timeout must be positive")
	}
	if c.Reader.Retries < 0 || c.Reader.Retries > 0xFF {
		return errors.New("reader.retries must be in range 0..255")
	}

	if len(c.Relays.Pins) == 0 {
		return errors.New("relays.pins must not be empty")
	}
	if len(c.Relays.Sequence) == 0 {
		return errors.New("relays.sequence must not be empty")
	}
	for i, st := range c.Relays.Sequence {
		if st.Relay < 0 || st.Relay >= len(c.Relays.Pins) {
			return fmt.Errorf("relays.sequence[%d]: relay %d out of range 0..%d", i, st.Relay, len(c.Relays.Pins)-1)
		}
		if st.Hold.Duration <= 0 {
			return fmt.Errorf("relays.sequence[%d]: hold must be positive", i)
		}
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > access.MaxVolume {
		return fmt.Errorf("audio.volume must be in range 0..%d", access.MaxVolume)
	}
	if _, err := c.Audio.SourceID(); err != nil {
		return err
	}
	if c.Audio.Enabled {
		if c.Audio.Port == "" {
			return errors.New("audio.port must not be empty when audio is enabled")
		}
		if c.Audio.Baud <= 0 {
			return errors.New("audio.baud must be positive")
		}
	}

	if _, err := c.Lockout.Build(); err != nil {
		return err
	}

	if c.Access.Capacity4 < 0 || c.Access.Capacity7 < 0 {
		return errors.New("access capacities must not be negative")
	}
	if _, err := c.Access.ParseUIDs(); err != nil {
		return err
	}

	if c.Controller.TickInterval.Duration <= 0 {
		return errors.New("controller.tick_interval must be positive")
	}
	if c.Controller.Impatience.Duration < 0 {
		return errors.New("controller.impatience must not be negative")
	}
	return nil
}

// SourceID maps the source name onto the module's source code.
func (a AudioConfig) SourceID() (uint8, error) {
	switch strings.ToLower(a.Source) {
	case "", SourceBuiltin:
		return access.SourceBuiltin, nil
	case SourceSDCard:
		return access.SourceSDCard, nil
	default:
		return 0, fmt.Errorf("audio.source must be %q or %q", SourceBuiltin, SourceSDCard)
	}
}

// Build returns the lockout policy described by l.
func (l LockoutConfig) Build() (*access.Lockout, error) {
	table := make([]time.Duration, len(l.Delays))
	for i, d := range l.Delays {
		table[i] = d.Duration
	}
	lockout, err := access.NewLockout(l.Base.Duration, table)
	if err != nil {
		return nil, fmt.Errorf("lockout: %w", err)
	}
	return lockout, nil
}

// ParseUIDs parses every configured UID.
func (a AccessConfig) ParseUIDs() ([]access.UID, error) {
	out := make([]access.UID, 0, len(a.UIDs))
	for i, s := range a.UIDs {
		uid, err := access.ParseUID(s)
		if err != nil {
			return nil, fmt.Errorf("access.uids[%d]: %w", i, err)
		}
		out = append(out, uid)
	}
	return out, nil
}

func envString(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

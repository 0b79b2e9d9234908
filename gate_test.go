package nfcgate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ystepanoff/nfcgate/access"
	"github.com/ystepanoff/nfcgate/config"
	"github.com/ystepanoff/nfcgate/controller"
	"github.com/ystepanoff/nfcgate/driver/stub"
	"github.com/ystepanoff/nfcgate/journal"
)

func TestSequence(t *testing.T) {
	seq := Sequence([]config.StepConfig{
		{Relay: 2, Hold: config.Duration{Duration: 3 * time.Second}},
		{Relay: 0, Hold: config.Duration{Duration: time.Second}, Off: true},
	})

	assert.Equal(t, controller.Sequence{
		{Relay: 2, Engage: true, Hold: 3 * time.Second},
		{Relay: 0, Engage: false, Hold: time.Second},
	}, seq)
}

func TestOptions_Invalid(t *testing.T) {
	cfg := config.Default()
	cfg.Access.UIDs = []string{"B4"}
	_, err := Options(cfg)
	assert.ErrorIs(t, err, access.ErrInvalidUID)

	cfg = config.Default()
	cfg.Lockout.Delays = nil
	_, err = Options(cfg)
	assert.ErrorIs(t, err, access.ErrEmptyTable)
}

func TestOpenJournal_Unreachable(t *testing.T) {
	sink := OpenJournal(context.Background(), config.JournalConfig{RedisURL: "redis://127.0.0.1:1/0"})
	assert.Equal(t, journal.Discard, sink)
	assert.NoError(t, sink.Record(context.Background(), journal.Entry{}))
}

func TestGate_DecisionsAreJournaled(t *testing.T) {
	mr := miniredis.RunT(t)
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	cfg := config.Default()
	cfg.Journal.SQLitePath = dbPath
	cfg.Journal.RedisURL = "redis://" + mr.Addr()

	reader := stub.NewReader()
	pins := stub.NewPins(len(cfg.Relays.Pins))
	audio := stub.NewAudio()

	g, err := NewWithDrivers(context.Background(), cfg, Drivers{Reader: reader, Pins: pins, Audio: audio})
	require.NoError(t, err)
	require.NoError(t, g.Start())

	t0 := time.Now()
	reader.Inject(access.DefaultUIDs[0])
	d := g.Controller.Tick(t0)
	assert.Equal(t, OutcomeGranted, d.Outcome)
	assert.True(t, g.Controller.Sequencer().IsActive())
	assert.Equal(t, access.Low, pins.Level(0), "first relay engaged")

	reader.Inject(UID{0xDE, 0xAD, 0xBE, 0xEF})
	d = g.Controller.Tick(t0.Add(10 * time.Millisecond))
	assert.Equal(t, OutcomeDenied, d.Outcome)
	assert.Equal(t, 4*time.Second, d.Delay)

	assert.Equal(t, []uint8{1, 3, 4}, audio.Played())

	require.NoError(t, g.Close())

	raw, err := mr.List(journal.DefaultRedisKey)
	require.NoError(t, err)
	assert.Len(t, raw, 2)

	db, err := journal.OpenSQLite(dbPath)
	require.NoError(t, err)
	defer db.Close()

	entries, err := db.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.False(t, entries[0].Granted, "newest first")
	assert.True(t, entries[1].Granted)
}

func TestGate_StartWithoutReader(t *testing.T) {
	g, err := NewWithDrivers(context.Background(), config.Default(), Drivers{Pins: stub.NewPins(4)})
	require.NoError(t, err)
	assert.ErrorIs(t, g.Start(), ErrNoReader)
	assert.NoError(t, g.Close())
}

func TestGate_EmptyUIDListDeniesDefaultCards(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nfcgate.toml")
	require.NoError(t, os.WriteFile(path, []byte("[access]\nuids = []\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Empty(t, cfg.Access.UIDs)

	reader := stub.NewReader()
	pins := stub.NewPins(len(cfg.Relays.Pins))
	g, err := NewWithDrivers(context.Background(), cfg, Drivers{Reader: reader, Pins: pins})
	require.NoError(t, err)
	require.NoError(t, g.Start())
	defer g.Close()

	reader.Inject(access.DefaultUIDs[0])
	d := g.Controller.Tick(time.Now())
	assert.Equal(t, OutcomeDenied, d.Outcome)
	assert.Empty(t, pins.Writes())
}

func TestGate_NilPins(t *testing.T) {
	reader := stub.NewReader()
	g, err := NewWithDrivers(context.Background(), config.Default(), Drivers{Reader: reader})
	require.NoError(t, err)
	require.NoError(t, g.Start())
	defer g.Close()

	reader.Inject(access.DefaultUIDs[0])
	assert.Equal(t, OutcomeGranted, g.Controller.Tick(time.Now()).Outcome)
}

package jq6500

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

type recorder struct {
	bytes.Buffer
	failWrite bool
	closed    bool
}

func (r *recorder) Write(p []byte) (int, error) {
	if r.failWrite {
		return 0, errors.New("uart gone")
	}
	return r.Buffer.Write(p)
}

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

func TestCommandBytes(t *testing.T) {
	tests := []struct {
		name string
		got  []byte
		want []byte
	}{
		{"play track 1", PlayCommand(1), []byte{0x7E, 0x04, 0x03, 0x00, 0x01, 0xEF}},
		{"play track 300", PlayCommand(300), []byte{0x7E, 0x04, 0x03, 0x01, 0x2C, 0xEF}},
		{"volume 20", VolumeCommand(20), []byte{0x7E, 0x03, 0x06, 0x14, 0xEF}},
		{"volume clamped", VolumeCommand(99), []byte{0x7E, 0x03, 0x06, 0x1E, 0xEF}},
		{"reset", ResetCommand(), []byte{0x7E, 0x02, 0x0C, 0xEF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !bytes.Equal(tt.got, tt.want) {
				t.Errorf("got % X, want % X", tt.got, tt.want)
			}
		})
	}
}

func TestSourceCommand(t *testing.T) {
	tests := []struct {
		src     uint8
		want    []byte
		wantErr bool
	}{
		{SourceSDCard, []byte{0x7E, 0x03, 0x09, 0x01, 0xEF}, false},
		{SourceBuiltin, []byte{0x7E, 0x03, 0x09, 0x04, 0xEF}, false},
		{0x02, nil, true},
	}

	for _, tt := range tests {
		got, err := SourceCommand(tt.src)
		if (err != nil) != tt.wantErr {
			t.Fatalf("SourceCommand(%d) error = %v, wantErr %v", tt.src, err, tt.wantErr)
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("SourceCommand(%d) = % X, want % X", tt.src, got, tt.want)
		}
	}
}

func TestPlayer(t *testing.T) {
	rec := &recorder{}
	var slept time.Duration
	p := New(rec, WithSettle(200*time.Millisecond))
	p.sleep = func(d time.Duration) { slept += d }

	if err := p.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if slept != 200*time.Millisecond {
		t.Errorf("settle = %v, want 200ms", slept)
	}
	if err := p.SetSource(SourceSDCard); err != nil {
		t.Fatalf("SetSource() error = %v", err)
	}
	if err := p.SetVolume(45); err != nil {
		t.Fatalf("SetVolume() error = %v", err)
	}
	if err := p.Play(3); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	var want []byte
	want = append(want, ResetCommand()...)
	want = append(want, 0x7E, 0x03, 0x09, 0x01, 0xEF)
	want = append(want, VolumeCommand(MaxVolume)...)
	want = append(want, PlayCommand(3)...)
	if !bytes.Equal(rec.Bytes(), want) {
		t.Errorf("wire = % X, want % X", rec.Bytes(), want)
	}

	if p.Volume() != MaxVolume {
		t.Errorf("Volume() = %d, want %d", p.Volume(), MaxVolume)
	}
	if p.Source() != SourceSDCard {
		t.Errorf("Source() = %d, want %d", p.Source(), SourceSDCard)
	}

	if err := p.Close(); err != nil || !rec.closed {
		t.Errorf("Close() = %v, closed = %v", err, rec.closed)
	}
}

func TestPlayer_Errors(t *testing.T) {
	rec := &recorder{}
	p := New(rec, WithSettle(0))

	if err := p.SetSource(0x07); !errors.Is(err, ErrInvalidSource) {
		t.Errorf("SetSource(7) error = %v, want ErrInvalidSource", err)
	}
	if rec.Len() != 0 {
		t.Errorf("invalid source wrote % X", rec.Bytes())
	}
	if p.Source() != SourceBuiltin {
		t.Errorf("source changed to %d on error", p.Source())
	}

	rec.failWrite = true
	if err := p.Begin(); err == nil {
		t.Error("Begin() succeeded on a failing port")
	}
	if err := p.Play(1); err == nil {
		t.Error("Play() succeeded on a failing port")
	}
}

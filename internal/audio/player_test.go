package audio

import (
	"encoding/binary"
	"testing"
	"time"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		config    PlayerConfig
		expectErr bool
	}{
		{"default", DefaultPlayerConfig(), false},
		{"48kHz stereo", PlayerConfig{SampleRate: 48000, Channels: 2, BitDepth: 16, BufferSize: 8192}, false},
		{"piper native rate", PlayerConfig{SampleRate: 22050, Channels: 1, BitDepth: 16, BufferSize: 4096}, true},
		{"three channels", PlayerConfig{SampleRate: 44100, Channels: 3, BitDepth: 16, BufferSize: 4096}, true},
		{"8 bit", PlayerConfig{SampleRate: 44100, Channels: 1, BitDepth: 8, BufferSize: 4096}, true},
		{"no buffer", PlayerConfig{SampleRate: 44100, Channels: 1, BitDepth: 16}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfig(tt.config)
			if (err != nil) != tt.expectErr {
				t.Errorf("validateConfig() error = %v, expectErr %v", err, tt.expectErr)
			}
		})
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		rate     int
		channels int
		want     time.Duration
	}{
		{"one second mono", 44100 * 2, 44100, 1, time.Second},
		{"half second stereo", 48000 * 2, 48000, 2, 500 * time.Millisecond},
		{"zero rate", 100, 0, 1, 0},
		{"empty", 0, 44100, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Duration(tt.n, tt.rate, tt.channels); got != tt.want {
				t.Errorf("Duration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(nil, 1); err == nil {
		t.Error("expected error for empty data")
	}
	if err := Validate(make([]byte, 3), 1); err == nil {
		t.Error("expected error for odd length")
	}
	if err := Validate(make([]byte, 6), 2); err == nil {
		t.Error("expected error for partial stereo frame")
	}
	if err := Validate(make([]byte, 8), 2); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func pcm16(samples ...int16) []byte {
	b := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(s))
	}
	return b
}

func TestResample(t *testing.T) {
	t.Run("same rate is passthrough", func(t *testing.T) {
		in := pcm16(1, 2, 3)
		out, err := Resample(in, 22050, 22050, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != len(in) {
			t.Errorf("len = %d, want %d", len(out), len(in))
		}
	})

	t.Run("doubling interpolates", func(t *testing.T) {
		out, err := Resample(pcm16(0, 100, 200), 22050, 44100, 1)
		if err != nil {
			t.Fatal(err)
		}
		want := []int16{0, 50, 100, 150, 200, 200}
		if len(out) != len(want)*2 {
			t.Fatalf("len = %d, want %d", len(out), len(want)*2)
		}
		for i, w := range want {
			got := int16(binary.LittleEndian.Uint16(out[i*2:]))
			if got != w {
				t.Errorf("sample %d = %d, want %d", i, got, w)
			}
		}
	})

	t.Run("invalid rate", func(t *testing.T) {
		if _, err := Resample(pcm16(1), 0, 44100, 1); err == nil {
			t.Error("expected error")
		}
	})
}

func TestPlayerStateString(t *testing.T) {
	if StatePlaying.String() != "playing" || StateClosed.String() != "closed" {
		t.Error("unexpected state names")
	}
}

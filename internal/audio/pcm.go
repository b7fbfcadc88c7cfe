package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

const bytesPerSample = 2 // signed 16-bit little endian

// Duration returns the play time of n bytes of 16-bit PCM.
func Duration(n, sampleRate, channels int) time.Duration {
	if sampleRate <= 0 || channels <= 0 || n <= 0 {
		return 0
	}
	frames := n / (bytesPerSample * channels)
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}

// Validate checks that data holds whole 16-bit frames.
func Validate(data []byte, channels int) error {
	if len(data) == 0 {
		return errors.New("empty PCM data")
	}
	if channels <= 0 {
		return fmt.Errorf("invalid channel count %d", channels)
	}
	frame := bytesPerSample * channels
	if len(data)%frame != 0 {
		return fmt.Errorf("PCM data length %d is not aligned to %d-byte frames", len(data), frame)
	}
	return nil
}

// Resample converts mono or interleaved 16-bit PCM between sample rates
// using linear interpolation. A trailing partial frame is dropped.
func Resample(input []byte, from, to, channels int) ([]byte, error) {
	if from <= 0 || to <= 0 {
		return nil, fmt.Errorf("invalid sample rates %d -> %d", from, to)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count %d", channels)
	}
	if from == to {
		return input, nil
	}

	frame := bytesPerSample * channels
	inFrames := len(input) / frame
	if inFrames == 0 {
		return nil, nil
	}

	ratio := float64(to) / float64(from)
	outFrames := int(float64(inFrames) * ratio)
	out := make([]byte, outFrames*frame)

	sample := func(i, ch int) float64 {
		off := i*frame + ch*bytesPerSample
		return float64(int16(binary.LittleEndian.Uint16(input[off:])))
	}

	for i := 0; i < outFrames; i++ {
		pos := float64(i) / ratio
		idx := int(pos)
		frac := pos - float64(idx)

		for ch := 0; ch < channels; ch++ {
			var v float64
			if idx >= inFrames-1 {
				v = sample(inFrames-1, ch)
			} else {
				v = sample(idx, ch)*(1-frac) + sample(idx+1, ch)*frac
			}
			off := i*frame + ch*bytesPerSample
			binary.LittleEndian.PutUint16(out[off:], uint16(int16(v)))
		}
	}

	return out, nil
}

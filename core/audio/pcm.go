package audio

import (
	"encoding/binary"
	"math"
	"time"
)

// Float32ToPCM16 converts floating-point samples in [-1, 1] to 16-bit signed
// PCM, clamping anything outside the representable range.
func Float32ToPCM16(samples []float32) []int16 {
	pcm := make([]int16, len(samples))
	for i, sample := range samples {
		s := max(-1, min(1, float64(sample)))
		if s < 0 {
			pcm[i] = int16(s * 0x8000)
		} else {
			pcm[i] = int16(s * 0x7FFF)
		}
	}
	return pcm
}

// Float32BytesToPCM16 reinterprets a little-endian float32 capture buffer and
// converts it to little-endian 16-bit signed PCM bytes. Trailing bytes that do
// not form a whole sample are dropped.
func Float32BytesToPCM16(buffer []byte) []byte {
	samples := make([]float32, len(buffer)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(buffer[i*4:]))
	}
	return PCM16Bytes(Float32ToPCM16(samples))
}

// PCM16Bytes serializes 16-bit signed samples as little-endian bytes.
func PCM16Bytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(sample))
	}
	return out
}

// CueTone generates a short 880 Hz listening cue with a linear attack and
// decay envelope so the tone starts and ends without clicks.
func CueTone(encoding EncodingInfo) []byte {
	const (
		frequency = 880.0
		duration  = 200 * time.Millisecond
		attack    = 50 * time.Millisecond
		amplitude = 0.3
	)

	sampleRate := encoding.SampleRate
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	total := int(float64(sampleRate) * duration.Seconds())
	attackSamples := int(float64(sampleRate) * attack.Seconds())
	decayStart := total - attackSamples

	samples := make([]float32, total)
	for i := range samples {
		envelope := 1.0
		if i < attackSamples {
			envelope = float64(i) / float64(attackSamples)
		} else if i >= decayStart {
			envelope = float64(total-i) / float64(attackSamples)
		}

		t := float64(i) / float64(sampleRate)
		samples[i] = float32(amplitude * envelope * math.Sin(2*math.Pi*frequency*t))
	}

	return PCM16Bytes(Float32ToPCM16(samples))
}

package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestFloat32ToPCM16ClampsOutOfRangeSamples(t *testing.T) {
	pcm := Float32ToPCM16([]float32{-2, -1, 0, 1, 2})

	expected := []int16{-32768, -32768, 0, 32767, 32767}
	for i, want := range expected {
		if pcm[i] != want {
			t.Fatalf("expected sample %d to be %d, got %d", i, want, pcm[i])
		}
	}
}

func TestFloat32BytesToPCM16RoundTripsSamples(t *testing.T) {
	input := make([]byte, 8)
	binary.LittleEndian.PutUint32(input[0:], math.Float32bits(0.5))
	binary.LittleEndian.PutUint32(input[4:], math.Float32bits(-0.5))

	out := Float32BytesToPCM16(input)
	if len(out) != 4 {
		t.Fatalf("expected four output bytes, got %d", len(out))
	}

	half := 0.5
	first := int16(binary.LittleEndian.Uint16(out[0:]))
	second := int16(binary.LittleEndian.Uint16(out[2:]))
	if first != int16(half*0x7FFF) {
		t.Fatalf("expected positive sample %d, got %d", int16(half*0x7FFF), first)
	}
	if second != int16(-0.5*0x8000) {
		t.Fatalf("expected negative sample %d, got %d", int16(-0.5*0x8000), second)
	}
}

func TestCueToneEnvelopeStartsAndEndsSilent(t *testing.T) {
	tone := CueTone(GetDefaultEncodingInfo())

	if len(tone) != 16000*2/5 {
		t.Fatalf("expected 200ms of 16kHz PCM16, got %d bytes", len(tone))
	}

	first := int16(binary.LittleEndian.Uint16(tone[0:]))
	if first != 0 {
		t.Fatalf("expected tone to start at zero amplitude, got %d", first)
	}

	last := int16(binary.LittleEndian.Uint16(tone[len(tone)-2:]))
	if last < -700 || last > 700 {
		t.Fatalf("expected tone to decay toward silence, got %d", last)
	}
}

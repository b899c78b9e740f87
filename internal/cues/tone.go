package cues

import (
	"encoding/binary"
	"math"
	"time"
)

// Waveform is the oscillator shape of a tone.
type Waveform string

const (
	WaveSine   Waveform = "sine"
	WaveSquare Waveform = "square"
)

const (
	// SampleRate is the PCM rate used by Tone.PCM.
	SampleRate = 44100
	// ToneGain keeps cues quiet next to music playing on the same device.
	ToneGain = 0.1
)

// Tone is a single audio request at the cue boundary.
type Tone struct {
	FrequencyHz float64
	Duration    time.Duration
	Waveform    Waveform
}

// DurationMs returns the tone length in milliseconds.
func (t Tone) DurationMs() int {
	return int(t.Duration / time.Millisecond)
}

// ToneStep is a tone scheduled Offset after the first tone of a pattern.
type ToneStep struct {
	Offset time.Duration
	Tone   Tone
}

var (
	warningPattern = []ToneStep{
		{Offset: 0, Tone: Tone{FrequencyHz: 660, Duration: 200 * time.Millisecond, Waveform: WaveSquare}},
	}
	changePattern = []ToneStep{
		{Offset: 0, Tone: Tone{FrequencyHz: 440, Duration: 150 * time.Millisecond, Waveform: WaveSine}},
		{Offset: 200 * time.Millisecond, Tone: Tone{FrequencyHz: 880, Duration: 150 * time.Millisecond, Waveform: WaveSine}},
	}
)

// TonePattern returns the tones played for kind, or nil when the kind is
// silent. The returned slice must not be modified.
func TonePattern(kind Kind) []ToneStep {
	switch kind {
	case Warning:
		return warningPattern
	case PhaseChanged, WorkoutComplete:
		return changePattern
	default:
		return nil
	}
}

// PCM renders the tone as signed 16-bit little-endian mono samples.
func (t Tone) PCM(sampleRate int, gain float64) []byte {
	if sampleRate <= 0 || t.Duration <= 0 || t.FrequencyHz <= 0 {
		return nil
	}
	count := int(t.Duration.Seconds() * float64(sampleRate))
	out := make([]byte, count*2)
	amplitude := gain * math.MaxInt16
	for i := 0; i < count; i++ {
		phase := 2 * math.Pi * t.FrequencyHz * float64(i) / float64(sampleRate)
		value := math.Sin(phase)
		if t.Waveform == WaveSquare {
			if value >= 0 {
				value = 1
			} else {
				value = -1
			}
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(value*amplitude)))
	}
	return out
}

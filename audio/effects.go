package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"

	"github.com/lixenwraith/drift/parameter"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveNoise
)

// sweep is an oscillator gliding linearly from one frequency to another
type sweep struct {
	from, to float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewSweep creates an oscillator gliding from one frequency to another over duration
// A noise sweep ignores frequency
func NewSweep(from, to float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &sweep{
		from:     from,
		to:       to,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (s *sweep) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if s.position >= s.duration {
			return i, i > 0
		}

		var val float64
		switch s.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * s.phase)
		case WaveNoise:
			val = rand.Float64()*2 - 1
		}
		samples[i][0] = val
		samples[i][1] = val

		progress := float64(s.position) / float64(s.duration)
		freq := s.from + (s.to-s.from)*progress
		s.phase += freq / float64(s.rate)
		s.phase -= math.Floor(s.phase)
		s.position++
	}
	return len(samples), true
}

func (s *sweep) Err() error { return nil }

// envelope applies attack/release shaping to a stream
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	totalSamples   int
}

// NewEnvelope shapes s with a linear attack and release inside duration
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer:       s,
		attackSamples:  rate.N(attack),
		releaseSamples: rate.N(release),
		totalSamples:   rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		if remaining := e.totalSamples - e.position; remaining < e.releaseSamples {
			vol = math.Min(vol, float64(remaining)/float64(e.releaseSamples))
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales s linearly; math.Log2(0) is -Inf so zero volume is silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// flingPitch maps release speed to the whoosh start frequency
func flingPitch(speed float64) float64 {
	return 180 + math.Min(math.Max(speed, 0), 4000)/10
}

// CreateFlingSound generates a falling whoosh whose pitch follows release speed
func CreateFlingSound(speed, volume float64, rate beep.SampleRate) beep.Streamer {
	d := parameter.FlingCueDuration
	start := flingPitch(speed)

	tone := NewEnvelope(NewSweep(start, start/2, d, WaveSine, rate), d, 10*time.Millisecond, 120*time.Millisecond, rate)
	air := NewEnvelope(NewSweep(0, 0, d, WaveNoise, rate), d, 20*time.Millisecond, 140*time.Millisecond, rate)

	mixed := beep.Mix(
		newVolume(tone, 0.6),
		newVolume(air, 0.25),
	)
	return newVolume(mixed, volume)
}

// CreateSettleSound generates a short soft tick when tiles start drifting home
func CreateSettleSound(volume float64, rate beep.SampleRate) beep.Streamer {
	d := parameter.SettleCueDuration
	sine, err := generators.SineTone(rate, parameter.SettleCueFrequency)
	if err != nil {
		sine = NewSweep(parameter.SettleCueFrequency, parameter.SettleCueFrequency, d, WaveSine, rate)
	}
	shaped := NewEnvelope(beep.Take(rate.N(d), sine), d, 2*time.Millisecond, 50*time.Millisecond, rate)
	return newVolume(shaped, volume*0.5)
}

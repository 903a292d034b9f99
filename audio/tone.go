package audio

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

const sampleRate = beep.SampleRate(44100)

var format = beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 2}

type wave int

const (
	waveSine wave = iota
	waveSquare
	waveSaw
	waveNoise
)

// oscillator streams a raw wave for a fixed number of samples. When to is
// set the frequency slides linearly from freq to to over the duration.
type oscillator struct {
	freq, to float64
	wave     wave
	phase    float64
	pos, n   int
}

func newOscillator(w wave, freq float64, d time.Duration) *oscillator {
	return &oscillator{freq: freq, wave: w, n: sampleRate.N(d)}
}

func newSweep(w wave, from, to float64, d time.Duration) *oscillator {
	o := newOscillator(w, from, d)
	o.to = to
	return o
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.pos >= o.n {
			return i, i > 0
		}
		v := sample(o.wave, o.phase)
		samples[i][0] = v
		samples[i][1] = v

		freq := o.freq
		if o.to != 0 {
			freq += (o.to - o.freq) * float64(o.pos) / float64(o.n)
		}
		o.phase += freq / float64(sampleRate)
		o.phase -= math.Floor(o.phase)
		o.pos++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

func sample(w wave, phase float64) float64 {
	switch w {
	case waveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case waveSaw:
		return 2 * (phase - 0.5)
	case waveNoise:
		return rand.Float64()*2 - 1
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// envelope fades a stream in over attack and out over the last release of
// its total duration.
type envelope struct {
	s                     beep.Streamer
	pos                   int
	attack, release, size int
}

func newEnvelope(s beep.Streamer, d, attack, release time.Duration) beep.Streamer {
	return &envelope{
		s:       s,
		attack:  sampleRate.N(attack),
		release: sampleRate.N(release),
		size:    sampleRate.N(d),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.s.Stream(samples)
	for i := 0; i < n; i++ {
		if e.pos >= e.size {
			return i, i > 0
		}
		vol := 1.0
		if e.pos < e.attack {
			vol = float64(e.pos) / float64(e.attack)
		}
		if left := e.size - e.pos; left < e.release {
			vol = min(vol, float64(left)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.s.Err() }

// tone is a shaped note of the given wave.
func tone(w wave, freq float64, d time.Duration) beep.Streamer {
	return newEnvelope(newOscillator(w, freq, d), d, attack, min(release, d/2))
}

// newVolume scales s linearly. effects.Volume works in powers of Base, so
// zero has to be expressed as silence.
func newVolume(s beep.Streamer, vol float64) *effects.Volume {
	v := &effects.Volume{Streamer: s, Base: 2}
	setVolume(v, vol)
	return v
}

func setVolume(v *effects.Volume, vol float64) {
	if vol <= 0 {
		v.Volume, v.Silent = 0, true
		return
	}
	v.Volume, v.Silent = math.Log2(vol), false
}

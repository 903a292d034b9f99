package audio

import (
	"math"
	"time"
)

const beat = 150 * time.Millisecond

type note struct {
	freq  float64
	beats int
}

// melody is the lead line of the background theme, a folk tune in A minor.
var melody = []note{
	{noteE5, 2}, {noteB4, 1}, {noteC5, 1}, {noteD5, 2}, {noteC5, 1}, {noteB4, 1},
	{noteA4, 2}, {noteA4, 1}, {noteC5, 1}, {noteE5, 2}, {noteD5, 1}, {noteC5, 1},
	{noteB4, 3}, {noteC5, 1}, {noteD5, 2}, {noteE5, 2},
	{noteC5, 2}, {noteA4, 2}, {noteA4, 4},
}

// theme loops the melody forever over a bass two octaves below. It never
// ends; it is paused and resumed through a beep.Ctrl.
type theme struct {
	note       int
	pos        int
	lead, bass float64
}

func newTheme() *theme { return &theme{} }

func (t *theme) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		nt := melody[t.note]
		size := sampleRate.N(time.Duration(nt.beats) * beat)

		// short gap at the end of every note so repeated notes are heard.
		vol := 1.0
		if gap := sampleRate.N(20 * time.Millisecond); size-t.pos < gap {
			vol = float64(size-t.pos) / float64(gap)
		}
		v := vol * (0.10*sample(waveSquare, t.lead) + 0.18*math.Sin(2*math.Pi*t.bass))
		samples[i][0] = v
		samples[i][1] = v

		t.lead += nt.freq / float64(sampleRate)
		t.lead -= math.Floor(t.lead)
		t.bass += nt.freq / 4 / float64(sampleRate)
		t.bass -= math.Floor(t.bass)

		t.pos++
		if t.pos >= size {
			t.pos = 0
			t.note = (t.note + 1) % len(melody)
		}
	}
	return len(samples), true
}

func (t *theme) Err() error { return nil }

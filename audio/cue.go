package audio

import (
	"time"

	"github.com/gopxl/beep"

	"blockfall/tetris"
)

const (
	attack  = 3 * time.Millisecond
	release = 40 * time.Millisecond
)

// Note frequencies in Hz.
const (
	noteA2 = 110.00
	noteC4 = 261.63
	noteE4 = 329.63
	noteG4 = 392.00
	noteA4 = 440.00
	noteB4 = 493.88
	noteC5 = 523.25
	noteD5 = 587.33
	noteE5 = 659.25
	noteG5 = 783.99
	noteA5 = 880.00
	noteB5 = 987.77
	noteC6 = 1046.50
	noteE6 = 1318.51
)

// cues holds the recipe of the sound played for each event.
var cues = map[tetris.EventKind]func() beep.Streamer{
	tetris.PieceMoved: func() beep.Streamer {
		return newVolume(tone(waveSquare, 220, 30*time.Millisecond), 0.15)
	},
	tetris.PieceRotated: func() beep.Streamer {
		d := 50 * time.Millisecond
		return newVolume(newEnvelope(newSweep(waveSaw, noteA4, noteE5, d), d, attack, 20*time.Millisecond), 0.2)
	},
	tetris.PieceLanded: func() beep.Streamer {
		d := 90 * time.Millisecond
		return beep.Mix(
			newVolume(tone(waveSine, noteA2, d), 0.6),
			newVolume(newEnvelope(newOscillator(waveNoise, 0, 40*time.Millisecond), 40*time.Millisecond, 0, 30*time.Millisecond), 0.15),
		)
	},
	tetris.LineCleared: func() beep.Streamer {
		return newVolume(beep.Seq(
			tone(waveSquare, noteB5, 80*time.Millisecond),
			tone(waveSquare, noteE6, 160*time.Millisecond),
		), 0.2)
	},
	tetris.TetrisClear: func() beep.Streamer {
		return newVolume(beep.Seq(
			tone(waveSquare, noteC5, 90*time.Millisecond),
			tone(waveSquare, noteE5, 90*time.Millisecond),
			tone(waveSquare, noteG5, 90*time.Millisecond),
			tone(waveSquare, noteC6, 240*time.Millisecond),
		), 0.25)
	},
	tetris.LevelUp: func() beep.Streamer {
		d := 300 * time.Millisecond
		return newVolume(newEnvelope(newSweep(waveSine, 300, 900, d), d, attack, 60*time.Millisecond), 0.4)
	},
	tetris.GameOver: func() beep.Streamer {
		return newVolume(beep.Seq(
			tone(waveSaw, noteG4, 200*time.Millisecond),
			tone(waveSaw, noteE4, 200*time.Millisecond),
			tone(waveSaw, noteC4, 400*time.Millisecond),
		), 0.25)
	},
	tetris.MenuConfirm: func() beep.Streamer {
		d := 250 * time.Millisecond
		return beep.Mix(
			newVolume(newEnvelope(newOscillator(waveSine, noteA5, d), d, attack, 200*time.Millisecond), 0.35),
			newVolume(newEnvelope(newOscillator(waveSine, 2*noteA5, d), d, attack, 100*time.Millisecond), 0.15),
		)
	},
}

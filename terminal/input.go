package terminal

import (
	"unicode"

	"github.com/eiannone/keyboard"

	"blockfall/tetris"
)

var keyIntents = map[keyboard.Key]tetris.Intent{
	keyboard.KeyArrowLeft:  tetris.MoveLeft,
	keyboard.KeyArrowRight: tetris.MoveRight,
	keyboard.KeyArrowDown:  tetris.SoftDrop,
	keyboard.KeyArrowUp:    tetris.Rotate,
	keyboard.KeySpace:      tetris.HardDrop,
	keyboard.KeyEnter:      tetris.Start,
	keyboard.KeyEsc:        tetris.Quit,
	keyboard.KeyCtrlC:      tetris.Quit,
}

var runeIntents = map[rune]tetris.Intent{
	'a': tetris.MoveLeft,
	'd': tetris.MoveRight,
	's': tetris.SoftDrop,
	'w': tetris.Rotate,
	'e': tetris.Rotate,
	'g': tetris.Start,
	'r': tetris.Restart,
	'q': tetris.Quit,
	' ': tetris.HardDrop,
	'+': tetris.VolumeUp,
	'=': tetris.VolumeUp,
	'-': tetris.VolumeDown,
	'm': tetris.ToggleMusic,
}

// intentFor maps a key press to an intent. Letters are case insensitive.
func intentFor(ev keyboard.KeyEvent) (tetris.Intent, bool) {
	if ev.Rune != 0 {
		in, ok := runeIntents[unicode.ToLower(ev.Rune)]
		return in, ok
	}
	in, ok := keyIntents[ev.Key]
	return in, ok
}

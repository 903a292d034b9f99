// Package terminal plays a session on an ANSI terminal: it turns key
// presses into intents, drives the gravity clock and draws every frame.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eiannone/keyboard"

	"blockfall/tetris"
)

const DefaultFrame = 20 * time.Millisecond

var ErrKeysClosed = errors.New("keyboard events channel closed unexpectedly")

type Ticker interface {
	C() <-chan time.Time
	Stop()
	Reset(d time.Duration)
}

type wrappedTicker struct {
	ticker *time.Ticker
}

func newWrappedTicker(d time.Duration) *wrappedTicker {
	return &wrappedTicker{ticker: time.NewTicker(d)}
}

func (t *wrappedTicker) C() <-chan time.Time   { return t.ticker.C }
func (t *wrappedTicker) Stop()                 { t.ticker.Stop() }
func (t *wrappedTicker) Reset(d time.Duration) { t.ticker.Reset(d) }

// SoundController receives the intents the session doesn't handle.
type SoundController interface {
	VolumeUp()
	VolumeDown()
	ToggleMusic()
}

type Display interface {
	Render(tetris.Snapshot) error
}

// Publisher gets every frame after it is drawn.
type Publisher interface {
	Publish(tetris.Snapshot)
}

type Options struct {
	Keys    <-chan keyboard.KeyEvent
	Display Display
	// Sound and Publisher are optional.
	Sound     SoundController
	Publisher Publisher
	// Ticker defaults to a time.Ticker firing every Frame.
	Ticker Ticker
	Frame  time.Duration
	Logger *slog.Logger
}

type Runner struct {
	session   *tetris.Session
	keys      <-chan keyboard.KeyEvent
	display   Display
	sound     SoundController
	publisher Publisher
	ticker    Ticker
	frame     time.Duration
	logger    *slog.Logger
}

func NewRunner(s *tetris.Session, o Options) *Runner {
	r := &Runner{
		session:   s,
		keys:      o.Keys,
		display:   o.Display,
		sound:     o.Sound,
		publisher: o.Publisher,
		ticker:    o.Ticker,
		frame:     o.Frame,
		logger:    o.Logger,
	}
	if r.frame <= 0 {
		r.frame = DefaultFrame
	}
	if r.ticker == nil {
		r.ticker = newWrappedTicker(r.frame)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	return r
}

// Run draws the session until it quits or ctx is done. Every key press
// and every frame tick is followed by a new frame. The time between two
// ticks feeds the gravity clock.
func (r *Runner) Run(ctx context.Context) error {
	r.ticker.Reset(r.frame)
	defer r.ticker.Stop()

	if err := r.draw(); err != nil {
		return err
	}
	var last time.Time
	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("runner context done", slog.String("error", ctx.Err().Error()))
			return nil
		case ev, ok := <-r.keys:
			if !ok {
				return ErrKeysClosed
			}
			if ev.Err != nil {
				return fmt.Errorf("keysEvents error: %w", ev.Err)
			}
			in, ok := intentFor(ev)
			if !ok {
				continue
			}
			r.handle(in)
		case now := <-r.ticker.C():
			if !last.IsZero() {
				r.session.Tick(now.Sub(last))
			}
			last = now
		}

		if r.session.Done() {
			return nil
		}
		if err := r.draw(); err != nil {
			return err
		}
	}
}

func (r *Runner) handle(in tetris.Intent) {
	switch in {
	case tetris.VolumeUp, tetris.VolumeDown, tetris.ToggleMusic:
		if r.sound == nil {
			return
		}
		r.logger.Debug("sound control", slog.String("intent", string(in)))
		switch in {
		case tetris.VolumeUp:
			r.sound.VolumeUp()
		case tetris.VolumeDown:
			r.sound.VolumeDown()
		case tetris.ToggleMusic:
			r.sound.ToggleMusic()
		}
	default:
		r.session.Handle(in)
	}
}

func (r *Runner) draw() error {
	snap := r.session.Snapshot()
	if err := r.display.Render(snap); err != nil {
		return fmt.Errorf("unable to render: %w", err)
	}
	if r.publisher != nil {
		r.publisher.Publish(snap)
	}
	return nil
}

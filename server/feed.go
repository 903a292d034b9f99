package server

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"blockfall/tetris"
)

// Feed keeps the latest snapshot of a game and hands it to every
// subscriber. Subscribers that fall behind only ever see the most recent
// frame: a stale one waiting in the channel is replaced.
type Feed struct {
	logger *slog.Logger

	mu     sync.Mutex
	latest *structpb.Struct
	subs   map[uuid.UUID]chan *structpb.Struct
	closed bool
}

func NewFeed(logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Feed{
		logger: logger,
		subs:   make(map[uuid.UUID]chan *structpb.Struct),
	}
}

// Publish encodes s and fans it out. A snapshot equal to the previous one
// is dropped.
func (f *Feed) Publish(s tetris.Snapshot) {
	msg, err := Encode(s)
	if err != nil {
		f.logger.Error("unable to publish snapshot", slog.String("error", err.Error()))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || proto.Equal(msg, f.latest) {
		return
	}
	f.latest = msg
	for _, ch := range f.subs {
		offer(ch, msg)
	}
}

// offer puts msg in ch, replacing whatever is still waiting in it. Only
// the publisher writes to ch, so the second send can't block.
func offer(ch chan *structpb.Struct, msg *structpb.Struct) {
	select {
	case ch <- msg:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- msg:
	default:
	}
}

// Subscribe returns a channel receiving every published snapshot, starting
// with the latest one. The channel is closed by cancel or by Close.
func (f *Feed) Subscribe() (uuid.UUID, <-chan *structpb.Struct, func()) {
	id := uuid.New()
	ch := make(chan *structpb.Struct, 1)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		close(ch)
		return id, ch, func() {}
	}
	if f.latest != nil {
		ch <- f.latest
	}
	f.subs[id] = ch
	f.logger.Debug("spectator subscribed", slog.String("id", id.String()), slog.Int("subscribers", len(f.subs)))

	var once sync.Once
	return id, ch, func() {
		once.Do(func() { f.unsubscribe(id) })
	}
}

func (f *Feed) unsubscribe(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.subs[id]
	if !ok {
		return
	}
	delete(f.subs, id)
	close(ch)
	f.logger.Debug("spectator left", slog.String("id", id.String()), slog.Int("subscribers", len(f.subs)))
}

func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Close ends every subscription. Later publishes are dropped.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for id, ch := range f.subs {
		close(ch)
		delete(f.subs, id)
	}
}

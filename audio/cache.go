package audio

import (
	"sync"

	"github.com/gopxl/beep"
	"github.com/kamstrup/intmap"

	"blockfall/tetris"
)

// Cache renders every cue once and keeps the samples around. A Cache is
// owned by whoever plays the sounds; there is no package level state.
type Cache struct {
	mu      sync.Mutex
	buffers *intmap.Map[tetris.EventKind, *beep.Buffer]
}

func NewCache() *Cache {
	return &Cache{buffers: intmap.New[tetris.EventKind, *beep.Buffer](len(cues))}
}

// Get returns the rendered cue for kind, rendering it on first use. It
// returns nil when kind has no sound.
func (c *Cache) Get(kind tetris.EventKind) *beep.Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()

	if buf, ok := c.buffers.Get(kind); ok {
		return buf
	}
	recipe, ok := cues[kind]
	if !ok {
		return nil
	}
	buf := beep.NewBuffer(format)
	buf.Append(recipe())
	c.buffers.Put(kind, buf)
	return buf
}

// Preload renders the given cues ahead of time.
func (c *Cache) Preload(kinds ...tetris.EventKind) {
	for _, k := range kinds {
		c.Get(k)
	}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffers.Len()
}

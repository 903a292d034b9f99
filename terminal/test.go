package terminal

import (
	"sync"
	"time"
)

// MockTicker is a manual Ticker with its own clock. Every Tick moves the
// clock forward and delivers the new time.
type MockTicker struct {
	ch    chan time.Time
	mu    sync.Mutex
	now   time.Time
	reset time.Duration
	stop  bool
}

func NewMockTicker() *MockTicker {
	return &MockTicker{ch: make(chan time.Time), now: time.Unix(0, 0)}
}

func (m *MockTicker) C() <-chan time.Time { return m.ch }

func (m *MockTicker) Tick(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	now := m.now
	m.mu.Unlock()
	m.ch <- now
}

func (m *MockTicker) Reset(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset = d
}

func (m *MockTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop = true
}

// Period returns the duration of the last Reset.
func (m *MockTicker) Period() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reset
}

func (m *MockTicker) IsStop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop
}

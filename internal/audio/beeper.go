// Package audio provides the short tone played while replies are revealed.
package audio

import (
	"io"
	"sync"
	"time"
)

// Beeper emits a short audible tick
type Beeper interface {
	Beep()
}

// BeeperFunc adapts a function to Beeper
type BeeperFunc func()

// Beep implements Beeper
func (f BeeperFunc) Beep() { f() }

// Nop is a Beeper that stays silent
type Nop struct{}

// Beep implements Beeper
func (Nop) Beep() {}

// DefaultMinGap matches the length of one tone; bells closer than this merge.
const DefaultMinGap = 50 * time.Millisecond

// MinGapFor returns the bell gap for a reveal delay. Tones fall on every
// other rune, so a gap of one delay never drops one; DefaultMinGap caps it.
func MinGapFor(revealDelay time.Duration) time.Duration {
	if revealDelay <= 0 || revealDelay > DefaultMinGap {
		return DefaultMinGap
	}
	return revealDelay
}

// Bell rings the terminal bell (BEL, 0x07). Rings closer together than
// MinGap are dropped so fast reveals do not flood the terminal.
type Bell struct {
	mu     sync.Mutex
	w      io.Writer
	minGap time.Duration
	last   time.Time
	now    func() time.Time
}

// NewBell returns a Bell writing to w
func NewBell(w io.Writer, minGap time.Duration) *Bell {
	return &Bell{w: w, minGap: minGap, now: time.Now}
}

// Beep implements Beeper. Write errors are ignored.
func (b *Bell) Beep() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if !b.last.IsZero() && now.Sub(b.last) < b.minGap {
		return
	}
	b.last = now
	_, _ = b.w.Write([]byte{'\a'})
}

// Toggle wraps a Beeper behind an on/off switch
type Toggle struct {
	mu      sync.RWMutex
	inner   Beeper
	enabled bool
}

// NewToggle returns a Toggle around inner
func NewToggle(inner Beeper, enabled bool) *Toggle {
	if inner == nil {
		inner = Nop{}
	}
	return &Toggle{inner: inner, enabled: enabled}
}

// Beep implements Beeper
func (t *Toggle) Beep() {
	t.mu.RLock()
	enabled := t.enabled
	t.mu.RUnlock()
	if enabled {
		t.inner.Beep()
	}
}

// Enabled reports whether beeps pass through
func (t *Toggle) Enabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Set turns beeps on or off
func (t *Toggle) Set(enabled bool) {
	t.mu.Lock()
	t.enabled = enabled
	t.mu.Unlock()
}

// Package reveal implements the character-by-character reply animation.
//
// An Animation is a two-state machine (Idle, Revealing). Each Step shows one
// more rune of the current text. Texts started while another is revealing
// are queued and revealed in order. Every text that becomes current bumps
// the generation, so timer ticks scheduled for an earlier text can be
// recognised and dropped.
package reveal

import (
	"context"
	"time"
)

// State of an Animation
type State int

const (
	Idle State = iota
	Revealing
)

func (s State) String() string {
	if s == Revealing {
		return "revealing"
	}
	return "idle"
}

// Frame is the result of one Step
type Frame struct {
	// Key identifies which text this frame belongs to.
	Key int
	// Text is the prefix shown so far.
	Text string
	// Index is the rune index revealed by this step, or -1 when nothing was revealed.
	Index int
	// Tone is set on every other revealed rune, starting with the first.
	Tone bool
	// Done is set once the whole text is shown.
	Done bool
}

type entry struct {
	key   int
	runes []rune
}

// Animation reveals queued texts one rune per Step. It is not safe for
// concurrent use; the TUI drives it from its single update loop.
type Animation struct {
	current    entry
	shown      int
	queue      []entry
	state      State
	generation int
}

// New returns an idle Animation
func New() *Animation {
	return &Animation{}
}

// Start begins revealing text under key. When another reveal is in flight
// the text is queued and Start returns false.
func (a *Animation) Start(key int, text string) bool {
	e := entry{key: key, runes: []rune(text)}
	if a.state == Revealing {
		a.queue = append(a.queue, e)
		return false
	}
	a.begin(e)
	return true
}

func (a *Animation) begin(e entry) {
	a.current = e
	a.shown = 0
	a.state = Revealing
	a.generation++
}

// advance moves to the next queued text, or back to Idle
func (a *Animation) advance() {
	if len(a.queue) > 0 {
		next := a.queue[0]
		a.queue = a.queue[1:]
		a.begin(next)
		return
	}
	a.current = entry{}
	a.shown = 0
	a.state = Idle
}

// Step reveals one more rune. Calling Step while Idle returns a Done frame
// with Index -1.
func (a *Animation) Step() Frame {
	if a.state == Idle {
		return Frame{Index: -1, Done: true}
	}

	cur := a.current
	if a.shown >= len(cur.runes) {
		// Empty text: finishes on its first tick with nothing revealed.
		a.advance()
		return Frame{Key: cur.key, Index: -1, Done: true}
	}

	idx := a.shown
	a.shown++
	frame := Frame{
		Key:   cur.key,
		Text:  string(cur.runes[:a.shown]),
		Index: idx,
		Tone:  idx%2 == 0,
		Done:  a.shown == len(cur.runes),
	}
	if frame.Done {
		a.advance()
	}
	return frame
}

// Skip finishes the current text immediately and moves on to the next
// queued one. The returned frame carries the full text.
func (a *Animation) Skip() Frame {
	if a.state == Idle {
		return Frame{Index: -1, Done: true}
	}
	cur := a.current
	a.advance()
	return Frame{Key: cur.key, Text: string(cur.runes), Index: len(cur.runes) - 1, Done: true}
}

// Cancel drops the current text and everything queued
func (a *Animation) Cancel() {
	a.queue = nil
	a.current = entry{}
	a.shown = 0
	if a.state == Revealing {
		a.generation++
	}
	a.state = Idle
}

// State returns the current state
func (a *Animation) State() State {
	return a.state
}

// Active reports whether a reveal is in flight
func (a *Animation) Active() bool {
	return a.state == Revealing
}

// Key returns the key of the text being revealed
func (a *Animation) Key() int {
	return a.current.key
}

// Text returns the prefix shown so far
func (a *Animation) Text() string {
	return string(a.current.runes[:a.shown])
}

// Generation changes every time a new text becomes current or a reveal is cancelled
func (a *Animation) Generation() int {
	return a.generation
}

// Pending returns the number of queued texts
func (a *Animation) Pending() int {
	return len(a.queue)
}

// Play reveals text on a fixed timer, calling onFrame after each step.
// It blocks until the text is fully shown or ctx is done.
func Play(ctx context.Context, text string, delay time.Duration, onFrame func(Frame)) error {
	a := New()
	a.Start(0, text)

	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := ctx.Err(); err != nil {
				return err
			}
			frame := a.Step()
			if onFrame != nil {
				onFrame(frame)
			}
			if frame.Done {
				return nil
			}
		}
	}
}

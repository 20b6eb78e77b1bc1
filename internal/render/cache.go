package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// maxIdle bounds how many spare renderers are kept per option set.
const maxIdle = 4

// shelf keeps idle glamour renderers by the options they were built with.
// A TermRenderer is not safe for concurrent use, so each caller borrows one
// and returns it when done.
type shelf struct {
	mu   sync.Mutex
	idle map[Options][]*glamour.TermRenderer
}

var renderers = &shelf{idle: make(map[Options][]*glamour.TermRenderer)}

// borrow hands out an idle renderer for opts or builds a new one.
func (s *shelf) borrow(opts Options) (*glamour.TermRenderer, error) {
	s.mu.Lock()
	if stack := s.idle[opts]; len(stack) > 0 {
		r := stack[len(stack)-1]
		s.idle[opts] = stack[:len(stack)-1]
		s.mu.Unlock()
		return r, nil
	}
	s.mu.Unlock()

	return buildRenderer(opts)
}

// giveBack returns r to the shelf. Extras past maxIdle are dropped.
func (s *shelf) giveBack(opts Options, r *glamour.TermRenderer) {
	if r == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.idle[opts]) >= maxIdle {
		return
	}
	s.idle[opts] = append(s.idle[opts], r)
}

func (s *shelf) reset() {
	s.mu.Lock()
	s.idle = make(map[Options][]*glamour.TermRenderer)
	s.mu.Unlock()
}

func (s *shelf) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.idle)
}

func (s *shelf) idleFor(opts Options) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.idle[opts])
}

func buildRenderer(opts Options) (*glamour.TermRenderer, error) {
	build := []glamour.TermRendererOption{
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
	}
	if opts.EnableEmoji {
		build = append(build, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		build = append(build, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(build...)
}

// ClearCache drops every idle renderer
func ClearCache() {
	renderers.reset()
}

// CacheSize returns the number of option sets with idle renderers
func CacheSize() int {
	return renderers.size()
}

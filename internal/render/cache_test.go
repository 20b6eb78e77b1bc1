package render

import (
	"sync"
	"testing"
)

func TestShelf_BorrowAndGiveBack(t *testing.T) {
	ClearCache()
	defer ClearCache()

	opts := DefaultOptions()

	r1, err := renderers.borrow(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1 == nil {
		t.Fatal("expected non-nil renderer")
	}
	if CacheSize() != 0 {
		t.Errorf("a borrowed renderer should not be idle, got %d sets", CacheSize())
	}
	renderers.giveBack(opts, r1)

	r2, err := renderers.borrow(opts)
	if err != nil {
		t.Fatalf("unexpected error on reuse: %v", err)
	}
	if r2 != r1 {
		t.Error("expected the idle renderer to be reused")
	}
	renderers.giveBack(opts, r2)

	narrow := opts.WithWidth(40)
	r3, err := renderers.borrow(narrow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r3 == r1 {
		t.Error("different widths must not share a renderer")
	}
	renderers.giveBack(narrow, r3)

	if CacheSize() != 2 {
		t.Errorf("expected 2 option sets, got %d", CacheSize())
	}
}

func TestShelf_GiveBackNil(t *testing.T) {
	ClearCache()
	defer ClearCache()

	renderers.giveBack(DefaultOptions(), nil)
	if CacheSize() != 0 {
		t.Errorf("giveBack(nil) should keep nothing, got %d", CacheSize())
	}
}

func TestShelf_BoundsIdleRenderers(t *testing.T) {
	ClearCache()
	defer ClearCache()

	opts := DefaultOptions()
	for i := 0; i < maxIdle+3; i++ {
		r, err := buildRenderer(opts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		renderers.giveBack(opts, r)
	}
	if got := renderers.idleFor(opts); got != maxIdle {
		t.Errorf("expected %d idle renderers, got %d", maxIdle, got)
	}
}

func TestShelf_ConcurrentRender(t *testing.T) {
	ClearCache()
	defer ClearCache()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Markdown("**bold** and `code`", DefaultOptions()); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}
	if got := renderers.idleFor(DefaultOptions()); got < 1 || got > maxIdle {
		t.Errorf("idle renderers = %d, want 1..%d", got, maxIdle)
	}
}

func TestClearCache(t *testing.T) {
	if _, err := Markdown("x", DefaultOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if CacheSize() == 0 {
		t.Error("expected the renderer to be kept")
	}
	ClearCache()
	if CacheSize() != 0 {
		t.Errorf("expected empty cache, got %d", CacheSize())
	}
}

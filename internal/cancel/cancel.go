package cancel

import (
	"context"
	"sync"
)

// Token is a host-provided cancellation signal. Once cancellation is
// requested it stays requested.
type Token interface {
	IsCancellationRequested() bool
	// OnCancellationRequested registers fn to run when cancellation is
	// requested. If it already was, fn runs immediately. The returned func
	// removes the registration.
	OnCancellationRequested(fn func()) (unregister func())
}

// Bridge derives a context from parent that is cancelled when tok fires.
// The token may fire any number of times, including after release; only the
// first firing has an effect. release unregisters the callback and cancels
// the derived context, and is safe to call more than once.
func Bridge(parent context.Context, tok Token) (ctx context.Context, release func()) {
	ctx, cancelFn := context.WithCancel(parent)
	if tok == nil {
		return ctx, cancelFn
	}

	var once sync.Once
	abort := func() { once.Do(cancelFn) }
	unregister := tok.OnCancellationRequested(abort)

	var releaseOnce sync.Once
	release = func() {
		releaseOnce.Do(func() {
			if unregister != nil {
				unregister()
			}
			abort()
		})
	}
	return ctx, release
}

// None is a token that never fires.
var None Token = noneToken{}

type noneToken struct{}

func (noneToken) IsCancellationRequested() bool { return false }

func (noneToken) OnCancellationRequested(func()) func() { return func() {} }

// Source is a concurrency-safe Token whose cancellation is requested by
// calling Cancel.
type Source struct {
	mu        sync.Mutex
	cancelled bool
	nextID    int
	listeners map[int]func()
}

// NewSource returns a Source that has not been cancelled.
func NewSource() *Source {
	return &Source{listeners: make(map[int]func())}
}

// Cancel requests cancellation and runs every registered listener. Further
// calls run the listeners again; Bridge tolerates repeated firings.
func (s *Source) Cancel() {
	s.mu.Lock()
	s.cancelled = true
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// IsCancellationRequested reports whether Cancel has been called.
func (s *Source) IsCancellationRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// OnCancellationRequested implements Token.
func (s *Source) OnCancellationRequested(fn func()) func() {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		fn()
		return func() {}
	}
	if s.listeners == nil {
		s.listeners = make(map[int]func())
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Listeners returns the number of live registrations.
func (s *Source) Listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

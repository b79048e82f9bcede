package aoimage

import "sync"

// Hold is one goroutine's ownership of the host execution token, such
// as an embedding runtime's global interpreter lock. Acquire is the
// only way to obtain one, so a goroutine that never locked the token
// has no hold and the pixel-loop guard cannot give up a lock on its
// behalf. A hold stays on the goroutine that acquired it; engines
// built from it release the token around pixel-bulk loops and codec
// compute, and always relock it before returning.
type Hold struct {
	tok      sync.Locker
	released bool
}

// Acquire locks the host execution token and returns the calling
// goroutine's hold on it.
func Acquire(tok sync.Locker) *Hold {
	tok.Lock()
	return &Hold{tok: tok}
}

// Release gives the token back. Engine calls made through this hold
// afterwards run unguarded. Releasing twice is a no-op.
func (h *Hold) Release() {
	if h == nil || h.released {
		return
	}
	h.released = true
	h.tok.Unlock()
}

// allowThreads runs fn with the caller's hold released. Without a
// live hold there is nothing to give up and fn runs as-is. The relock
// is deferred so it happens on every exit path.
func allowThreads(h *Hold, fn func()) {
	if h == nil || h.released {
		fn()
		return
	}
	h.tok.Unlock()
	defer h.tok.Lock()
	fn()
}

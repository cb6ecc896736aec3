package collab

import (
	"sync"
)

// TextDoc is the in-memory document replica held by the coordinating
// process. Remote updates arrive through the hub and replace the text.
type TextDoc struct {
	mu        sync.RWMutex
	text      string
	listeners []func()
	destroyed bool
}

func NewTextDoc() *TextDoc {
	return &TextDoc{}
}

func (d *TextDoc) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

func (d *TextDoc) SetText(s string) {
	d.mu.Lock()
	if d.destroyed {
		d.mu.Unlock()
		return
	}
	d.text = s
	// Copy so callbacks run outside the lock
	listeners := make([]func(), len(d.listeners))
	copy(listeners, d.listeners)
	d.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func (d *TextDoc) OnUpdate(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return
	}
	d.listeners = append(d.listeners, fn)
}

func (d *TextDoc) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyed = true
	d.listeners = nil
}

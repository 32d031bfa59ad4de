package mapview

import (
	"fmt"
	"io"
	"sync"
)

// TextSurface draws markers as numbered lines. Activate simulates a click.
type TextSurface struct {
	w io.Writer

	mu       sync.Mutex
	markers  []Marker
	handlers map[MarkerID]func()
}

func NewTextSurface(w io.Writer) *TextSurface {
	return &TextSurface{w: w, handlers: make(map[MarkerID]func())}
}

func (t *TextSurface) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.markers = nil
	t.handlers = make(map[MarkerID]func())
}

// PlaceMarker numbers markers from 1 in placement order.
func (t *TextSurface) PlaceMarker(m Marker) (MarkerID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.markers = append(t.markers, m)
	return MarkerID(len(t.markers)), nil
}

func (t *TextSurface) OnActivate(id MarkerID, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[id] = fn
}

func (t *TextSurface) OpenPopup(id MarkerID, p Popup) {
	fmt.Fprintf(t.w, "[%d] %s\n", id, p.Title)
	if p.Body != "" {
		fmt.Fprintln(t.w, p.Body)
	}
}

// Activate runs the activation handler of marker id.
func (t *TextSurface) Activate(id MarkerID) error {
	t.mu.Lock()
	fn, ok := t.handlers[id]
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("no marker %d", id)
	}
	fn()
	return nil
}

func (t *TextSurface) Markers() []Marker {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Marker(nil), t.markers...)
}

// Print lists every marker; matching ones are starred.
func (t *TextSurface) Print() {
	for i, m := range t.Markers() {
		star := " "
		if m.Icon == IconMatch {
			star = "*"
		}
		fmt.Fprintf(t.w, "%s[%d] %-30s (%s)\n", star, i+1, m.Title, m.Position)
	}
}

package core

import (
	"context"
	"reflect"
)

// Layer is a unit of application behaviour owned by the layer stack.
// OnEvent sets the event's handled flag to consume it; propagation stops.
type Layer interface {
	Name() string
	OnAttach(ctx context.Context)
	OnDetach()
	OnUpdate(ts Timestep)
	OnRender()
	OnEvent(ev Event)
}

// BaseLayer supplies a name and no-op hooks for embedding.
type BaseLayer struct{ Title string }

func NewBaseLayer(title string) BaseLayer { return BaseLayer{Title: title} }

func (b BaseLayer) Name() string               { return b.Title }
func (BaseLayer) OnAttach(ctx context.Context) {}
func (BaseLayer) OnDetach()                    {}
func (BaseLayer) OnUpdate(ts Timestep)         {}
func (BaseLayer) OnRender()                    {}
func (BaseLayer) OnEvent(ev Event)             {}

// LayerStack keeps regular layers in front of overlays. insert is the
// boundary: list[:insert] are regular layers, list[insert:] overlays.
type LayerStack struct {
	list   []Layer
	insert int
}

// PushLayer inserts l after the last regular layer.
func (ls *LayerStack) PushLayer(l Layer) {
	ls.list = append(ls.list, nil)
	copy(ls.list[ls.insert+1:], ls.list[ls.insert:])
	ls.list[ls.insert] = l
	ls.insert++
}

// PushOverlay appends l after every existing overlay.
func (ls *LayerStack) PushOverlay(l Layer) { ls.list = append(ls.list, l) }

// PopLayer removes l from the regular region.
func (ls *LayerStack) PopLayer(l Layer) bool {
	for i := 0; i < ls.insert; i++ {
		if sameLayer(ls.list[i], l) {
			ls.remove(i)
			ls.insert--
			return true
		}
	}
	return false
}

// PopOverlay removes l from the overlay region.
func (ls *LayerStack) PopOverlay(l Layer) bool {
	for i := ls.insert; i < len(ls.list); i++ {
		if sameLayer(ls.list[i], l) {
			ls.remove(i)
			return true
		}
	}
	return false
}

// sameLayer reports whether a and b are the same layer. Values of a
// non-comparable type never match, since == on them panics.
func sameLayer(a, b Layer) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || ta == nil || !ta.Comparable() {
		return false
	}
	return a == b
}

func (ls *LayerStack) remove(i int) {
	copy(ls.list[i:], ls.list[i+1:])
	ls.list[len(ls.list)-1] = nil
	ls.list = ls.list[:len(ls.list)-1]
}

func (ls *LayerStack) Len() int      { return len(ls.list) }
func (ls *LayerStack) Boundary() int { return ls.insert }

// Layers returns a copy in forward order.
func (ls *LayerStack) Layers() []Layer {
	out := make([]Layer, len(ls.list))
	copy(out, ls.list)
	return out
}

// ForEach walks regular layers then overlays, each in insertion order.
func (ls *LayerStack) ForEach(f func(Layer)) {
	for _, l := range ls.list {
		f(l)
	}
}

// ForEachReverse walks overlays newest first, then regular layers newest
// first. f returning true stops the walk.
func (ls *LayerStack) ForEachReverse(f func(Layer) bool) {
	for i := len(ls.list) - 1; i >= ls.insert; i-- {
		if f(ls.list[i]) {
			return
		}
	}
	for i := ls.insert - 1; i >= 0; i-- {
		if f(ls.list[i]) {
			return
		}
	}
}

// Clear empties the stack and returns the removed layers in forward order.
func (ls *LayerStack) Clear() []Layer {
	out := ls.list
	ls.list = nil
	ls.insert = 0
	return out
}

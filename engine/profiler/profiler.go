//go:build profile

package profiler

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
)

// Enabled reports whether scopes are recorded in this build.
const Enabled = true

// Init resets the recorder and keeps the last capacity completed spans.
func Init(capacity int) {
	if capacity <= 0 {
		capacity = 1 << 16
	}
	rec.init(capacity)
}

// BeginFrame marks the start of frame n. Spans opened afterwards belong to it.
func BeginFrame(n uint64) { rec.frame.Store(n) }

// Start opens a named scope and returns the func that closes it.
func Start(name string) func() { return rec.open(scopeKey{scope: name}) }

// StartLayer opens the scope of one layer hook, shown as "<layer>.<hook>".
func StartLayer(layer, hook string) func() { return rec.open(scopeKey{scope: layer, hook: hook}) }

var errNoSpans = errors.New("profiler: no scopes recorded")

// Dump writes the retained frames to path as a speedscope file with one
// evented profile per frame.
func Dump(path string) error {
	frames, names := rec.frames()
	if len(frames) == 0 {
		return errNoSpans
	}
	doc, err := speedscope(frames, names)
	if err != nil {
		return err
	}
	data, err := sonic.ConfigStd.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("profiler: encode: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("profiler: write: %w", err)
	}
	return os.Rename(tmp, path)
}

// Stats aggregates the retained frames per scope, most expensive first.
func Stats() []ScopeStat {
	frames, names := rec.frames()
	return summarize(frames, names)
}

type scopeKey struct{ scope, hook string }

func (k scopeKey) String() string {
	if k.hook == "" {
		return k.scope
	}
	return k.scope + "." + k.hook
}

// recorder keeps completed spans in a fixed ring. Nesting depth is tracked
// for the frame loop's thread only.
type recorder struct {
	ready atomic.Bool
	frame atomic.Uint64
	depth atomic.Int32

	mu     sync.Mutex
	spans  []span
	next   uint64
	ids    map[scopeKey]int
	scopes []string
}

var rec recorder

func (r *recorder) init(capacity int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spans = make([]span, capacity)
	r.next = 0
	r.ids = map[scopeKey]int{}
	r.scopes = nil
	r.frame.Store(0)
	r.depth.Store(0)
	r.ready.Store(true)
}

func (r *recorder) open(k scopeKey) func() {
	if !r.ready.Load() {
		return func() {}
	}
	id := r.scopeID(k)
	frame := r.frame.Load()
	depth := int(r.depth.Add(1) - 1)
	start := time.Now().UnixNano()
	return func() {
		end := time.Now().UnixNano()
		r.depth.Add(-1)
		if end < start {
			end = start
		}
		r.record(span{Frame: frame, Scope: id, Depth: depth, StartNS: start, EndNS: end})
	}
}

func (r *recorder) scopeID(k scopeKey) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.ids[k]; ok {
		return id
	}
	id := len(r.scopes)
	r.ids[k] = id
	r.scopes = append(r.scopes, k.String())
	return id
}

func (r *recorder) record(s span) {
	r.mu.Lock()
	r.spans[r.next%uint64(len(r.spans))] = s
	r.next++
	r.mu.Unlock()
}

// frames returns the retained spans grouped per frame and the scope names.
// After the ring wraps, the oldest frame may have lost spans and is dropped.
func (r *recorder) frames() ([]frameSpans, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.next == 0 {
		return nil, nil
	}
	size := uint64(len(r.spans))
	var first uint64
	if r.next > size {
		first = r.next - size
	}
	out := make([]span, 0, r.next-first)
	for k := first; k < r.next; k++ {
		out = append(out, r.spans[k%size])
	}
	names := make([]string, len(r.scopes))
	copy(names, r.scopes)
	return groupFrames(out, first > 0), names
}

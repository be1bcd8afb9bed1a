package profiler

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// span is one completed scope. Depth is the number of scopes open around it.
type span struct {
	Frame   uint64
	Scope   int
	Depth   int
	StartNS int64
	EndNS   int64
}

// frameSpans holds one frame's spans ordered by start, outer scopes first.
type frameSpans struct {
	Frame uint64
	Spans []span
}

// groupFrames splits spans, given in completion order, by frame in the
// order frames first appear. dropFirst discards the oldest frame.
func groupFrames(spans []span, dropFirst bool) []frameSpans {
	var out []frameSpans
	index := map[uint64]int{}
	for _, s := range spans {
		i, ok := index[s.Frame]
		if !ok {
			i = len(out)
			index[s.Frame] = i
			out = append(out, frameSpans{Frame: s.Frame})
		}
		out[i].Spans = append(out[i].Spans, s)
	}
	if dropFirst && len(out) > 0 {
		out = out[1:]
	}
	for _, f := range out {
		sort.SliceStable(f.Spans, func(a, b int) bool {
			if f.Spans[a].StartNS != f.Spans[b].StartNS {
				return f.Spans[a].StartNS < f.Spans[b].StartNS
			}
			return f.Spans[a].Depth < f.Spans[b].Depth
		})
	}
	return out
}

// speedscope file format, see https://www.speedscope.app/file-format-schema.json
type ssFile struct {
	Schema             string      `json:"$schema"`
	Shared             ssShared    `json:"shared"`
	Profiles           []ssProfile `json:"profiles"`
	ActiveProfileIndex int         `json:"activeProfileIndex"`
	Exporter           string      `json:"exporter,omitempty"`
	Name               string      `json:"name,omitempty"`
}

type ssShared struct {
	Frames []ssFrame `json:"frames"`
}

type ssFrame struct {
	Name string `json:"name"`
}

type ssProfile struct {
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	Unit       string    `json:"unit"`
	StartValue int64     `json:"startValue"`
	EndValue   int64     `json:"endValue"`
	Events     []ssEvent `json:"events"`
}

type ssEvent struct {
	Type  string `json:"type"` // O or C
	At    int64  `json:"at"`
	Frame int    `json:"frame"` // index into shared frames, i.e. the scope
}

var errNoFrames = errors.New("profiler: no frames to export")

// speedscope lays out each frame as its own evented profile on a timeline
// shared by all of them, in microseconds since the earliest span.
func speedscope(frames []frameSpans, scopes []string) (*ssFile, error) {
	base := int64(-1)
	for _, f := range frames {
		for _, s := range f.Spans {
			if base < 0 || s.StartNS < base {
				base = s.StartNS
			}
		}
	}
	if base < 0 {
		return nil, errNoFrames
	}

	shared := make([]ssFrame, len(scopes))
	for i, n := range scopes {
		shared[i] = ssFrame{Name: n}
	}

	profiles := make([]ssProfile, 0, len(frames))
	for _, f := range frames {
		if len(f.Spans) == 0 {
			continue
		}
		profiles = append(profiles, frameProfile(f, base))
	}

	return &ssFile{
		Schema:             "https://www.speedscope.app/file-format-schema.json",
		Shared:             ssShared{Frames: shared},
		Profiles:           profiles,
		ActiveProfileIndex: len(profiles) - 1,
		Exporter:           "framelab-profiler",
		Name:               "framelab capture",
	}, nil
}

func frameProfile(f frameSpans, base int64) ssProfile {
	p := ssProfile{
		Type:   "evented",
		Name:   fmt.Sprintf("frame %d", f.Frame),
		Unit:   "microseconds",
		Events: make([]ssEvent, 0, 2*len(f.Spans)),
	}
	var last int64
	at := func(ns int64) int64 {
		us := (ns - base) / 1000
		if us < last {
			us = last
		}
		last = us
		return us
	}

	stack := make([]span, 0, 8)
	closeTop := func() {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		p.Events = append(p.Events, ssEvent{Type: "C", At: at(top.EndNS), Frame: top.Scope})
	}
	for _, s := range f.Spans {
		for len(stack) > 0 && stack[len(stack)-1].Depth >= s.Depth {
			closeTop()
		}
		p.Events = append(p.Events, ssEvent{Type: "O", At: at(s.StartNS), Frame: s.Scope})
		stack = append(stack, s)
	}
	for len(stack) > 0 {
		closeTop()
	}

	p.StartValue = p.Events[0].At
	p.EndValue = last
	return p
}

// ScopeStat is the time spent in one scope over the retained frames.
type ScopeStat struct {
	Name  string
	Calls int
	Total time.Duration
	Max   time.Duration
}

func summarize(frames []frameSpans, scopes []string) []ScopeStat {
	byScope := map[int]*ScopeStat{}
	for _, f := range frames {
		for _, s := range f.Spans {
			st, ok := byScope[s.Scope]
			if !ok {
				name := fmt.Sprintf("scope %d", s.Scope)
				if s.Scope < len(scopes) {
					name = scopes[s.Scope]
				}
				st = &ScopeStat{Name: name}
				byScope[s.Scope] = st
			}
			d := time.Duration(s.EndNS - s.StartNS)
			st.Calls++
			st.Total += d
			if d > st.Max {
				st.Max = d
			}
		}
	}

	out := make([]ScopeStat, 0, len(byScope))
	for _, st := range byScope {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

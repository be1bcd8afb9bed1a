//go:build !profile

package profiler

import "errors"

// Enabled reports whether scopes are recorded in this build.
const Enabled = false

// ErrDisabled is returned by Dump when built without the "profile" tag.
var ErrDisabled = errors.New("profiler: built without the profile tag")

func noop() {}

func Init(capacity int) {}

func BeginFrame(n uint64) {}

func Start(name string) func() { return noop }

func StartLayer(layer, hook string) func() { return noop }

func Dump(path string) error { return ErrDisabled }

func Stats() []ScopeStat { return nil }

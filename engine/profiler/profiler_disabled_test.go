//go:build !profile

package profiler

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisabledIsNoop(t *testing.T) {
	Init(16)
	BeginFrame(1)
	end := Start("Frame")
	assert.NotPanics(t, end)
	assert.NotPanics(t, StartLayer("Dockspace", "OnUpdate"))
	assert.False(t, Enabled)
	assert.Nil(t, Stats())
	assert.ErrorIs(t, Dump(filepath.Join(t.TempDir(), "x.json")), ErrDisabled)
}

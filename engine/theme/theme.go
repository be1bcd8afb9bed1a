package theme

import (
	"fmt"
	"strings"
)

// Color is linear RGBA in [0, 1].
type Color [4]float32

// Theme is the palette the GUI backend draws with.
type Theme struct {
	Name     string
	WindowBg Color
}

// Dark is the default: the sandbox's dark surfaces.
func Dark() Theme {
	return Theme{Name: "dark", WindowBg: Color{0.10, 0.11, 0.13, 1}}
}

func Light() Theme {
	return Theme{Name: "light", WindowBg: Color{0.94, 0.94, 0.95, 1}}
}

// ByName resolves a configured theme name, case-insensitively.
func ByName(name string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "dark":
		return Dark(), nil
	case "light":
		return Light(), nil
	default:
		return Theme{}, fmt.Errorf("unknown theme %q", name)
	}
}

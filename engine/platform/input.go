package platform

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/hubastard/framelab/engine/core"
)

func translateKey(k glfw.Key) core.Key {
	switch k {
	case glfw.KeyEscape:
		return core.KeyEscape
	case glfw.KeySpace:
		return core.KeySpace
	case glfw.KeyEnter:
		return core.KeyEnter
	case glfw.KeyTab:
		return core.KeyTab
	case glfw.KeyW:
		return core.KeyW
	case glfw.KeyA:
		return core.KeyA
	case glfw.KeyS:
		return core.KeyS
	case glfw.KeyD:
		return core.KeyD
	case glfw.KeyP:
		return core.KeyP
	case glfw.KeyQ:
		return core.KeyQ
	case glfw.KeyF1:
		return core.KeyF1
	default:
		return core.KeyUnknown
	}
}

func translateAction(a glfw.Action) core.Action {
	switch a {
	case glfw.Press:
		return core.ActionPress
	case glfw.Repeat:
		return core.ActionRepeat
	default:
		return core.ActionRelease
	}
}

func translateMods(m glfw.ModifierKey) core.Mod {
	var out core.Mod
	if m&glfw.ModShift != 0 {
		out |= core.ModShift
	}
	if m&glfw.ModControl != 0 {
		out |= core.ModCtrl
	}
	if m&glfw.ModAlt != 0 {
		out |= core.ModAlt
	}
	if m&glfw.ModSuper != 0 {
		out |= core.ModSuper
	}
	return out
}

func translateButton(b glfw.MouseButton) core.MouseButton {
	switch b {
	case glfw.MouseButtonLeft:
		return core.MouseButtonLeft
	case glfw.MouseButtonRight:
		return core.MouseButtonRight
	case glfw.MouseButtonMiddle:
		return core.MouseButtonMiddle
	default:
		return core.MouseButtonOther
	}
}

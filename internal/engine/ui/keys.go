package ui

import (
	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/islandrun/internal/game/player"
)

// Keys maps ImGui keys to player input and host actions.
type Keys struct {
	Left    []imgui.Key
	Right   []imgui.Key
	Descend []imgui.Key

	Quit    imgui.Key
	Mute    imgui.Key
	Restart imgui.Key
}

// DefaultKeys returns arrows or A/D to turn, Down, S or Space to descend,
// Escape to quit, M to mute and R to restart.
func DefaultKeys() Keys {
	return Keys{
		Left:    []imgui.Key{imgui.KeyLeftArrow, imgui.KeyA},
		Right:   []imgui.Key{imgui.KeyRightArrow, imgui.KeyD},
		Descend: []imgui.Key{imgui.KeyDownArrow, imgui.KeyS, imgui.KeySpace},
		Quit:    imgui.KeyEscape,
		Mute:    imgui.KeyM,
		Restart: imgui.KeyR,
	}
}

// Sample reads held keys through down.
func (k Keys) Sample(down func(imgui.Key) bool) player.Input {
	held := func(keys []imgui.Key) bool {
		for _, key := range keys {
			if down(key) {
				return true
			}
		}
		return false
	}
	return player.Input{
		Left:    held(k.Left),
		Right:   held(k.Right),
		Descend: held(k.Descend),
	}
}

// State samples the live keyboard.
func (k Keys) State() player.Input {
	return k.Sample(imgui.IsKeyDown)
}

// Pressed reports whether key went down this frame.
func Pressed(key imgui.Key) bool {
	return imgui.IsKeyChordPressed(imgui.KeyChord(key))
}

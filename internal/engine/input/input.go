// Package input turns SDL2 events and keyboard state into run input.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/islandrun/internal/game/player"
)

// Event types for game use
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
}

// Bindings maps scancodes to run controls. Each control accepts any of
// its keys.
type Bindings struct {
	Left    []sdl.Scancode
	Right   []sdl.Scancode
	Descend []sdl.Scancode
	Quit    sdl.Scancode
	Mute    sdl.Scancode
	Restart sdl.Scancode
}

// DefaultBindings uses the arrows or WASD.
func DefaultBindings() Bindings {
	return Bindings{
		Left:    []sdl.Scancode{sdl.SCANCODE_LEFT, sdl.SCANCODE_A},
		Right:   []sdl.Scancode{sdl.SCANCODE_RIGHT, sdl.SCANCODE_D},
		Descend: []sdl.Scancode{sdl.SCANCODE_DOWN, sdl.SCANCODE_S, sdl.SCANCODE_SPACE},
		Quit:    sdl.SCANCODE_ESCAPE,
		Mute:    sdl.SCANCODE_M,
		Restart: sdl.SCANCODE_R,
	}
}

// Input handles all input processing.
type Input struct {
	bindings Bindings
	events   []Event
	state    player.Input
}

// New creates an input handler.
func New(b Bindings) *Input {
	return &Input{
		bindings: b,
		events:   make([]Event, 0, 16),
	}
}

// Update polls SDL events and samples the keyboard.
// Returns true if the game should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0] // Clear previous events
	quit := false

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				i.events = append(i.events, Event{
					Type: EventKeyDown,
					Key:  e.Keysym.Scancode,
				})
				if e.Keysym.Scancode == i.bindings.Quit {
					quit = true
				}
			}
		}
	}

	i.state = i.bindings.Sample(sdl.GetKeyboardState())
	return quit
}

// Sample reads the held controls from a keyboard state array indexed by
// scancode.
func (b Bindings) Sample(keys []uint8) player.Input {
	return player.Input{
		Left:    anyHeld(keys, b.Left),
		Right:   anyHeld(keys, b.Right),
		Descend: anyHeld(keys, b.Descend),
	}
}

func anyHeld(keys []uint8, codes []sdl.Scancode) bool {
	for _, c := range codes {
		if int(c) < len(keys) && keys[c] != 0 {
			return true
		}
	}
	return false
}

// State returns the controls held during the last Update.
func (i *Input) State() player.Input {
	return i.state
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}

// MutePressed reports whether the mute toggle was pressed this frame.
func (i *Input) MutePressed() bool {
	return i.IsKeyPressed(i.bindings.Mute)
}

// RestartPressed reports whether the restart key was pressed this frame.
func (i *Input) RestartPressed() bool {
	return i.IsKeyPressed(i.bindings.Restart)
}

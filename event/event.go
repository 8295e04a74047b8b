// Package event defines the input events a windowing host feeds into g3d.
//
// g3d never creates a native window. The host application translates its
// platform events (GLFW, browser DOM, test fixtures) into these values and
// pushes them into a Queue; the renderer drains the queue once per tick and
// hands each event to the active camera.
package event

import "fmt"

// Kind discriminates the event union.
type Kind int

const (
	// KindKey is a keyboard key press or release.
	KindKey Kind = iota + 1

	// KindMouseButton is a pointer button press or release.
	KindMouseButton

	// KindCursorPos is an absolute pointer position change.
	KindCursorPos

	// KindScroll is a scroll-wheel or trackpad scroll.
	KindScroll

	// KindFramebufferSize is a surface resize notification.
	KindFramebufferSize
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindKey:
		return "Key"
	case KindMouseButton:
		return "MouseButton"
	case KindCursorPos:
		return "CursorPos"
	case KindScroll:
		return "Scroll"
	case KindFramebufferSize:
		return "FramebufferSize"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Action is the press state carried by key and mouse-button events.
type Action int

const (
	// Release means the key or button was released.
	Release Action = iota

	// Press means the key or button was pressed.
	Press

	// Repeat means the key is being held down (key events only).
	Repeat
)

// MouseButton identifies a pointer button.
type MouseButton int

// Pointer buttons.
const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// Key identifies a keyboard key. Only the keys the built-in cameras react
// to are named; hosts may pass through any other platform scancode as
// Key(code) and custom cameras can interpret it.
type Key int

// Named keys.
const (
	KeyUnknown Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyW
	KeyA
	KeyS
	KeyD
	KeyShift
	KeyControl
)

// Modifiers is a bitmask of modifier keys held during an event.
type Modifiers int

// Modifier bits.
const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
	ModSuper
)

// Event is one input event. Kind selects which fields are meaningful:
//
//	KindKey:             Key, Action, Mods
//	KindMouseButton:     Button, Action, Mods, X, Y
//	KindCursorPos:       X, Y
//	KindScroll:          DX, DY
//	KindFramebufferSize: Width, Height
type Event struct {
	Kind   Kind
	Key    Key
	Button MouseButton
	Action Action
	Mods   Modifiers

	// X, Y is the pointer position in surface pixels.
	X, Y float64

	// DX, DY is the scroll delta.
	DX, DY float64

	// Width, Height is the new framebuffer size in pixels.
	Width, Height uint32
}

// KeyEvent builds a KindKey event.
func KeyEvent(key Key, action Action, mods Modifiers) Event {
	return Event{Kind: KindKey, Key: key, Action: action, Mods: mods}
}

// MouseButtonEvent builds a KindMouseButton event at the given pointer position.
func MouseButtonEvent(button MouseButton, action Action, mods Modifiers, x, y float64) Event {
	return Event{Kind: KindMouseButton, Button: button, Action: action, Mods: mods, X: x, Y: y}
}

// CursorPosEvent builds a KindCursorPos event.
func CursorPosEvent(x, y float64) Event {
	return Event{Kind: KindCursorPos, X: x, Y: y}
}

// ScrollEvent builds a KindScroll event.
func ScrollEvent(dx, dy float64) Event {
	return Event{Kind: KindScroll, DX: dx, DY: dy}
}

// FramebufferSizeEvent builds a KindFramebufferSize event.
func FramebufferSizeEvent(width, height uint32) Event {
	return Event{Kind: KindFramebufferSize, Width: width, Height: height}
}

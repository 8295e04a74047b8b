package context

import "fmt"

// State tracks where a Context is in its frame lifecycle.
//
// State machine:
//
//	Uninitialized -> DeviceReady -> FrameOpen -> RenderPassOpen
//	     RenderPassOpen -> FrameOpen (pass closed, more passes may open)
//	     FrameOpen -> DeviceReady (frame submitted and presented)
//
// A fatal device or surface loss moves the context to Faulted; the only
// way out of Faulted is tearing the context down and creating a new one.
type State int

const (
	// StateUninitialized means no device has been attached yet.
	StateUninitialized State = iota

	// StateDeviceReady means the device is usable and no frame is open.
	StateDeviceReady

	// StateFrameOpen means BeginFrame succeeded and a command encoder is
	// recording, but no render pass is open.
	StateFrameOpen

	// StateRenderPassOpen means draw calls may be recorded.
	StateRenderPassOpen

	// StateFaulted means the device or surface was lost. All operations
	// fail until the context is torn down and reinitialized.
	StateFaulted
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateDeviceReady:
		return "DeviceReady"
	case StateFrameOpen:
		return "FrameOpen"
	case StateRenderPassOpen:
		return "RenderPassOpen"
	case StateFaulted:
		return "Faulted"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

package imgtex

// State is the lifecycle state of a Renderer.
type State int32

const (
	// StateUninitialized is the state after New, before any Configure.
	StateUninitialized State = iota

	// StateConfigured means a valid request is current and no frame for it
	// is available (yet, or because its render failed).
	StateConfigured

	// StateRendering means a render pass is in progress.
	StateRendering

	// StateReady means a frame is available to PullFrame.
	StateReady

	// StateDisposed is terminal.
	StateDisposed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateConfigured:
		return "Configured"
	case StateRendering:
		return "Rendering"
	case StateReady:
		return "Ready"
	case StateDisposed:
		return "Disposed"
	default:
		return "Unknown"
	}
}

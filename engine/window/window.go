package window

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event handling.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration while the window is active.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the callback for key press events. Key repeats are not reported.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetMouseMoveCallback sets the callback for pointer movement.
	//
	// Parameters:
	//   - callback: function receiving the pointer x, y position in pixels
	SetMouseMoveCallback(callback func(x, y float64))

	// SetSuspendCallback sets the callback fired when the window loses or regains the foreground
	// (focus lost or iconified).
	//
	// Parameters:
	//   - callback: function receiving true when the window becomes suspended
	SetSuspendCallback(callback func(suspended bool))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Suspended reports whether the window is currently unfocused or iconified.
	Suspended() bool

	// RequestClose asks the message loop to stop after the current iteration.
	RequestClose()

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop on the calling goroutine, which must be the main thread.
	// Blocks until the window is closed. While active it polls events and calls the update callback every
	// iteration; while suspended it only waits for events, up to idle at a time.
	//
	// Parameters:
	//   - idle: maximum time to block waiting for events while suspended
	ProcessMessages(idle time.Duration)

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	mu *sync.Mutex

	// title is the window title displayed in the title bar.
	title string

	// minWidth, minHeight, maxWidth and maxHeight bound interactive resizing.
	minWidth, minHeight int
	maxWidth, maxHeight int

	// width and height are the current framebuffer size in pixels.
	width, height int

	// focused and iconified track the foreground state; the window is suspended unless focused and not iconified.
	focused, iconified bool

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onUpdate    func()
	onResize    func(width, height int)
	onKeyDown   func(keyCode uint32)
	onKeyUp     func(keyCode uint32)
	onMouseMove func(x, y float64)
	onSuspend   func(suspended bool)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the window
//   - error: error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		mu:        &sync.Mutex{},
		title:     "Bin Thrower",
		minWidth:  320,
		minHeight: 240,
		maxWidth:  7680,
		maxHeight: 4320,
		width:     1280,
		height:    720,
		focused:   true,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y float64)) {
	w.onMouseMove = callback
}

func (w *engineWindow) SetSuspendCallback(callback func(suspended bool)) {
	w.onSuspend = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Suspended() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.focused || w.iconified
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages(idle time.Duration) {
	for w.IsRunning() {
		if w.Suspended() {
			if !platformWaitMessages(w, idle) {
				break
			}
			continue
		}

		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil && !w.Suspended() {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

func (w *engineWindow) Height() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.height
}

// setForeground updates the focus or iconify state and reports suspension changes.
func (w *engineWindow) setForeground(focused, iconified bool) {
	w.mu.Lock()
	before := !w.focused || w.iconified
	w.focused, w.iconified = focused, iconified
	after := !w.focused || w.iconified
	w.mu.Unlock()

	if before != after && w.onSuspend != nil {
		w.onSuspend(after)
	}
}

func (w *engineWindow) setSize(width, height int) {
	w.mu.Lock()
	w.width, w.height = width, height
	w.mu.Unlock()
}

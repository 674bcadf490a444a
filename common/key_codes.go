package common

// Virtual key codes for input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeySpace = 32  // Spacebar (ASCII)
	KeyG     = 71  // G key (ASCII)
	KeyH     = 72  // H key (ASCII)
	KeyR     = 82  // R key (ASCII)
	KeyEsc   = 256 // Escape key (GLFW)
)

// Key bindings used by the game.
const (
	// KeyFire spawns a projectile on the frame it is pressed.
	KeyFire = KeySpace
	// KeyToggleDebug flips the physics debug-line overlay.
	KeyToggleDebug = KeyG
	// KeyToggleHUD flips the telemetry display.
	KeyToggleHUD = KeyH
	// KeyResetScore sets the score back to zero.
	KeyResetScore = KeyR
)

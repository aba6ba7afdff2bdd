//go:build !linux && !windows

package tools

// No supported service manager on this platform; Control reports the
// unsupported platform instead of guessing at a command.
func newHostServiceAdapter() serviceAdapter {
	return nil
}

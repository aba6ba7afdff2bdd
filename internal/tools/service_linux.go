//go:build linux

package tools

func newHostServiceAdapter() serviceAdapter {
	return systemdAdapter{}
}

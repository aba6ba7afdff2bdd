//go:build windows

package tools

func newHostServiceAdapter() serviceAdapter {
	return windowsServiceAdapter{}
}

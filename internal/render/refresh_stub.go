//go:build !linux

package render

import "errors"

// DetectRefreshRate is not supported outside X11.
func DetectRefreshRate() (int, error) {
	return 0, errors.New("refresh rate detection requires X11")
}

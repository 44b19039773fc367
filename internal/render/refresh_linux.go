//go:build linux

package render

import (
	"errors"
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
)

// DetectRefreshRate asks the X server for the refresh rate of the primary
// screen through the RandR extension.
func DetectRefreshRate() (int, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return 0, fmt.Errorf("failed to connect to X server: %w", err)
	}
	defer conn.Close()

	if err := randr.Init(conn); err != nil {
		return 0, fmt.Errorf("RandR extension unavailable: %w", err)
	}

	setup := xproto.Setup(conn)
	if len(setup.Roots) == 0 {
		return 0, errors.New("no screens found")
	}

	info, err := randr.GetScreenInfo(conn, setup.Roots[0].Root).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to query screen info: %w", err)
	}
	if info.Rate == 0 {
		return 0, errors.New("screen reports an unknown refresh rate")
	}
	return int(info.Rate), nil
}

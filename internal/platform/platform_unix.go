//go:build !windows

package platform

import (
	"os/exec"
	"runtime"
)

// runScheduledTask is Windows-only; Unix desktops have no equivalent of the
// per-user scheduled task the installer registers.
func runScheduledTask(string) error { return ErrUnsupported }

func openFolder(path string) error {
	opener := "xdg-open"
	if runtime.GOOS == "darwin" {
		opener = "open"
	}
	// #nosec G204 -- fixed opener binary, path comes from our own config
	return exec.Command(opener, path).Start()
}

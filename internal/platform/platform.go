// Package platform abstracts the OS-specific controls the supervisor needs:
// killing every process matching the backend executable name, delegating a
// backend start to the OS task scheduler, and opening the log directory in
// the system file browser. Platforms lacking a capability return
// ErrUnsupported instead of pretending.
package platform

import (
	"errors"
	"os"
	"runtime"
	"strings"

	gopsproc "github.com/shirou/gopsutil/v4/process"
)

// ErrUnsupported is returned for capabilities the current OS does not offer.
var ErrUnsupported = errors.New("not supported on " + runtime.GOOS)

// Platform is the capability surface used by the supervisor and the command
// surface. Implementations must be safe for concurrent use.
type Platform interface {
	// KillByName force-terminates every process whose executable name
	// matches exe (not just children of this process). Returns the number
	// of processes signaled.
	KillByName(exe string) (int, error)
	// RunScheduledTask asks the OS task scheduler to run the named task.
	RunScheduledTask(task string) error
	// OpenFolder opens the system file browser at path.
	OpenFolder(path string) error
}

type native struct{}

// Native returns the Platform implementation for the current OS.
func Native() Platform { return native{} }

func (native) KillByName(exe string) (int, error) {
	if strings.TrimSpace(exe) == "" {
		return 0, errors.New("empty executable name")
	}
	procs, err := gopsproc.Processes()
	if err != nil {
		return 0, err
	}
	self := int32(os.Getpid())
	killed := 0
	var firstErr error
	for _, p := range procs {
		if p.Pid == self {
			continue
		}
		name, err := p.Name()
		if err != nil || !matchExe(name, exe) {
			continue
		}
		if err := p.Kill(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		killed++
	}
	return killed, firstErr
}

// matchExe compares executable names, ignoring case on Windows where the
// scheduler and shell report names case-insensitively.
func matchExe(name, exe string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(name, exe)
	}
	return name == exe
}

func (native) RunScheduledTask(task string) error { return runScheduledTask(task) }

func (native) OpenFolder(path string) error { return openFolder(path) }

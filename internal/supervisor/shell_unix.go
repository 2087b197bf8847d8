//go:build !windows

package supervisor

import "os/exec"

// getShellCommand wraps a backend command line containing shell
// metacharacters in /bin/sh so pipes and quoting behave as configured.
func getShellCommand(cmdline string) *exec.Cmd {
	// #nosec G204 -- backend command comes from our own config
	return exec.Command("/bin/sh", "-c", cmdline)
}

// getTrueCommand is the spawn target for an empty backend command; it exits
// immediately with success.
func getTrueCommand() *exec.Cmd {
	return exec.Command("/bin/true")
}

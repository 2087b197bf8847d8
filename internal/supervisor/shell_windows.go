//go:build windows

package supervisor

import "os/exec"

// getShellCommand wraps a backend command line containing shell
// metacharacters in cmd.exe so pipes and quoting behave as configured.
func getShellCommand(cmdline string) *exec.Cmd {
	// #nosec G204 -- backend command comes from our own config
	return exec.Command("cmd", "/c", cmdline)
}

// getTrueCommand is the spawn target for an empty backend command; rem is a
// no-op that exits immediately with success.
func getTrueCommand() *exec.Cmd {
	return exec.Command("cmd", "/c", "rem")
}

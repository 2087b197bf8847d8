//go:build windows

package platform

import (
	"fmt"
	"os/exec"
	"syscall"
)

// createNoWindow suppresses the console window flash for spawned tools.
const createNoWindow = 0x08000000

func runScheduledTask(task string) error {
	// #nosec G204 -- task name comes from our own config
	cmd := exec.Command("schtasks", "/Run", "/TN", task)
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: createNoWindow}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("schtasks /Run %s: %w", task, err)
	}
	return nil
}

func openFolder(path string) error {
	// explorer exits non-zero even on success; fire and forget.
	// #nosec G204 -- path comes from our own config
	cmd := exec.Command("explorer", path)
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: createNoWindow}
	return cmd.Start()
}

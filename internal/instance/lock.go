package instance

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// DefaultStaleAfter is the age past which an existing lock file is treated
// as abandoned and may be overwritten.
const DefaultStaleAfter = 60 * time.Second

// ErrAlreadyRunning indicates a fresh lock file owned by another instance.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Lock is a filesystem marker enforcing at most one front-end instance.
// It is a freshness heuristic, not an OS-level exclusive lock: the file holds
// the owning PID and is judged by its mtime. A crash leaves the file behind;
// it self-heals once StaleAfter has elapsed. Release is only called on
// graceful shutdown.
type Lock struct {
	Path       string
	StaleAfter time.Duration
}

func New(path string) *Lock {
	return &Lock{Path: path, StaleAfter: DefaultStaleAfter}
}

// Acquire claims the lock. It fails with ErrAlreadyRunning when the marker
// exists and was written less than StaleAfter ago; otherwise it overwrites
// the marker with the current PID, creating parent directories as needed.
// Concurrent Acquire calls within the staleness window can race; callers get
// no stronger guarantee than the mtime heuristic provides.
func (l *Lock) Acquire() error {
	stale := l.StaleAfter
	if stale <= 0 {
		stale = DefaultStaleAfter
	}
	if fi, err := os.Stat(l.Path); err == nil && fi.Mode().IsRegular() {
		if time.Since(fi.ModTime()) < stale {
			return ErrAlreadyRunning
		}
	}
	if err := os.MkdirAll(filepath.Dir(l.Path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(l.Path, []byte(strconv.Itoa(os.Getpid())), 0o600)
}

// Release removes the marker unconditionally, best-effort.
func (l *Lock) Release() {
	_ = os.Remove(l.Path)
}

// Owner reads the PID recorded in the marker, 0 when absent or unparsable.
func (l *Lock) Owner() int {
	b, err := os.ReadFile(l.Path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(string(b))
	if err != nil {
		return 0
	}
	return pid
}

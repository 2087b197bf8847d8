package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Channel is one append-only log destination. Records are immutable
// "[unix_ts] message" lines; there is no rotation and no retention for the
// lifetime of the process. Append never reports failure to callers: logging
// must not destabilize the supervisor, so write errors are swallowed.
type Channel struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewChannel creates a channel writing to path. The file and its parent
// directories are created lazily on first append.
func NewChannel(path string) *Channel {
	return &Channel{path: path, now: time.Now}
}

// Path returns the channel's file path.
func (c *Channel) Path() string { return c.path }

// Append writes one timestamped record.
func (c *Channel) Append(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(c.path), 0o750); err != nil {
		return
	}
	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(f, "[%d] %s\n", c.now().Unix(), msg)
	_ = f.Close()
}

// Appendf formats and appends one record.
func (c *Channel) Appendf(format string, args ...any) {
	c.Append(fmt.Sprintf(format, args...))
}

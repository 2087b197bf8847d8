package supervisor

import (
	"os/exec"
	"strings"
	"time"

	"github.com/loykin/sidekick/internal/logger"
)

// Fixed backend endpoint. The backend is a single local service; these are
// the values the installed application ships with.
const (
	DefaultBaseURL    = "http://127.0.0.1:8000"
	DefaultHealthPath = "/health"
	DefaultPort       = 8000
)

// Flow timing defaults.
const (
	DefaultPollInterval = 250 * time.Millisecond
	DefaultStartTimeout = 10 * time.Second
)

// Spec describes the one backend this supervisor manages.
type Spec struct {
	Name     string   `json:"name" mapstructure:"name"`           // logical name used for captured log files
	Command  string   `json:"command" mapstructure:"command"`     // command line to start the backend
	WorkDir  string   `json:"work_dir" mapstructure:"workdir"`    // optional working dir
	Env      []string `json:"env" mapstructure:"env"`             // optional extra env
	ExeName  string   `json:"exe_name" mapstructure:"exe_name"`   // executable name for system-wide kill
	TaskName string   `json:"task_name" mapstructure:"task_name"` // OS scheduler task name

	BaseURL   string `json:"base_url" mapstructure:"base_url"`
	HealthURL string `json:"health_url" mapstructure:"health_url"`
	Port      int    `json:"port" mapstructure:"port"`

	PollInterval time.Duration `json:"poll_interval" mapstructure:"poll_interval"`
	StartTimeout time.Duration `json:"start_timeout" mapstructure:"start_timeout"`
	ProbeTimeout time.Duration `json:"probe_timeout" mapstructure:"probe_timeout"`

	Log logger.Config `json:"log" mapstructure:"log"`
}

// WithDefaults returns a copy of the spec with the fixed endpoint and flow
// timing defaults filled in. New applies it; config loading applies it too so
// a loaded config reports the effective values.
func (s Spec) WithDefaults() Spec {
	if s.Name == "" {
		s.Name = "backend"
	}
	if s.BaseURL == "" {
		s.BaseURL = DefaultBaseURL
	}
	if s.HealthURL == "" {
		s.HealthURL = s.BaseURL + DefaultHealthPath
	}
	if s.Port <= 0 {
		s.Port = DefaultPort
	}
	if s.PollInterval <= 0 {
		s.PollInterval = DefaultPollInterval
	}
	if s.StartTimeout <= 0 {
		s.StartTimeout = DefaultStartTimeout
	}
	return s
}

// BuildCommand constructs an *exec.Cmd for the spec's Command. It avoids
// invoking a shell unless metacharacters require one.
func (s *Spec) BuildCommand() *exec.Cmd {
	var cmd *exec.Cmd
	cmdStr := strings.TrimSpace(s.Command)
	switch {
	case cmdStr == "":
		cmd = getTrueCommand()
	case strings.ContainsAny(cmdStr, "|&;<>*?`$\"'(){}[]~"):
		cmd = getShellCommand(cmdStr)
	default:
		parts := strings.Fields(cmdStr)
		name := parts[0]
		var args []string
		if len(parts) > 1 {
			args = parts[1:]
		}
		// #nosec G204 -- backend command comes from our own config
		cmd = exec.Command(name, args...)
	}
	if s.WorkDir != "" {
		cmd.Dir = s.WorkDir
	}
	if len(s.Env) > 0 {
		cmd.Env = append(cmd.Environ(), s.Env...)
	}
	return cmd
}

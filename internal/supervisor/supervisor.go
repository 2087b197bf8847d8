package supervisor

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/loykin/sidekick/internal/logger"
	"github.com/loykin/sidekick/internal/metrics"
	"github.com/loykin/sidekick/internal/platform"
	"github.com/loykin/sidekick/internal/probe"
	"github.com/loykin/sidekick/internal/store"
)

// Flow triggers, used for logging, metrics, and history records.
const (
	TriggerAutostart = "autostart"
	TriggerRetry     = "retry"
	TriggerKillRetry = "kill-retry"
)

// Prober classifies the backend as healthy or not. probe.HealthProbe is the
// production implementation.
type Prober interface {
	Healthy() bool
}

// PortChecker reports whether the backend port is already held.
type PortChecker interface {
	Occupied() bool
}

// Supervisor owns the spawned backend handle and the shared status record.
// One mutex guards both; it is held only for field mutations, never across a
// probe, spawn, or sleep, so status queries stay responsive while a flow is
// in progress.
//
// Each flow invocation (autostart, retry, kill-and-retry) gets a generation
// number. Every status or handle mutation re-checks the generation under the
// mutex, so a superseded flow's late transitions are discarded instead of
// racing the flow that replaced it.
type Supervisor struct {
	mu    sync.Mutex
	state Status
	cmd   *exec.Cmd
	epoch uint64

	spec   Spec
	prober Prober
	port   PortChecker
	plat   platform.Platform
	flow   *logger.Channel // autostart channel; nil-safe
	st     store.Store     // optional transition history
}

// New builds a Supervisor for the given backend spec. Missing spec fields
// get the fixed defaults.
func New(spec Spec) *Supervisor {
	spec = spec.WithDefaults()
	return &Supervisor{
		state:  notReady(),
		spec:   spec,
		prober: probe.NewHealthProbe(spec.HealthURL, spec.ProbeTimeout),
		port:   probe.NewPortCheck(spec.Port),
		plat:   platform.Native(),
	}
}

// SetFlowLog attaches the autostart log channel.
func (s *Supervisor) SetFlowLog(c *logger.Channel) { s.flow = c }

// SetPlatform replaces the OS capability adapter.
func (s *Supervisor) SetPlatform(p platform.Platform) { s.plat = p }

// SetProber replaces the health prober.
func (s *Supervisor) SetProber(p Prober) { s.prober = p }

// SetPortCheck replaces the port-occupancy check.
func (s *Supervisor) SetPortCheck(p PortChecker) { s.port = p }

// SetStore configures transition history persistence and ensures its schema.
func (s *Supervisor) SetStore(st store.Store) error {
	s.mu.Lock()
	s.st = st
	s.mu.Unlock()
	if st == nil {
		return nil
	}
	return st.EnsureSchema(context.Background())
}

// Spec returns a copy of the effective spec.
func (s *Supervisor) Spec() Spec { return s.spec }

// BaseURL returns the fixed backend base URL.
func (s *Supervisor) BaseURL() string { return s.spec.BaseURL }

// Status returns the current shared status value.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ready reports whether the backend status is READY.
func (s *Supervisor) Ready() bool { return s.Status().State == StateReady }

// Handle returns the currently held child handle, nil when none.
func (s *Supervisor) Handle() *exec.Cmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd
}

// Autostart runs the full flow (probe, port check, spawn, poll) in the
// background and returns immediately.
func (s *Supervisor) Autostart() {
	epoch := s.beginFlow(TriggerAutostart)
	go s.runFlow(epoch, true, TriggerAutostart)
}

// AutostartBlocking runs the full flow on the calling goroutine. Tests and
// the flow worker use it; commands use the async wrappers.
func (s *Supervisor) AutostartBlocking() {
	s.runFlow(s.beginFlow(TriggerAutostart), true, TriggerAutostart)
}

// Retry kills any held handle, resets status, and re-runs spawn+poll. The
// initial probe and port check are skipped: retry always attempts a fresh
// spawn. The kill and reset happen before Retry returns; polling continues
// in the background.
func (s *Supervisor) Retry() error {
	epoch := s.beginFlow(TriggerRetry)
	s.killHeld()
	s.setState(epoch, notReady(), TriggerRetry)
	go s.runFlow(epoch, false, TriggerRetry)
	return nil
}

// RetryBlocking is Retry with the spawn+poll steps run inline.
func (s *Supervisor) RetryBlocking() {
	epoch := s.beginFlow(TriggerRetry)
	s.killHeld()
	s.setState(epoch, notReady(), TriggerRetry)
	s.runFlow(epoch, false, TriggerRetry)
}

// KillAndRetry best-effort terminates every process matching the backend
// executable name (externally started instances included), kills the held
// handle, resets status, and re-runs the full flow.
func (s *Supervisor) KillAndRetry() error {
	epoch := s.beginFlow(TriggerKillRetry)
	if s.spec.ExeName != "" {
		n, err := s.plat.KillByName(s.spec.ExeName)
		s.flowLogf("KILL_BY_NAME exe=%s killed=%d err=%v", s.spec.ExeName, n, err)
	}
	s.killHeld()
	s.setState(epoch, notReady(), TriggerKillRetry)
	go s.runFlow(epoch, true, TriggerKillRetry)
	return nil
}

// KillAndRetryBlocking is KillAndRetry with the flow run inline.
func (s *Supervisor) KillAndRetryBlocking() {
	epoch := s.beginFlow(TriggerKillRetry)
	if s.spec.ExeName != "" {
		n, err := s.plat.KillByName(s.spec.ExeName)
		s.flowLogf("KILL_BY_NAME exe=%s killed=%d err=%v", s.spec.ExeName, n, err)
	}
	s.killHeld()
	s.setState(epoch, notReady(), TriggerKillRetry)
	s.runFlow(epoch, true, TriggerKillRetry)
}

// RunScheduledTask delegates a backend start to the OS task scheduler,
// bypassing the supervisor entirely.
func (s *Supervisor) RunScheduledTask() error {
	if s.spec.TaskName == "" {
		return platform.ErrUnsupported
	}
	return s.plat.RunScheduledTask(s.spec.TaskName)
}

// --- flow ---

func (s *Supervisor) beginFlow(trigger string) uint64 {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()
	metrics.IncFlowRun(trigger)
	s.flowLogf("FLOW_BEGIN trigger=%s epoch=%d", trigger, epoch)
	return epoch
}

// runFlow drives the autostart state machine for one flow generation. When
// full is true the initial probe and port check run first; retry flows skip
// them. Every failure path degrades to NOT_READY; nothing here is fatal.
func (s *Supervisor) runFlow(epoch uint64, full bool, trigger string) {
	if full {
		if healthy := s.probeOnce(); healthy {
			// Backend already up (previous session or external launch).
			s.flowLogf("ALREADY_HEALTHY url=%s", s.spec.HealthURL)
			s.setState(epoch, ready(), trigger)
			return
		}
		if s.port.Occupied() {
			// Something squats the port without answering health checks.
			// Spawning would collide; surface it instead.
			s.flowLogf("PORT_IN_USE_NO_HEALTH port=%d", s.spec.Port)
			s.setState(epoch, notReadyFor(ReasonPortInUseNoHealth), trigger)
			return
		}
	}

	cmd := s.spec.BuildCommand()
	configureSysProcAttr(cmd)
	outW, errW := s.attachOutput(cmd)

	metrics.IncSpawn()
	if err := cmd.Start(); err != nil {
		metrics.IncSpawnFailure()
		closeWriters(outW, errW)
		s.flowLogf("SPAWN_FAILED err=%v", err)
		s.setState(epoch, notReady(), trigger)
		return
	}
	s.flowLogf("SPAWNED pid=%d cmd=%q", cmd.Process.Pid, s.spec.Command)

	if !s.install(epoch, cmd) {
		// A newer flow superseded us while spawning; never leave a second
		// live handle behind.
		killGroup(cmd.Process.Pid)
		go func() { _ = cmd.Wait(); closeWriters(outW, errW) }()
		return
	}
	go s.reap(cmd, outW, errW)
	s.setState(epoch, starting(), trigger)

	deadline := time.Now().Add(s.spec.StartTimeout)
	for time.Now().Before(deadline) {
		time.Sleep(s.spec.PollInterval)
		if s.stale(epoch) {
			return
		}
		if s.probeOnce() {
			s.flowLogf("HEALTHY pid=%d", cmd.Process.Pid)
			s.setState(epoch, ready(), trigger)
			return
		}
	}

	// Timed out. Detach the handle from bookkeeping but leave the process
	// running; an explicit retry is the path that terminates it.
	s.detach(epoch, cmd)
	s.flowLogf("START_TIMEOUT after=%s", s.spec.StartTimeout)
	s.setState(epoch, notReady(), trigger)
}

func (s *Supervisor) probeOnce() bool {
	healthy := s.prober.Healthy()
	metrics.IncProbe(healthy)
	return healthy
}

// attachOutput redirects the backend's stdout/stderr to the capture logs,
// or /dev/null when no log dir is configured.
func (s *Supervisor) attachOutput(cmd *exec.Cmd) (io.WriteCloser, io.WriteCloser) {
	if s.spec.Log.Dir == "" && s.spec.Log.StdoutPath == "" && s.spec.Log.StderrPath == "" {
		null, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
		if err != nil {
			return nil, nil
		}
		cmd.Stdout = null
		cmd.Stderr = null
		// One closer serves both streams; the spawn failure and reap paths
		// close it like any capture writer.
		return null, nil
	}
	if s.spec.Log.Dir != "" {
		_ = os.MkdirAll(s.spec.Log.Dir, 0o750)
	}
	outW, errW := s.spec.Log.Writers(s.spec.Name)
	if outW != nil {
		cmd.Stdout = outW
	}
	if errW != nil {
		cmd.Stderr = errW
	}
	return outW, errW
}

// install records the new child handle. Any previously held handle is taken
// out first and terminated: no two live handles exist under this
// supervisor's management.
func (s *Supervisor) install(epoch uint64, cmd *exec.Cmd) bool {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return false
	}
	prev := s.cmd
	s.cmd = cmd
	s.mu.Unlock()
	if prev != nil && prev.Process != nil {
		killGroup(prev.Process.Pid)
	}
	return true
}

// detach clears the held handle without killing the process.
func (s *Supervisor) detach(epoch uint64, cmd *exec.Cmd) {
	s.mu.Lock()
	if epoch == s.epoch && s.cmd == cmd {
		s.cmd = nil
	}
	s.mu.Unlock()
}

// killHeld takes ownership of the held handle out of the shared state and
// terminates it. Safe when nothing is held.
func (s *Supervisor) killHeld() {
	s.mu.Lock()
	cmd := s.cmd
	s.cmd = nil
	s.mu.Unlock()
	if cmd != nil && cmd.Process != nil {
		killGroup(cmd.Process.Pid)
	}
}

// reap waits for the child, closes its capture writers, and clears the
// handle if it is still the held one. Status is left alone: exits are
// observed through failed health probes, not process monitoring.
func (s *Supervisor) reap(cmd *exec.Cmd, outW, errW io.WriteCloser) {
	err := cmd.Wait()
	closeWriters(outW, errW)
	s.flowLogf("BACKEND_EXIT pid=%d err=%v", cmd.Process.Pid, err)
	s.mu.Lock()
	if s.cmd == cmd {
		s.cmd = nil
	}
	s.mu.Unlock()
}

// setState applies a transition for the given flow generation. Stale
// generations are discarded under the mutex.
func (s *Supervisor) setState(epoch uint64, next Status, trigger string) bool {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return false
	}
	prev := s.state
	s.state = next
	st := s.st
	s.mu.Unlock()

	metrics.RecordTransition(string(prev.State), string(next.State))
	metrics.SetReady(next.State == StateReady)
	s.flowLogf("STATUS %s -> %s", prev, next)
	if st != nil {
		tr := store.Transition{
			Status:  string(next.State),
			Reason:  string(next.Reason),
			Trigger: trigger,
			Epoch:   epoch,
			At:      time.Now().UTC(),
		}
		if err := st.RecordTransition(context.Background(), tr); err != nil {
			slog.Debug("transition history write failed", "error", err)
		}
	}
	return true
}

func (s *Supervisor) stale(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return epoch != s.epoch
}

func (s *Supervisor) flowLogf(format string, args ...any) {
	if s.flow != nil {
		s.flow.Appendf(format, args...)
	}
}

func closeWriters(ws ...io.WriteCloser) {
	for _, w := range ws {
		if w != nil {
			_ = w.Close()
		}
	}
}

//go:build !windows

package supervisor

import (
	"syscall"
	"testing"
	"time"
)

func TestStartTimeoutDetachesWithoutKilling(t *testing.T) {
	s := New(Spec{
		Name:         "backend",
		Command:      "sleep 5",
		PollInterval: 10 * time.Millisecond,
		StartTimeout: 100 * time.Millisecond,
	})
	s.SetProber(&scriptedProber{healthyAfter: -1})
	s.SetPortCheck(fixedPort{})

	done := make(chan struct{})
	go func() { s.AutostartBlocking(); close(done) }()

	var pid int
	waitFor(t, time.Second, func() bool {
		if cmd := s.Handle(); cmd != nil && cmd.Process != nil {
			pid = cmd.Process.Pid
			return true
		}
		return false
	}, "spawned handle")
	<-done

	st := s.Status()
	if st.State != StateNotReady || st.Reason != "" {
		t.Fatalf("status = %v, want NOT_READY after timeout", st)
	}
	if s.Handle() != nil {
		t.Fatalf("handle should be cleared after timeout")
	}
	// Detached, not killed: the process must still be alive.
	if err := syscall.Kill(pid, 0); err != nil {
		t.Fatalf("detached backend should still be running: %v", err)
	}
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

func TestRetryKillsPreviousHandle(t *testing.T) {
	s := New(Spec{
		Name:         "backend",
		Command:      "sleep 5",
		PollInterval: 10 * time.Millisecond,
		StartTimeout: 5 * time.Second,
	})
	s.SetProber(&scriptedProber{healthyAfter: -1})
	s.SetPortCheck(fixedPort{})

	go s.RetryBlocking()
	var pid1 int
	waitFor(t, time.Second, func() bool {
		if cmd := s.Handle(); cmd != nil && cmd.Process != nil {
			pid1 = cmd.Process.Pid
			return true
		}
		return false
	}, "first spawned handle")

	if err := s.Retry(); err != nil {
		t.Fatalf("retry: %v", err)
	}
	var pid2 int
	waitFor(t, time.Second, func() bool {
		if cmd := s.Handle(); cmd != nil && cmd.Process != nil && cmd.Process.Pid != pid1 {
			pid2 = cmd.Process.Pid
			return true
		}
		return false
	}, "second spawned handle")
	defer func() { _ = syscall.Kill(-pid2, syscall.SIGKILL) }()

	// The first child receives a termination signal and is reaped.
	waitFor(t, 2*time.Second, func() bool {
		return syscall.Kill(pid1, 0) != nil
	}, "first child to die")
}

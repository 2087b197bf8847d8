package sidekick

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFacadeStatusAndLock(t *testing.T) {
	sup := New(Spec{Name: "backend", Command: "definitely-not-a-binary"})
	st := sup.Status()
	if st.String() != "NOT_READY" {
		t.Fatalf("expected NOT_READY, got %q", st)
	}
	if sup.Ready() {
		t.Fatal("expected not ready")
	}
	if sup.BaseURL() == "" {
		t.Fatal("expected default base URL")
	}

	lockPath := filepath.Join(t.TempDir(), "app.lock")
	lock := NewLock(lockPath)
	if err := lock.Acquire(); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := NewLock(lockPath).Acquire(); err == nil {
		t.Fatal("expected second acquire to fail")
	}
	lock.Release()
	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Fatalf("expected lock removed, stat err=%v", err)
	}
}

func TestFacadeHistory(t *testing.T) {
	sup := New(Spec{Name: "backend", Command: "definitely-not-a-binary"})
	dbPath := filepath.Join(t.TempDir(), "history.db")
	st, err := sup.SetHistory(dbPath)
	if err != nil {
		t.Fatalf("set history: %v", err)
	}
	defer func() { _ = st.Close() }()
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Listen == "" || cfg.Backend.StartTimeout != 10*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestRouterDepsWiring(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg.DataDir = t.TempDir()
	sup := New(cfg.Backend)
	deps := NewRouterDeps(sup, cfg)
	if deps.AppLog.Path() != cfg.AppLogPath() {
		t.Fatalf("app log path mismatch: %q vs %q", deps.AppLog.Path(), cfg.AppLogPath())
	}
	if deps.AutostartLogPath != cfg.AutostartLogPath() {
		t.Fatalf("autostart log path mismatch")
	}
	if deps.LogsDir != cfg.LogsDir() {
		t.Fatalf("logs dir mismatch")
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultPaths(t *testing.T) {
	cfg := Default()
	cfg.finish()
	if cfg.DataDir == "" {
		t.Fatalf("empty data dir")
	}
	if !strings.HasPrefix(cfg.AppLogPath(), cfg.LogsDir()) {
		t.Fatalf("app log %q not under logs dir %q", cfg.AppLogPath(), cfg.LogsDir())
	}
	if filepath.Base(cfg.AutostartLogPath()) != "autostart.log" {
		t.Fatalf("autostart log path = %q", cfg.AutostartLogPath())
	}
	if filepath.Base(cfg.LockPath()) != "app.lock" {
		t.Fatalf("lock path = %q", cfg.LockPath())
	}
	if cfg.Backend.Log.Dir != cfg.LogsDir() {
		t.Fatalf("backend log dir not derived: %q", cfg.Backend.Log.Dir)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	content := `
data_dir = "` + dir + `"

[server]
listen = "127.0.0.1:9999"

[backend]
command = "python -m uvicorn main:app --port 8000"
exe_name = "python.exe"
start_timeout = "10s"
poll_interval = "250ms"

[store]
dsn = "sqlite://` + filepath.Join(dir, "history.db") + `"
`
	p := filepath.Join(dir, "sidekick.toml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Listen != "127.0.0.1:9999" {
		t.Fatalf("listen = %q", cfg.Server.Listen)
	}
	if cfg.Backend.ExeName != "python.exe" {
		t.Fatalf("exe name = %q", cfg.Backend.ExeName)
	}
	if cfg.Backend.StartTimeout != 10*time.Second || cfg.Backend.PollInterval != 250*time.Millisecond {
		t.Fatalf("durations not parsed: %v/%v", cfg.Backend.StartTimeout, cfg.Backend.PollInterval)
	}
	if cfg.DataDir != dir {
		t.Fatalf("data dir = %q", cfg.DataDir)
	}
	if !strings.HasPrefix(cfg.Store.DSN, "sqlite://") {
		t.Fatalf("store dsn = %q", cfg.Store.DSN)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Listen == "" || cfg.Backend.TaskName == "" {
		t.Fatalf("defaults missing: %+v", cfg)
	}
}

func TestLoadAppliesBackendDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.StartTimeout != 10*time.Second {
		t.Fatalf("Backend.StartTimeout = %v, want 10s", cfg.Backend.StartTimeout)
	}
	if cfg.Backend.PollInterval != 250*time.Millisecond {
		t.Fatalf("Backend.PollInterval = %v, want 250ms", cfg.Backend.PollInterval)
	}
	if cfg.Backend.BaseURL == "" || cfg.Backend.HealthURL == "" || cfg.Backend.Port == 0 {
		t.Fatalf("endpoint defaults missing: %+v", cfg.Backend)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestAutostartGate(t *testing.T) {
	t.Setenv(DisableAutostartEnv, "")
	if !AutostartEnabled(VariantProduction) {
		t.Fatalf("production with empty flag should autostart")
	}
	if AutostartEnabled("dev") {
		t.Fatalf("dev variant must never autostart")
	}
	for _, v := range []string{"1", "true", "yes", "TRUE"} {
		t.Setenv(DisableAutostartEnv, v)
		if AutostartEnabled(VariantProduction) {
			t.Fatalf("flag %q should disable autostart", v)
		}
	}
	for _, v := range []string{"0", "false", "no", " "} {
		t.Setenv(DisableAutostartEnv, v)
		if !AutostartEnabled(VariantProduction) {
			t.Fatalf("flag %q should not disable autostart", v)
		}
	}
}

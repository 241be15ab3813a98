package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, serverURL string) string {
	t.Helper()
	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
state_dir = %q
log_dir = %q

[media_server]
url = %q
token = "test-token"

[logging]
format = "json"
level = "error"

[policies.bitrate]
enabled = true
max_kbps = 8000
`, filepath.Join(base, "state"), filepath.Join(base, "logs"), serverURL)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func emptySessionsServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"MediaContainer":{"size":0,"Metadata":[]}}`)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestConfigInit(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")

	out, _, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// A second init without --overwrite must refuse.
	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}

func TestRunCycleAgainstEmptyServer(t *testing.T) {
	server := emptySessionsServer(t)
	configPath := writeTestConfig(t, server.URL)

	out, _, err := runCLI(t, configPath, "run")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "0 sessions")
	requireContains(t, out, "0 violations")
}

func TestRunRejectsUnknownRule(t *testing.T) {
	server := emptySessionsServer(t)
	configPath := writeTestConfig(t, server.URL)

	_, _, err := runCLI(t, configPath, "run", "--rule", "no-such-rule")
	if err == nil {
		t.Fatal("expected unknown rule to fail")
	}
	requireContains(t, err.Error(), "no-such-rule")
}

func TestRunExitsZeroOnTransientFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)
	configPath := writeTestConfig(t, server.URL)

	if _, _, err := runCLI(t, configPath, "run"); err != nil {
		t.Fatalf("a transient fetch failure must not be a command error: %v", err)
	}
}

func TestRunFailsWithoutCredentials(t *testing.T) {
	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf("[paths]\nstate_dir = %q\nlog_dir = %q\n",
		filepath.Join(base, "state"), filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, err := runCLI(t, configPath, "run"); err == nil {
		t.Fatal("missing media server credentials must be fatal")
	}
}

func TestSessionsCommandRendersEmptySnapshot(t *testing.T) {
	server := emptySessionsServer(t)
	configPath := writeTestConfig(t, server.URL)

	out, _, err := runCLI(t, configPath, "sessions")
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	requireContains(t, out, "No active sessions")
}

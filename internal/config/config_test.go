package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolate points HOME at a temp dir and blanks every override so the
// caller's environment cannot leak into a test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, name := range []string{"SHUTTER_API_URL", "SHUTTER_API_KEY", "SHUTTER_LOG_FILE", "SHUTTER_LOG_LEVEL"} {
		t.Setenv(name, "")
	}
	return home
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_ParsesAndTrimsFile(t *testing.T) {
	home := isolate(t)
	path := writeConfig(t, `
api_url = "  https://abc.execute-api.us-east-1.amazonaws.com/prod  "
api_key = " k-123 "
log_file = "~/logs/shutter.log"
log_level = "DEBUG"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "https://abc.execute-api.us-east-1.amazonaws.com/prod" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if cfg.APIKey != "k-123" {
		t.Fatalf("APIKey = %q, want %q", cfg.APIKey, "k-123")
	}
	if cfg.LogFile != filepath.Join(home, "logs", "shutter.log") {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoad_DefaultsForOptionalFields(t *testing.T) {
	home := isolate(t)
	path := writeConfig(t, `
api_url = "http://localhost:3000"
api_key = "k"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := filepath.Join(home, ".local", "state", "shutter", "shutter.log")
	if cfg.LogFile != want {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, want)
	}
	if cfg.LogLevel != defaultLogLevel {
		t.Fatalf("LogLevel = %q, want %q", cfg.LogLevel, defaultLogLevel)
	}
}

func TestLoad_EnvironmentWinsOverFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
api_url = "http://file.example"
api_key = "file-key"
log_level = "error"
`)
	t.Setenv("SHUTTER_API_URL", "https://env.example/prod")
	t.Setenv("SHUTTER_API_KEY", "env-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "https://env.example/prod" || cfg.APIKey != "env-key" {
		t.Fatalf("Load = %+v, want env values for url and key", cfg)
	}
	if cfg.LogLevel != "error" {
		t.Fatalf("LogLevel = %q, want the file value", cfg.LogLevel)
	}
}

func TestLoad_MissingFileWithEnvironment(t *testing.T) {
	home := isolate(t)
	t.Setenv("SHUTTER_API_URL", "https://env.example")
	t.Setenv("SHUTTER_API_KEY", "env-key")

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "https://env.example" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
}

func TestLoad_RequiredFields(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing url", `api_key = "k"`, "api_url is required"},
		{"missing key", `api_url = "https://x.example"`, "api_key is required"},
		{"relative url", "api_url = \"/prod\"\napi_key = \"k\"", "absolute http or https URL"},
		{"bad scheme", "api_url = \"ftp://x.example\"\napi_key = \"k\"", "absolute http or https URL"},
		{"bad level", "api_url = \"https://x.example\"\napi_key = \"k\"\nlog_level = \"loud\"", "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatalf("Load returned nil error, want %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %q, want it to mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	isolate(t)
	_, err := Load(writeConfig(t, `api_url = [`))
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

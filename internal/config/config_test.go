package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENAI_API_URL",
		"BRIDGE_HOST", "BRIDGE_PORT", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", cfg.APIKey)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.MaxTokens != 1000 {
		t.Errorf("MaxTokens = %d", cfg.MaxTokens)
	}
	if cfg.Addr() != "localhost:8005" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"api_key":"sk-test","model":"gpt-4o","host":"0.0.0.0","port":9000}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.APIKey != "sk-test" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.Addr() != "0.0.0.0:9000" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
	// Values the file left out keep their defaults.
	if cfg.MaxTokens != 1000 {
		t.Errorf("MaxTokens = %d", cfg.MaxTokens)
	}
}

func TestInvalidFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("BRIDGE_HOST", "ci.example")
	t.Setenv("BRIDGE_PORT", "8123")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.APIKey != "sk-env" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if cfg.Addr() != "ci.example:8123" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestAnthropicKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.APIKey != "sk-ant" {
		t.Errorf("APIKey = %q, want ANTHROPIC_API_KEY value", cfg.APIKey)
	}
}

func TestOpenAIKeyWinsOverAnthropic(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.APIKey != "sk-openai" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
}

func TestInvalidPort(t *testing.T) {
	clearEnv(t)
	for _, bad := range []string{"nope", "-1", "0"} {
		t.Setenv("BRIDGE_PORT", bad)
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
			t.Errorf("BRIDGE_PORT=%q: expected error", bad)
		}
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"api_key":"sk-file","port":9000}`), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("BRIDGE_PORT", "9001")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.APIKey != "sk-env" {
		t.Errorf("APIKey = %q, env should win", cfg.APIKey)
	}
	if cfg.Port != 9001 {
		t.Errorf("Port = %d, env should win", cfg.Port)
	}
}

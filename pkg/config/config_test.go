package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
environment: test
fmp:
  api_key: secret
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Retrieval.Mode != "chunked" || cfg.Retrieval.Workers != 10 {
		t.Fatalf("retrieval defaults = %s/%d", cfg.Retrieval.Mode, cfg.Retrieval.Workers)
	}
	if cfg.FMP.Timeout != 30*time.Second {
		t.Fatalf("timeout = %v", cfg.FMP.Timeout)
	}
	if cfg.Symbols.CacheTTL != 24*time.Hour {
		t.Fatalf("cache ttl = %v", cfg.Symbols.CacheTTL)
	}
}

func TestLoadRejectsMissingAPIKey(t *testing.T) {
	if _, err := Load(writeConfig(t, "environment: test\n")); err == nil {
		t.Fatalf("expected validation failure")
	}
}

func TestLoadRejectsBadMode(t *testing.T) {
	body := minimalConfig + "retrieval:\n  mode: batch\n"
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected validation failure")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("FMP_API_KEY", "from-env")
	t.Setenv("RETRIEVAL_MODE", "direct")
	t.Setenv("RETRIEVAL_WORKERS", "4")

	cfg, err := LoadWithEnv(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if cfg.FMP.APIKey != "from-env" {
		t.Fatalf("api key = %s", cfg.FMP.APIKey)
	}
	if cfg.Retrieval.Mode != "direct" || cfg.Retrieval.Workers != 4 {
		t.Fatalf("retrieval = %s/%d", cfg.Retrieval.Mode, cfg.Retrieval.Workers)
	}
}

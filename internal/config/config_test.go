package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("", func(string) string { return "" })
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Table != DefaultTable || cfg.BatchSize != 50 || cfg.Storage.Kind != "rest" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Storage.Timeout.Duration != DefaultTimeout {
		t.Fatalf("timeout = %v, want %v", cfg.Storage.Timeout, DefaultTimeout)
	}
	if got, want := cfg.StagedPath(), filepath.Join("data", "staged", "churn_transformed.csv"); got != want {
		t.Fatalf("StagedPath() = %q, want %q", got, want)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		EnvSupabaseURL:    "https://x.supabase.co",
		EnvSupabaseKey:    "secret",
		EnvBaseDir:        "/srv/etl",
		EnvBatchSize:      "25",
		EnvStrict:         "yes",
		EnvTimeout:        "5s",
		EnvStorageKind:    "sqlite",
		EnvDSN:            "file:churn.db",
		EnvMetricsBackend: "datadog",
	}
	cfg, err := Load("", func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.URL != "https://x.supabase.co" || cfg.Storage.Key != "secret" {
		t.Errorf("credentials not applied: %+v", cfg.Storage)
	}
	if cfg.BatchSize != 25 || !cfg.Strict {
		t.Errorf("BatchSize/Strict = %d/%v", cfg.BatchSize, cfg.Strict)
	}
	if cfg.Storage.Timeout.Duration != 5*time.Second {
		t.Errorf("timeout = %v", cfg.Storage.Timeout)
	}
	if cfg.Storage.Kind != "sqlite" || cfg.Storage.DSN != "file:churn.db" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if got := cfg.RawFile(); got != filepath.Join("/srv/etl", DefaultRawPath) {
		t.Errorf("RawFile() = %q", got)
	}
	if got := cfg.Resolve("https://example.com/raw.csv"); got != "https://example.com/raw.csv" {
		t.Errorf("Resolve(url) = %q", got)
	}
	if got := cfg.Resolve("/abs/x.csv"); got != "/abs/x.csv" {
		t.Errorf("Resolve(abs) = %q", got)
	}
}

func TestLoadEnvInvalid(t *testing.T) {
	t.Parallel()

	env := map[string]string{EnvBatchSize: "lots", EnvStrict: "maybe"}
	if _, err := Load("", func(k string) string { return env[k] }); err == nil {
		t.Fatal("Load() error = nil, want invalid batch size and boolean")
	}
}

func TestLoadFileFormats(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "churn.json")
	yamlPath := filepath.Join(dir, "churn.yaml")
	writeFile(t, jsonPath, `{"table":"churn_json","batch_size":10,"storage":{"kind":"postgres","timeout":"2s"}}`)
	writeFile(t, yamlPath, "table: churn_yaml\nstorage:\n  kind: mysql\n  timeout: 1.5\nmetrics:\n  backend: prompush\n")

	cfg, err := Load(jsonPath, func(string) string { return "" })
	if err != nil {
		t.Fatalf("Load(json) error = %v", err)
	}
	if cfg.Table != "churn_json" || cfg.BatchSize != 10 || cfg.Storage.Kind != "postgres" || cfg.Storage.Timeout.Duration != 2*time.Second {
		t.Errorf("json config = %+v", cfg)
	}
	if cfg.StagedFile != DefaultStagedFile {
		t.Errorf("defaults not preserved: %q", cfg.StagedFile)
	}

	cfg, err = Load(yamlPath, func(k string) string {
		if k == EnvTable {
			return "from_env"
		}
		return ""
	})
	if err != nil {
		t.Fatalf("Load(yaml) error = %v", err)
	}
	if cfg.Table != "from_env" || cfg.Storage.Kind != "mysql" || cfg.Metrics.Backend != "prompush" {
		t.Errorf("yaml config = %+v", cfg)
	}
	if cfg.Storage.Timeout.Duration != 1500*time.Millisecond {
		t.Errorf("yaml timeout = %v", cfg.Storage.Timeout)
	}
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "bad.json")
	writeFile(t, p, `{"tabel":"typo"}`)
	if _, err := Load(p, nil); err == nil {
		t.Fatal("Load() error = nil, want unknown field error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json"), nil); err == nil {
		t.Fatal("Load() error = nil for missing file")
	}
}

func TestLoadDotEnv(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv(missing) error = %v", err)
	}

	p := filepath.Join(t.TempDir(), ".env")
	writeFile(t, p, "CHURNETL_TEST_DOTENV=loaded\n")
	t.Cleanup(func() { os.Unsetenv("CHURNETL_TEST_DOTENV") })
	if err := LoadDotEnv(p); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("CHURNETL_TEST_DOTENV"); got != "loaded" {
		t.Fatalf("env = %q, want loaded", got)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

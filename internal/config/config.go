// Package config holds the pipeline configuration shared by every stage.
//
// Values are resolved in layers, each overriding the previous one:
//
//  1. Defaults (see Defaults).
//  2. An optional config file, JSON or YAML by extension (LoadFile).
//  3. The environment, read through an injectable getenv (ApplyEnv). A .env
//     file may seed the process environment first (LoadDotEnv).
//  4. Command-line flags, applied by the CLI.
//
// For tests, prefer passing a map-backed getenv to keep them hermetic:
//
//	getenv := func(k string) string { return env[k] }
//	cfg, err := config.Load("", getenv)
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultJob        = "churn"
	DefaultRawPath    = "data/raw/WA_Fn-UseC_-Telco-Customer-Churn.csv"
	DefaultStagingDir = "data/staged"
	DefaultStagedFile = "churn_transformed.csv"
	DefaultTable      = "telco_customer_churn_data"
	DefaultBatchSize  = 50
	DefaultTimeout    = 30 * time.Second
	DefaultStorage    = "rest"
	DefaultDatadog    = "127.0.0.1:8125"
)

// Environment keys.
const (
	EnvSupabaseURL     = "SUPABASE_URL"
	EnvSupabaseKey     = "SUPABASE_KEY"
	EnvJob             = "CHURNETL_JOB"
	EnvBaseDir         = "CHURNETL_BASE_DIR"
	EnvRawPath         = "CHURNETL_RAW_PATH"
	EnvStagingDir      = "CHURNETL_STAGING_DIR"
	EnvTable           = "CHURNETL_TABLE"
	EnvBatchSize       = "CHURNETL_BATCH_SIZE"
	EnvStrict          = "CHURNETL_STRICT"
	EnvLogMode         = "CHURNETL_LOG_MODE"
	EnvStorageKind     = "CHURNETL_STORAGE_KIND"
	EnvDSN             = "CHURNETL_DSN"
	EnvAutoCreateTable = "CHURNETL_AUTO_CREATE_TABLE"
	EnvTimeout         = "CHURNETL_TIMEOUT"
	EnvMetricsBackend  = "CHURNETL_METRICS_BACKEND"
	EnvPushgatewayURL  = "CHURNETL_PUSHGATEWAY_URL"
	EnvDatadogAddr     = "CHURNETL_DATADOG_ADDR"
)

// Config is the full pipeline configuration. It is a plain value; stages
// receive it explicitly and never mutate it.
type Config struct {
	// Job labels metrics and log lines.
	Job string `json:"job" yaml:"job"`

	// BaseDir anchors every relative path below.
	BaseDir string `json:"base_dir" yaml:"base_dir"`

	RawPath    string `json:"raw_path" yaml:"raw_path"`
	StagingDir string `json:"staging_dir" yaml:"staging_dir"`
	StagedFile string `json:"staged_file" yaml:"staged_file"`

	// Table is the destination table name.
	Table string `json:"table" yaml:"table"`

	// BatchSize is the number of rows per insert request.
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// Strict turns validation mismatches and partial loads into errors.
	Strict bool `json:"strict" yaml:"strict"`

	// LogMode selects the logger: "dev", "debug" or "prod".
	LogMode string `json:"log_mode" yaml:"log_mode"`

	Storage Storage `json:"storage" yaml:"storage"`
	Metrics Metrics `json:"metrics" yaml:"metrics"`
}

// Storage selects and configures the destination backend.
type Storage struct {
	// Kind is a registered backend: rest, postgres, sqlite, mssql or mysql.
	Kind string `json:"kind" yaml:"kind"`

	// URL and Key address the hosted REST table service.
	URL string `json:"url" yaml:"url"`
	Key string `json:"key" yaml:"key"`

	// DSN is the connection string for SQL backends.
	DSN string `json:"dsn" yaml:"dsn"`

	// AutoCreateTable creates the destination table before loading. Only SQL
	// backends support it.
	AutoCreateTable bool `json:"auto_create_table" yaml:"auto_create_table"`

	Timeout Duration `json:"timeout" yaml:"timeout"`
}

// Metrics selects the metrics backend: "", "none", "prompush" or "datadog".
type Metrics struct {
	Backend        string `json:"backend" yaml:"backend"`
	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url"`
	DatadogAddr    string `json:"datadog_addr" yaml:"datadog_addr"`
}

// Duration is a time.Duration that decodes from "30s"-style strings or from
// a number of seconds.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return d.parse(s)
	}
	var secs float64
	if err := json.Unmarshal(b, &secs); err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	d.Duration = time.Duration(secs * float64(time.Second))
	return nil
}

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		d.Duration = time.Duration(secs * float64(time.Second))
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration %q: %w", s, err)
	}
	d.Duration = v
	return nil
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Job:        DefaultJob,
		BaseDir:    ".",
		RawPath:    DefaultRawPath,
		StagingDir: DefaultStagingDir,
		StagedFile: DefaultStagedFile,
		Table:      DefaultTable,
		BatchSize:  DefaultBatchSize,
		LogMode:    "dev",
		Storage: Storage{
			Kind:    DefaultStorage,
			Timeout: Duration{DefaultTimeout},
		},
		Metrics: Metrics{DatadogAddr: DefaultDatadog},
	}
}

// Load returns Defaults overlaid with the file at path (if non-empty) and the
// environment read through getenv.
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := ApplyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile decodes a JSON or YAML file (by extension; .yaml/.yml are YAML,
// everything else JSON) over cfg. Unknown keys are rejected.
func LoadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode config %s: %w", path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment values onto cfg. Empty values are ignored.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	var errs []error
	boolean := func(key string, dst *bool) {
		v := strings.ToLower(strings.TrimSpace(getenv(key)))
		switch v {
		case "":
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			*dst = false
		default:
			errs = append(errs, fmt.Errorf("%s: invalid boolean %q", key, v))
		}
	}

	str(EnvJob, &cfg.Job)
	str(EnvBaseDir, &cfg.BaseDir)
	str(EnvRawPath, &cfg.RawPath)
	str(EnvStagingDir, &cfg.StagingDir)
	str(EnvTable, &cfg.Table)
	str(EnvLogMode, &cfg.LogMode)
	boolean(EnvStrict, &cfg.Strict)

	if v := strings.TrimSpace(getenv(EnvBatchSize)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvBatchSize, err))
		} else {
			cfg.BatchSize = n
		}
	}

	str(EnvSupabaseURL, &cfg.Storage.URL)
	str(EnvSupabaseKey, &cfg.Storage.Key)
	str(EnvStorageKind, &cfg.Storage.Kind)
	str(EnvDSN, &cfg.Storage.DSN)
	boolean(EnvAutoCreateTable, &cfg.Storage.AutoCreateTable)
	if v := getenv(EnvTimeout); v != "" {
		if err := cfg.Storage.Timeout.parse(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvTimeout, err))
		}
	}

	str(EnvMetricsBackend, &cfg.Metrics.Backend)
	str(EnvPushgatewayURL, &cfg.Metrics.PushgatewayURL)
	str(EnvDatadogAddr, &cfg.Metrics.DatadogAddr)

	return errors.Join(errs...)
}

// Resolve anchors a relative path at BaseDir. Absolute paths and URLs are
// returned unchanged.
func (c Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || strings.Contains(p, "://") {
		return p
	}
	base := c.BaseDir
	if base == "" {
		base = "."
	}
	return filepath.Join(base, p)
}

// RawFile is the resolved raw CSV path.
func (c Config) RawFile() string { return c.Resolve(c.RawPath) }

// StagedPath is the resolved staged CSV path.
func (c Config) StagedPath() string {
	return c.Resolve(filepath.Join(c.StagingDir, c.StagedFile))
}

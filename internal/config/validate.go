package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single lint finding. Path is a dotted path into the
// config (e.g. "storage.url") and Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Error aggregates the blocking issues of a Config. Missing lists the
// environment keys of absent credentials.
type Error struct {
	Missing []string
	Issues  []Issue
}

func (e *Error) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	for _, iss := range e.Issues {
		parts = append(parts, iss.Path+": "+iss.Message)
	}
	return "config: " + strings.Join(parts, "; ")
}

var knownStorage = map[string]struct{}{
	"rest":     {},
	"postgres": {},
	"sqlite":   {},
	"mssql":    {},
	"mysql":    {},
}

var knownMetrics = map[string]struct{}{
	"":         {},
	"none":     {},
	"prompush": {},
	"datadog":  {},
}

// Lint performs static checks over c and returns every issue found. It does
// not mutate c.
func Lint(c Config) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(c.Job) == "" {
		add(SeverityWarning, "job", "job is empty; metrics will be unlabeled")
	}
	if strings.TrimSpace(c.Table) == "" {
		add(SeverityError, "table", "table must not be empty")
	}
	if c.BatchSize <= 0 {
		add(SeverityError, "batch_size", "batch_size must be > 0, got %d", c.BatchSize)
	}
	if strings.TrimSpace(c.StagingDir) == "" || strings.TrimSpace(c.StagedFile) == "" {
		add(SeverityError, "staging_dir", "staging_dir and staged_file must not be empty")
	}

	issues = append(issues, lintStorage(c.Storage)...)
	issues = append(issues, lintMetrics(c.Metrics)...)
	return issues
}

func lintStorage(s Storage) []Issue {
	var issues []Issue
	kind := strings.TrimSpace(s.Kind)
	if kind == "" {
		return append(issues, Issue{SeverityError, "storage.kind", "storage.kind must not be empty"})
	}
	if _, ok := knownStorage[kind]; !ok {
		issues = append(issues, Issue{SeverityWarning, "storage.kind",
			fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", kind)})
	}

	switch kind {
	case "rest":
		if strings.TrimSpace(s.URL) == "" {
			issues = append(issues, Issue{SeverityError, "storage.url", EnvSupabaseURL + " is not set"})
		}
		if strings.TrimSpace(s.Key) == "" {
			issues = append(issues, Issue{SeverityError, "storage.key", EnvSupabaseKey + " is not set"})
		}
		if s.AutoCreateTable {
			issues = append(issues, Issue{SeverityWarning, "storage.auto_create_table",
				"the rest backend cannot create tables; create it with the `ddl` command output"})
		}
	case "postgres", "sqlite", "mssql", "mysql":
		if strings.TrimSpace(s.DSN) == "" {
			issues = append(issues, Issue{SeverityError, "storage.dsn", EnvDSN + " is not set"})
		}
	}
	if s.Timeout.Duration < 0 {
		issues = append(issues, Issue{SeverityError, "storage.timeout", "timeout must not be negative"})
	}
	return issues
}

func lintMetrics(m Metrics) []Issue {
	var issues []Issue
	if _, ok := knownMetrics[m.Backend]; !ok {
		issues = append(issues, Issue{SeverityWarning, "metrics.backend",
			fmt.Sprintf("unknown metrics backend %q; metrics disabled", m.Backend)})
	}
	switch m.Backend {
	case "prompush":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{SeverityError, "metrics.pushgateway_url", "prompush requires a pushgateway url"})
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{SeverityError, "metrics.datadog_addr", "datadog requires an agent address"})
		}
	}
	return issues
}

// credentialKeys maps lint paths of credential fields to environment keys.
var credentialKeys = map[string]string{
	"storage.url": EnvSupabaseURL,
	"storage.key": EnvSupabaseKey,
	"storage.dsn": EnvDSN,
}

// Validate returns a *Error listing every blocking issue, or nil.
func (c Config) Validate() error {
	var e Error
	for _, iss := range Lint(c) {
		if iss.Severity != SeverityError {
			continue
		}
		if key, ok := credentialKeys[iss.Path]; ok {
			e.Missing = append(e.Missing, key)
			continue
		}
		e.Issues = append(e.Issues, iss)
	}
	if len(e.Missing) == 0 && len(e.Issues) == 0 {
		return nil
	}
	return &e
}

package validate

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"churnetl/internal/config"
	"churnetl/internal/logger"
	"churnetl/internal/records"
	"churnetl/internal/stage"
	"churnetl/internal/storage"
)

type tableRepo struct {
	table *records.Table
	err   error
}

func (r *tableRepo) CopyFrom(context.Context, []string, [][]any) (int64, error) { return 0, nil }
func (r *tableRepo) SelectAll(context.Context) (*records.Table, error)          { return r.table, r.err }
func (r *tableRepo) Exec(context.Context, string) error                         { return nil }
func (r *tableRepo) Close()                                                     {}

func register(t *testing.T, repo storage.Repository) string {
	t.Helper()
	kind := "validatetest-" + strings.ReplaceAll(t.Name(), "/", "-")
	storage.Register(kind, func(context.Context, storage.Config) (storage.Repository, error) {
		return repo, nil
	})
	return kind
}

func remoteRow(id int64, tenure any, group string, segment, code any) records.Record {
	return records.Record{
		"id":                     id,
		"tenure":                 tenure,
		"monthlycharges":         29.85,
		"totalcharges":           29.85,
		"churn":                  "No",
		"tenure_group":           group,
		"monthly_charge_segment": segment,
		"contract_type_code":     code,
	}
}

func remoteTable(rows ...records.Record) *records.Table {
	return &records.Table{
		Columns: []string{"id", "tenure", "monthlycharges", "totalcharges", "churn", "tenure_group", "monthly_charge_segment", "contract_type_code"},
		Rows:    rows,
	}
}

func stagedConfig(t *testing.T, kind string, rows int) config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.BaseDir = t.TempDir()
	cfg.Storage.Kind = kind
	var b strings.Builder
	b.WriteString("tenure,churn\n")
	for i := 0; i < rows; i++ {
		b.WriteString("1,No\n")
	}
	p := cfg.StagedPath()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestBuildCleanLoad(t *testing.T) {
	t.Parallel()

	remote := remoteTable(
		remoteRow(1, int64(1), "New", int64(0), int64(0)),
		remoteRow(2, int64(34), "Regular", int64(1), int64(1)),
		remoteRow(3, int64(61), "Champion", int64(2), int64(2)),
	)
	rep := Build("t", 3, remote)

	if rep.LoadedRowCount != 3 || rep.UniqueRowCount != 3 || !rep.RowCountMatch() || !rep.UniqueMatch() {
		t.Fatalf("counts = %+v", rep)
	}
	if strings.Join(rep.TenureGroups, ",") != "Champion,New,Regular" {
		t.Fatalf("tenure groups = %v", rep.TenureGroups)
	}
	if strings.Join(rep.ChargeSegments, ",") != "0,1,2" || strings.Join(rep.ContractCodes, ",") != "0,1,2" {
		t.Fatalf("segments/codes = %v %v", rep.ChargeSegments, rep.ContractCodes)
	}
	if !rep.CodesValid() || len(rep.Problems()) != 0 {
		t.Fatalf("problems = %v", rep.Problems())
	}
	for _, m := range rep.Missing {
		if m.Count == nil || *m.Count != 0 {
			t.Fatalf("missing %s = %v", m.Column, m.Count)
		}
	}
}

func TestBuildDetectsDuplicatesAndBadValues(t *testing.T) {
	t.Parallel()

	remote := remoteTable(
		remoteRow(1, int64(1), "New", int64(0), int64(0)),
		remoteRow(2, int64(1), "New", int64(0), int64(0)), // duplicate except id
		remoteRow(3, nil, "", int64(1), int64(5)),
		remoteRow(4, int64(12), "New", 1.0, int64(2)),
	)
	remote.Rows[3]["totalcharges"] = math.Inf(1)
	remote.Rows[2]["tenure_group"] = nil

	rep := Build("t", 3, remote)
	if rep.LoadedRowCount != 4 || rep.UniqueRowCount != 3 {
		t.Fatalf("loaded/unique = %d/%d, want 4/3", rep.LoadedRowCount, rep.UniqueRowCount)
	}
	if rep.RowCountMatch() || !rep.UniqueMatch() {
		t.Fatal("match flags wrong")
	}
	if *rep.Missing[0].Count != 1 {
		t.Fatalf("missing tenure = %d", *rep.Missing[0].Count)
	}
	if strings.Join(rep.InvalidContractCodes, ",") != "5" {
		t.Fatalf("invalid codes = %v", rep.InvalidContractCodes)
	}
	if strings.Join(rep.ChargeSegments, ",") != "0,1" {
		t.Fatalf("segments = %v", rep.ChargeSegments)
	}
	if rep.NonFinite["totalcharges"] != 1 {
		t.Fatalf("non-finite = %v", rep.NonFinite)
	}
	if len(rep.Problems()) != 4 {
		t.Fatalf("problems = %v", rep.Problems())
	}
}

func TestBuildAbsentColumns(t *testing.T) {
	t.Parallel()

	rep := Build("t", 0, &records.Table{})
	for _, m := range rep.Missing {
		if m.Count != nil {
			t.Fatalf("%s count = %d, want nil", m.Column, *m.Count)
		}
	}
	if len(rep.TenureGroups) != 0 || len(rep.ContractCodes) != 0 {
		t.Fatal("expected empty distinct sets")
	}
}

func TestRunStrictMismatch(t *testing.T) {
	t.Parallel()

	repo := &tableRepo{table: remoteTable(
		remoteRow(1, int64(1), "New", int64(0), int64(0)),
		remoteRow(2, int64(1), "New", int64(0), int64(0)),
	)}
	cfg := stagedConfig(t, register(t, repo), 2)

	rep, err := Run(context.Background(), cfg, logger.NewNop())
	if err != nil {
		t.Fatalf("non-strict Run() error = %v", err)
	}
	if rep.UniqueRowCount != 1 || rep.OriginalRowCount != 2 {
		t.Fatalf("report = %+v", rep)
	}

	cfg.Strict = true
	if _, err := Run(context.Background(), cfg, logger.NewNop()); !errors.Is(err, ErrMismatch) {
		t.Fatalf("strict Run() error = %v, want ErrMismatch", err)
	}
}

func TestRunMissingStagedFile(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults()
	cfg.BaseDir = t.TempDir()
	cfg.Storage.Kind = "validatetest-never-opened"

	if _, err := Run(context.Background(), cfg, logger.NewNop()); !errors.Is(err, stage.ErrInputNotFound) {
		t.Fatalf("error = %v, want ErrInputNotFound", err)
	}
}

func TestRunFetchError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	cfg := stagedConfig(t, register(t, &tableRepo{err: boom}), 1)
	if _, err := Run(context.Background(), cfg, logger.NewNop()); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
}

func TestPrint(t *testing.T) {
	t.Parallel()

	rep := Build("telco_customer_churn_data", 2, remoteTable(
		remoteRow(1, int64(1), "New", int64(0), int64(0)),
		remoteRow(2, int64(40), "Loyal", int64(1), int64(3)),
	))
	var buf bytes.Buffer
	if err := rep.Print(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"VALIDATION SUMMARY",
		"Staged CSV row count           : 2",
		"-> Row count match (CSV vs DB) : true",
		"tenure           missing: 0",
		"[Loyal New]",
		"invalid codes      : [3]",
		"-> All codes valid?: false",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

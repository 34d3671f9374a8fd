// Package validate compares the staged CSV with the rows stored in the
// destination table and reports counts, uniqueness, missing values,
// category coverage and contract-code validity.
package validate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"churnetl/internal/churn"
	"churnetl/internal/config"
	"churnetl/internal/logger"
	"churnetl/internal/metrics"
	"churnetl/internal/parser/csv"
	"churnetl/internal/records"
	"churnetl/internal/stage"
	"churnetl/internal/transformer/builtin"
)

// ErrMismatch is returned in strict mode when the report finds a problem.
var ErrMismatch = errors.New("validation mismatch")

// MissingColumns are checked for missing values after the load.
var MissingColumns = []string{"tenure", "monthlycharges", "totalcharges"}

// MissingCount is the number of missing values in Column; Count is nil when
// the column is absent from the remote rows.
type MissingCount struct {
	Column string `json:"column"`
	Count  *int   `json:"count"`
}

// Report is the outcome of one validation run.
type Report struct {
	Table            string `json:"table"`
	OriginalRowCount int    `json:"original_row_count"`
	LoadedRowCount   int    `json:"loaded_row_count"`
	UniqueRowCount   int    `json:"unique_row_count"`

	Missing []MissingCount `json:"missing"`

	TenureGroups   []string `json:"tenure_groups"`
	ChargeSegments []string `json:"monthly_charge_segments"`

	ContractCodes         []string `json:"contract_codes"`
	ExpectedContractCodes []string `json:"expected_contract_codes"`
	InvalidContractCodes  []string `json:"invalid_contract_codes"`

	// NonFinite counts NaN/Inf values per float column.
	NonFinite map[string]int `json:"non_finite"`
}

// RowCountMatch reports whether the table holds as many rows as were staged.
func (r Report) RowCountMatch() bool { return r.OriginalRowCount == r.LoadedRowCount }

// UniqueMatch reports whether the distinct remote rows equal the staged count.
func (r Report) UniqueMatch() bool { return r.UniqueRowCount == r.OriginalRowCount }

// CodesValid reports whether every observed contract code is expected.
func (r Report) CodesValid() bool { return len(r.InvalidContractCodes) == 0 }

// Problems lists every check that did not pass, in report order.
func (r Report) Problems() []string {
	var out []string
	if !r.RowCountMatch() {
		out = append(out, fmt.Sprintf("row count %d != staged %d", r.LoadedRowCount, r.OriginalRowCount))
	}
	if !r.UniqueMatch() {
		out = append(out, fmt.Sprintf("unique rows %d != staged %d", r.UniqueRowCount, r.OriginalRowCount))
	}
	for _, m := range r.Missing {
		switch {
		case m.Count == nil:
			out = append(out, fmt.Sprintf("column %s absent", m.Column))
		case *m.Count > 0:
			out = append(out, fmt.Sprintf("%d missing %s", *m.Count, m.Column))
		}
	}
	if !r.CodesValid() {
		out = append(out, "invalid contract codes "+strings.Join(r.InvalidContractCodes, ","))
	}
	for _, col := range sortedKeys(r.NonFinite) {
		if n := r.NonFinite[col]; n > 0 {
			out = append(out, fmt.Sprintf("%d non-finite %s", n, col))
		}
	}
	return out
}

// Run reads the staged file and the destination table concurrently and
// builds the Report. A missing staged file returns an error wrapping
// stage.ErrInputNotFound before the destination is contacted. With
// cfg.Strict set, any problem yields an error wrapping ErrMismatch together
// with the complete report.
func Run(ctx context.Context, cfg config.Config, log *logger.Logger) (rep Report, err error) {
	done := metrics.Step(cfg.Job, "validate")
	defer func() { done(err) }()

	path := cfg.StagedPath()
	if err := stage.RequireInput(path); err != nil {
		if errors.Is(err, stage.ErrInputNotFound) {
			log.Error("validate: staged file not found", "path", path)
		}
		return Report{}, err
	}

	repo, err := stage.OpenRepository(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	defer repo.Close()

	var staged, remote *records.Table
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := csv.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read staged file: %w", err)
		}
		staged = t
		return nil
	})
	g.Go(func() error {
		t, err := repo.SelectAll(gctx)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", cfg.Table, err)
		}
		remote = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	log.Info("validate: datasets read", "staged_rows", staged.Len(), "table", cfg.Table, "table_rows", remote.Len())

	rep = Build(cfg.Table, staged.Len(), remote)
	metrics.RecordValidation(cfg.Job, "original", rep.OriginalRowCount)
	metrics.RecordValidation(cfg.Job, "loaded", rep.LoadedRowCount)
	metrics.RecordValidation(cfg.Job, "unique", rep.UniqueRowCount)

	problems := rep.Problems()
	for _, p := range problems {
		log.Warn("validate: check failed", "problem", p)
	}
	if cfg.Strict && len(problems) > 0 {
		return rep, fmt.Errorf("%w: %s", ErrMismatch, strings.Join(problems, "; "))
	}
	return rep, nil
}

// Build computes the report for remote against an expected row count.
func Build(table string, original int, remote *records.Table) Report {
	rep := Report{
		Table:            table,
		OriginalRowCount: original,
		LoadedRowCount:   remote.Len(),
		UniqueRowCount:   builtin.DeDup{Exclude: []string{churn.IDColumn}}.Count(remote.Rows),
		NonFinite:        map[string]int{},
	}

	for _, col := range MissingColumns {
		mc := MissingCount{Column: col}
		if vals, err := remote.Values(col); err == nil {
			n := 0
			for _, v := range vals {
				if records.IsMissing(v) {
					n++
				}
			}
			mc.Count = &n
		}
		rep.Missing = append(rep.Missing, mc)
	}

	rep.TenureGroups = distinct(remote, churn.ColTenureGroup)
	rep.ChargeSegments = distinct(remote, churn.ColMonthlyChargeSegment)
	rep.ContractCodes = distinct(remote, churn.ColContractTypeCode)

	expected := make(map[string]bool, len(churn.ValidContractCodes))
	for _, c := range churn.ValidContractCodes {
		s := strconv.FormatInt(c, 10)
		rep.ExpectedContractCodes = append(rep.ExpectedContractCodes, s)
		expected[s] = true
	}
	rep.InvalidContractCodes = []string{}
	for _, c := range rep.ContractCodes {
		if !expected[c] {
			rep.InvalidContractCodes = append(rep.InvalidContractCodes, c)
		}
	}

	for _, col := range churn.DestinationSchema {
		if col.Kind != churn.KindFloat || !remote.Has(col.Name) {
			continue
		}
		n := 0
		for _, r := range remote.Rows {
			if nonFinite(r[col.Name]) {
				n++
			}
		}
		rep.NonFinite[col.Name] = n
	}
	return rep
}

// Print writes the human-readable summary.
func (r Report) Print(w io.Writer) error {
	var b strings.Builder
	line := func(format string, args ...any) { fmt.Fprintf(&b, format+"\n", args...) }

	line("\n================ VALIDATION SUMMARY ================\n")
	line("- Staged CSV row count           : %d", r.OriginalRowCount)
	line("- Table %q row count : %d", r.Table, r.LoadedRowCount)
	line("- Unique rows in table (no id)   : %d", r.UniqueRowCount)
	line("  -> Row count match (CSV vs DB) : %t", r.RowCountMatch())
	line("  -> Unique rows match staged?   : %t", r.UniqueMatch())

	line("\n- Missing values check (should be 0):")
	for _, m := range r.Missing {
		count := "n/a (column absent)"
		if m.Count != nil {
			count = strconv.Itoa(*m.Count)
		}
		line("  %-16s missing: %s", m.Column, count)
	}

	line("\n- tenure_group distinct values:\n  %v", r.TenureGroups)
	line("\n- monthly_charge_segment distinct values:\n  %v", r.ChargeSegments)

	line("\n- contract_type_code check:")
	line("  observed codes     : %v", r.ContractCodes)
	line("  expected codes     : %v", r.ExpectedContractCodes)
	line("  invalid codes      : %v", r.InvalidContractCodes)
	line("  -> All codes valid?: %t", r.CodesValid())

	if len(r.NonFinite) > 0 {
		line("\n- Non-finite float values (should be 0):")
		for _, col := range sortedKeys(r.NonFinite) {
			line("  %-16s non-finite: %d", col, r.NonFinite[col])
		}
	}
	line("\n====================================================")

	_, err := io.WriteString(w, b.String())
	return err
}

// distinct returns the sorted distinct non-missing values of col, rendered
// the way they appear in the staged CSV. Numeric strings sort numerically.
func distinct(t *records.Table, col string) []string {
	out := []string{}
	if !t.Has(col) {
		return out
	}
	seen := map[string]bool{}
	for _, r := range t.Rows {
		v := r[col]
		if records.IsMissing(v) {
			continue
		}
		s := csv.FormatValue(v)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, aerr := strconv.ParseFloat(out[i], 64)
		b, berr := strconv.ParseFloat(out[j], 64)
		switch {
		case aerr == nil && berr == nil:
			return a < b
		case (aerr == nil) != (berr == nil):
			return aerr == nil
		default:
			return out[i] < out[j]
		}
	})
	return out
}

func nonFinite(v any) bool {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return false
		}
		f = p
	default:
		return false
	}
	return math.IsNaN(f) || math.IsInf(f, 0)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

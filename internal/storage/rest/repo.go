// Package rest implements storage.Repository over a hosted PostgREST table
// (Supabase). Rows are inserted with POST /rest/v1/<table> and read back
// with GET /rest/v1/<table>?select=*.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"churnetl/internal/datasource/httpds"
	"churnetl/internal/records"
	"churnetl/internal/storage"
)

// Config holds REST repository configuration.
type Config struct {
	// URL is the project base URL, e.g. https://xyz.supabase.co.
	URL     string
	Key     string
	Table   string
	Columns []string
	Timeout time.Duration

	// Transport overrides the HTTP transport; tests point it at httptest.
	Transport http.RoundTripper
}

// APIError is the JSON error body PostgREST returns on non-2xx responses.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "postgrest: status %d", e.Status)
	if e.Code != "" {
		fmt.Fprintf(&b, " [%s]", e.Code)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Details != "" {
		b.WriteString("; details: " + e.Details)
	}
	if e.Hint != "" {
		b.WriteString("; hint: " + e.Hint)
	}
	return b.String()
}

// Repository talks to one PostgREST table.
type Repository struct {
	cfg      Config
	endpoint string
	schema   string

	// writes are not idempotent and are sent once; reads are retried.
	writer *httpds.Client
	reader *httpds.Client
}

// NewRepository validates cfg and builds the HTTP clients. It performs no
// network I/O.
func NewRepository(_ context.Context, cfg Config) (*Repository, func(), error) {
	if cfg.URL == "" || cfg.Key == "" {
		return nil, nil, errors.New("rest: url and key are required")
	}
	u, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, nil, fmt.Errorf("rest: parse url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, nil, fmt.Errorf("rest: url %q must be absolute http(s)", cfg.URL)
	}
	if cfg.Table == "" {
		return nil, nil, errors.New("rest: table is required")
	}

	schema, table := "", cfg.Table
	if i := strings.LastIndex(cfg.Table, "."); i > 0 {
		schema, table = cfg.Table[:i], cfg.Table[i+1:]
	}
	base := http.Header{}
	base.Set("apikey", cfg.Key)
	base.Set("Authorization", "Bearer "+cfg.Key)

	r := &Repository{
		cfg:      cfg,
		endpoint: u.String() + "/rest/v1/" + url.PathEscape(table),
		schema:   schema,
		writer: httpds.NewClient(httpds.Config{
			Timeout: cfg.Timeout, MaxRetries: 0, BaseHeaders: base, Transport: cfg.Transport,
		}),
		reader: httpds.NewClient(httpds.Config{
			Timeout: cfg.Timeout, MaxRetries: 3, BaseHeaders: base, Transport: cfg.Transport,
		}),
	}
	return r, func() {}, nil
}

// CopyFrom inserts rows as one JSON array. Non-finite floats become null.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	body, err := encodeRows(columns, rows)
	if err != nil {
		return 0, err
	}

	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Prefer", "return=minimal")
	if r.schema != "" {
		h.Set("Content-Profile", r.schema)
	}
	resp, err := r.writer.Post(ctx, r.endpoint, body, h)
	if err != nil {
		return 0, fmt.Errorf("rest insert: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return 0, decodeError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return int64(len(rows)), nil
}

// SelectAll fetches the whole table in one request. Columns are ordered id
// first, then the configured insert columns, then any others sorted.
func (r *Repository) SelectAll(ctx context.Context) (*records.Table, error) {
	h := http.Header{}
	h.Set("Accept", "application/json")
	if r.schema != "" {
		h.Set("Accept-Profile", r.schema)
	}
	resp, err := r.reader.Get(ctx, r.endpoint+"?select=*", h)
	if err != nil {
		return nil, fmt.Errorf("rest select: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, decodeError(resp)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("rest select: decode: %w", err)
	}

	t := &records.Table{Rows: make([]records.Record, 0, len(raw))}
	seen := map[string]bool{}
	for _, obj := range raw {
		rec := make(records.Record, len(obj))
		for k, v := range obj {
			rec[k] = fromJSON(v)
			seen[k] = true
		}
		t.Rows = append(t.Rows, rec)
	}
	t.Columns = orderColumns(seen, r.cfg.Columns)
	return t, nil
}

// Exec is not available over PostgREST; DDL is applied out of band.
func (r *Repository) Exec(context.Context, string) error {
	return fmt.Errorf("rest exec: %w", storage.ErrUnsupported)
}

func encodeRows(columns []string, rows [][]any) ([]byte, error) {
	objs := make([]map[string]any, len(rows))
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("rest insert: row %d has %d values for %d columns", i, len(row), len(columns))
		}
		obj := make(map[string]any, len(columns))
		for j, c := range columns {
			obj[c] = toJSON(row[j])
		}
		objs[i] = obj
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(objs); err != nil {
		return nil, fmt.Errorf("rest insert: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func toJSON(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return nil
		}
	}
	return v
}

func fromJSON(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

func orderColumns(seen map[string]bool, preferred []string) []string {
	out := make([]string, 0, len(seen))
	take := func(c string) {
		if seen[c] {
			out = append(out, c)
			delete(seen, c)
		}
	}
	take("id")
	for _, c := range preferred {
		take(c)
	}
	rest := make([]string, 0, len(seen))
	for c := range seen {
		rest = append(rest, c)
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

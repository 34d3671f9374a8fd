package builtin

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"churnetl/internal/records"
)

// Normalize cleans string values in place: mis-decoded and real no-break
// spaces become ASCII spaces, surrounding whitespace is trimmed and the
// result is NFC-normalized. Strings that end up empty become nil.
type Normalize struct{}

var nbsp = strings.NewReplacer("\u00c2\u00a0", " ", "\u00a0", " ")

func (Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			s, ok := v.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(nbsp.Replace(s))
			if s == "" {
				r[k] = nil
				continue
			}
			r[k] = norm.NFC.String(s)
		}
	}
	return in
}

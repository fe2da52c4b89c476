package service

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is an integer request field that accepts a JSON number or a numeric
// string. Fractions are floored; anything unparseable decodes to 0 so that
// the entry is filtered out by validation rather than failing the request.
type Number int64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = 0
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	f = math.Floor(f)
	if f >= math.MaxInt64 || f <= math.MinInt64 {
		return nil
	}
	*n = Number(f)
	return nil
}

// trimmed returns nil for blank strings and a pointer to the trimmed value otherwise.
func trimmed(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

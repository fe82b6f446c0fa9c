package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// flexFloat decodes a JSON number or a numeric string. Anything else is
// left unset rather than failing the surrounding decode.
type flexFloat struct {
	val float64
	set bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		f.val, f.set = n, true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if v, perr := strconv.ParseFloat(strings.TrimSpace(s), 64); perr == nil {
			f.val, f.set = v, true
		}
	}
	return nil
}

func (f flexFloat) finite() bool {
	return f.set && !math.IsNaN(f.val) && !math.IsInf(f.val, 0)
}

// flexString decodes a JSON string or number; ids arrive in both forms.
type flexString struct {
	val string
}

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		f.val = strings.TrimSpace(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		f.val = n.String()
	}
	return nil
}

// flexTime decodes RFC3339 strings or epoch seconds/milliseconds.
type flexTime struct {
	val time.Time
}

func (f *flexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
			if t, perr := time.Parse(layout, s); perr == nil {
				f.val = t
				return nil
			}
		}
		if n, perr := strconv.ParseInt(s, 10, 64); perr == nil {
			f.val = epochTime(n)
		}
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err == nil && n > 0 {
		f.val = epochTime(n)
	}
	return nil
}

// Values beyond the year ~33658 as seconds are taken as milliseconds.
func epochTime(n int64) time.Time {
	if n > 1e12 {
		return time.UnixMilli(n)
	}
	return time.Unix(n, 0)
}

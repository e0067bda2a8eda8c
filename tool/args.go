package tool

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Args is the decoded input of a tool call.
//
// Models send either a JSON object ({"a": 2, "b": 3}) or, for single argument
// tools, a bare string. Args hides the difference: for a bare string every
// string lookup returns the whole input.
type Args struct {
	raw    string
	object bool
}

// ParseArgs wraps a tool input.
func ParseArgs(input string) Args {
	s := strings.TrimSpace(input)
	return Args{
		raw:    s,
		object: gjson.Valid(s) && gjson.Parse(s).IsObject(),
	}
}

// Raw returns the trimmed input.
func (a Args) Raw() string { return a.raw }

// IsObject reports whether the input was a JSON object.
func (a Args) IsObject() bool { return a.object }

// Has reports whether key is present in a JSON object input.
func (a Args) Has(key string) bool {
	return a.object && a.get(key).Exists()
}

// String returns the string value of key. Non-object inputs return the raw
// input, so a tool called with "London" and one called with
// {"location": "London"} behave the same.
func (a Args) String(key string) string {
	if !a.object {
		return strings.Trim(a.raw, `"'`)
	}
	return strings.TrimSpace(a.get(key).String())
}

// Float returns key as a number. Numeric strings ("42") are accepted since
// small models often quote numbers.
func (a Args) Float(key string) (float64, error) {
	if !a.object {
		return 0, fmt.Errorf("expected a JSON object with field %q", key)
	}
	r := a.get(key)
	switch r.Type {
	case gjson.Number:
		return r.Num, nil
	case gjson.String:
		v, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return 0, fmt.Errorf("field %q is not a number: %q", key, r.Str)
		}
		return v, nil
	case gjson.Null:
		if !r.Exists() {
			return 0, fmt.Errorf("missing required field %q", key)
		}
	}
	return 0, fmt.Errorf("field %q is not a number", key)
}

// Int returns key as an integer, or def when the key is absent.
func (a Args) Int(key string, def int) (int, error) {
	if !a.Has(key) {
		if !a.object && a.raw != "" {
			// bare "7" for calculate_future_date
			v, err := strconv.Atoi(a.raw)
			if err != nil {
				return 0, fmt.Errorf("expected an integer for %q, got %q", key, a.raw)
			}
			return v, nil
		}
		return def, nil
	}
	f, err := a.Float(key)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func (a Args) get(key string) gjson.Result {
	return gjson.Get(a.raw, key)
}

package configwriter

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vellum-docs/vellum/pkg/schema"
)

var bareKeyRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// formatKey quotes a table key when it is not a bare TOML key
// (wildcards and dotted names need quoting).
func formatKey(name string) string {
	if bareKeyRe.MatchString(name) {
		return name
	}
	return strconv.Quote(name)
}

// formatValue serializes a YAML-decoded value as a TOML value. The
// declared type disambiguates strings that are really datetimes.
func formatValue(v interface{}, t schema.Type) (string, error) {
	switch val := v.(type) {
	case string:
		if t.Element() == schema.TypeTimestamp {
			return val, nil // TOML datetimes are unquoted
		}
		return strconv.Quote(val), nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float64:
		return formatFloat(val), nil
	case float32:
		return formatFloat(float64(val)), nil
	case time.Time:
		return val.Format(time.RFC3339), nil
	case []interface{}:
		items := make([]string, 0, len(val))
		for _, item := range val {
			s, err := formatValue(item, t.Element())
			if err != nil {
				return "", err
			}
			items = append(items, s)
		}
		return "[" + strings.Join(items, ", ") + "]", nil
	case map[string]interface{}:
		return formatInlineTable(val)
	}
	return "", fmt.Errorf("cannot serialize %T as a TOML value", v)
}

// formatFloat keeps integral floats valid TOML (a lone `1` is an int).
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// formatInlineTable renders a map as `{ a = 1, b = "x" }` with sorted keys.
func formatInlineTable(m map[string]interface{}) (string, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		s, err := formatValue(m[k], inferType(m[k]))
		if err != nil {
			return "", err
		}
		pairs = append(pairs, formatKey(k)+" = "+s)
	}
	return "{" + strings.Join(pairs, ", ") + "}", nil
}

// inferType maps a dynamic value to a schema type for serialization of
// free-form table members, where no declared type exists.
func inferType(v interface{}) schema.Type {
	switch v.(type) {
	case bool:
		return schema.TypeBool
	case int, int64, uint64:
		return schema.TypeInt
	case float64, float32:
		return schema.TypeFloat
	case time.Time:
		return schema.TypeTimestamp
	case []interface{}:
		return "[string]"
	case map[string]interface{}:
		return schema.TypeTable
	}
	return schema.TypeString
}

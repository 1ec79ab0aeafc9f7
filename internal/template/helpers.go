package template

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/aymerick/raymond"
)

// builtinHelpers returns a fresh map of the helpers every handlebars
// backend starts with.
func builtinHelpers() map[string]any {
	return map[string]any{
		"upper": helperUpper,
		"lower": helperLower,
		"join":  helperJoin,
		"date":  helperDate,
	}
}

func helperUpper(v any) string {
	return strings.ToUpper(raymond.Str(v))
}

func helperLower(v any) string {
	return strings.ToLower(raymond.Str(v))
}

// helperJoin joins a list with sep: {{join frontMatter.tags ", "}}.
func helperJoin(list any, sep string) string {
	rv := reflect.ValueOf(list)
	if !rv.IsValid() {
		return ""
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return raymond.Str(list)
	}
	parts := make([]string, 0, rv.Len())
	for i := range rv.Len() {
		parts = append(parts, raymond.Str(rv.Index(i).Interface()))
	}
	return strings.Join(parts, sep)
}

// helperDate formats a date with a Go layout: {{date frontMatter.date "2 Jan 2006"}}.
// Strings are parsed as RFC 3339 or YYYY-MM-DD; unparseable values are
// returned unchanged.
func helperDate(v any, layout string) string {
	var t time.Time
	switch d := v.(type) {
	case time.Time:
		t = d
	case string:
		parsed, err := parseDate(d)
		if err != nil {
			return d
		}
		t = parsed
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
	return t.Format(layout)
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

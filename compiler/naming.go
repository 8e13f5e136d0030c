package compiler

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/Mi-Lis/MLCanvas/graph"
)

var nonWordRun = regexp.MustCompile(`\W+`)

// DeriveIdentifier turns a user-facing label into an identifier safe for
// the emitted script: every maximal run of non-word characters becomes a
// single underscore. An empty label (or one that reduces to nothing)
// falls back to "<fallbackPrefix>_<index>", where index is the node's
// zero-based position within its type group in dependency order. A
// leading digit gets an underscore prefix so the identifier stays valid.
func DeriveIdentifier(label, fallbackPrefix string, index int) string {
	ident := nonWordRun.ReplaceAllString(label, "_")
	if ident == "" {
		return fmt.Sprintf("%s_%d", fallbackPrefix, index)
	}
	if ident[0] >= '0' && ident[0] <= '9' {
		ident = "_" + ident
	}
	return ident
}

// ParamOr returns params[key] when present and non-nil, otherwise def.
func ParamOr(params graph.Params, key string, def any) any {
	if v, ok := params[key]; ok && v != nil {
		return v
	}
	return def
}

// floatParam extracts a numeric param. JSON decoding yields float64, but
// programmatically built graphs may hold Go ints.
func floatParam(params graph.Params, key string) (float64, bool) {
	switch v := ParamOr(params, key, nil).(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// intParam returns a whole-number param, or def when the value is absent
// or not numeric.
func intParam(params graph.Params, key string, def int) int {
	if v, ok := floatParam(params, key); ok {
		return int(v)
	}
	return def
}

// boolParam returns a boolean param, or def when absent or non-boolean.
func boolParam(params graph.Params, key string, def bool) bool {
	if v, ok := ParamOr(params, key, def).(bool); ok {
		return v
	}
	return def
}

// pyFloat renders a float the shortest way that round-trips, matching
// Python literal syntax.
func pyFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// pyBool renders a Python boolean literal.
func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// floatLiteral renders a numeric param as a Python literal, or the given
// default literal when the value is absent or not numeric.
func floatLiteral(params graph.Params, key, def string) string {
	if v, ok := floatParam(params, key); ok {
		return pyFloat(v)
	}
	return def
}

package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Summary returns a short human-readable description of v, in the manner of
// printing the value: strings are shown bare.
func Summary(v any) string {
	return summarize(v, false)
}

// DebugSummary is like Summary but quotes strings, matching how the value
// would be written as a literal.
func DebugSummary(v any) string {
	return summarize(v, true)
}

func summarize(v any, debug bool) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case string:
		if debug {
			return strconv.Quote(val)
		}
		return val
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(val)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case *Object:
		if val == nil {
			return "nil"
		}
		return val.class.name
	case Record:
		return val.typ.name
	case Variant:
		if val.hasPayload {
			return fmt.Sprintf("%s.%s(%s)", val.typ.name, val.tag, summarize(val.payload, true))
		}
		return val.typ.name + "." + val.tag
	case Tuple:
		parts := make([]string, len(val.elems))
		for i, e := range val.elems {
			if val.labels[i] != "" {
				parts[i] = val.labels[i] + ": " + summarize(e, true)
			} else {
				parts[i] = summarize(e, true)
			}
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case Optional:
		if !val.some {
			return "nil"
		}
		return "Optional(" + summarize(val.value, true) + ")"
	case List:
		return plural(len(val), "element")
	case Dict:
		return plural(len(val.entries), "key/value pair")
	case Set:
		return plural(len(val.items), "member")
	case *Foreign:
		if val == nil {
			return "nil"
		}
		return "Foreign<" + val.Kind + ">"
	default:
		return newNativeView(v).Summary()
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

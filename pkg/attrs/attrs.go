// Package attrs works with slog-style key/value lists so one attribute list
// can feed both a log line and a structured payload.
package attrs

import "fmt"

// ToMap converts a key/value list into a map. Non-string keys are rendered
// with fmt; a trailing key without value is dropped. Later keys win.
func ToMap(attrs []any) map[string]any {
	out := make(map[string]any, len(attrs)/2)
	for i := 0; i+1 < len(attrs); i += 2 {
		k, ok := attrs[i].(string)
		if !ok {
			k = fmt.Sprint(attrs[i])
		}
		v := attrs[i+1]
		if s, ok := v.(fmt.Stringer); ok {
			v = s.String()
		}
		out[k] = v
	}
	return out
}

package handler

import "fmt"

func stringValue(config map[string]any, key string) (string, bool) {
	v, ok := config[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// stringList accepts []string or []any and coerces items to strings. After
// placeholder resolution a list item may carry a non-string variable value.
func stringList(config map[string]any, key string) ([]string, bool) {
	switch v := config[key].(type) {
	case []string:
		return v, len(v) > 0
	case []any:
		if len(v) == 0 {
			return nil, false
		}
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out, true
	default:
		return nil, false
	}
}

func mapValue(config map[string]any, key string) (map[string]any, bool) {
	v, ok := config[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

func stringMap(config map[string]any, key string) map[string]string {
	m, ok := mapValue(config, key)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = fmt.Sprint(v)
	}
	return out
}

func intValue(config map[string]any, key string) (int, bool) {
	switch v := config[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

package util

import "regexp"

var placeholderRegex = regexp.MustCompile(`^\{\{(\w+)\}\}$`)

// ResolvePlaceholders substitutes string values of the exact form {{name}}
// with the matching variable, keeping the variable's type. Unknown names
// leave the literal placeholder in place. Substitution descends into map and
// list containers but never into variable values themselves; there is no
// nested field access and no brace escaping.
func ResolvePlaceholders(value any, vars map[string]any) any {
	switch v := value.(type) {
	case string:
		m := placeholderRegex.FindStringSubmatch(v)
		if m == nil {
			return v
		}
		if resolved, ok := vars[m[1]]; ok {
			return resolved
		}
		return v
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = ResolvePlaceholders(item, vars)
		}
		return out
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, ResolvePlaceholders(item, vars))
		}
		return out
	case []string:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, ResolvePlaceholders(item, vars))
		}
		return out
	default:
		return v
	}
}

// ResolveConfig resolves placeholders across a full action config map.
func ResolveConfig(config map[string]any, vars map[string]any) map[string]any {
	return ResolvePlaceholders(config, vars).(map[string]any)
}

package extensibility

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrPrecondition = errors.New("precondition failed")

// Facts describe the board a task is about to run on, e.g. {"radio": true,
// "leds": 12.0}.
type Facts map[string]any

// ExpressionPrecondition returns a check for a simple "key op value" expression
// such as "radio == true" or "leds > 8". An empty expression always passes.
// The expression is parsed when the check runs, so a malformed one disables
// the task rather than failing construction.
func ExpressionPrecondition(expr string, facts Facts) func() error {
	return func() error {
		if strings.TrimSpace(expr) == "" {
			return nil
		}
		ok, err := eval(expr, facts)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrPrecondition, expr, err)
		}
		if !ok {
			return fmt.Errorf("%w: %q", ErrPrecondition, expr)
		}
		return nil
	}
}

func eval(expr string, facts Facts) (bool, error) {
	// Parse "key op value"
	parts := strings.Fields(expr)
	if len(parts) != 3 {
		return false, errors.New("expected key op value")
	}
	key, op, valStr := parts[0], parts[1], parts[2]

	v, hasKey := facts[key]
	if !hasKey {
		return false, fmt.Errorf("unknown fact %q", key)
	}

	switch op {
	case "==":
		return equal(v, valStr), nil
	case "!=":
		return !equal(v, valStr), nil
	case ">", "<", ">=", "<=":
		fVal, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			return false, err
		}
		f, ok := toFloat(v)
		if !ok {
			return false, fmt.Errorf("fact %q is not a number", key)
		}
		switch op {
		case ">":
			return f > fVal, nil
		case "<":
			return f < fVal, nil
		case ">=":
			return f >= fVal, nil
		default:
			return f <= fVal, nil
		}
	default:
		return false, fmt.Errorf("unknown operator %q", op)
	}
}

func equal(v any, valStr string) bool {
	switch valStr {
	case "true":
		return v == true
	case "false":
		return v == false
	case "nil":
		return v == nil
	}
	if fVal, err := strconv.ParseFloat(valStr, 64); err == nil {
		if f, ok := toFloat(v); ok {
			return f == fVal
		}
	}
	if s, ok := v.(string); ok {
		return s == valStr
	}
	return false
}

// toFloat accepts the numeric types YAML and JSON decoders produce.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

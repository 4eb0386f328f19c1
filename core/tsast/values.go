package tsast

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ValueOf converts a Go value into an expression node. Expressions pass
// through. Maps become object literals with keys in sorted order so output is
// deterministic.
func ValueOf(v any) (Expression, error) {
	switch x := v.(type) {
	case nil:
		return NewNull(), nil
	case Expression:
		return x, nil
	case string:
		return NewStringLiteral(x), nil
	case bool:
		return NewBooleanLiteral(x), nil
	case int:
		return NewNumericLiteral(strconv.Itoa(x)), nil
	case int32:
		return NewNumericLiteral(strconv.FormatInt(int64(x), 10)), nil
	case int64:
		return NewNumericLiteral(strconv.FormatInt(x, 10)), nil
	case uint:
		return NewNumericLiteral(strconv.FormatUint(uint64(x), 10)), nil
	case float32:
		return NewNumericLiteral(strconv.FormatFloat(float64(x), 'g', -1, 32)), nil
	case float64:
		return NewNumericLiteral(strconv.FormatFloat(x, 'g', -1, 64)), nil
	case []string:
		elems := make([]Expression, 0, len(x))
		for _, s := range x {
			elems = append(elems, NewStringLiteral(s))
		}
		return NewArrayLiteral(elems), nil
	case []any:
		elems := make([]Expression, 0, len(x))
		for i, e := range x {
			expr, err := ValueOf(e)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			elems = append(elems, expr)
		}
		return NewArrayLiteral(elems), nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		props := make([]*PropertyAssignment, 0, len(keys))
		for _, k := range keys {
			expr, err := ValueOf(x[k])
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", k, err)
			}
			props = append(props, NewPropertyAssignment(k, expr))
		}
		return NewObjectLiteral(props), nil
	case map[string]string:
		m := make(map[string]any, len(x))
		for k, s := range x {
			m[k] = s
		}
		return ValueOf(m)
	default:
		return nil, fmt.Errorf("%w: cannot convert %T to an expression", ErrInvalidNode, v)
	}
}

// MustValueOf is ValueOf for literal inputs known to be convertible.
func MustValueOf(v any) Expression {
	expr, err := ValueOf(v)
	if err != nil {
		panic(err)
	}
	return expr
}

// GoValue converts a literal expression into plain Go data: string, float64,
// bool, nil, []any or map[string]any. Identifiers and raw expressions come
// back as their source text. The second result is false for call
// expressions.
func GoValue(e Expression) (any, bool) {
	switch x := e.(type) {
	case nil:
		return nil, true
	case *NullLiteral:
		return nil, true
	case *StringLiteral:
		return x.Value, true
	case *BooleanLiteral:
		return x.Value, true
	case *NumericLiteral:
		f, err := strconv.ParseFloat(strings.ReplaceAll(x.Text, "_", ""), 64)
		if err != nil {
			return x.Text, true
		}
		return f, true
	case *Identifier:
		if x.Name == "undefined" {
			return nil, true
		}
		return x.Name, true
	case *RawExpression:
		return x.Text, true
	case *ArrayLiteral:
		out := make([]any, 0, len(x.Elements))
		for _, el := range x.Elements {
			v, ok := GoValue(el)
			if !ok {
				return nil, false
			}
			out = append(out, v)
		}
		return out, true
	case *ObjectLiteral:
		out := make(map[string]any, len(x.Properties))
		for _, p := range x.Properties {
			if p.Shorthand {
				out[p.Name] = p.Name
				continue
			}
			v, ok := GoValue(p.Initializer)
			if !ok {
				return nil, false
			}
			out[p.Name] = v
		}
		return out, true
	default:
		return nil, false
	}
}

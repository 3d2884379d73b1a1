package mathexpr

import (
	"fmt"
	"math"
)

type function = func(params ...any) (any, error)

var whitelist = map[string]function{
	"sqrt":  unary("sqrt", math.Sqrt),
	"sin":   unary("sin", math.Sin),
	"cos":   unary("cos", math.Cos),
	"tan":   unary("tan", math.Tan),
	"exp":   unary("exp", math.Exp),
	"abs":   unary("abs", math.Abs),
	"ceil":  unary("ceil", math.Ceil),
	"floor": unary("floor", math.Floor),
	"log":   logarithm,
	"pow":   power,
	"round": round,
}

func unary(name string, fn func(float64) float64) function {
	return func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("%s() takes exactly one argument (%d given)", name, len(params))
		}
		x, err := toFloat(name, params[0])
		if err != nil {
			return nil, err
		}
		if name == "sqrt" && x < 0 {
			return nil, fmt.Errorf("math domain error")
		}
		return fn(x), nil
	}
}

func logarithm(params ...any) (any, error) {
	if len(params) < 1 || len(params) > 2 {
		return nil, fmt.Errorf("log() takes one or two arguments (%d given)", len(params))
	}
	x, err := toFloat("log", params[0])
	if err != nil {
		return nil, err
	}
	if x <= 0 {
		return nil, fmt.Errorf("math domain error")
	}
	if len(params) == 1 {
		return math.Log(x), nil
	}
	base, err := toFloat("log", params[1])
	if err != nil {
		return nil, err
	}
	if base <= 0 || base == 1 {
		return nil, fmt.Errorf("math domain error")
	}
	return math.Log(x) / math.Log(base), nil
}

func power(params ...any) (any, error) {
	if len(params) != 2 {
		return nil, fmt.Errorf("pow() takes exactly two arguments (%d given)", len(params))
	}
	x, err := toFloat("pow", params[0])
	if err != nil {
		return nil, err
	}
	y, err := toFloat("pow", params[1])
	if err != nil {
		return nil, err
	}
	return math.Pow(x, y), nil
}

// round rounds half to even, with an optional number of decimal places.
func round(params ...any) (any, error) {
	if len(params) < 1 || len(params) > 2 {
		return nil, fmt.Errorf("round() takes one or two arguments (%d given)", len(params))
	}
	x, err := toFloat("round", params[0])
	if err != nil {
		return nil, err
	}
	if len(params) == 1 {
		return int(math.RoundToEven(x)), nil
	}
	digits, err := toFloat("round", params[1])
	if err != nil {
		return nil, err
	}
	scale := math.Pow(10, math.Trunc(digits))
	return math.RoundToEven(x*scale) / scale, nil
}

func toFloat(name string, v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("%s() argument must be a number, not %T", name, v)
	}
}

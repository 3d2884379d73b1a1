// Package mathexpr turns spoken arithmetic into a value.
//
// The expression is compiled with expr-lang/expr against an empty environment
// with every builtin disabled; only the functions registered in whitelist can
// be called, so identifiers such as "os" or "import" fail at compile time.
package mathexpr

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

var (
	ErrEmptyExpression = errors.New("there is no expression to evaluate")
	ErrDivisionByZero  = errors.New("division by zero")
	ErrNotANumber      = errors.New("result is not a number")
	ErrOutOfRange      = errors.New("the result is too large to represent")
)

var promptWords = []string{"calculate", "solve", "what is", "how much is", "math", "evaluate"}

type replacement struct {
	pattern *regexp.Regexp
	symbol  string
}

// Multi-word phrases come first so their single-word parts ("root", "by")
// are never replaced on their own.
var replacements = compileReplacements([][2]string{
	{"to the power of", "**"},
	{"square root of", "sqrt"},
	{"percent of", "* 0.01 *"},
	{"multiplied by", "*"},
	{"divided by", "/"},
	{"plus", "+"},
	{"minus", "-"},
	{"times", "*"},
	{"x", "*"},
	{"over", "/"},
	{"squared", "**2"},
	{"cubed", "**3"},
	{"root", "sqrt"},
	{"pi", strconv.FormatFloat(math.Pi, 'f', -1, 64)},
	{"modulo", "%"},
	{"mod", "%"},
})

var (
	implicitTimes = regexp.MustCompile(`(\d)\s*x\s*(\d)`)
	bareCall      = regexp.MustCompile(`\b(sqrt|sin|cos|tan|log|exp|abs|round|ceil|floor)\s+(-?\d+(?:\.\d+)?)`)
)

func compileReplacements(pairs [][2]string) []replacement {
	out := make([]replacement, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, replacement{
			pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(p[0]) + `\b`),
			symbol:  p[1],
		})
	}
	return out
}

// Evaluate computes the arithmetic in text and phrases the result for the
// user. It never returns an error: failures are reported in the sentence.
func Evaluate(text string) string {
	value, err := Compute(text)
	if err != nil {
		return fmt.Sprintf("I couldn't calculate that. %s", firstLine(err.Error()))
	}
	return fmt.Sprintf("The answer is %s.", value)
}

// Compute normalises text into an expression, evaluates it and returns the
// display form of the result.
func Compute(text string) (string, error) {
	code := Normalize(text)
	if code == "" {
		return "", ErrEmptyExpression
	}

	display, err := compute(code)
	if err != nil && !errors.Is(err, ErrEmptyExpression) && divisionByZero(code) {
		return "", ErrDivisionByZero
	}
	return display, err
}

func compute(code string) (string, error) {
	program, err := expr.Compile(code, options()...)
	if err != nil {
		return "", err
	}
	return run(program)
}

// zeroDivisor records whether any "/" or "%" has a right operand that
// evaluates to zero.
type zeroDivisor struct {
	found bool
}

func (z *zeroDivisor) Visit(node *ast.Node) {
	b, ok := (*node).(*ast.BinaryNode)
	if z.found || !ok || (b.Operator != "/" && b.Operator != "%") {
		return
	}
	program, err := expr.Compile(b.Right.String(), options()...)
	if err != nil {
		return
	}
	out, err := expr.Run(program, map[string]any{})
	if err != nil {
		return
	}
	switch v := out.(type) {
	case int:
		z.found = v == 0
	case float64:
		z.found = v == 0
	}
}

func divisionByZero(code string) bool {
	tree, err := parser.Parse(code)
	if err != nil {
		return false
	}
	z := &zeroDivisor{}
	ast.Walk(&tree.Node, z)
	return z.found
}

func run(program *vm.Program) (display string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	out, err := expr.Run(program, map[string]any{})
	if err != nil {
		return "", err
	}
	return format(out)
}

// Normalize rewrites natural-language arithmetic into expr syntax.
func Normalize(text string) string {
	code := strings.ToLower(strings.TrimSpace(text))
	for _, p := range promptWords {
		if strings.HasPrefix(code, p) {
			code = strings.TrimSpace(strings.TrimPrefix(code, p))
		}
	}
	code = strings.TrimRight(code, "?!. ")

	code = implicitTimes.ReplaceAllString(code, "$1 * $2")
	for _, r := range replacements {
		code = r.pattern.ReplaceAllString(code, r.symbol)
	}
	code = bareCall.ReplaceAllString(code, "$1($2)")
	return strings.Join(strings.Fields(code), " ")
}

func options() []expr.Option {
	opts := []expr.Option{
		expr.Env(map[string]any{}),
		expr.DisableAllBuiltins(),
	}
	for name, fn := range whitelist {
		opts = append(opts, expr.Function(name, fn))
	}
	return opts
}

func format(out any) (string, error) {
	switch v := out.(type) {
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		if math.IsInf(v, 0) {
			return "", ErrOutOfRange
		}
		if math.IsNaN(v) {
			return "", ErrNotANumber
		}
		rounded := math.Round(v*1e4) / 1e4
		// drop negative zero
		if rounded == 0 {
			rounded = 0
		}
		return strconv.FormatFloat(rounded, 'f', -1, 64), nil
	default:
		return "", ErrNotANumber
	}
}

func firstLine(msg string) string {
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}
	return strings.TrimSpace(msg)
}

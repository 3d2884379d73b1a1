package mathexpr

import (
	"errors"
	"strings"
	"testing"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"what is 5 plus 7", "The answer is 12."},
		{"square root of 9", "The answer is 3."},
		{"calculate 10 divided by 4", "The answer is 2.5."},
		{"solve 3 multiplied by 4 minus 2", "The answer is 10."},
		{"how much is 2 to the power of 10", "The answer is 1024."},
		{"what is 7 squared?", "The answer is 49."},
		{"10 mod 3", "The answer is 1."},
		{"50 percent of 80", "The answer is 40."},
		{"6 x 7", "The answer is 42."},
		{"1 over 3", "The answer is 0.3333."},
		{"pi times 2", "The answer is 6.2832."},
		{"evaluate round(2.5)", "The answer is 2."},
		{"floor 7.9", "The answer is 7."},
		{"pow(2, 3)", "The answer is 8."},
	}

	for _, tc := range cases {
		if got := Evaluate(tc.input); got != tc.want {
			t.Errorf("Evaluate(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestEvaluateRejectsUnknownIdentifiers(t *testing.T) {
	for _, input := range []string{"import os", "os", "len(\"abc\")", "calculate env"} {
		got := Evaluate(input)
		if !strings.HasPrefix(got, "I couldn't calculate that.") {
			t.Fatalf("Evaluate(%q) = %q, expected apology", input, got)
		}
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	got := Evaluate("calculate 1 divided by 0")
	if !strings.HasPrefix(got, "I couldn't calculate that.") || !strings.Contains(got, "division by zero") {
		t.Fatalf("unexpected response for division by zero: %q", got)
	}
}

func TestComputeDivisionByZeroForms(t *testing.T) {
	for _, input := range []string{"1 / 0", "-1 over 0", "0 divided by 0", "5 mod 0", "1 / (2 - 2)", "2 ** 3 / (1 - 1)"} {
		if _, err := Compute(input); !errors.Is(err, ErrDivisionByZero) {
			t.Errorf("Compute(%q) error = %v, want %v", input, err, ErrDivisionByZero)
		}
	}
}

func TestComputeOverflowIsNotDivisionByZero(t *testing.T) {
	for _, input := range []string{"2 ** 5000", "10 to the power of 400 divided by 2"} {
		_, err := Compute(input)
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Compute(%q) error = %v, want %v", input, err, ErrOutOfRange)
		}
	}

	got := Evaluate("calculate 2 ** 5000")
	if strings.Contains(got, "division by zero") || !strings.Contains(got, ErrOutOfRange.Error()) {
		t.Fatalf("unexpected response for overflow: %q", got)
	}
}

func TestEvaluateEmpty(t *testing.T) {
	got := Evaluate("calculate")
	if !strings.Contains(got, ErrEmptyExpression.Error()) {
		t.Fatalf("expected empty expression apology, got %q", got)
	}
}

func TestNormalizeReplacesPhrasesBeforeWords(t *testing.T) {
	got := Normalize("square root of 16 plus 2")
	if got != "sqrt(16) + 2" {
		t.Fatalf("Normalize = %q", got)
	}
}

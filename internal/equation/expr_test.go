package equation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval(t *testing.T) {
	bindings := map[string]float64{
		"GENERATION_GWh": 100,
		"CAPACITY_MW":    50,
		"CAPEX":          1200,
		"rate":           0.08,
	}

	cases := []struct {
		name    string
		formula string
		want    float64
	}{
		{"literal", "42", 42},
		{"arithmetic precedence", "2 + 3 * 4", 14},
		{"parens", "(2 + 3) * 4", 20},
		{"division", "GENERATION_GWh / CAPACITY_MW", 2},
		{"unary minus", "-CAPACITY_MW + 60", 10},
		{"caret power", "2 ^ 10", 1024},
		{"python power", "2 ** 10", 1024},
		{"power right assoc", "2 ^ 3 ^ 2", 512},
		{"negative exponent base", "-2 ^ 2", -4},
		{"capacity factor core", "GENERATION_GWh * 1000 / (CAPACITY_MW * 8760)", 100 * 1000 / (50 * 8760.0)},
		{"sum scalar passthrough", "sum(CAPACITY_MW)", 50},
		{"SUM multiple", "SUM(1, 2, 3)", 6},
		{"min max", "min(3, 1, 2) + max(3, 1, 2)", 4},
		{"avg", "avg(2, 4, 6)", 4},
		{"mean scalar", "mean(CAPACITY_MW)", 50},
		{"abs", "abs(-7.5)", 7.5},
		{"pow fn", "pow(3, 2)", 9},
		{"sqrt", "sqrt(16)", 4},
		{"log10", "log10(1000)", 3},
		{"scientific notation", "1.5e3 + 2E-1", 1500.2},
		{"nested calls", "max(sum(1, 2), min(10, 4))", 4},
		{"crf inside formula", "CAPEX * CRF(rate, 20)", 1200 * crf(0.08, 20)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Eval(tc.formula, bindings)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestEvalErrors(t *testing.T) {
	cases := []struct {
		name    string
		formula string
	}{
		{"unbound variable", "NOT_BOUND + 1"},
		{"unknown function", "frobnicate(1)"},
		{"dangling operator", "1 +"},
		{"unbalanced parens", "(1 + 2"},
		{"bad character", "1 $ 2"},
		{"empty", ""},
		{"abs arity", "abs(1, 2)"},
		{"comprehension idiom", "sum(UNIT_i for i=1 to N)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Eval(tc.formula, map[string]float64{"x": 1})
			assert.Error(t, err)
		})
	}
}

func TestCRFZeroRate(t *testing.T) {
	for _, n := range []float64{1, 5, 20, 40} {
		assert.InDelta(t, 1/n, crf(0, n), 1e-12)
	}
	// Non-zero rate sanity: CRF(8%, 20y) is a known value.
	assert.InDelta(t, 0.101852, crf(0.08, 20), 1e-6)
}

func TestEvalRejectsNonFinite(t *testing.T) {
	for _, formula := range []string{"sqrt(-1)", "1 / 0", "-1 / 0", "log(0)"} {
		_, err := Eval(formula, nil)
		assert.Error(t, err, formula)
	}
}

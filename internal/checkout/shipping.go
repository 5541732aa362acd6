package checkout

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// DefaultShippingRule charges 15 for express delivery and for standard orders
// up to 100; larger standard orders ship free.
const DefaultShippingRule = `method == "express" ? 15 : (subtotal > 100 ? 0 : 15)`

// Shipping methods understood by the default rule.
const (
	MethodStandard = "standard"
	MethodExpress  = "express"
)

// ShippingRule computes the shipping charge for an order. The rule is an
// expression over subtotal (int), items (int, total quantity) and method
// (string) that evaluates to a non-negative number.
type ShippingRule struct {
	source  string
	program *vm.Program
}

// CompileShippingRule compiles source once for repeated evaluation.
func CompileShippingRule(source string) (*ShippingRule, error) {
	program, err := expr.Compile(source,
		expr.Env(shippingEnv(0, 0, "")),
		expr.AsFloat64(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile shipping rule: %w", err)
	}
	return &ShippingRule{source: source, program: program}, nil
}

// MustCompileShippingRule is CompileShippingRule for rules known at build time.
func MustCompileShippingRule(source string) *ShippingRule {
	r, err := CompileShippingRule(source)
	if err != nil {
		panic(err)
	}
	return r
}

func shippingEnv(subtotal int64, items int, method string) map[string]any {
	return map[string]any{
		"subtotal": subtotal,
		"items":    items,
		"method":   method,
	}
}

// Charge evaluates the rule. Fractional results are rounded to whole units.
func (r *ShippingRule) Charge(subtotal int64, items int, method string) (int64, error) {
	out, err := expr.Run(r.program, shippingEnv(subtotal, items, method))
	if err != nil {
		return 0, fmt.Errorf("evaluate shipping rule: %w", err)
	}
	amount, ok := out.(float64)
	if !ok || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("shipping rule returned %v", out)
	}
	if amount < 0 {
		return 0, fmt.Errorf("shipping rule returned negative charge %v", amount)
	}
	return int64(math.Round(amount)), nil
}

// String returns the rule source.
func (r *ShippingRule) String() string { return r.source }

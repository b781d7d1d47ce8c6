package core

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Compiled programs keyed by condition text. Every program is compiled
// against the SystemContext type, so they are interchangeable across runs.
var programCache sync.Map

// EvaluateCondition compiles and evaluates a `when` expression against the
// SystemContext. An empty condition is always true.
func EvaluateCondition(condition string, ctx *SystemContext) (bool, error) {
	if condition == "" {
		return true, nil
	}

	program, err := compileCondition(condition)
	if err != nil {
		return false, err
	}

	output, err := expr.Run(program, ctx)
	if err != nil {
		return false, fmt.Errorf("evaluating condition %q: %w", condition, err)
	}

	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q must return a boolean, got %T", condition, output)
	}
	return result, nil
}

func compileCondition(condition string) (*vm.Program, error) {
	if cached, ok := programCache.Load(condition); ok {
		return cached.(*vm.Program), nil
	}

	// Fields like OS and Hostname are accessed directly on the context.
	program, err := expr.Compile(condition, expr.Env(&SystemContext{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid condition %q: %w", condition, err)
	}

	programCache.Store(condition, program)
	return program, nil
}

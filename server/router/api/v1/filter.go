package v1

import (
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/ast"
	"github.com/pkg/errors"

	"github.com/covey-ai/covey/orchestrator"
)

// taskFilter holds the comparisons extracted from a task list filter
// expression. Nil fields match everything.
type taskFilter struct {
	status  *string
	agentID *string
}

func (f *taskFilter) matches(task *orchestrator.Task) bool {
	if f.status != nil && string(task.Status()) != *f.status {
		return false
	}
	if f.agentID != nil && task.AgentID != *f.agentID {
		return false
	}
	return true
}

// parseTaskFilter parses the task list filter string using CEL.
// Supported filter format: "status == 'completed' && agent_id == 'abc'"
func parseTaskFilter(filterStr string) (*taskFilter, error) {
	filterStr = strings.TrimSpace(filterStr)
	filter := &taskFilter{}
	if filterStr == "" {
		return filter, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("status", cel.StringType),
		cel.Variable("agent_id", cel.StringType),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create CEL environment")
	}

	celAST, issues := env.Compile(filterStr)
	if issues != nil && issues.Err() != nil {
		return nil, errors.Wrapf(issues.Err(), "invalid filter expression: %s", filterStr)
	}

	if err := collectTaskFilter(celAST.NativeRep().Expr(), filter); err != nil {
		return nil, err
	}
	return filter, nil
}

// collectTaskFilter walks a CEL AST expression and records the field
// comparisons it finds on the filter.
func collectTaskFilter(expr ast.Expr, filter *taskFilter) error {
	if expr == nil {
		return errors.New("empty expression")
	}
	if expr.Kind() != ast.CallKind {
		return errors.New("filter must be a comparison expression (e.g., status == 'completed')")
	}

	call := expr.AsCall()
	switch call.FunctionName() {
	case "_&&_":
		for _, arg := range call.Args() {
			if err := collectTaskFilter(arg, filter); err != nil {
				return err
			}
		}
		return nil
	case "_==_":
		args := call.Args()
		if len(args) != 2 {
			return errors.New("invalid comparison expression")
		}
		// Accept the field on either side of the comparison.
		if field, value, ok := comparisonOperands(args[0], args[1]); ok {
			filter.set(field, value)
			return nil
		}
		if field, value, ok := comparisonOperands(args[1], args[0]); ok {
			filter.set(field, value)
			return nil
		}
		return errors.New("filter must compare 'status' or 'agent_id' with a string constant")
	default:
		return errors.Errorf("unsupported operator: %s (only '==' and '&&' are supported)", call.FunctionName())
	}
}

// comparisonOperands returns the field name and value if left is a known
// identifier and right is a non-empty string constant.
func comparisonOperands(left, right ast.Expr) (string, string, bool) {
	if left.Kind() != ast.IdentKind {
		return "", "", false
	}
	ident := left.AsIdent()
	if ident != "status" && ident != "agent_id" {
		return "", "", false
	}

	if right.Kind() != ast.LiteralKind {
		return "", "", false
	}
	str, ok := right.AsLiteral().Value().(string)
	if !ok || str == "" {
		return "", "", false
	}

	return ident, str, true
}

func (f *taskFilter) set(field, value string) {
	switch field {
	case "status":
		f.status = &value
	case "agent_id":
		f.agentID = &value
	}
}

package internal

import (
	"sort"
	"testing"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/jamesprial/go-aosmith-api-wrapper/pkg/types"
)

// parseOperation parses op.Query and returns its single operation definition.
func parseOperation(t *testing.T, op Operation) *ast.OperationDefinition {
	t.Helper()
	doc, err := parser.ParseQuery(&ast.Source{Name: op.Name, Input: op.Query})
	if err != nil {
		t.Fatalf("%s: document does not parse: %v", op.Name, err)
	}
	if len(doc.Operations) != 1 {
		t.Fatalf("%s: expected 1 operation, got %d", op.Name, len(doc.Operations))
	}
	return doc.Operations[0]
}

func rootFields(def *ast.OperationDefinition) []string {
	var names []string
	for _, sel := range def.SelectionSet {
		if f, ok := sel.(*ast.Field); ok {
			names = append(names, f.Name)
		}
	}
	return names
}

func TestOperations_DocumentsParse(t *testing.T) {
	tests := []struct {
		op        Operation
		kind      ast.Operation
		rootField string
	}{
		{op: LoginOperation("x"), kind: ast.Query, rootField: "login"},
		{op: StatusOperation(), kind: ast.Query, rootField: "status"},
		{op: DevicesOperation(), kind: ast.Query, rootField: "devices"},
		{op: UpdateSetpointOperation("J1", 120), kind: ast.Mutation, rootField: "updateSetpoint"},
		{op: UpdateModeOperation("J1", "HYBRID", nil), kind: ast.Mutation, rootField: "updateMode"},
		{op: EnergyUseOperation("DSN1", "NEXT_GEN_HEAT_PUMP"), kind: ast.Query, rootField: "getEnergyUseData"},
	}

	for _, tt := range tests {
		t.Run(tt.op.Name, func(t *testing.T) {
			def := parseOperation(t, tt.op)
			if def.Operation != tt.kind {
				t.Errorf("expected %s, got %s", tt.kind, def.Operation)
			}
			fields := rootFields(def)
			if len(fields) != 1 || fields[0] != tt.rootField {
				t.Errorf("expected root field %q, got %v", tt.rootField, fields)
			}
		})
	}
}

// Every variable sent must be declared by the document.
func TestOperations_VariablesDeclared(t *testing.T) {
	ops := []Operation{
		LoginOperation("x"),
		StatusOperation(),
		DevicesOperation(),
		UpdateSetpointOperation("J1", 120),
		UpdateModeOperation("J1", "VACATION", types.Days(7)),
		EnergyUseOperation("DSN1", "NEXT_GEN_HEAT_PUMP"),
	}

	for _, op := range ops {
		t.Run(op.Name, func(t *testing.T) {
			def := parseOperation(t, op)
			declared := map[string]bool{}
			for _, v := range def.VariableDefinitions {
				declared[v.Variable] = true
			}
			var missing []string
			for name := range op.Variables {
				if !declared[name] {
					missing = append(missing, name)
				}
			}
			sort.Strings(missing)
			if len(missing) > 0 {
				t.Errorf("variables sent but not declared: %v", missing)
			}
		})
	}
}

func TestDevicesOperation_SelectsHeatPumpFragment(t *testing.T) {
	def := parseOperation(t, DevicesOperation())
	devices := def.SelectionSet[0].(*ast.Field)

	var data *ast.Field
	for _, sel := range devices.SelectionSet {
		if f, ok := sel.(*ast.Field); ok && f.Name == "data" {
			data = f
		}
	}
	if data == nil {
		t.Fatal("devices query does not select data")
	}

	var typename bool
	var fragment *ast.InlineFragment
	for _, sel := range data.SelectionSet {
		switch s := sel.(type) {
		case *ast.Field:
			if s.Name == "__typename" {
				typename = true
			}
		case *ast.InlineFragment:
			fragment = s
		}
	}
	if !typename {
		t.Error("data must select __typename")
	}
	if fragment == nil || fragment.TypeCondition != types.HeatPumpTypename {
		t.Fatalf("expected inline fragment on %s", types.HeatPumpTypename)
	}
}

func TestUpdateModeOperation_Days(t *testing.T) {
	op := UpdateModeOperation("J1", "HYBRID", nil)
	input := op.Variables["mode"].(map[string]any)
	if _, ok := input["days"]; ok {
		t.Error("days must be omitted when nil")
	}
	if input["mode"] != "HYBRID" {
		t.Errorf("unexpected mode %v", input["mode"])
	}

	op = UpdateModeOperation("J1", "VACATION", types.Days(50))
	input = op.Variables["mode"].(map[string]any)
	if input["days"] != 50 {
		t.Errorf("expected days 50, got %v", input["days"])
	}
	if op.Variables["junctionId"] != "J1" {
		t.Errorf("unexpected junctionId %v", op.Variables["junctionId"])
	}
}

func TestLoginOperation_Flagged(t *testing.T) {
	if !LoginOperation("x").login {
		t.Error("login operation must be flagged")
	}
	if DevicesOperation().login {
		t.Error("devices operation must not be flagged as login")
	}
}

package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	appexec "toolbridge/internal/exec"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistryWithRunner(zerolog.Nop(), appexec.NewMockRunner())
}

func TestExecuteUnknownTool(t *testing.T) {
	registry := newTestRegistry(t)

	result := registry.Execute(context.Background(), "no_such_tool", map[string]interface{}{})
	if result.Success {
		t.Fatal("expected failure for unknown tool")
	}
	if result.Result != "" {
		t.Errorf("expected empty result, got %q", result.Result)
	}
	if !strings.Contains(result.Error, "unknown tool") {
		t.Errorf("expected 'unknown tool' in error, got %q", result.Error)
	}
}

func TestDescriptorsMatchDispatchableTools(t *testing.T) {
	registry := newTestRegistry(t)

	descs := registry.Descriptors()
	if len(descs) == 0 {
		t.Fatal("expected registered tools")
	}

	seen := make(map[string]bool, len(descs))
	for _, desc := range descs {
		if seen[desc.Name] {
			t.Errorf("descriptor %q listed twice", desc.Name)
		}
		seen[desc.Name] = true

		// every descriptor must be dispatchable
		if !registry.Has(desc.Name) {
			t.Errorf("descriptor %q has no handler", desc.Name)
		}
	}

	// and every dispatchable name must be described
	for _, name := range registry.Names() {
		if !seen[name] {
			t.Errorf("handler %q has no descriptor", name)
		}
	}
}

func TestExecuteHelloWorld(t *testing.T) {
	registry := newTestRegistry(t)

	result := registry.Execute(context.Background(), "hello_world", map[string]interface{}{
		"name": "Ada",
	})
	if !result.Success {
		t.Fatalf("expected success, got error: %s", result.Error)
	}
	if !strings.Contains(result.Result, "Ada") {
		t.Errorf("expected greeting to mention Ada, got %q", result.Result)
	}
}

func TestExecuteHelloWorldRequiresName(t *testing.T) {
	registry := newTestRegistry(t)

	result := registry.Execute(context.Background(), "hello_world", nil)
	if result.Success {
		t.Fatal("expected validation failure without 'name'")
	}
	if !strings.Contains(result.Error, "name") {
		t.Errorf("expected error to mention 'name', got %q", result.Error)
	}
}

func TestExecuteGetCurrentTime(t *testing.T) {
	registry := newTestRegistry(t)

	result := registry.Execute(context.Background(), "get_current_time", nil)
	if !result.Success {
		t.Fatalf("expected success, got error: %s", result.Error)
	}
	if !strings.HasPrefix(result.Result, "Current time: ") {
		t.Errorf("unexpected output: %q", result.Result)
	}
}

func TestExecuteCalculate(t *testing.T) {
	registry := newTestRegistry(t)

	result := registry.Execute(context.Background(), "calculate", map[string]interface{}{
		"expression": "2+3*4",
	})
	if !result.Success {
		t.Fatalf("expected success, got error: %s", result.Error)
	}
	if !strings.Contains(result.Result, "= 14") {
		t.Errorf("expected result 14, got %q", result.Result)
	}
}

func TestExecuteCalculateRejectsForbiddenInput(t *testing.T) {
	registry := newTestRegistry(t)

	result := registry.Execute(context.Background(), "calculate", map[string]interface{}{
		"expression": "__import__('os')",
	})
	if result.Success {
		t.Fatal("expected failure for forbidden characters")
	}
	if !strings.Contains(result.Error, "not allowed") {
		t.Errorf("unexpected error: %q", result.Error)
	}
}

func TestExecuteCalculateDivisionByZero(t *testing.T) {
	registry := newTestRegistry(t)

	result := registry.Execute(context.Background(), "calculate", map[string]interface{}{
		"expression": "1/0",
	})
	if result.Success {
		t.Fatal("expected failure for division by zero")
	}
	if !strings.Contains(result.Error, "division by zero") {
		t.Errorf("unexpected error: %q", result.Error)
	}
}

func TestExecuteRecoversFromPanickingHandler(t *testing.T) {
	registry := newTestRegistry(t)
	err := registry.RegisterTool(&ToolDefinition{
		NameValue:        "exploding",
		DescriptionValue: "always panics",
		InputSchemaValue: map[string]interface{}{"type": "object"},
		ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
			panic("boom")
		},
	})
	if err != nil {
		t.Fatalf("failed to register tool: %v", err)
	}

	result := registry.Execute(context.Background(), "exploding", nil)
	if result.Success {
		t.Fatal("expected failure from panicking handler")
	}
	if !strings.Contains(result.Error, "internal error") {
		t.Errorf("unexpected error: %q", result.Error)
	}
}

func TestRegisterToolRejectsDuplicates(t *testing.T) {
	registry := newTestRegistry(t)
	err := registry.RegisterTool(&ToolDefinition{
		NameValue:        "hello_world",
		DescriptionValue: "duplicate",
	})
	if err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestRequireOneOfArg(t *testing.T) {
	rule := RequireOneOfArg("level", "basic", "detailed", "all")

	if err := rule(map[string]interface{}{}); err != nil {
		t.Errorf("missing optional arg should pass, got: %v", err)
	}
	if err := rule(map[string]interface{}{"level": "detailed"}); err != nil {
		t.Errorf("allowed value should pass, got: %v", err)
	}
	if err := rule(map[string]interface{}{"level": "verbose"}); err == nil {
		t.Error("disallowed value should fail")
	}
	if err := rule(map[string]interface{}{"level": 3}); err == nil {
		t.Error("non-string value should fail")
	}
}

func TestIntArg(t *testing.T) {
	args := map[string]interface{}{
		"from_json": float64(42),
		"native":    7,
		"bad":       "nope",
	}

	if got, ok := intArg(args, "from_json", 0); !ok || got != 42 {
		t.Errorf("intArg(from_json) = %d, %v", got, ok)
	}
	if got, ok := intArg(args, "native", 0); !ok || got != 7 {
		t.Errorf("intArg(native) = %d, %v", got, ok)
	}
	if got, ok := intArg(args, "missing", 10); ok || got != 10 {
		t.Errorf("intArg(missing) = %d, %v", got, ok)
	}
	if _, ok := intArg(args, "bad", 0); ok {
		t.Error("intArg(bad) should not report a value")
	}
}

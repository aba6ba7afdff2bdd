// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package tools

import (
	"context"
	"fmt"
	"time"

	"toolbridge/internal/eval"
)

// registerBuiltInTools registers all built-in tools to the registry.
func registerBuiltInTools(r *Registry) {
	register := func(tool Tool) {
		if err := r.RegisterTool(tool); err != nil {
			panic(err)
		}
	}

	register(&ToolDefinition{
		NameValue:        "hello_world",
		DescriptionValue: "Return a simple greeting for the given name",
		InputSchemaValue: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the person to greet",
				},
			},
			"required": []string{"name"},
		},
		ExecuteFunc:  helloWorld,
		ValidateFunc: RequireStringArg("name", "missing or invalid 'name' parameter"),
	})

	register(&ToolDefinition{
		NameValue:        "get_current_time",
		DescriptionValue: "Return the current date and time",
		InputSchemaValue: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
			"required":   []string{},
		},
		ExecuteFunc: getCurrentTime,
	})

	register(&ToolDefinition{
		NameValue:        "calculate",
		DescriptionValue: "Evaluate a basic arithmetic expression (e.g. 2+3*4)",
		InputSchemaValue: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"expression": map[string]interface{}{
					"type":        "string",
					"description": "Arithmetic expression to evaluate",
				},
			},
			"required": []string{"expression"},
		},
		ExecuteFunc:  calculate,
		ValidateFunc: RequireStringArg("expression", "missing or invalid 'expression' parameter"),
	})

	register(&ToolDefinition{
		NameValue:        "get_system_info",
		DescriptionValue: "Report host OS, CPU, memory and disk facts",
		InputSchemaValue: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"level": map[string]interface{}{
					"type":        "string",
					"description": "Report verbosity: basic, detailed or all (default: basic)",
					"enum":        []string{"basic", "detailed", "all"},
				},
			},
			"required": []string{},
		},
		ExecuteFunc:  getSystemInfo,
		ValidateFunc: RequireOneOfArg("level", "basic", "detailed", "all"),
	})

	register(&ToolDefinition{
		NameValue:        "list_processes",
		DescriptionValue: "List running processes with CPU, memory and status",
		InputSchemaValue: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"max_count": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of processes to show, 1-100 (default: 10)",
				},
				"sort_by": map[string]interface{}{
					"type":        "string",
					"description": "Sort key (default: cpu)",
					"enum":        []string{"cpu", "memory", "name"},
				},
			},
			"required": []string{},
		},
		ExecuteFunc:  listProcesses,
		ValidateFunc: RequireOneOfArg("sort_by", "cpu", "memory", "name"),
	})

	register(&ToolDefinition{
		NameValue:        "control_process",
		DescriptionValue: "Stop, kill or restart a process by pid; actions by name alone are advisory",
		InputSchemaValue: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"action": map[string]interface{}{
					"type":        "string",
					"description": "Lifecycle action to perform",
					"enum":        []string{"start", "stop", "restart", "kill"},
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Process name",
				},
				"pid": map[string]interface{}{
					"type":        "integer",
					"description": "Process id",
				},
			},
			"required": []string{"action"},
		},
		ExecuteFunc: controlProcess,
		ValidateFunc: ChainValidation(
			RequireStringArg("action", "missing or invalid 'action' parameter"),
			RequireOneOfArg("action", "start", "stop", "restart", "kill"),
		),
	})

	register(&ToolDefinition{
		NameValue:        "control_service",
		DescriptionValue: "Query or change a system service via the host service manager",
		InputSchemaValue: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"action": map[string]interface{}{
					"type":        "string",
					"description": "Service action to perform",
					"enum":        []string{"status", "start", "stop", "restart"},
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Service name",
				},
			},
			"required": []string{"action", "name"},
		},
		ExecuteFunc: r.controlService,
		ValidateFunc: ChainValidation(
			RequireStringArg("action", "missing or invalid 'action' parameter"),
			RequireOneOfArg("action", "status", "start", "stop", "restart"),
			RequireStringArg("name", "missing or invalid 'name' parameter"),
		),
	})
}

// Tool implementations

func helloWorld(ctx context.Context, args map[string]interface{}) (string, error) {
	name := stringArg(args, "name", "World")
	return fmt.Sprintf("Hello, %s! Welcome to the toolbridge server.", name), nil
}

func getCurrentTime(ctx context.Context, args map[string]interface{}) (string, error) {
	return "Current time: " + time.Now().Format("2006-01-02 15:04:05"), nil
}

func calculate(ctx context.Context, args map[string]interface{}) (string, error) {
	expression := stringArg(args, "expression", "")

	// Security boundary: nothing outside the numeric allow-set ever
	// reaches the evaluator.
	if !eval.Validate(expression) {
		return "", fmt.Errorf("expression contains characters that are not allowed")
	}

	value, err := eval.Evaluate(expression)
	if err != nil {
		return "", fmt.Errorf("calculation error: %v", err)
	}
	return fmt.Sprintf("Result: %s = %s", expression, eval.FormatResult(value)), nil
}

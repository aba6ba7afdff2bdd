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

import "context"

// Tool represents a callable tool with validation and execution hooks.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]interface{}
	Execute(ctx context.Context, args map[string]interface{}) (string, error)
	Validate(args map[string]interface{}) error
}

// ExecutorFunc is the function signature for tool implementations.
type ExecutorFunc func(ctx context.Context, args map[string]interface{}) (string, error)

// ToolDefinition provides a default implementation of Tool.
type ToolDefinition struct {
	NameValue        string
	DescriptionValue string
	InputSchemaValue map[string]interface{}
	ExecuteFunc      ExecutorFunc
	ValidateFunc     ValidationRule
}

func (t *ToolDefinition) Name() string {
	return t.NameValue
}

func (t *ToolDefinition) Description() string {
	return t.DescriptionValue
}

func (t *ToolDefinition) InputSchema() map[string]interface{} {
	return t.InputSchemaValue
}

func (t *ToolDefinition) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	if t.ExecuteFunc == nil {
		return "", nil
	}
	return t.ExecuteFunc(ctx, args)
}

func (t *ToolDefinition) Validate(args map[string]interface{}) error {
	if t.ValidateFunc == nil {
		return nil
	}
	return t.ValidateFunc(args)
}

// Descriptor is the wire representation of a tool, as served by both
// transports. Immutable once the registry is built.
type Descriptor struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Result is the uniform envelope every tool call returns. Either Success
// is true and Result carries the human-readable output, or Success is
// false and Error explains the failure.
type Result struct {
	Tool    string `json:"tool_name"`
	Success bool   `json:"success"`
	Result  string `json:"result"`
	Error   string `json:"error,omitempty"`
}

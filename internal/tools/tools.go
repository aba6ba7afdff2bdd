package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	apperrors "toolbridge/internal/errors"
	appexec "toolbridge/internal/exec"
)

// Registry holds all available tools with their implementations. It is
// populated once at startup and read-only afterwards; handler lookup is a
// pure function of the tool name.
type Registry struct {
	tools   map[string]Tool
	order   []string
	service *ServiceController
	log     zerolog.Logger
}

// NewRegistry creates a registry with all built-in tools registered.
func NewRegistry(logger zerolog.Logger) *Registry {
	return NewRegistryWithRunner(logger, appexec.NewOSRunner())
}

// NewRegistryWithRunner creates a registry using the provided command
// runner for tools that shell out (for testing).
func NewRegistryWithRunner(logger zerolog.Logger, runner appexec.Runner) *Registry {
	r := &Registry{
		tools:   make(map[string]Tool),
		service: NewServiceController(runner, logger),
		log:     logger,
	}
	registerBuiltInTools(r)
	return r
}

// RegisterTool adds a tool to the registry. Duplicate names are a
// programming error: every descriptor must map to exactly one handler.
func (r *Registry) RegisterTool(tool Tool) error {
	name := tool.Name()
	if name == "" {
		return apperrors.New(apperrors.CodeValidation, "tool has no name")
	}
	if _, exists := r.tools[name]; exists {
		return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("tool %q registered twice", name))
	}
	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// Descriptors returns the tool descriptors in registration order.
func (r *Registry) Descriptors() []Descriptor {
	descs := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		tool := r.tools[name]
		descs = append(descs, Descriptor{
			Name:        tool.Name(),
			Description: tool.Description(),
			InputSchema: tool.InputSchema(),
		})
	}
	return descs
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.order))
	names = append(names, r.order...)
	sort.Strings(names)
	return names
}

// Has reports whether a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// Execute runs the named tool and returns the result envelope. Unknown
// tools, validation failures, handler errors and handler panics all come
// back as failed results; nothing propagates past this boundary.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) *Result {
	r.log.Info().Str("tool", name).Interface("arguments", args).Msg("Executing tool")

	tool, ok := r.tools[name]
	if !ok {
		return failure(name, fmt.Sprintf("unknown tool: %s", name))
	}

	if args == nil {
		args = map[string]interface{}{}
	}
	if err := tool.Validate(args); err != nil {
		return failure(name, err.Error())
	}

	return r.run(ctx, tool, args)
}

// run executes the handler with a panic guard, so an unexpected internal
// fault becomes a failed envelope instead of killing the hosting process.
func (r *Registry) run(ctx context.Context, tool Tool, args map[string]interface{}) (result *Result) {
	name := tool.Name()
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Str("tool", name).Interface("panic", rec).Msg("Tool handler panicked")
			result = failure(name, fmt.Sprintf("internal error in tool %s: %v", name, rec))
		}
	}()

	output, err := tool.Execute(ctx, args)
	if err != nil {
		r.log.Debug().Str("tool", name).Err(err).Msg("Tool returned error")
		return failure(name, err.Error())
	}
	return &Result{Tool: name, Success: true, Result: output}
}

func failure(name, message string) *Result {
	return &Result{Tool: name, Success: false, Error: message}
}

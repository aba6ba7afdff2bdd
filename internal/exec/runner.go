// Package exec provides a testable command execution abstraction for the
// tools that shell out to the host OS. Inject Runner instead of calling
// exec.Command directly.
package exec

import (
	"bytes"
	"context"
	osexec "os/exec"
	"strings"
)

// Runner defines the interface for executing external commands.
type Runner interface {
	// Run executes a command and returns stdout and stderr separately.
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// OSRunner implements Runner using os/exec.
type OSRunner struct {
	// Env overrides environment variables (nil = inherit from parent)
	Env []string
}

// NewOSRunner creates a new OS-based command runner.
func NewOSRunner() *OSRunner {
	return &OSRunner{}
}

// Run executes a command and returns stdout and stderr separately. The
// context carries the deadline; on expiry the process is killed and the
// returned error is the context error.
func (r *OSRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := osexec.CommandContext(ctx, name, args...)
	if r.Env != nil {
		cmd.Env = r.Env
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

// MockRunner implements Runner for testing.
type MockRunner struct {
	// Calls records all command invocations
	Calls []MockCall

	// Responses maps "name arg1 arg2..." to response
	Responses map[string]MockResponse
}

// MockCall records a single command invocation.
type MockCall struct {
	Name string
	Args []string
}

// MockResponse defines the response for a mocked command.
type MockResponse struct {
	Stdout []byte
	Stderr []byte
	Err    error
}

// NewMockRunner creates a new mock runner.
func NewMockRunner() *MockRunner {
	return &MockRunner{
		Responses: make(map[string]MockResponse),
	}
}

// AddResponse sets the response for a full command line.
func (m *MockRunner) AddResponse(commandLine string, resp MockResponse) {
	m.Responses[commandLine] = resp
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	m.Calls = append(m.Calls, MockCall{Name: name, Args: args})
	key := strings.Join(append([]string{name}, args...), " ")
	resp, ok := m.Responses[key]
	if !ok {
		resp = m.Responses[name]
	}
	return resp.Stdout, resp.Stderr, resp.Err
}

package tools

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "toolbridge/internal/errors"
	appexec "toolbridge/internal/exec"
)

// serviceTimeout bounds every native service-manager command.
const serviceTimeout = 10 * time.Second

// serviceAdapter translates a service action into the host's native
// command invocations. Synthesized actions may need several steps; a
// failing step aborts the ones after it.
type serviceAdapter interface {
	steps(action, name string) ([][]string, error)
}

// ServiceController runs service-manager commands through an injectable
// runner with a hard per-command timeout.
type ServiceController struct {
	runner  appexec.Runner
	adapter serviceAdapter
	timeout time.Duration
	log     zerolog.Logger
}

// NewServiceController builds a controller for the host platform. The
// adapter is nil on platforms without a supported service manager; Control
// then fails with an explicit message instead of guessing.
func NewServiceController(runner appexec.Runner, logger zerolog.Logger) *ServiceController {
	return &ServiceController{
		runner:  runner,
		adapter: newHostServiceAdapter(),
		timeout: serviceTimeout,
		log:     logger,
	}
}

// Control performs one service action by delegating to the native service
// manager. Command failures and timeouts surface the captured stderr text.
func (c *ServiceController) Control(ctx context.Context, action, name string) (string, error) {
	if c.adapter == nil {
		return "", fmt.Errorf("service control is not supported on this platform")
	}

	steps, err := c.adapter.steps(action, name)
	if err != nil {
		return "", err
	}

	var outputs []string
	for _, step := range steps {
		commandLine := strings.Join(step, " ")
		c.log.Debug().Str("command", commandLine).Msg("Running service command")

		runCtx, cancel := context.WithTimeout(ctx, c.timeout)
		stdout, stderr, err := c.runner.Run(runCtx, step[0], step[1:]...)
		cancel()

		if err != nil {
			detail := strings.TrimSpace(string(stderr))
			if stderrors.Is(err, context.DeadlineExceeded) {
				return "", apperrors.New(apperrors.CodeExternalCommand,
					fmt.Sprintf("service command %q timed out after %s: %s", commandLine, c.timeout, detail))
			}
			if detail == "" {
				detail = err.Error()
			}
			return "", apperrors.New(apperrors.CodeExternalCommand,
				fmt.Sprintf("service command %q failed: %s", commandLine, detail))
		}
		if out := strings.TrimSpace(string(stdout)); out != "" {
			outputs = append(outputs, out)
		}
	}

	if len(outputs) == 0 {
		return fmt.Sprintf("Service %s: %s completed.", name, action), nil
	}
	return strings.Join(outputs, "\n"), nil
}

// controlService is the tool handler bound in the registry.
func (r *Registry) controlService(ctx context.Context, args map[string]interface{}) (string, error) {
	action := stringArg(args, "action", "")
	name := stringArg(args, "name", "")
	return r.service.Control(ctx, action, name)
}

// systemdAdapter drives POSIX-style service control through systemctl.
// systemctl has a native verb for every supported action.
type systemdAdapter struct{}

func (systemdAdapter) steps(action, name string) ([][]string, error) {
	switch action {
	case "status":
		return [][]string{{"systemctl", "status", name, "--no-pager"}}, nil
	case "start", "stop", "restart":
		return [][]string{{"systemctl", action, name}}, nil
	default:
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("unknown service action %q", action))
	}
}

// windowsServiceAdapter drives Windows service control through sc.exe.
// sc has no atomic restart verb, so restart is synthesized as stop then
// start; if the stop step fails the start step never runs. Nothing
// verifies the service is healthy after the start step, this is a known
// best-effort limitation.
type windowsServiceAdapter struct{}

func (windowsServiceAdapter) steps(action, name string) ([][]string, error) {
	switch action {
	case "status":
		return [][]string{{"sc", "query", name}}, nil
	case "start":
		return [][]string{{"sc", "start", name}}, nil
	case "stop":
		return [][]string{{"sc", "stop", name}}, nil
	case "restart":
		return [][]string{{"sc", "stop", name}, {"sc", "start", name}}, nil
	default:
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("unknown service action %q", action))
	}
}

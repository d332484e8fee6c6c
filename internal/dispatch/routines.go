package dispatch

import (
	"fmt"

	"github.com/devkit-labs/devkit/internal/manifest"
)

// routineSteps expands a named update routine into the commands it runs.
func (d *Dispatcher) routineSteps(desc manifest.ToolDescriptor) ([]step, error) {
	u := desc.Update
	switch u.Routine {
	case manifest.RoutineRustup:
		return []step{
			d.commandStep("rustup", "self", "update"),
			d.commandStep("rustup", "update"),
		}, nil
	case manifest.RoutineUv:
		return []step{d.commandStep("uv", "self", "update")}, nil
	case manifest.RoutineGcloud:
		return []step{d.commandStep("gcloud", "components", "update", "--quiet")}, nil
	case manifest.RoutineNpmGlobal:
		pkg := desc.Name
		if len(u.Args) > 0 {
			pkg = u.Args[0]
		}
		return []step{d.commandStep("npm", "update", "-g", pkg)}, nil
	case manifest.RoutineRemoteScript:
		return []step{d.scriptStep(u.URL)}, nil
	case manifest.RoutineExec:
		return []step{d.commandStep(u.Args[0], u.Args[1:]...)}, nil
	default:
		return nil, fmt.Errorf("%w %q for %s", ErrUnknownRoutine, u.Routine, desc.Name)
	}
}

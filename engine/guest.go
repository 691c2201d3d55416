package engine

import (
	"context"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	modbridge "github.com/questline/modbridge"
	"github.com/questline/modbridge/errors"
	"github.com/questline/modbridge/host"
)

// Guest is a compiled script mod, verified against the bound host surface.
type Guest struct {
	engine   *Engine
	compiled wazero.CompiledModule
}

// LoadGuest compiles a script mod and verifies every function import is
// satisfied by a registered trampoline. Unsatisfied imports fail the load
// with the full missing list, so mod authors see everything at once.
func (e *Engine) LoadGuest(ctx context.Context, wasmBytes []byte) (*Guest, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.Load("compile guest", err)
	}

	var missing []string
	for _, f := range compiled.ImportedFunctions() {
		ns, name, _ := f.Import()
		if e.bound[ns] && e.reg != nil && e.reg.Provides(ns, name) {
			continue
		}
		missing = append(missing, ns+"#"+name)
	}
	if len(missing) > 0 {
		compiled.Close(ctx)
		return nil, errors.NewMissingTrampolinesError(missing)
	}

	Logger().Info("guest loaded",
		zap.Int("imports", len(compiled.ImportedFunctions())),
		zap.Int("exports", len(compiled.ExportedFunctions())))
	return &Guest{engine: e, compiled: compiled}, nil
}

// Exports lists the guest's exported function names.
func (g *Guest) Exports() []string {
	var names []string
	for name := range g.compiled.ExportedFunctions() {
		names = append(names, name)
	}
	return names
}

// Instantiate creates a running instance of the guest.
func (g *Guest) Instantiate(ctx context.Context) (*Instance, error) {
	mod, err := g.engine.runtime.InstantiateModule(ctx, g.compiled,
		wazero.NewModuleConfig().WithStartFunctions())
	if err != nil {
		return nil, errors.Instantiation(err)
	}
	return &Instance{mod: mod}, nil
}

// Close releases the compiled guest.
func (g *Guest) Close(ctx context.Context) error {
	return g.compiled.Close(ctx)
}

// Instance is an instantiated guest.
type Instance struct {
	mod api.Module
}

// Call invokes an exported guest function with raw stack values.
func (i *Instance) Call(ctx context.Context, name string, args ...uint64) ([]uint64, error) {
	fn := i.mod.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseRuntime, "guest export", name)
	}
	results, err := fn.Call(ctx, args...)
	if err != nil {
		// Trampoline panics surface here as traps.
		Logger().Warn("guest call trapped",
			zap.String("export", name),
			zap.String("trap", describeTrap(err)))
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidData, err, "call "+name)
	}
	return results, nil
}

// Memory returns the instance's linear memory, or nil if the guest exports
// none.
func (i *Instance) Memory() modbridge.Memory {
	return host.WrapMemory(i.mod.Memory())
}

// Allocator returns the guest's exported allocator.
func (i *Instance) Allocator(ctx context.Context) (modbridge.Allocator, error) {
	return host.WrapAllocator(ctx, i.mod)
}

// Raw exposes the underlying wazero module for advanced callers.
func (i *Instance) Raw() api.Module { return i.mod }

// Close releases the instance.
func (i *Instance) Close(ctx context.Context) error {
	return i.mod.Close(ctx)
}

// describeTrap trims wazero's stack-trace noise from a trap message, keeping
// the first line for logs.
func describeTrap(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if idx := strings.IndexByte(msg, '\n'); idx > 0 {
		return msg[:idx]
	}
	return msg
}

// Package engine wraps wazero with the binding model of this repository: a
// host process exposing native operations to script-mod guests through
// registered trampolines. It owns runtime construction, host-module
// instantiation from a trampoline registry, and guest loading with import
// verification.
package engine

import (
	"context"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/questline/modbridge/errors"
	"github.com/questline/modbridge/host"
)

// Config holds configuration for engine creation.
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB
	// each). 0 means the wazero default.
	MemoryLimitPages uint32
}

// Engine owns a wazero runtime and the host modules bound into it.
type Engine struct {
	runtime wazero.Runtime
	bound   map[string]bool
	reg     *host.Registry
}

// New creates an engine.
func New(ctx context.Context, cfg *Config) (*Engine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	return &Engine{
		runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		bound:   make(map[string]bool),
	}, nil
}

// BindHost instantiates one wazero host module per namespace in reg. Guests
// loaded afterwards resolve their imports against these modules. Binding
// twice is a registration error.
func (e *Engine) BindHost(ctx context.Context, reg *host.Registry) error {
	if e.reg != nil {
		return errors.InvalidInput(errors.PhaseRegister, "host registry already bound")
	}

	for _, ns := range reg.Namespaces() {
		builder := e.runtime.NewHostModuleBuilder(ns)
		for _, t := range reg.Trampolines(ns) {
			builder.NewFunctionBuilder().
				WithGoModuleFunction(t.Fn, t.Params, t.Results).
				Export(t.Name)
		}
		if _, err := builder.Instantiate(ctx); err != nil {
			return errors.Registration(ns, "", err)
		}
		e.bound[ns] = true
		Logger().Info("host module bound",
			zap.String("namespace", ns),
			zap.Int("trampolines", len(reg.Trampolines(ns))))
	}

	e.reg = reg
	return nil
}

// Close releases the runtime and everything instantiated in it.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

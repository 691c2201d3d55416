package host

import (
	"regexp"
	"slices"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/questline/modbridge/errors"
)

// Host is a group of trampolines under one versioned namespace, e.g.
// "questline:engine/calendar@1.0.0".
type Host interface {
	Namespace() string
	Trampolines() []Trampoline
}

// Trampoline is one guest-importable function bound to a native operation.
// Name follows "<type>$<operation>". Signature declares the boundary types;
// at registration it is parsed, flattened, and checked against the core
// value types Fn actually reads and writes.
type Trampoline struct {
	Name      string
	Signature string
	Params    []api.ValueType
	Results   []api.ValueType
	Fn        api.GoModuleFunc
}

var (
	namespacePattern  = regexp.MustCompile(`^[a-z][a-z0-9-]*:[a-z][a-z0-9-]*/[a-z][a-z0-9-]*@\d+\.\d+\.\d+$`)
	trampolinePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*\$[a-z][a-z0-9-]*$`)
)

// Registry holds registered hosts keyed by namespace. The engine binds its
// contents into one wazero host module per namespace.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string][]Trampoline
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		funcs: make(map[string][]Trampoline),
	}
}

// Register validates and records every trampoline of h. Validation is the
// build-time gate: a malformed name, an unparsable signature, or a flat-type
// mismatch rejects the host before any guest can import it.
func (r *Registry) Register(h Host) error {
	ns := h.Namespace()
	if !namespacePattern.MatchString(ns) {
		return errors.InvalidInput(errors.PhaseRegister, "malformed namespace "+ns)
	}

	trampolines := h.Trampolines()
	for _, t := range trampolines {
		if err := validateTrampoline(t); err != nil {
			return errors.Registration(ns, t.Name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.funcs[ns]; exists {
		return errors.InvalidInput(errors.PhaseRegister, "namespace "+ns+" already registered")
	}
	r.funcs[ns] = trampolines
	r.order = append(r.order, ns)

	Logger().Info("host registered",
		zap.String("namespace", ns),
		zap.Int("trampolines", len(trampolines)))
	return nil
}

// MustRegister is Register that panics on failure, for wiring done at
// program start.
func (r *Registry) MustRegister(h Host) {
	if err := r.Register(h); err != nil {
		panic(err)
	}
}

func validateTrampoline(t Trampoline) error {
	if !trampolinePattern.MatchString(t.Name) {
		return errors.InvalidInput(errors.PhaseRegister, "trampoline name must be <type>$<operation>, got "+t.Name)
	}
	if t.Fn == nil {
		return errors.InvalidInput(errors.PhaseRegister, "trampoline has no implementation")
	}

	params, results, err := parseSignature(t.Signature)
	if err != nil {
		return err
	}
	if !slices.Equal(params, t.Params) {
		return errors.TypeMismatch(errors.PhaseRegister, []string{t.Name, "params"},
			valueTypesString(t.Params), t.Signature)
	}
	if !slices.Equal(results, t.Results) {
		return errors.TypeMismatch(errors.PhaseRegister, []string{t.Name, "results"},
			valueTypesString(t.Results), t.Signature)
	}
	return nil
}

func valueTypesString(vts []api.ValueType) string {
	s := "("
	for i, vt := range vts {
		if i > 0 {
			s += ", "
		}
		s += api.ValueTypeName(vt)
	}
	return s + ")"
}

// Namespaces returns registered namespaces in registration order.
func (r *Registry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Trampolines returns the trampolines of a namespace, or nil if the
// namespace is unknown.
func (r *Registry) Trampolines(ns string) []Trampoline {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.funcs[ns])
}

// Provides reports whether the registry can satisfy an import of fn from ns.
func (r *Registry) Provides(ns, fn string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.funcs[ns] {
		if t.Name == fn {
			return true
		}
	}
	return false
}

// Package wasmenc synthesizes minimal core-wasm guests for tests. It emits
// just enough of the binary format to import trampolines, stage values in
// linear memory, and export entry points; nothing here is part of the
// public surface.
package wasmenc

import (
	"github.com/tetratelabs/wazero/api"
)

// Import is a host function the guest imports.
type Import struct {
	Module  string
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
}

// Func is a locally defined function. Body holds raw instructions without
// the trailing end opcode; Name exports it when non-empty.
type Func struct {
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
	Locals  []api.ValueType
	Body    []byte
}

// ModuleBuilder assembles a core wasm module.
type ModuleBuilder struct {
	imports  []Import
	funcs    []Func
	memPages uint32
	heapBase uint32
	hasHeap  bool
}

func NewModuleBuilder() *ModuleBuilder {
	return &ModuleBuilder{}
}

// Import declares a host function import and returns its function index.
// All imports must be declared before local functions are referenced by
// index.
func (b *ModuleBuilder) Import(module, name string, params, results []api.ValueType) uint32 {
	b.imports = append(b.imports, Import{Module: module, Name: name, Params: params, Results: results})
	return uint32(len(b.imports) - 1)
}

// Func adds a local function and returns its function index.
func (b *ModuleBuilder) Func(f Func) uint32 {
	b.funcs = append(b.funcs, f)
	return uint32(len(b.imports) + len(b.funcs) - 1)
}

// Memory defines a linear memory of the given minimum page count and
// exports it as "memory".
func (b *ModuleBuilder) Memory(pages uint32) {
	b.memPages = pages
}

// BumpAllocator adds a mutable heap-pointer global starting at heapBase and
// an exported "cabi_realloc" implementing an 8-byte-aligned bump allocator.
// Freed memory is never reclaimed; tests do not need it to be.
func (b *ModuleBuilder) BumpAllocator(heapBase uint32) {
	b.hasHeap = true
	b.heapBase = heapBase

	var body []byte
	body = append(body, GlobalGet(0)...)
	body = append(body, I32Const(7)...)
	body = append(body, I32Add...)
	body = append(body, I32Const(-8)...)
	body = append(body, I32And...)
	body = append(body, LocalTee(4)...)
	body = append(body, LocalGet(3)...) // new_size
	body = append(body, I32Add...)
	body = append(body, GlobalSet(0)...)
	body = append(body, LocalGet(4)...)

	b.Func(Func{
		Name:    "cabi_realloc",
		Params:  []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32},
		Results: []api.ValueType{api.ValueTypeI32},
		Locals:  []api.ValueType{api.ValueTypeI32},
		Body:    body,
	})
}

func valTypeByte(t api.ValueType) byte {
	switch t {
	case api.ValueTypeI32:
		return 0x7f
	case api.ValueTypeI64:
		return 0x7e
	case api.ValueTypeF32:
		return 0x7d
	case api.ValueTypeF64:
		return 0x7c
	default:
		panic("unsupported value type")
	}
}

func appendSection(out []byte, id byte, section []byte) []byte {
	out = append(out, id)
	out = append(out, EncodeULEB128(uint32(len(section)))...)
	return append(out, section...)
}

func appendName(section []byte, name string) []byte {
	section = append(section, EncodeULEB128(uint32(len(name)))...)
	return append(section, name...)
}

func appendFuncType(section []byte, params, results []api.ValueType) []byte {
	section = append(section, 0x60)
	section = append(section, EncodeULEB128(uint32(len(params)))...)
	for _, t := range params {
		section = append(section, valTypeByte(t))
	}
	section = append(section, EncodeULEB128(uint32(len(results)))...)
	for _, t := range results {
		section = append(section, valTypeByte(t))
	}
	return section
}

// Build assembles the module bytes.
func (b *ModuleBuilder) Build() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	// Type section: one entry per function, imports first.
	var types []byte
	types = append(types, EncodeULEB128(uint32(len(b.imports)+len(b.funcs)))...)
	for _, imp := range b.imports {
		types = appendFuncType(types, imp.Params, imp.Results)
	}
	for _, f := range b.funcs {
		types = appendFuncType(types, f.Params, f.Results)
	}
	out = appendSection(out, 0x01, types)

	if len(b.imports) > 0 {
		var imports []byte
		imports = append(imports, EncodeULEB128(uint32(len(b.imports)))...)
		for i, imp := range b.imports {
			imports = appendName(imports, imp.Module)
			imports = appendName(imports, imp.Name)
			imports = append(imports, 0x00)
			imports = append(imports, EncodeULEB128(uint32(i))...)
		}
		out = appendSection(out, 0x02, imports)
	}

	if len(b.funcs) > 0 {
		var funcs []byte
		funcs = append(funcs, EncodeULEB128(uint32(len(b.funcs)))...)
		for i := range b.funcs {
			funcs = append(funcs, EncodeULEB128(uint32(len(b.imports)+i))...)
		}
		out = appendSection(out, 0x03, funcs)
	}

	if b.memPages > 0 {
		var mem []byte
		mem = append(mem, 0x01, 0x00)
		mem = append(mem, EncodeULEB128(b.memPages)...)
		out = appendSection(out, 0x05, mem)
	}

	if b.hasHeap {
		var globals []byte
		globals = append(globals, 0x01)       // one global
		globals = append(globals, 0x7f, 0x01) // mutable i32
		globals = append(globals, I32Const(int32(b.heapBase))...)
		globals = append(globals, opEnd)
		out = appendSection(out, 0x06, globals)
	}

	var exports []byte
	exportCount := 0
	for _, f := range b.funcs {
		if f.Name != "" {
			exportCount++
		}
	}
	if b.memPages > 0 {
		exportCount++
	}
	exports = append(exports, EncodeULEB128(uint32(exportCount))...)
	if b.memPages > 0 {
		exports = appendName(exports, "memory")
		exports = append(exports, 0x02, 0x00)
	}
	for i, f := range b.funcs {
		if f.Name == "" {
			continue
		}
		exports = appendName(exports, f.Name)
		exports = append(exports, 0x00)
		exports = append(exports, EncodeULEB128(uint32(len(b.imports)+i))...)
	}
	out = appendSection(out, 0x07, exports)

	if len(b.funcs) > 0 {
		var code []byte
		code = append(code, EncodeULEB128(uint32(len(b.funcs)))...)
		for _, f := range b.funcs {
			var body []byte
			if len(f.Locals) > 0 {
				// one group per local keeps the encoding simple
				body = append(body, EncodeULEB128(uint32(len(f.Locals)))...)
				for _, l := range f.Locals {
					body = append(body, 0x01, valTypeByte(l))
				}
			} else {
				body = append(body, 0x00)
			}
			body = append(body, f.Body...)
			body = append(body, opEnd)
			code = append(code, EncodeULEB128(uint32(len(body)))...)
			code = append(code, body...)
		}
		out = appendSection(out, 0x0a, code)
	}

	return out
}

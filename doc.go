// Package modbridge exposes host-side engine singletons to WebAssembly script
// mods through a fixed, non-throwing binding ABI.
//
// The engine owns a Calendar singleton (game time and date). Script mods run as
// core WebAssembly guests and reach the calendar through imported trampoline
// functions, one per native operation, named <type>$<operation> inside a
// versioned namespace. Opaque native values cross the boundary as integer
// handles backed by host-side ownership tables.
//
// # Architecture Overview
//
// The library is organized into packages with distinct responsibilities:
//
//	modbridge/           Root package with Memory and Allocator interfaces
//	├── abi/             Boundary type mapping, layouts, relocatability gates
//	├── handle/          Unique/shared/weak ownership adapters (handle tables)
//	├── seq/             Homogeneous sequence adapter for trivial records
//	├── calendar/        The native host object: game-time calendar singleton
//	├── host/            Trampoline registry and the calendar host module
//	├── engine/          wazero integration: guests, memory, allocators
//	├── errors/          Structured error types for host-side failures
//	└── cmd/modhost/     CLI for running script mods against the calendar
//
// # Quick Start
//
// Bind the calendar and run a script mod:
//
//	eng, _ := engine.New(ctx, nil)
//	defer eng.Close(ctx)
//
//	reg := host.NewRegistry()
//	ch, _ := host.NewCalendarHost(calendar.Singleton())
//	reg.MustRegister(ch)
//	_ = eng.BindHost(ctx, reg)
//
//	guest, _ := eng.LoadGuest(ctx, wasmBytes)
//	inst, _ := guest.Instantiate(ctx)
//	defer inst.Close(ctx)
//	_, _ = inst.Call(ctx, "on-tick")
//
// # Boundary Contract
//
// Trampolines never report failure to the guest: every operation either
// succeeds or the contract was violated by the caller (out-of-range index,
// use of an uninitialized handle) in which case behavior is unspecified.
// Everything checkable is checked when a host is registered, before any guest
// can be instantiated; see package abi for the layout and relocatability gates.
package modbridge

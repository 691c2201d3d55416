package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/questline/modbridge/calendar"
	"github.com/questline/modbridge/engine"
	"github.com/questline/modbridge/host"
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to script mod wasm file")
		funcName    = flag.String("func", "", "Exported function to call (optional)")
		list        = flag.Bool("list", false, "List exported functions and exit")
		advance     = flag.Float64("advance", 0, "Real seconds of game time to advance before calling")
		timescale   = flag.Float64("timescale", 0, "Override the calendar timescale")
		memPages    = flag.Uint("mem-pages", 256, "Guest memory limit in 64KB pages")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *wasmFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: modhost -wasm <mod.wasm> [-func name] [-advance seconds]")
		fmt.Fprintln(os.Stderr, "       modhost -wasm <mod.wasm> -list")
		fmt.Fprintln(os.Stderr, "       modhost -wasm <mod.wasm> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		engine.SetLogger(logger)
		host.SetLogger(logger)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*wasmFile, uint32(*memPages)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*wasmFile, *funcName, *advance, *timescale, uint32(*memPages), *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// session is the host setup shared by batch and interactive modes.
type session struct {
	engine  *engine.Engine
	guest   *engine.Guest
	inst    *engine.Instance
	cal     *calendar.Calendar
	gtHost  *host.GameTimeHost
	vecHost *host.GameTimeVecHost
}

func newSession(ctx context.Context, wasmFile string, memPages uint32) (*session, error) {
	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	eng, err := engine.New(ctx, &engine.Config{MemoryLimitPages: memPages})
	if err != nil {
		return nil, err
	}

	cal := calendar.Singleton()
	calHost, err := host.NewCalendarHost(cal)
	if err != nil {
		eng.Close(ctx)
		return nil, err
	}
	gtHost, err := host.NewGameTimeHost()
	if err != nil {
		eng.Close(ctx)
		return nil, err
	}
	vecHost, err := host.NewGameTimeVecHost()
	if err != nil {
		eng.Close(ctx)
		return nil, err
	}

	reg := host.NewRegistry()
	if err := reg.Register(calHost); err != nil {
		eng.Close(ctx)
		return nil, err
	}
	if err := reg.Register(gtHost); err != nil {
		eng.Close(ctx)
		return nil, err
	}
	if err := reg.Register(vecHost); err != nil {
		eng.Close(ctx)
		return nil, err
	}
	if err := eng.BindHost(ctx, reg); err != nil {
		eng.Close(ctx)
		return nil, err
	}

	guest, err := eng.LoadGuest(ctx, data)
	if err != nil {
		eng.Close(ctx)
		return nil, err
	}
	inst, err := guest.Instantiate(ctx)
	if err != nil {
		eng.Close(ctx)
		return nil, err
	}

	return &session{
		engine:  eng,
		guest:   guest,
		inst:    inst,
		cal:     cal,
		gtHost:  gtHost,
		vecHost: vecHost,
	}, nil
}

func (s *session) exports() []string {
	names := s.guest.Exports()
	sort.Strings(names)
	return names
}

func (s *session) close(ctx context.Context) {
	s.inst.Close(ctx)
	s.guest.Close(ctx)
	s.engine.Close(ctx)
}

func run(wasmFile, funcName string, advance, timescale float64, memPages uint32, listOnly bool) error {
	ctx := context.Background()

	s, err := newSession(ctx, wasmFile, memPages)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	fmt.Printf("Script mod: %s\n", wasmFile)
	fmt.Printf("Exports: %d\n", len(s.exports()))

	if listOnly {
		for _, name := range s.exports() {
			fmt.Printf("  %s\n", name)
		}
		return nil
	}

	if timescale > 0 {
		s.cal.SetTimescale(float32(timescale))
	}
	if advance > 0 {
		s.cal.Advance(advance)
	}
	fmt.Printf("Game time: %s\n", s.cal.TimeDateString(true, 64))

	if funcName == "" {
		return nil
	}

	results, err := s.inst.Call(ctx, funcName)
	if err != nil {
		return fmt.Errorf("call %s: %w", funcName, err)
	}
	fmt.Printf("Result: %v\n", results)
	return nil
}

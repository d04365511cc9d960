package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sonalite/rv32jit/codemodule"
	"github.com/sonalite/rv32jit/compiler"
	"github.com/sonalite/rv32jit/instance"
	"github.com/sonalite/rv32jit/instruction"
	"github.com/sonalite/rv32jit/memory"
	"github.com/sonalite/rv32jit/pagestore"
	"github.com/sonalite/rv32jit/rtconfig"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		configPath  = flag.String("config", "", "Path to config.toml (default: platform config directory)")
		inputFile   = flag.String("in", "", "Path to a flat binary of RV32IM machine code to load and run")
		disassemble = flag.Bool("disasm", false, "Print decoded instructions instead of running them")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("rv32jit %s (%s)\n", Version, Commit)
		return
	}

	if *inputFile == "" {
		fmt.Fprintln(os.Stderr, "rv32jit: -in <file> is required")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rv32jit: loading config: %v\n", err)
		os.Exit(1)
	}

	code, err := os.ReadFile(*inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rv32jit: reading %s: %v\n", *inputFile, err)
		os.Exit(1)
	}

	if *disassemble {
		printDisassembly(code)
		return
	}

	if err := run(cfg, code); err != nil {
		fmt.Fprintf(os.Stderr, "rv32jit: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*rtconfig.Config, error) {
	if path == "" {
		return rtconfig.Load()
	}
	return rtconfig.LoadFrom(path)
}

func printDisassembly(code []byte) {
	for i := 0; i+4 <= len(code); i += 4 {
		word := uint32(code[i]) | uint32(code[i+1])<<8 | uint32(code[i+2])<<16 | uint32(code[i+3])<<24
		fmt.Printf("%04x: %s\n", i, instruction.Decode(word))
	}
}

func run(cfg *rtconfig.Config, code []byte) error {
	store := pagestore.New(cfg.PageStore.TotalPages)
	defer store.Close()

	mem := memory.New(store, cfg.Memory.MaxPages, cfg.Memory.MaxL2Tables)

	module, err := codemodule.New(cfg.Module.MaxRiscvCodeSize, compiler.StubTranslator{})
	if err != nil {
		return fmt.Errorf("creating module: %w", err)
	}
	defer module.Close()

	if err := module.SetCode(code); err != nil {
		return fmt.Errorf("compiling code: %w", err)
	}

	inst := instance.New(mem)
	defer inst.Close()

	inst.Attach(module)
	if err := inst.CallFunction(0); err != nil {
		return fmt.Errorf("calling entry point: %w", err)
	}

	fmt.Printf("ran %d bytes of compiled code across %d page(s)\n", len(module.Code()), mem.NumPages())
	return nil
}

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"joy/internal/config"
	"joy/internal/logger"
	"joy/internal/runner"
	"joy/pkg/color"
	"joy/pkg/vm"
)

// Main entry point for the joy runtime.
func main() {
	var (
		help       bool
		verbose    bool
		noColor    bool
		maxSteps   int
		maxDepth   int
		configFile string
		outputFile string
	)

	flag.BoolVar(&help, "h", false, "Show help")
	flag.BoolVar(&verbose, "v", false, "Verbose mode: debug logging and bytecode listing")
	flag.BoolVar(&noColor, "n", false, "No color")
	flag.IntVar(&maxSteps, "s", vm.DefaultMaxSteps, "Step budget (0 = unlimited)")
	flag.IntVar(&maxDepth, "d", vm.DefaultMaxCallDepth, "Maximum call depth (0 = unlimited)")
	flag.StringVar(&configFile, "config", "", "Configuration file (default: nearest "+config.FileName+")")
	flag.StringVar(&outputFile, "o", "", "Write the compiled program to this "+runner.BytecodeExt+" file instead of running it")

	flag.Parse()
	args := flag.Args()

	logger.Init(verbose, noColor)
	if help {
		fmt.Printf("Usage: %s [options] <file.joy|file%s>\n", os.Args[0], runner.BytecodeExt)
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	if len(args) == 0 {
		log.Fatal("No input file provided", "help", fmt.Sprintf("%s -h", os.Args[0]))
	}

	cfg, err := loadConfig(configFile, args[0])
	if err != nil {
		log.Fatal("Configuration failed", "error", err)
	}

	// flags given on the command line win over the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "v":
			cfg.Log.Verbose = verbose
		case "n":
			cfg.Log.NoColor = noColor
		case "s":
			cfg.VM.MaxSteps = maxSteps
		case "d":
			cfg.VM.MaxCallDepth = maxDepth
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid limits", "error", err)
	}

	logger.Init(cfg.Log.Verbose, cfg.Log.NoColor)
	if cfg.Log.NoColor {
		color.EnableColor(false)
	}

	r := runner.Runner{
		Config:     cfg,
		SourceFile: args[0],
		OutputFile: outputFile,
		Listing:    cfg.Log.Verbose,
	}

	if err := r.Run(); err != nil {
		log.Fatal("Run failed", "error", err)
	}
}

func loadConfig(path, sourceFile string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	return config.FindAndLoad(filepath.Dir(sourceFile))
}

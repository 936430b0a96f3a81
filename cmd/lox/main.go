package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/xirelogy/go-lox"
	"github.com/xirelogy/go-lox/internal/config"
)

// sysexits
const (
	exitUsage = 64
	exitIOErr = 74
)

var log = commonlog.GetLogger("lox")

func main() {
	debug := flag.Bool("debug", false, "Trace every instruction with the operand stack")
	tokens := flag.Bool("tokens", false, "Dump the token stream before compiling")
	configPath := flag.String("config", "", "Config file (default: nearest lox.toml or lox.yaml)")
	color := flag.String("color", "auto", "Diagnostic colors: auto, always, never")
	encoding := flag.String("encoding", "utf-8", "Source file encoding: utf-8, shift_jis")
	verbosity := flag.Int("v", 0, "Log verbosity")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lox [options] [script]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a lox script, or starts a REPL when no script is given.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	opts, err := loadOptions(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(exitUsage)
	}

	// flags given on the command line win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug":
			opts.Debug = *debug
		case "tokens":
			opts.PrintTokens = *tokens
		case "color":
			opts.Color = *color
		case "encoding":
			opts.Encoding = *encoding
		case "v":
			opts.Verbosity = *verbosity
		}
	})
	if err := opts.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitUsage)
	}
	commonlog.Configure(opts.Verbosity, nil)
	if opts.Path != "" {
		log.Infof("using config %s", opts.Path)
	}

	switch flag.NArg() {
	case 0:
		startREPL(lox.New(opts))
	case 1:
		opts.FilePath = flag.Arg(0)
		os.Exit(runFile(opts))
	default:
		flag.Usage()
		os.Exit(exitUsage)
	}
}

func loadOptions(path string) (*config.Options, error) {
	if path != "" {
		return config.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return config.Default(), nil
	}
	opts, err := config.FindAndLoad(wd)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = config.Default()
	}
	return opts, nil
}

func runFile(opts *config.Options) int {
	src, err := lox.ReadSource(opts.FilePath, opts.Encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitIOErr
	}
	log.Debugf("loaded %s (%d bytes)", opts.FilePath, len(src))
	return lox.New(opts).Interpret(opts.FilePath, src).ExitCode()
}

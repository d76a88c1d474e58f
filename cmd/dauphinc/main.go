package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/dauphin-lang/dauphin/internal/compile"
	"github.com/dauphin-lang/dauphin/internal/errors"
	"github.com/dauphin-lang/dauphin/internal/serialize"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: dauphinc [--cbor] <file.dhpir>")
		os.Exit(1)
	}

	cbor := false
	path := os.Args[1]
	if path == "--cbor" {
		cbor = true
		if len(os.Args) < 3 {
			fmt.Println("Usage: dauphinc [--cbor] <file.dhpir>")
			os.Exit(1)
		}
		path = os.Args[2]
	}

	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read %s: %s", path, err)
		os.Exit(1)
	}

	pipeline, err := compile.NewPipeline()
	if err != nil {
		color.Red("failed to build command registry: %s", err)
		os.Exit(1)
	}

	prog, err := pipeline.Compile(path, string(source))
	if err != nil {
		reportError(path, string(source), err)
		os.Exit(1)
	}

	if cbor {
		out, err := serialize.Program(prog, pipeline.Suite)
		if err != nil {
			color.Red("serialization failed: %s", err)
			os.Exit(1)
		}
		os.Stdout.Write(out)
		return
	}

	for name, instrs := range prog.Entries {
		fmt.Printf("entry %s:\n", name)
		for _, in := range instrs {
			fmt.Printf("  %s\n", in)
		}
	}
	color.Green("✅ compiled %s", path)
}

// reportError renders a *errors.CompilerError with the Rust-like
// caret-style reporter, falling back to a plain message for anything
// else (such as the plain errors the call, simplify and linearize passes
// return).
func reportError(path, source string, err error) {
	ce, ok := err.(*errors.CompilerError)
	if !ok {
		color.Red("%s", err)
		return
	}
	reporter := errors.NewReporter(path, source)
	fmt.Print(reporter.Format(ce))
}

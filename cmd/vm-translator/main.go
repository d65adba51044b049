// Command vm-translator translates one or more VM (.vm) bytecode files, or every .vm
// file in a directory, into a single Hack assembly (.asm) output.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/teris-io/cli"

	"github.com/hackworks/n2t-toolchain/internal/vm"
)

var log = logrus.New()

var description = strings.ReplaceAll(`
The VM Translator converts programs written in the VM intermediate language - a
higher-level, stack-based bytecode tailored to the Hack platform - into Hack assembly.
Given a directory it translates every .vm file inside it, treating the result as one
linked program and always including the bootstrap sequence; given one or more files it
translates exactly those, including the bootstrap only when --bootstrap is passed.
`, "\n", " ")

var app = cli.New(description).
	WithArg(cli.NewArg("inputs", "The bytecode (.vm) file(s), or a directory of them, to compile").
		AsOptional().WithType(cli.TypeString)).
	WithOption(cli.NewOption("output", "The compiled assembly output (.asm)").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("bootstrap", "Include the bootstrap sequence for file (non-directory) input").
		WithType(cli.TypeBool)).
	WithAction(Handler)

// Handler resolves the input file list (expanding a lone directory argument),
// translates each file's module in order, and writes the concatenated assembly to the
// requested output path. Returns the process exit code: 0 on success, 65 otherwise.
func Handler(args []string, options map[string]string) int {
	if len(args) < 1 || options["output"] == "" {
		fmt.Println("ERROR: expected at least one input and --output, use --help")
		return 65
	}

	files, directoryMode, err := resolveInputs(args)
	if err != nil {
		log.WithError(errors.Wrap(err, "unable to resolve inputs")).Error("vm-translator")
		return 65
	}

	_, bootstrapRequested := options["bootstrap"]
	code, err := Translate(files, directoryMode || bootstrapRequested)
	if err != nil {
		fmt.Println(err)
		return 65
	}

	// The output file is only created once translation has fully succeeded, so a
	// parse/code-generation failure never leaves a truncated .asm file behind.
	if err := os.WriteFile(options["output"], []byte(code), 0o644); err != nil {
		log.WithError(errors.Wrap(err, "unable to write output file")).Error("vm-translator")
		return 65
	}
	return 0
}

// resolveInputs expands a single directory argument into its sorted .vm files; any
// other argument list is used as-is. directoryMode reports whether directory
// expansion happened, since that's what makes the bootstrap sequence unconditional.
func resolveInputs(args []string) (files []string, directoryMode bool, err error) {
	if len(args) != 1 {
		return args, false, nil
	}

	info, err := os.Stat(args[0])
	if err != nil {
		return nil, false, err
	}
	if !info.IsDir() {
		return args, false, nil
	}

	entries, err := os.ReadDir(args[0])
	if err != nil {
		return nil, false, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".vm" {
			continue
		}
		files = append(files, filepath.Join(args[0], entry.Name()))
	}
	return files, true, nil
}

// Translate parses and emits each file's module in order, prefixing the bootstrap
// sequence when includeBoot is set.
func Translate(files []string, includeBoot bool) (string, error) {
	emitter := vm.NewEmitter()

	var sb strings.Builder
	if includeBoot {
		sb.WriteString(emitter.Boot())
	}

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}

		stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		parser := vm.NewParser(bytes.NewReader(content), stem)
		module, err := parser.Parse()
		if err != nil {
			return "", fmt.Errorf("%s: %w", file, err)
		}

		code, err := emitter.EmitModule(module)
		if err != nil {
			return "", fmt.Errorf("%s: %w", file, err)
		}
		sb.WriteString(code)
	}

	return sb.String(), nil
}

func main() { os.Exit(app.Run(os.Args, os.Stdout)) }

// Command hack-assembler translates a Hack assembly (.asm) source file into its
// binary (.hack) machine-code counterpart.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/teris-io/cli"

	"github.com/hackworks/n2t-toolchain/internal/asm"
	"github.com/hackworks/n2t-toolchain/internal/hack"
	"github.com/hackworks/n2t-toolchain/internal/scanner"
)

var log = logrus.New()

var description = strings.ReplaceAll(`
The Hack Assembler takes assembly language code written in the Hack assembly language
and translates it into machine code that can be executed by the Hack computer. The
process runs scanning, parsing, and code generation as three independent passes, each
of which can fail with a diagnostic pointing at the exact source line and token.
`, "\n", " ")

var app = cli.New(description).
	WithArg(cli.NewArg("input", "The assembly (.asm) source file to compile")).
	WithArg(cli.NewArg("output", "The compiled binary output (.hack)")).
	WithOption(cli.NewOption("verbose", "Trace which scan rule fires for each token").
		WithType(cli.TypeBool)).
	WithAction(Handler)

// Handler runs the full pipeline for one source file and returns the process exit
// code: 0 on success, 65 (EX_DATAERR) on any scan/parse/code-generation diagnostic or
// filesystem failure, matching the original toolchain's contract.
func Handler(args []string, options map[string]string) int {
	source, err := os.ReadFile(args[0])
	if err != nil {
		log.WithError(errors.Wrap(err, "unable to open input file")).Error("hack-assembler")
		return 65
	}

	_, verbose := options["verbose"]
	binary, err := Assemble(string(source), verbose || os.Getenv("N2T_DEBUG") != "")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 65
	}

	// The output file is only created once assembly has fully succeeded, so a
	// scan/parse/code-generation failure never leaves a truncated .hack file behind.
	if err := os.WriteFile(args[1], []byte(binary), 0o644); err != nil {
		log.WithError(errors.Wrap(err, "unable to write output file")).Error("hack-assembler")
		return 65
	}
	return 0
}

// Assemble runs the scan, parse, and code-generation passes over source and returns
// the resulting .hack text (one 16-character binary line per instruction). When verbose
// is set, the scanner traces which rule fires for each token through a debug-level logger.
func Assemble(source string, verbose bool) (string, error) {
	s := scanner.New(source)
	if verbose {
		traceLogger := logrus.New()
		traceLogger.SetLevel(logrus.DebugLevel)
		s.SetLogger(traceLogger)
	}

	tokens, err := s.Scan()
	if err != nil {
		return "", err
	}

	program, err := asm.New(tokens).Parse()
	if err != nil {
		return "", err
	}

	gen := hack.NewGenerator(program)
	if err := gen.RegisterLabels(); err != nil {
		return "", err
	}

	var sb strings.Builder
	for {
		word, ok, err := gen.Next()
		if err != nil {
			return "", err
		}
		if !ok {
			break
		}
		fmt.Fprintf(&sb, "%016b\n", word)
	}
	return sb.String(), nil
}

func main() { os.Exit(app.Run(os.Args, os.Stdout)) }

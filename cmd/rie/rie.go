// Command rie drives the register-machine instruction encoder over a small
// built-in demo sequence and prints the resulting instruction stream, for
// manual inspection of the encoder's output shape during development.
//
// Grounded on cmd/wazero/wazero.go's doMain(stdout, stderr) testable-main
// pattern and its flag.NewFlagSet-per-subcommand style.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/yagehu/wasmi/internal/engine/rie"
)

func main() {
	os.Exit(doMain(os.Stdout, os.Stderr))
}

// doMain is separated out for the purpose of unit testing.
func doMain(stdOut, stdErr io.Writer) int {
	flag.CommandLine.SetOutput(stdErr)

	var help bool
	flag.BoolVar(&help, "h", false, "Prints usage.")
	flag.Parse()

	if help || flag.NArg() == 0 {
		printUsage(stdErr)
		return 0
	}

	switch subCmd := flag.Arg(0); subCmd {
	case "demo":
		return doDemo(stdOut, stdErr)
	default:
		fmt.Fprintln(stdErr, "invalid command")
		printUsage(stdErr)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "rie <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  demo\tEncodes a small built-in sequence and prints the resulting words.")
}

// doDemo builds one local.set (encoded as a plain copy, since no earlier
// instruction exists to relink), one immediate copy, and a two-result
// return, then prints the drained stream.
// It exists to give a human a quick look at how the encoder's peephole and
// variant-selection decisions shape the emitted word sequence.
func doDemo(stdOut, stdErr io.Writer) int {
	stack := newDemoValueStack()
	e := rie.NewEncoder(stack)

	producer := rie.Register(5)
	local := rie.Register(0)
	dst := rie.Register(1)

	if err := e.EncodeLocalSet(rie.NoFuel(), local, rie.RegisterProvider(producer), nil); err != nil {
		fmt.Fprintln(stdErr, "encode local.set:", err)
		return 1
	}
	if err := e.EncodeCopy(rie.NoFuel(), dst, rie.ConstProvider(rie.ValueTypeI32, rie.UntypedValueFromI32(7))); err != nil {
		fmt.Fprintln(stdErr, "encode copy:", err)
		return 1
	}
	results := []rie.Provider{rie.RegisterProvider(local), rie.RegisterProvider(dst)}
	if err := e.EncodeReturn(rie.NoFuel(), results); err != nil {
		fmt.Fprintln(stdErr, "encode return:", err)
		return 1
	}

	words, err := e.Drain()
	if err != nil {
		fmt.Fprintln(stdErr, "drain:", err)
		return 1
	}
	for i, w := range words {
		fmt.Fprintf(stdOut, "%3d: %s\n", i, w.Kind())
	}
	return 0
}

// demoValueStack is the minimal rie.ValueStack a standalone inspection run
// needs: no real translator backs it, so every local/dynamic register is
// reported as dynamic and constants allocate sequential const-space slots.
type demoValueStack struct {
	nextConst rie.Register
}

func newDemoValueStack() *demoValueStack {
	return &demoValueStack{nextConst: constSpaceBase}
}

func (s *demoValueStack) AllocConst(rie.UntypedValue) (rie.Register, error) {
	r := s.nextConst
	s.nextConst++
	return r, nil
}

const constSpaceBase rie.Register = 1 << 14

func (s *demoValueStack) GetRegisterSpace(reg rie.Register) rie.RegisterSpace {
	if reg >= constSpaceBase {
		return rie.RegisterSpaceConst
	}
	return rie.RegisterSpaceDynamic
}

func (s *demoValueStack) FinalizeAlloc() {}

func (s *demoValueStack) DefragRegister(reg rie.Register) rie.Register { return reg }

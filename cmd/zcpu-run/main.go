// main.go - headless CLI runner

/*
zcpu-run is a minimal headless entry point: load a flat program image
(32-bit little-endian words, no header) from the path given on the
command line, run it, and print the final processor state. Program-image
parsing, debug dumps and any interactive surface are external
collaborators by design (cmd/zcpu-window, cmd/zcpu-debug); this binary
only exists so the core engine has somewhere to start from on a machine
with no display.
*/

package main

import (
	"encoding/binary"
	"fmt"
	"os"

	zcpusim "github.com/zcpusim/zcpusim"
)

func loadImage(path string) ([]uint32, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("zcpu-run: read program image: %w", err)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("zcpu-run: program image %s is not a whole number of 32-bit words", path)
	}
	words := make([]uint32, len(raw)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return words, nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: zcpu-run <program-image>")
		os.Exit(2)
	}

	words, err := loadImage(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	c := zcpusim.Build()
	c.LoadProgram(words, 0)

	for i := 0; i < 1_000_000; i++ {
		c.SingleStep()
	}

	st := c.CPUState()
	fmt.Printf("pc=%#x ccr=%#x cycles=%d\n", st.PC, st.CCR, st.Cycles)
	for i, r := range st.Registers {
		fmt.Printf("r%-2d = %#010x\n", i, r)
	}
}

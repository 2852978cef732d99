// main.go - textual debugger/monitor

/*
zcpu-debug is the textual CLI debugger spec.md names as an external
collaborator: a line-oriented command monitor exposing cpu_state(),
memory_slice(), elapsed_cycles(), single-step and a handful of
embedder-driven input commands.

Grounded on the teacher's terminal_host.go, which puts stdin into raw
mode via golang.org/x/term and reads it byte-by-byte so it can intercept
every keystroke rather than waiting on line-buffered cooked input; this
debugger does the same so it can react to Ctrl-C/Ctrl-D immediately
instead of only at a line boundary, while still assembling a line buffer
itself (raw mode disables the OS's own line editing).
*/

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	zcpusim "github.com/zcpusim/zcpusim"
)

type debugSession struct {
	computer    *zcpusim.Computer
	breakpoints map[uint32]bool
}

func newDebugSession(c *zcpusim.Computer) *debugSession {
	return &debugSession{computer: c, breakpoints: map[uint32]bool{}}
}

func (s *debugSession) dispatch(line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToLower(fields[0]) {
	case "quit", "q":
		return true
	case "step", "s":
		n := 1
		if len(fields) > 1 {
			n, _ = strconv.Atoi(fields[1])
		}
		for i := 0; i < n; i++ {
			s.computer.SingleStep()
			if s.breakpoints[s.computer.CPUState().PC] {
				fmt.Printf("breakpoint hit at %#x\r\n", s.computer.CPUState().PC)
				break
			}
		}
	case "run", "r":
		for {
			s.computer.SingleStep()
			pc := s.computer.CPUState().PC
			if s.breakpoints[pc] {
				fmt.Printf("breakpoint hit at %#x\r\n", pc)
				return false
			}
		}
	case "regs":
		st := s.computer.CPUState()
		fmt.Printf("pc=%#010x ccr=%#x stage=%s cycles=%d\r\n", st.PC, st.CCR, st.Stage, st.Cycles)
		for i, r := range st.Registers {
			fmt.Printf("r%-2d=%#010x ", i, r)
			if i%4 == 3 {
				fmt.Print("\r\n")
			}
		}
	case "mem":
		if len(fields) != 3 {
			fmt.Print("usage: mem <lo> <hi>\r\n")
			return false
		}
		lo, _ := strconv.ParseUint(fields[1], 0, 32)
		hi, _ := strconv.ParseUint(fields[2], 0, 32)
		words := s.computer.MemorySlice(uint32(lo), uint32(hi))
		for i, w := range words {
			fmt.Printf("%#010x: %#010x\r\n", uint32(lo)+uint32(i), w)
		}
	case "cycles":
		fmt.Printf("%d\r\n", s.computer.ElapsedCycles())
	case "irq":
		if len(fields) != 2 {
			fmt.Print("usage: irq <n>\r\n")
			return false
		}
		n, _ := strconv.Atoi(fields[1])
		s.computer.InjectIRQ(uint8(n))
	case "key":
		if len(fields) != 2 {
			fmt.Print("usage: key <scancode>\r\n")
			return false
		}
		n, _ := strconv.Atoi(fields[1])
		s.computer.RequestKeyboardInput(uint16(n))
	case "break", "b":
		if len(fields) != 2 {
			fmt.Print("usage: break <addr>\r\n")
			return false
		}
		addr, _ := strconv.ParseUint(fields[1], 0, 32)
		s.breakpoints[uint32(addr)] = true
	default:
		fmt.Printf("unknown command %q\r\n", fields[0])
	}
	return false
}

// readLine assembles one line of raw-mode stdin input, handling Enter,
// backspace/DEL and Ctrl-D/Ctrl-C as terminal_host.go does for the
// emulated terminal device.
func readLine(fd int) (line string, eof bool) {
	var buf []byte
	one := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(one)
		if n == 0 || err != nil {
			return string(buf), true
		}
		b := one[0]
		switch b {
		case '\r', '\n':
			fmt.Print("\r\n")
			return string(buf), false
		case 0x7F, 0x08:
			if len(buf) > 0 {
				buf = buf[:len(buf)-1]
				fmt.Print("\b \b")
			}
		case 0x03, 0x04: // Ctrl-C, Ctrl-D
			return "", true
		default:
			buf = append(buf, b)
			os.Stdout.Write(one)
		}
	}
}

func main() {
	c := zcpusim.Build(zcpusim.WithStrictMode(true))

	session := newDebugSession(c)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "zcpu-debug: %v\n", err)
			os.Exit(1)
		}
		defer term.Restore(fd, oldState)
	}

	fmt.Print("zcpu-debug ready (step/run/regs/mem/cycles/irq/key/break/quit)\r\n> ")
	for {
		line, eof := readLine(fd)
		if eof {
			fmt.Print("\r\n")
			return
		}
		if session.dispatch(line) {
			return
		}
		fmt.Print("> ")
	}
}

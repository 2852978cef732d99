// computer.go - tick orchestrator and public embedder API

/*
computer.go ties the processor, bus and devices together into the single
global tick the spec describes, and exposes the small API an embedder
(a CLI runner, a test, a host window) drives the machine through:
build, reset, load a program, single-step, run, and introspect.

Build follows the teacher's functional-options constructor pattern (see
NewVideoChip/NewSoundChip in the reference material): a ComputerOption is
a closure that mutates a computerConfig before any component is
allocated, so new knobs don't need a new constructor overload.
*/

package zcpu

import (
	"fmt"
	"log"
	"os"
)

const defaultTimerIRQ = 2

// computerConfig collects every Build() knob before the components that
// consume them are constructed.
type computerConfig struct {
	ramWords       uint32
	displayW       int
	displayH       int
	timerIRQ       uint8
	ivtBase        uint32
	strictMode     bool
	logger         *log.Logger
	tickBudgetStep uint64
}

// ComputerOption configures a Computer at Build() time.
type ComputerOption func(*computerConfig)

// WithRAMWords overrides the default RAM size (in 32-bit words).
func WithRAMWords(words uint32) ComputerOption {
	return func(c *computerConfig) { c.ramWords = words }
}

// WithDisplaySize is accepted for parity with the teacher's
// configuration surface; the framebuffer device's dimensions are fixed
// by the spec's address map (640x480). The requested size is recorded
// in the build configuration but never read: it is not validated and
// has no effect.
func WithDisplaySize(w, h int) ComputerOption {
	return func(c *computerConfig) { c.displayW, c.displayH = w, h }
}

// WithTimerIRQ selects which IRQ number the built-in timer requests on
// overflow.
func WithTimerIRQ(irq uint8) ComputerOption {
	return func(c *computerConfig) { c.timerIRQ = irq }
}

// WithIVTBase overrides the interrupt vector table's base address.
func WithIVTBase(base uint32) ComputerOption {
	return func(c *computerConfig) { c.ivtBase = base }
}

// WithStrictMode sets the CPU's StrictMode, enabling the panic on a
// RETURNI with no saved context. It does not enable the bus's double-ack
// check: the built-in devices always call AssertReady with strict=false.
// Off by default.
func WithStrictMode(strict bool) ComputerOption {
	return func(c *computerConfig) { c.strictMode = strict }
}

// WithLogger overrides the default stderr logger.
func WithLogger(l *log.Logger) ComputerOption {
	return func(c *computerConfig) { c.logger = l }
}

// WithTickBudget overrides the per-instruction tick budget single_step
// enforces before declaring a bus deadlock.
func WithTickBudget(ticks uint64) ComputerOption {
	return func(c *computerConfig) { c.tickBudgetStep = ticks }
}

// Computer is the assembled machine: processor, bus, devices, and the
// tick loop that drives them all in lockstep.
type Computer struct {
	CPU       *CPU
	Bus       *Bus
	RAM       *RAM
	Graphics  *GraphicsDevice
	Keyboard  *KeyboardDevice
	Timer     *Timer
	Interrupt *InterruptController

	Log *log.Logger

	running        bool
	tickBudgetStep uint64
}

// Build constructs a computer with default sizing (RAM 1024 words,
// display 640x480, one timer on a configured IRQ), applying any
// supplied options over those defaults.
func Build(opts ...ComputerOption) *Computer {
	cfg := computerConfig{
		ramWords:       DefaultRAMWords,
		displayW:       GraphicsWidth,
		displayH:       GraphicsHeight,
		timerIRQ:       defaultTimerIRQ,
		ivtBase:        IVTStart,
		logger:         log.New(os.Stderr, "zcpu: ", log.LstdFlags),
		tickBudgetStep: 1 << 20,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	bus := NewBus()
	ic := NewInterruptController(cfg.ivtBase)
	cpu := NewCPU(bus, ic)
	cpu.StrictMode = cfg.strictMode

	c := &Computer{
		CPU:            cpu,
		Bus:            bus,
		RAM:            NewRAM(cfg.ramWords),
		Graphics:       NewGraphicsDevice(),
		Keyboard:       NewKeyboardDevice(),
		Timer:          NewTimer(cfg.timerIRQ),
		Interrupt:      ic,
		Log:            cfg.logger,
		tickBudgetStep: cfg.tickBudgetStep,
	}
	return c
}

// Reset zeroes registers, memory and every device, returning the
// machine to its just-built state. The RAM size, timer IRQ and IVT base
// configured at Build() time are unaffected.
func (c *Computer) Reset() {
	c.CPU.Reset()
	c.Bus.Reset()
	c.RAM.Reset()
	c.Graphics.Reset()
	c.Keyboard.Reset()
	c.Timer.Reset()
	c.Interrupt.Reset()
	c.running = false
}

// LoadProgram copies words into RAM starting at startAddr.
func (c *Computer) LoadProgram(words []uint32, startAddr uint32) {
	for i, w := range words {
		c.RAM.Write(startAddr+uint32(i), w)
	}
	c.CPU.PC = startAddr
}

// devices returns every bus observer in a fixed order. Order among
// devices never matters architecturally (the address map makes their
// selection mutually exclusive), but a fixed order keeps Tick
// deterministic.
func (c *Computer) devices() []Device {
	return []Device{c.RAM, c.Graphics, c.Keyboard}
}

// Tick advances the whole machine by one global cycle: the CPU's
// pipeline stage runs first, then the bus decodes whatever the CPU just
// drove, then every device observes that decode and may act/ack. This
// ordering is what makes a device's ack on tick T visible to the CPU no
// earlier than tick T+1, per the spec's ordering guarantees.
func (c *Computer) Tick() {
	c.CPU.Tick()
	c.Bus.Cycle()
	for _, d := range c.devices() {
		d.OnBusCycle(c.Bus)
	}
	c.Timer.Cycle(c.Interrupt)
}

// SingleStep advances the machine until one instruction completes,
// failing loudly if a device never acks within the configured tick
// budget (a bus deadlock, per the error taxonomy: this is
// instrumentation, not a recoverable condition).
func (c *Computer) SingleStep() {
	var ticks uint64
	for {
		c.Tick()
		ticks++
		if c.CPU.Completed() {
			return
		}
		if ticks > c.tickBudgetStep {
			panic(fmt.Sprintf("computer: bus deadlock — no instruction completed within %d ticks", c.tickBudgetStep))
		}
	}
}

// Run repeatedly calls SingleStep until Stop is called. The embedder is
// expected to call Stop from another goroutine, or from within a
// debugger hook driven off CPUState between steps; there is no watchdog
// inside the core, so a program that spins (e.g. on HCF) runs forever
// until stopped.
func (c *Computer) Run() {
	c.running = true
	for c.running {
		c.SingleStep()
	}
}

// Stop clears the running flag, observed by Run between single_steps.
func (c *Computer) Stop() {
	c.running = false
}

// CPUState is a point-in-time snapshot of processor-visible state, for
// tests and debuggers.
type CPUState struct {
	Registers [32]uint32
	PC        uint32
	CCR       uint8
	Stage     Stage
	Cycles    uint64
}

// CPUState returns a snapshot of the processor's architectural state.
func (c *Computer) CPUState() CPUState {
	return CPUState{
		Registers: c.CPU.Registers,
		PC:        c.CPU.PC,
		CCR:       c.CPU.CCR,
		Stage:     c.CPU.Stage,
		Cycles:    c.CPU.Cycles,
	}
}

// MemorySlice returns a read-only copy of RAM words in [lo, hi).
func (c *Computer) MemorySlice(lo, hi uint32) []uint32 {
	return c.RAM.Slice(lo, hi)
}

// ElapsedCycles returns the total number of ticks the CPU has executed.
func (c *Computer) ElapsedCycles() uint64 {
	return c.CPU.Cycles
}

// RequestKeyboardInput latches scanCode on the keyboard device and
// raises its interrupt, simulating a host key-press event arriving
// between single_steps.
func (c *Computer) RequestKeyboardInput(scanCode uint16) {
	c.Keyboard.LatchKeycode(scanCode)
	c.Keyboard.RaiseKeyIRQ(c.Interrupt)
}

// InjectIRQ requests irq directly, for embedders (tests, a debugger's
// "irq" command) that want to simulate a hardware source without a
// dedicated device.
func (c *Computer) InjectIRQ(irq uint8) {
	c.Interrupt.RequestInterrupt(irq)
}

// FramebufferSnapshot returns a read-only copy of the current framebuffer
// contents as packed RGBA8888 words, for a host renderer.
func (c *Computer) FramebufferSnapshot() []uint32 {
	return c.Graphics.Snapshot()
}

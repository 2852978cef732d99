// cpu.go - zcpu pipeline finite-state machine

/*
cpu.go implements the processor: its register file, condition codes,
pipeline scratch registers and the seven-state pipeline FSM that drives
one instruction's worth of architectural effect per instruction
completion, across a variable number of global ticks.

Unlike the teacher's CPU, which caches raw register pointers when it
decodes an instruction, this implementation caches register *indices* in
DecodedInstruction and dereferences them lazily at EXECUTE time. A cached
pointer aliases badly when a single instruction both reads and writes the
same register; an index never does.

State is not protected by a mutex: the orchestrator is the only caller
that ever advances a CPU, exactly once per tick, from a single goroutine.
The teacher's heavy use of sync.RWMutex exists because its CPU is driven
concurrently by a GUI thread and an audio/video callback thread; this
simulator's single global tick has no such concurrent caller, so adding
locking here would guard against a hazard that cannot occur.
*/

package zcpu

// Stage identifies which of the seven pipeline states the CPU is
// currently in.
type Stage int

const (
	StageInterrupt Stage = iota
	StageFetch1
	StageFetch2
	StageDecode
	StageMemory1
	StageMemory2
	StageExecute
)

func (s Stage) String() string {
	switch s {
	case StageInterrupt:
		return "INTERRUPT"
	case StageFetch1:
		return "FETCH1"
	case StageFetch2:
		return "FETCH2"
	case StageDecode:
		return "DECODE"
	case StageMemory1:
		return "MEMORY1"
	case StageMemory2:
		return "MEMORY2"
	case StageExecute:
		return "EXECUTE"
	default:
		return "UNKNOWN"
	}
}

// Condition code flags. Exactly one is set after any ALU-producing
// instruction. Bit positions match the branch condition field's N/Z/P
// layout in the instruction word so a branch's mask can be ANDed
// directly against CCR.
const (
	CCR_P uint8 = 1 << 0
	CCR_Z uint8 = 1 << 1
	CCR_N uint8 = 1 << 2
)

// ProcessStatus tracks process-level CPU state outside the register
// file proper.
type ProcessStatus struct {
	InterruptInProgress bool
}

// SavedContext is the architectural state snapshotted on non-scheduler
// interrupt entry and restored on RETURNI. Pipeline scratch (the decoded
// instruction, MAR/MDR/IR) is deliberately excluded: it is regenerated by
// the next DECODE and saving it would be pure waste.
type SavedContext struct {
	Registers     [32]uint32
	PC            uint32
	CCR           uint8
	ProcessStatus ProcessStatus
}

// CPU is the processor: register file, program counter, condition codes
// and the pipeline FSM that drives them.
type CPU struct {
	Registers [32]uint32
	PC        uint32
	CCR       uint8
	IR        uint32
	MDR       uint32
	MAR       uint32
	Status    ProcessStatus
	Stage     Stage

	Decoded DecodedInstruction

	SavedContext    SavedContext
	hasSavedContext bool
	currentIRQ      uint8

	Cycles uint64

	// StrictMode enables the programmer-error panic that a production
	// build would rather let slide: RETURNI with no matching saved
	// context outside a scheduler interrupt. It is not consulted by the
	// bus, whose double-ack check depends only on the strict argument
	// each device passes to AssertReady.
	StrictMode bool

	// completed is true for exactly the tick that finished an
	// instruction: a tick that ends in EXECUTE, or in MEMORY2 for a
	// store, which skips EXECUTE entirely.
	completed bool

	bus *Bus
	ic  *InterruptController
}

// NewCPU constructs a CPU wired to bus and ic, with all state zeroed and
// the pipeline starting in the INTERRUPT stage (the FSM's natural entry
// point: INTERRUPT falls straight through to FETCH1 when nothing is
// pending).
func NewCPU(bus *Bus, ic *InterruptController) *CPU {
	return &CPU{bus: bus, ic: ic, Stage: StageInterrupt}
}

// Reset zeroes every register, PC, CCR and pipeline scratch field, and
// returns the FSM to its entry stage.
func (cpu *CPU) Reset() {
	strict := cpu.StrictMode
	bus, ic := cpu.bus, cpu.ic
	*cpu = CPU{bus: bus, ic: ic, Stage: StageInterrupt, StrictMode: strict}
}

// updateCCR sets exactly one of {P, Z, N} from result: Z iff zero, N iff
// bit 31 is set, P otherwise.
func (cpu *CPU) updateCCR(result uint32) {
	switch {
	case result == 0:
		cpu.CCR = CCR_Z
	case result&0x8000_0000 != 0:
		cpu.CCR = CCR_N
	default:
		cpu.CCR = CCR_P
	}
}

// Completed reports whether the tick just executed finished an
// instruction.
func (cpu *CPU) Completed() bool {
	return cpu.completed
}

// Tick advances the CPU by exactly one pipeline stage. The orchestrator
// must run the bus's own Cycle, and every device's OnBusCycle, after
// this call within the same tick: a ready asserted this tick is only
// ever observed by the CPU starting next tick, preserving the one
// stage-per-tick discipline for FETCH2 and MEMORY2.
func (cpu *CPU) Tick() {
	cpu.Cycles++
	cpu.completed = false

	switch cpu.Stage {
	case StageInterrupt:
		cpu.stepInterrupt()
	case StageFetch1:
		cpu.stepFetch1()
	case StageFetch2:
		cpu.stepFetch2()
	case StageDecode:
		cpu.stepDecode()
	case StageMemory1:
		cpu.stepMemory1()
	case StageMemory2:
		cpu.stepMemory2()
	case StageExecute:
		cpu.stepExecute()
	}
}

func (cpu *CPU) stepInterrupt() {
	if cpu.ic.IsPending() && !cpu.Status.InterruptInProgress {
		if irq, ok := cpu.ic.TakeSource(); ok {
			cpu.currentIRQ = irq
			cpu.hasSavedContext = !IsSchedulerIRQ(irq)
			if cpu.hasSavedContext {
				cpu.SavedContext = SavedContext{
					Registers:     cpu.Registers,
					PC:            cpu.PC,
					CCR:           cpu.CCR,
					ProcessStatus: cpu.Status,
				}
			}
			cpu.Status.InterruptInProgress = true
			cpu.PC = cpu.ic.VectorAddress(irq)
		}
	}
	cpu.Stage = StageFetch1
}

func (cpu *CPU) stepFetch1() {
	cpu.MAR = cpu.PC
	cpu.PC++
	cpu.bus.BeginRead(cpu.MAR)
	cpu.Stage = StageFetch2
}

func (cpu *CPU) stepFetch2() {
	if !cpu.bus.DeviceReady {
		return
	}
	cpu.MDR = cpu.bus.DataLines
	cpu.IR = cpu.MDR
	cpu.bus.ClearAndDisable()
	cpu.Stage = StageDecode
}

func (cpu *CPU) stepDecode() {
	cpu.Decoded = Decode(cpu.IR)
	switch {
	case isLoadEffectiveAddress(cpu.Decoded.Opcode):
		cpu.Stage = StageExecute
	case isMemoryOp(cpu.Decoded.Opcode):
		cpu.Stage = StageMemory1
	default:
		cpu.Stage = StageExecute
	}
}

func (cpu *CPU) stepMemory1() {
	d := &cpu.Decoded
	switch d.Opcode {
	case OpLOAD:
		cpu.MAR = cpu.PC + d.Offset21
		cpu.bus.BeginRead(cpu.MAR)
	case OpLOADR:
		cpu.MAR = cpu.Registers[d.Src1] + d.Offset16
		cpu.bus.BeginRead(cpu.MAR)
	case OpSTORE:
		cpu.MAR = cpu.PC + d.Offset21
		cpu.bus.BeginWrite(cpu.MAR, cpu.Registers[d.Dst])
	case OpSTORER:
		cpu.MAR = cpu.Registers[d.Src1] + d.Offset16
		cpu.bus.BeginWrite(cpu.MAR, cpu.Registers[d.Dst])
	}
	cpu.Stage = StageMemory2
}

func (cpu *CPU) stepMemory2() {
	if !cpu.bus.DeviceReady {
		return
	}
	// Read the data lines before clearing device_ready/disabling the
	// bus. The original source cleared first, which races against a
	// device still observing the lines; this implementation reads
	// first so the clear can never race a legitimate read.
	if !isStoreOp(cpu.Decoded.Opcode) {
		cpu.MDR = cpu.bus.DataLines
	}
	cpu.bus.ClearAndDisable()

	if isStoreOp(cpu.Decoded.Opcode) {
		// Stores retire here: their architectural effect is already
		// committed by the device. Skip EXECUTE entirely.
		cpu.completed = true
		cpu.Stage = StageInterrupt
		return
	}
	cpu.Stage = StageExecute
}

func (cpu *CPU) stepExecute() {
	opcodeTable[cpu.Decoded.Opcode](cpu)
	cpu.completed = true
	cpu.Stage = StageInterrupt
}

// returnFromInterrupt restores the saved architectural context (unless
// the interrupt being returned from was a scheduler interrupt, which
// never had one saved) and clears the in-progress flag. In StrictMode, a
// RETURNI with no matching saved context outside of a scheduler
// interrupt is a programmer error and panics rather than silently
// leaving stale state in place.
func (cpu *CPU) returnFromInterrupt() {
	if cpu.hasSavedContext {
		cpu.Registers = cpu.SavedContext.Registers
		cpu.PC = cpu.SavedContext.PC
		cpu.CCR = cpu.SavedContext.CCR
		cpu.Status = cpu.SavedContext.ProcessStatus
		cpu.hasSavedContext = false
	} else if cpu.StrictMode && !IsSchedulerIRQ(cpu.currentIRQ) {
		panic("cpu: RETURNI with no matching saved context")
	}
	cpu.Status.InterruptInProgress = false
}

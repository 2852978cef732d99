// interrupt.go - vectored interrupt controller

/*
interrupt.go implements the interrupt controller: a strict FIFO of pending
IRQ numbers (capacity 256, one slot per possible 8-bit IRQ) plus the
interrupt vector table base address. Priority between pending sources is
whatever order they were raised in; the controller itself never reorders
or coalesces requests. It mirrors the request/dequeue shape of the
original C interrupt_controller module, built here on top of ByteQueue
instead of a bespoke ring buffer.
*/

package zcpu

// MaxIRQs is the number of distinct IRQ numbers the controller can queue
// distinct requests for (8-bit IRQ space).
const MaxIRQs = 256

// Software IRQs (raised by TRAP) occupy the top half of the IRQ space;
// hardware sources occupy the bottom half.
const (
	FirstSoftwareIRQ = 128
	SchedulerIRQLow  = 0
	SchedulerIRQHigh = 128
)

// IsSchedulerIRQ reports whether n is one of the two scheduler IRQs that
// bypass automatic context save/restore on entry and exit.
func IsSchedulerIRQ(n uint8) bool {
	return n == SchedulerIRQLow || n == SchedulerIRQHigh
}

// InterruptController queues pending hardware and software interrupt
// requests and computes ISR vector addresses against a fixed table base.
type InterruptController struct {
	pending *ByteQueue
	ivtBase uint32
}

// NewInterruptController constructs a controller whose vector table begins
// at ivtBase (a word address). The base is immutable after construction.
func NewInterruptController(ivtBase uint32) *InterruptController {
	return &InterruptController{
		pending: NewByteQueue(MaxIRQs),
		ivtBase: ivtBase,
	}
}

// RequestInterrupt enqueues irq as a pending request. If the queue is
// already full the request is dropped silently, per the error taxonomy in
// the controller's design: overflow is not observable except through
// QueueFull.
func (ic *InterruptController) RequestInterrupt(irq uint8) {
	ic.pending.Put(irq)
}

// IsPending reports whether at least one interrupt request is queued.
func (ic *InterruptController) IsPending() bool {
	return !ic.pending.IsEmpty()
}

// QueueFull reports whether the pending queue is at capacity, so an
// embedder can detect that further requests will be silently dropped.
func (ic *InterruptController) QueueFull() bool {
	return ic.pending.IsFull()
}

// TakeSource dequeues and returns the oldest pending IRQ number. ok is
// false if nothing was pending.
func (ic *InterruptController) TakeSource() (irq uint8, ok bool) {
	return ic.pending.Get()
}

// VectorAddress returns the word address of the ISR entry for irq: the
// vector table is populated by software, this only computes where the
// entry lives.
func (ic *InterruptController) VectorAddress(irq uint8) uint32 {
	return ic.ivtBase + uint32(irq)
}

// IVTBase returns the configured interrupt vector table base address.
func (ic *InterruptController) IVTBase() uint32 {
	return ic.ivtBase
}

// Reset drops all pending requests. The vector table base is unaffected.
func (ic *InterruptController) Reset() {
	ic.pending.Reset()
}

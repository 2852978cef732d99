// bus.go - shared memory/address bus

/*
bus.go implements the single shared bus that every memory-mapped
transaction in the machine traverses. The CPU is the sole initiator; RAM,
the graphics framebuffer and the keyboard are pure observers that react
only when selected and enabled (see Device below). One transaction is in
flight at a time: the CPU drives address_lines/data_lines/mode and enables
the bus, the bus decodes the address against the fixed memory map into a
selected device, and that device (on its own later tick) acts and asserts
device_ready. The CPU clears device_ready and disables the bus before
starting the next transaction.

This mirrors the teacher's MachineBus in spirit (a single mutable bus
struct threaded through every component's cycle method) but replaces its
multi-megabyte paged I/O map with the small, fixed four-region map this
machine's spec calls for.
*/

package zcpu

// BusMode selects the direction of the transaction currently asserted on
// the bus.
type BusMode int

const (
	BusRead BusMode = iota
	BusWrite
)

// SelectedDevice identifies which peripheral the bus's address decode
// picked for the current transaction.
type SelectedDevice int

const (
	DeviceNone SelectedDevice = iota
	DeviceMemory
	DeviceGraphics
	DeviceKeyboard
)

// Address map boundaries, word-addressed. Boot ROM is aliased to RAM: the
// spec does not model a separate ROM device, just a convention that the
// first 4096 words are treated as boot code living in ordinary RAM.
const (
	BootROMStart    = 0x0000_0000
	BootROMEnd      = 0x0000_0FFF
	IVTStart        = 0x0000_1000
	IVTEnd          = 0x0000_10FF
	GraphicsStart   = 0x0000_1100
	GraphicsEnd     = 0x0004_C0FF
	KeyboardStart   = 0x0004_C100
	KeyboardEnd     = 0x0004_C101
	ReservedStart   = 0x0004_C102
	DefaultRAMWords = 1024
)

// decodeAddress maps a bus address to the device that owns it. Everything
// outside the graphics and keyboard windows, including the reserved
// range and the boot ROM/IVT alias, defaults to memory: the spec
// deliberately never signals a bus error for an unmapped address.
func decodeAddress(addr uint32) SelectedDevice {
	switch {
	case addr >= GraphicsStart && addr <= GraphicsEnd:
		return DeviceGraphics
	case addr >= KeyboardStart && addr <= KeyboardEnd:
		return DeviceKeyboard
	default:
		return DeviceMemory
	}
}

// Bus is the single shared address/data bus. There is exactly one
// instance per Computer; the CPU, RAM, graphics device and keyboard all
// hold a pointer to the same Bus.
type Bus struct {
	AddressLines uint32
	DataLines    uint32
	Mode         BusMode
	Enabled      bool
	DeviceReady  bool
	SelectedDev  SelectedDevice

	readyAsserter SelectedDevice // who asserted ready this transaction, for StrictMode double-ack detection
}

// NewBus constructs an idle bus.
func NewBus() *Bus {
	return &Bus{}
}

// BeginRead drives the bus for a read transaction at addr.
func (b *Bus) BeginRead(addr uint32) {
	b.AddressLines = addr
	b.Mode = BusRead
	b.Enabled = true
}

// BeginWrite drives the bus for a write transaction at addr with data.
func (b *Bus) BeginWrite(addr, data uint32) {
	b.AddressLines = addr
	b.DataLines = data
	b.Mode = BusWrite
	b.Enabled = true
}

// Cycle performs one bus tick: while enabled, decode the currently
// asserted address into a selected device. Devices observe SelectedDev
// and Enabled on their own Cycle and act only when they match.
func (b *Bus) Cycle() {
	if !b.Enabled {
		b.SelectedDev = DeviceNone
		return
	}
	b.SelectedDev = decodeAddress(b.AddressLines)
}

// AssertReady is called by the device that has just completed the
// current transaction. dev identifies the asserting device so a strict
// build can catch two devices acking the same transaction, which would
// indicate a memory-map overlap bug.
func (b *Bus) AssertReady(dev SelectedDevice, strict bool) {
	if strict && b.DeviceReady && b.readyAsserter != dev {
		panic("bus: multiple devices asserted device_ready for the same transaction")
	}
	b.DeviceReady = true
	b.readyAsserter = dev
}

// ClearAndDisable clears device_ready and disables the bus. The
// initiating master (always the CPU in this machine) calls this before
// starting the next transaction.
func (b *Bus) ClearAndDisable() {
	b.DeviceReady = false
	b.Enabled = false
	b.SelectedDev = DeviceNone
}

// Reset returns the bus to its idle, just-constructed state.
func (b *Bus) Reset() {
	*b = Bus{}
}

// Device is implemented by every peripheral that observes the bus.
// OnBusCycle is invoked once per global tick, after the bus itself has
// decoded the address for this tick; a device must not touch the bus
// unless it confirms it is both enabled and addressed to it.
type Device interface {
	OnBusCycle(bus *Bus)
}

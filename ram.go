// ram.go - main memory device

/*
ram.go implements the RAM device: a contiguous array of 32-bit words that
answers DeviceMemory transactions on the bus. Latency is configurable (a
fixed number of bus cycles elapse before device_ready is asserted),
matching the original memory module's cycle_count scheme; the default of
one cycle is the minimum the pipeline's MEMORY1/MEMORY2 handshake can
observe.

Reading or writing past the allocated word count is a programmer error,
not a runtime condition the machine can recover from: it panics, per the
"out-of-range memory" entry in the error taxonomy.
*/

package zcpu

// RAM is the machine's main memory, word-addressed starting at 0.
type RAM struct {
	words   []uint32
	latency uint32 // bus cycles to hold a transaction before acking
	elapsed uint32
}

// NewRAM allocates RAM of the given size in 32-bit words, with the
// default one-cycle latency.
func NewRAM(words uint32) *RAM {
	return &RAM{words: make([]uint32, words), latency: 1}
}

// SetLatency configures how many bus cycles a transaction takes before
// device_ready is asserted. Latency must be at least 1.
func (m *RAM) SetLatency(cycles uint32) {
	if cycles < 1 {
		cycles = 1
	}
	m.latency = cycles
}

// Size returns the number of addressable words.
func (m *RAM) Size() uint32 {
	return uint32(len(m.words))
}

// Read returns the word at addr. It panics if addr is out of range: the
// spec treats this as a programmer error in the loaded program, not a
// recoverable fault.
func (m *RAM) Read(addr uint32) uint32 {
	if addr >= uint32(len(m.words)) {
		panic("ram: read out of range")
	}
	return m.words[addr]
}

// Write stores value at addr. It panics if addr is out of range.
func (m *RAM) Write(addr, value uint32) {
	if addr >= uint32(len(m.words)) {
		panic("ram: write out of range")
	}
	m.words[addr] = value
}

// Slice returns a read-only view of [lo, hi) for introspection, clamped
// to the allocated range.
func (m *RAM) Slice(lo, hi uint32) []uint32 {
	if hi > uint32(len(m.words)) {
		hi = uint32(len(m.words))
	}
	if lo > hi {
		lo = hi
	}
	out := make([]uint32, hi-lo)
	copy(out, m.words[lo:hi])
	return out
}

// Reset zeroes every word.
func (m *RAM) Reset() {
	for i := range m.words {
		m.words[i] = 0
	}
	m.elapsed = 0
}

// OnBusCycle implements Device: when selected and enabled, hold the
// transaction for the configured latency, then commit the read or write
// and assert device_ready.
func (m *RAM) OnBusCycle(bus *Bus) {
	if !bus.Enabled || bus.SelectedDev != DeviceMemory {
		m.elapsed = 0
		return
	}

	m.elapsed++
	if m.elapsed < m.latency {
		return
	}
	m.elapsed = 0

	if bus.Mode == BusWrite {
		m.Write(bus.AddressLines, bus.DataLines)
	} else {
		bus.DataLines = m.Read(bus.AddressLines)
	}
	bus.AssertReady(DeviceMemory, false)
}

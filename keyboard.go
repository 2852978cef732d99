// keyboard.go - keyboard device

/*
keyboard.go implements the keyboard device: two memory-mapped registers
holding the most recently latched scan code. Only reads return data -
writing to the keyboard makes no architectural sense, matching the
original keyboard module's comment to that effect, so a write is acked
and otherwise ignored. The host drives
LatchKeycode and RaiseKeyIRQ from outside the bus, simulating the real
keyboard hardware asserting its interrupt line and the MCU capturing the
scan code before the CPU ever polls it.
*/

package zcpu

// KeyboardIRQ is the hardware IRQ number the keyboard requests on key
// press, chosen from the low (hardware) half of the IRQ space.
const KeyboardIRQ = 1

// KeyboardDevice holds the most recently latched key scan code.
type KeyboardDevice struct {
	keycode uint16
}

// NewKeyboardDevice constructs a keyboard with no key latched.
func NewKeyboardDevice() *KeyboardDevice {
	return &KeyboardDevice{}
}

// Reset clears the latched scan code.
func (k *KeyboardDevice) Reset() {
	k.keycode = 0
}

// LatchKeycode records scan as the most recent key event, for the CPU to
// read back via the keyboard's memory-mapped register.
func (k *KeyboardDevice) LatchKeycode(scan uint16) {
	k.keycode = scan
}

// RaiseKeyIRQ requests the keyboard's interrupt through ic, simulating
// the hardware pulling its interrupt request line after latching a key.
func (k *KeyboardDevice) RaiseKeyIRQ(ic *InterruptController) {
	ic.RequestInterrupt(KeyboardIRQ)
}

// OnBusCycle implements Device: when selected, reading, and enabled,
// place the latched scan code on the data lines and ack. Writes are
// accepted (acked) but have no effect.
func (k *KeyboardDevice) OnBusCycle(bus *Bus) {
	if !bus.Enabled || bus.SelectedDev != DeviceKeyboard {
		return
	}
	if bus.Mode == BusRead {
		bus.DataLines = uint32(k.keycode)
	}
	bus.AssertReady(DeviceKeyboard, false)
}

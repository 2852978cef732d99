package zcpu

import "testing"

func TestDecodeAddressRegions(t *testing.T) {
	cases := []struct {
		addr uint32
		want SelectedDevice
	}{
		{0x0000_0000, DeviceMemory},
		{0x0000_1000, DeviceMemory}, // IVT aliases to RAM
		{GraphicsStart, DeviceGraphics},
		{GraphicsEnd, DeviceGraphics},
		{KeyboardStart, DeviceKeyboard},
		{KeyboardEnd, DeviceKeyboard},
		{ReservedStart, DeviceMemory},
	}
	for _, c := range cases {
		if got := decodeAddress(c.addr); got != c.want {
			t.Fatalf("decodeAddress(%#x) = %v, want %v", c.addr, got, c.want)
		}
	}
}

func TestBusBeginReadThenCycleSelectsDevice(t *testing.T) {
	b := NewBus()
	b.BeginRead(GraphicsStart)
	b.Cycle()
	if b.SelectedDev != DeviceGraphics {
		t.Fatalf("SelectedDev = %v, want DeviceGraphics", b.SelectedDev)
	}
	if !b.Enabled || b.Mode != BusRead {
		t.Fatalf("expected bus enabled in read mode")
	}
}

func TestBusClearAndDisable(t *testing.T) {
	b := NewBus()
	b.BeginWrite(0, 0xDEAD)
	b.Cycle()
	b.AssertReady(DeviceMemory, false)
	b.ClearAndDisable()
	if b.Enabled || b.DeviceReady || b.SelectedDev != DeviceNone {
		t.Fatalf("ClearAndDisable left the bus in a dirty state")
	}
}

func TestBusAssertReadyStrictDoubleAckPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic on a double ack in strict mode")
		}
	}()
	b := NewBus()
	b.BeginRead(0)
	b.Cycle()
	b.AssertReady(DeviceMemory, true)
	b.AssertReady(DeviceGraphics, true)
}

func TestBusCycleWhenDisabledSelectsNone(t *testing.T) {
	b := NewBus()
	b.Cycle()
	if b.SelectedDev != DeviceNone {
		t.Fatalf("SelectedDev = %v, want DeviceNone when bus is idle", b.SelectedDev)
	}
}

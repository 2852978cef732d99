package zcpu

import "testing"

func TestRAMReadWriteRoundTrip(t *testing.T) {
	m := NewRAM(16)
	m.Write(4, 0xCAFEBABE)
	if got := m.Read(4); got != 0xCAFEBABE {
		t.Fatalf("Read(4) = %#x, want 0xCAFEBABE", got)
	}
}

func TestRAMOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic on out-of-range access")
		}
	}()
	m := NewRAM(4)
	m.Read(4)
}

func TestRAMOnBusCycleLatency(t *testing.T) {
	m := NewRAM(4)
	m.SetLatency(3)
	m.Write(0, 0x1234)

	b := NewBus()
	b.BeginRead(0)
	b.Cycle()

	for i := 0; i < 2; i++ {
		m.OnBusCycle(b)
		if b.DeviceReady {
			t.Fatalf("device_ready asserted too early, after %d cycles", i+1)
		}
	}
	m.OnBusCycle(b)
	if !b.DeviceReady {
		t.Fatalf("expected device_ready asserted on the 3rd cycle")
	}
	if b.DataLines != 0x1234 {
		t.Fatalf("DataLines = %#x, want 0x1234", b.DataLines)
	}
}

func TestRAMOnBusCycleIgnoresUnselectedTransactions(t *testing.T) {
	m := NewRAM(4)
	b := NewBus()
	b.BeginRead(GraphicsStart)
	b.Cycle()
	m.OnBusCycle(b)
	if b.DeviceReady {
		t.Fatalf("RAM should not act on a transaction selecting the graphics device")
	}
}

func TestRAMSliceClamps(t *testing.T) {
	m := NewRAM(4)
	m.Write(0, 1)
	m.Write(1, 2)
	got := m.Slice(0, 100)
	if len(got) != 4 {
		t.Fatalf("Slice(0, 100) len = %d, want 4 (clamped)", len(got))
	}
}

package zcpu

import "testing"

func TestInterruptControllerFIFOAndVector(t *testing.T) {
	ic := NewInterruptController(0x1000)
	if ic.IsPending() {
		t.Fatalf("fresh controller should have nothing pending")
	}
	ic.RequestInterrupt(5)
	ic.RequestInterrupt(9)
	if !ic.IsPending() {
		t.Fatalf("expected pending after RequestInterrupt")
	}
	first, ok := ic.TakeSource()
	if !ok || first != 5 {
		t.Fatalf("TakeSource() = (%d, %v), want (5, true)", first, ok)
	}
	if got, want := ic.VectorAddress(first), uint32(0x1000+5); got != want {
		t.Fatalf("VectorAddress(5) = %#x, want %#x", got, want)
	}
	second, ok := ic.TakeSource()
	if !ok || second != 9 {
		t.Fatalf("TakeSource() = (%d, %v), want (9, true)", second, ok)
	}
	if ic.IsPending() {
		t.Fatalf("controller should be drained")
	}
}

func TestInterruptControllerOverflowDropsSilently(t *testing.T) {
	ic := NewInterruptController(0)
	for i := 0; i < MaxIRQs; i++ {
		ic.RequestInterrupt(uint8(i % 256))
	}
	if !ic.QueueFull() {
		t.Fatalf("expected queue full after MaxIRQs requests")
	}
	ic.RequestInterrupt(200) // dropped, not panicked
	if !ic.QueueFull() {
		t.Fatalf("queue should still report full after a dropped request")
	}
}

func TestIsSchedulerIRQ(t *testing.T) {
	cases := map[uint8]bool{0: true, 128: true, 1: false, 127: false, 129: false, 255: false}
	for irq, want := range cases {
		if got := IsSchedulerIRQ(irq); got != want {
			t.Fatalf("IsSchedulerIRQ(%d) = %v, want %v", irq, got, want)
		}
	}
}

func TestInterruptControllerReset(t *testing.T) {
	ic := NewInterruptController(0x2000)
	ic.RequestInterrupt(3)
	ic.Reset()
	if ic.IsPending() {
		t.Fatalf("expected no pending interrupts after Reset")
	}
	if ic.IVTBase() != 0x2000 {
		t.Fatalf("Reset must not change the IVT base")
	}
}
